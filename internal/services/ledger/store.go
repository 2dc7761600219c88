// Package ledger owns the expense, investment and crypto collections and
// keeps them persisted in a key-value store.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fintrack/internal/models"
	"fintrack/internal/services/storage"
)

var (
	ErrNotFound        = errors.New("entry not found")
	ErrNotConfirmed    = errors.New("operation not confirmed")
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
)

// Store holds the three collections in memory and writes every change through to the KV
type Store struct {
	mu     sync.Mutex
	kv     storage.KV
	logger zerolog.Logger
	ids    idGenerator
	data   models.Collections
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the time source used for new ids
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.ids.now = now }
}

// WithLogger sets the store logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open loads all three collections from kv. Missing keys are empty collections.
func Open(ctx context.Context, kv storage.KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:     kv,
		logger: zerolog.Nop(),
		ids:    idGenerator{now: time.Now},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := load(ctx, kv, models.KindExpense, &s.data.Expenses); err != nil {
		return nil, err
	}
	if err := load(ctx, kv, models.KindInvestment, &s.data.Investments); err != nil {
		return nil, err
	}
	if err := load(ctx, kv, models.KindCrypto, &s.data.Cryptos); err != nil {
		return nil, err
	}
	s.observeIDs()

	s.logger.Debug().
		Int("expenses", len(s.data.Expenses)).
		Int("investments", len(s.data.Investments)).
		Int("cryptos", len(s.data.Cryptos)).
		Msg("ledger loaded")
	return s, nil
}

func load[T any](ctx context.Context, kv storage.KV, kind models.Kind, dst *[]T) error {
	data, ok, err := kv.Get(ctx, string(kind))
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", kind, err)
	}
	if !ok || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", kind, err)
	}
	return nil
}

func (s *Store) observeIDs() {
	for _, e := range s.data.Expenses {
		s.ids.observe(e.ID)
	}
	for _, i := range s.data.Investments {
		s.ids.observe(i.ID)
	}
	for _, c := range s.data.Cryptos {
		s.ids.observe(c.ID)
	}
}

// Expenses returns a copy of the expense collection
func (s *Store) Expenses() []models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.Expenses)
}

// Investments returns a copy of the investment collection
func (s *Store) Investments() []models.Investment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.Investments)
}

// Cryptos returns a copy of the crypto collection
func (s *Store) Cryptos() []models.CryptoInvestment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.Cryptos)
}

// Len returns the size of one collection
func (s *Store) Len(kind models.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Len(kind)
}

// Snapshot returns a consistent copy of all three collections
func (s *Store) Snapshot() models.Collections {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clone()
}

func (s *Store) clone() models.Collections {
	return models.Collections{
		Expenses:    slices.Clone(s.data.Expenses),
		Investments: slices.Clone(s.data.Investments),
		Cryptos:     slices.Clone(s.data.Cryptos),
	}
}

// AddExpense validates and records a new expense
func (s *Store) AddExpense(ctx context.Context, in ExpenseInput) (models.Expense, error) {
	e, err := in.validate()
	if err != nil {
		return models.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.clone()
	e.ID = s.ids.next()
	s.data.Expenses = append(s.data.Expenses, e)
	sortByDateDesc(s.data.Expenses)

	if err := s.commit(ctx, prev); err != nil {
		return models.Expense{}, err
	}
	s.logger.Debug().Int64("id", e.ID).Str("category", string(e.Category)).Msg("expense added")
	return e, nil
}

// AddInvestment records a new investment snapshot. Its profit is measured
// against the last entry of the same type in the current collection order.
func (s *Store) AddInvestment(ctx context.Context, in InvestmentInput) (models.Investment, error) {
	inv, err := in.validate()
	if err != nil {
		return models.Investment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.clone()
	inv.ID = s.ids.next()
	inv.Profit, inv.ProfitPercent = profitAgainst(inv.Amount, addReference(s.data.Investments, inv.Type))
	s.data.Investments = append(s.data.Investments, inv)
	sortByDateDesc(s.data.Investments)

	if err := s.commit(ctx, prev); err != nil {
		return models.Investment{}, err
	}
	s.logger.Debug().Int64("id", inv.ID).Str("type", inv.Type).Msg("investment added")
	return inv, nil
}

// AddCrypto records a new crypto snapshot with a user-supplied profit
func (s *Store) AddCrypto(ctx context.Context, in CryptoInput) (models.CryptoInvestment, error) {
	c, err := in.validate()
	if err != nil {
		return models.CryptoInvestment{}, err
	}
	c.ProfitPercent = cryptoPercent(c.Amount, c.Profit)

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.clone()
	c.ID = s.ids.next()
	s.data.Cryptos = append(s.data.Cryptos, c)
	sortByDateDesc(s.data.Cryptos)

	if err := s.commit(ctx, prev); err != nil {
		return models.CryptoInvestment{}, err
	}
	s.logger.Debug().Int64("id", c.ID).Str("type", c.Type).Msg("crypto added")
	return c, nil
}

// EditExpense applies a patch to an existing expense
func (s *Store) EditExpense(ctx context.Context, id int64, p ExpensePatch) (models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.data.Expenses, id)
	if idx < 0 {
		return models.Expense{}, fmt.Errorf("expense %d: %w", id, ErrNotFound)
	}
	e := s.data.Expenses[idx]

	amount, err := patchAmount(p.Amount, e.Amount)
	if err != nil {
		return models.Expense{}, err
	}
	if p.Category != nil {
		cat, err := requireCategory(*p.Category)
		if err != nil {
			return models.Expense{}, err
		}
		e.Category = cat
	}
	e.Amount = amount
	e.Description = patchText(p.Description, e.Description)
	e.DateISO = patchDate(p.Date, e.DateISO)
	e.Date = models.DisplayDate(e.DateISO)

	prev := s.clone()
	s.data.Expenses[idx] = e
	sortByDateDesc(s.data.Expenses)

	if err := s.commit(ctx, prev); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

// EditInvestment applies a patch to an existing investment and recomputes its
// profit against the closest earlier entry of the same type
func (s *Store) EditInvestment(ctx context.Context, id int64, p InvestmentPatch) (models.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.data.Investments, id)
	if idx < 0 {
		return models.Investment{}, fmt.Errorf("investment %d: %w", id, ErrNotFound)
	}
	inv := s.data.Investments[idx]

	amount, err := patchAmount(p.Amount, inv.Amount)
	if err != nil {
		return models.Investment{}, err
	}
	inv.Amount = amount
	if p.Description != nil {
		inv.Description = strings.TrimSpace(*p.Description)
	}
	inv.DateISO = patchDate(p.Date, inv.DateISO)
	inv.Date = models.DisplayDate(inv.DateISO)
	inv.Profit, inv.ProfitPercent = profitAgainst(inv.Amount,
		editReference(s.data.Investments, inv.ID, inv.Type, inv.DateISO))

	prev := s.clone()
	s.data.Investments[idx] = inv
	sortByDateDesc(s.data.Investments)

	if err := s.commit(ctx, prev); err != nil {
		return models.Investment{}, err
	}
	return inv, nil
}

// EditCrypto applies a patch to an existing crypto snapshot. The stored profit
// is kept unless the patch replaces it.
func (s *Store) EditCrypto(ctx context.Context, id int64, p CryptoPatch) (models.CryptoInvestment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := indexOf(s.data.Cryptos, id)
	if idx < 0 {
		return models.CryptoInvestment{}, fmt.Errorf("crypto %d: %w", id, ErrNotFound)
	}
	c := s.data.Cryptos[idx]

	amount, err := patchAmount(p.Amount, c.Amount)
	if err != nil {
		return models.CryptoInvestment{}, err
	}
	c.Amount = amount
	if p.Profit != nil {
		c.Profit = *p.Profit
	}
	c.DateISO = patchDate(p.Date, c.DateISO)
	c.Date = models.DisplayDate(c.DateISO)
	c.ProfitPercent = cryptoPercent(c.Amount, c.Profit)

	prev := s.clone()
	s.data.Cryptos[idx] = c
	sortByDateDesc(s.data.Cryptos)

	if err := s.commit(ctx, prev); err != nil {
		return models.CryptoInvestment{}, err
	}
	return c, nil
}

// Delete removes one entry after confirmation. It reports false when no entry has the id.
func (s *Store) Delete(ctx context.Context, kind models.Kind, id int64, c Confirmer) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found bool
	switch kind {
	case models.KindExpense:
		found = indexOf(s.data.Expenses, id) >= 0
	case models.KindInvestment:
		found = indexOf(s.data.Investments, id) >= 0
	case models.KindCrypto:
		found = indexOf(s.data.Cryptos, id) >= 0
	default:
		return false, fmt.Errorf("unknown collection %q", kind)
	}
	if !found {
		return false, nil
	}

	prompt := PromptDeleteInvestment
	if kind == models.KindExpense {
		prompt = PromptDeleteExpense
	}
	if !c.Confirm(prompt) {
		return false, ErrNotConfirmed
	}

	prev := s.clone()
	switch kind {
	case models.KindExpense:
		s.data.Expenses = without(s.data.Expenses, id)
	case models.KindInvestment:
		s.data.Investments = without(s.data.Investments, id)
	case models.KindCrypto:
		s.data.Cryptos = without(s.data.Cryptos, id)
	}

	if err := s.commit(ctx, prev); err != nil {
		return false, err
	}
	s.logger.Debug().Str("kind", string(kind)).Int64("id", id).Msg("entry deleted")
	return true, nil
}

// ReplaceAll swaps in all three collections at once, as an import does
func (s *Store) ReplaceAll(ctx context.Context, data models.Collections, c Confirmer) error {
	if !c.Confirm(PromptReplaceAll) {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.clone()
	s.data = models.Collections{
		Expenses:    slices.Clone(data.Expenses),
		Investments: slices.Clone(data.Investments),
		Cryptos:     slices.Clone(data.Cryptos),
	}
	s.observeIDs()

	// repeated ids, including the zero ids of old backups, get fresh ones
	reissueDuplicates(s.data.Expenses, &s.ids, func(e *models.Expense, id int64) { e.ID = id })
	reissueDuplicates(s.data.Investments, &s.ids, func(i *models.Investment, id int64) { i.ID = id })
	reissueDuplicates(s.data.Cryptos, &s.ids, func(c *models.CryptoInvestment, id int64) { c.ID = id })

	sortByDateDesc(s.data.Expenses)
	sortByDateDesc(s.data.Investments)
	sortByDateDesc(s.data.Cryptos)

	if err := s.commit(ctx, prev); err != nil {
		return err
	}

	s.logger.Info().
		Int("expenses", len(data.Expenses)).
		Int("investments", len(data.Investments)).
		Int("cryptos", len(data.Cryptos)).
		Msg("ledger replaced")
	return nil
}

// Clear empties one collection after confirmation
func (s *Store) Clear(ctx context.Context, kind models.Kind, c Confirmer) error {
	if !c.Confirm(PromptClearCollection) {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.clone()
	switch kind {
	case models.KindExpense:
		s.data.Expenses = nil
	case models.KindInvestment:
		s.data.Investments = nil
	case models.KindCrypto:
		s.data.Cryptos = nil
	default:
		return fmt.Errorf("unknown collection %q", kind)
	}
	return s.commit(ctx, prev)
}

// ClearAll erases every collection and removes their keys. It asks twice.
func (s *Store) ClearAll(ctx context.Context, c Confirmer) error {
	if !c.Confirm(PromptClearAll) || !c.Confirm(PromptClearAllAgain) {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.clone()
	for _, kind := range models.Kinds {
		if err := s.kv.Delete(ctx, string(kind)); err != nil {
			s.restore(ctx, prev)
			return fmt.Errorf("failed to clear %s: %w", kind, err)
		}
	}
	s.data = models.Collections{}
	s.logger.Info().Msg("all data cleared")
	return nil
}

// commit persists the current state. On failure the in-memory state returns to prev.
func (s *Store) commit(ctx context.Context, prev models.Collections) error {
	if err := s.persist(ctx, s.data); err != nil {
		s.restore(ctx, prev)
		return err
	}
	return nil
}

// restore puts prev back in memory and tries to write it back over any keys already changed
func (s *Store) restore(ctx context.Context, prev models.Collections) {
	s.data = prev
	if err := s.persist(ctx, prev); err != nil {
		s.logger.Error().Err(err).Msg("failed to restore previous ledger state")
	}
}

func (s *Store) persist(ctx context.Context, data models.Collections) error {
	if err := save(ctx, s.kv, models.KindExpense, data.Expenses); err != nil {
		return err
	}
	if err := save(ctx, s.kv, models.KindInvestment, data.Investments); err != nil {
		return err
	}
	return save(ctx, s.kv, models.KindCrypto, data.Cryptos)
}

func save[T any](ctx context.Context, kv storage.KV, kind models.Kind, entries []T) error {
	if entries == nil {
		entries = []T{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	if err := kv.Set(ctx, string(kind), data); err != nil {
		return fmt.Errorf("failed to save %s: %w", kind, err)
	}
	return nil
}

func sortByDateDesc[T models.Entry](entries []T) {
	slices.SortStableFunc(entries, func(a, b T) int {
		return strings.Compare(b.EntryDate(), a.EntryDate())
	})
}

// reissueDuplicates keeps the first entry of each id and gives later ones a fresh id
func reissueDuplicates[T models.Entry](entries []T, ids *idGenerator, setID func(*T, int64)) {
	seen := make(map[int64]bool, len(entries))
	for i := range entries {
		id := entries[i].EntryID()
		if seen[id] {
			id = ids.next()
			setID(&entries[i], id)
		}
		seen[id] = true
	}
}

func indexOf[T models.Entry](entries []T, id int64) int {
	return slices.IndexFunc(entries, func(e T) bool { return e.EntryID() == id })
}

func without[T models.Entry](entries []T, id int64) []T {
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		if e.EntryID() != id {
			out = append(out, e)
		}
	}
	return out
}
