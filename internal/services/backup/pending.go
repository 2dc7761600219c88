package backup

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/models"
)

// ErrUnknownToken is returned for a pending import that never existed or has expired
var ErrUnknownToken = errors.New("unknown or expired import token")

// PendingTTL is how long a parsed import waits for confirmation
const PendingTTL = 10 * time.Minute

// Staged is a parsed import awaiting confirmation
type Staged struct {
	Token   string             `json:"token"`
	Expires time.Time          `json:"expires"`
	Counts  map[string]int     `json:"counts"`
	Data    models.Collections `json:"-"`
}

// Pending holds parsed imports between upload and confirmation
type Pending struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]Staged
}

// NewPending creates an empty pending store using now as its clock
func NewPending(now func() time.Time) *Pending {
	if now == nil {
		now = time.Now
	}
	return &Pending{now: now, items: make(map[string]Staged)}
}

// Stage keeps c under a new token until it is taken, discarded or expires
func (p *Pending) Stage(c models.Collections) Staged {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sweep()
	s := Staged{
		Token:   uuid.NewString(),
		Expires: p.now().Add(PendingTTL),
		Counts: map[string]int{
			string(models.KindExpense):    len(c.Expenses),
			string(models.KindInvestment): len(c.Investments),
			string(models.KindCrypto):     len(c.Cryptos),
		},
		Data: c,
	}
	p.items[s.Token] = s
	return s
}

// Take removes and returns the staged import for token
func (p *Pending) Take(token string) (models.Collections, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sweep()
	s, ok := p.items[token]
	if !ok {
		return models.Collections{}, ErrUnknownToken
	}
	delete(p.items, token)
	return s.Data, nil
}

// Discard drops a staged import. It reports whether the token was live.
func (p *Pending) Discard(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sweep()
	_, ok := p.items[token]
	delete(p.items, token)
	return ok
}

// Len returns the number of live staged imports
func (p *Pending) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sweep()
	return len(p.items)
}

func (p *Pending) sweep() {
	now := p.now()
	for token, s := range p.items {
		if !now.Before(s.Expires) {
			delete(p.items, token)
		}
	}
}
