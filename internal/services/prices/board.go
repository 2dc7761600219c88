package prices

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/services/currency"
)

const (
	// ErrorMarker replaces every price after a failed fetch
	ErrorMarker = "Erro"
	// UpdatedLayout formats the last successful update
	UpdatedLayout = "02/01/2006 15:04:05"
)

// Quote is the displayed state of one asset
type Quote struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Text  string          `json:"text"`
	Error bool            `json:"error"`
}

// State is a copy of the board
type State struct {
	Quotes    []Quote   `json:"quotes"`
	Updated   string    `json:"updated"`
	UpdatedAt time.Time `json:"updatedAt"`
	LastError string    `json:"lastError,omitempty"`
}

// Board holds the most recent quotes. It never touches ledger data.
type Board struct {
	mu    sync.RWMutex
	state State
}

// NewBoard creates a board listing assets with no price yet
func NewBoard(assets []Asset) *Board {
	b := &Board{}
	for _, a := range assets {
		b.state.Quotes = append(b.state.Quotes, Quote{ID: a.ID, Name: a.Name, Text: "-"})
	}
	return b
}

// Update records a successful fetch taken at now
func (b *Board) Update(prices map[string]decimal.Decimal, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, q := range b.state.Quotes {
		price, ok := prices[q.ID]
		if !ok {
			continue
		}
		b.state.Quotes[i] = Quote{ID: q.ID, Name: q.Name, Price: price, Text: currency.Format(price)}
	}
	b.state.UpdatedAt = now
	b.state.Updated = "Atualizado: " + now.Format(UpdatedLayout)
	b.state.LastError = ""
}

// Fail marks every quote with the error marker
func (b *Board) Fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, q := range b.state.Quotes {
		b.state.Quotes[i] = Quote{ID: q.ID, Name: q.Name, Text: ErrorMarker, Error: true}
	}
	if err != nil {
		b.state.LastError = err.Error()
	}
}

// State returns a copy of the board
func (b *Board) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := b.state
	s.Quotes = append([]Quote(nil), b.state.Quotes...)
	return s
}
