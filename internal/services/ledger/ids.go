package ledger

import "time"

// idGenerator issues millisecond-timestamp ids that never repeat, even when
// several entries are created within the same millisecond
type idGenerator struct {
	now  func() time.Time
	last int64
}

// observe raises the floor so loaded ids are never reissued
func (g *idGenerator) observe(id int64) {
	if id > g.last {
		g.last = id
	}
}

// next returns a fresh id
func (g *idGenerator) next() int64 {
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
