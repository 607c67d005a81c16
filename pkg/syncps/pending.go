package syncps

import (
	"time"

	"github.com/pollere/DNMP/pkg/wirename"
)

type pendingEntry struct {
	name    wirename.Name
	expires time.Time
}

// pendingInterestTable remembers sync requests this engine couldn't
// immediately satisfy, keyed by the request name, so a later publish can
// retry them before their deadline passes.
type pendingInterestTable struct {
	entries map[string]pendingEntry
}

func newPendingInterestTable() *pendingInterestTable {
	return &pendingInterestTable{entries: make(map[string]pendingEntry)}
}

func (p *pendingInterestTable) add(name wirename.Name, expires time.Time) {
	p.entries[name.Key()] = pendingEntry{name: name, expires: expires}
}

// sweep visits every pending entry, dropping ones past their deadline or
// that satisfy fires true for, and keeps the rest.
func (p *pendingInterestTable) sweep(now time.Time, satisfy func(wirename.Name) bool) {
	for key, e := range p.entries {
		if now.After(e.expires) || satisfy(e.name) {
			delete(p.entries, key)
		}
	}
}
