package standings

import "sync"

// MemoKey identifies one computation: the same scope over the same data revision gives the same table.
type MemoKey struct {
	TournamentID int
	Scope        Scope
	Revision     int64
}

// Memo is a caller-owned cache of computed tables. Safe for concurrent use.
type Memo struct {
	mu      sync.Mutex
	entries map[MemoKey]Result
}

func NewMemo() *Memo {
	return &Memo{entries: make(map[MemoKey]Result)}
}

func (m *Memo) Get(key MemoKey) (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.entries[key]
	if !ok {
		return Result{}, false
	}
	return cloneResult(res), true
}

// Put stores res and drops entries of the same tournament computed at an older revision.
func (m *Memo) Put(key MemoKey, res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if k.TournamentID == key.TournamentID && k.Revision < key.Revision {
			delete(m.entries, k)
		}
	}
	m.entries[key] = cloneResult(res)
}

// Invalidate drops every cached table of a tournament.
func (m *Memo) Invalidate(tournamentID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if k.TournamentID == tournamentID {
			delete(m.entries, k)
		}
	}
}

func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func cloneResult(res Result) Result {
	out := Result{Source: res.Source}
	if res.Rows != nil {
		out.Rows = append(out.Rows[:0:0], res.Rows...)
	}
	return out
}
