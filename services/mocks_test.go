package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/swayamn72/aegis-sub001/models"
	"github.com/swayamn72/aegis-sub001/repositories"
)

var errNotInFake = errors.New("fake executor does not run SQL")

// fakeExec marks "inside a transaction" for code that checks exec != nil.
type fakeExec struct{}

func (fakeExec) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNotInFake
}
func (fakeExec) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNotInFake
}
func (fakeExec) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }

type memState struct {
	Tournaments map[int]*models.Tournament
	Phases      map[int][]models.Phase
	Matches     []models.Match
}

// MockStore - in-memory реализация репозиториев и транзакций с внедрением ошибок.
// Транзакция работает на копии состояния и откатывается при ошибке.
type MockStore struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	state *memState

	// Error injection for testing error paths
	GetRevisionError   error
	AddTeamsError      error
	UpdateStatusError  error
	BumpRevisionError  error
	UpsertResultsError error
	ListMatchesError   error
	ReplaceFinalError  error

	TxCount     int
	LoadCount   int
	AddTeamsLog [][]int
}

func NewMockStore() *MockStore {
	return &MockStore{state: &memState{
		Tournaments: make(map[int]*models.Tournament),
		Phases:      make(map[int][]models.Phase),
	}}
}

func cloneState(s *memState) *memState {
	raw, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	out := &memState{}
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	if out.Tournaments == nil {
		out.Tournaments = make(map[int]*models.Tournament)
	}
	if out.Phases == nil {
		out.Phases = make(map[int][]models.Phase)
	}
	return out
}

// AddTournament stores t with its phases split out the way the phase table holds them.
func (m *MockStore) AddTournament(t *models.Tournament) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *t
	phases := c.Phases
	c.Phases = nil
	m.state.Tournaments[t.ID] = &c
	m.state.Phases[t.ID] = phases
}

func (m *MockStore) AddMatches(matches ...models.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Matches = append(m.state.Matches, matches...)
}

func (m *MockStore) Phase(tournamentID int, name string) models.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.state.Phases[tournamentID] {
		if p.Name == name {
			return p
		}
	}
	return models.Phase{}
}

func (m *MockStore) Revision(tournamentID int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Tournaments[tournamentID].ResultsRevision
}

func (m *MockStore) FinalStandings(tournamentID int) []models.FinalStanding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Tournaments[tournamentID].FinalStandings
}

func (m *MockStore) Match(id int) models.Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mt := range m.state.Matches {
		if mt.ID == id {
			return mt
		}
	}
	return models.Match{}
}

func (m *MockStore) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	m.TxCount++
	backup := cloneState(m.state)
	m.mu.Unlock()

	if err := fn(fakeExec{}); err != nil {
		m.mu.Lock()
		m.state = backup
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MockStore) Tournaments() repositories.TournamentRepository { return mockTournaments{m} }
func (m *MockStore) Phases() repositories.PhaseRepository           { return mockPhases{m} }
func (m *MockStore) Matches() repositories.MatchRepository          { return mockMatches{m} }

type mockTournaments struct{ m *MockStore }

func (r mockTournaments) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.LoadCount++
	t, ok := r.m.state.Tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return cloneState(&memState{Tournaments: map[int]*models.Tournament{id: t}}).Tournaments[id], nil
}

func (r mockTournaments) GetRevision(_ context.Context, _ repositories.SQLExecutor, id int) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.GetRevisionError != nil {
		return 0, r.m.GetRevisionError
	}
	t, ok := r.m.state.Tournaments[id]
	if !ok {
		return 0, repositories.ErrTournamentNotFound
	}
	return t.ResultsRevision, nil
}

func (r mockTournaments) BumpRevision(_ context.Context, _ repositories.SQLExecutor, id int) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.BumpRevisionError != nil {
		return 0, r.m.BumpRevisionError
	}
	t, ok := r.m.state.Tournaments[id]
	if !ok {
		return 0, repositories.ErrTournamentNotFound
	}
	t.ResultsRevision++
	return t.ResultsRevision, nil
}

func (r mockTournaments) ReplaceFinalStandings(_ context.Context, _ repositories.SQLExecutor, id int, standings []models.FinalStanding) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.ReplaceFinalError != nil {
		return r.m.ReplaceFinalError
	}
	t, ok := r.m.state.Tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.FinalStandings = append([]models.FinalStanding(nil), standings...)
	return nil
}

type mockPhases struct{ m *MockStore }

func (r mockPhases) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]models.Phase, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return cloneState(&memState{Phases: map[int][]models.Phase{tournamentID: r.m.state.Phases[tournamentID]}}).Phases[tournamentID], nil
}

func (r mockPhases) find(phaseID int) *models.Phase {
	for tid := range r.m.state.Phases {
		for i := range r.m.state.Phases[tid] {
			if r.m.state.Phases[tid][i].ID == phaseID {
				return &r.m.state.Phases[tid][i]
			}
		}
	}
	return nil
}

func (r mockPhases) LockByName(_ context.Context, _ repositories.SQLExecutor, tournamentID int, name string) (*models.Phase, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, p := range r.m.state.Phases[tournamentID] {
		if p.Name == name {
			return &models.Phase{ID: p.ID, TournamentID: tournamentID, Name: p.Name, Status: p.Status}, nil
		}
	}
	return nil, repositories.ErrPhaseNotFound
}

func (r mockPhases) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, phaseID int, status models.PhaseStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.UpdateStatusError != nil {
		return r.m.UpdateStatusError
	}
	p := r.find(phaseID)
	if p == nil {
		return repositories.ErrPhaseNotFound
	}
	p.Status = status
	return nil
}

func (r mockPhases) AddTeams(_ context.Context, _ repositories.SQLExecutor, phaseID int, teamIDs []int) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.AddTeamsError != nil {
		return 0, r.m.AddTeamsError
	}
	p := r.find(phaseID)
	if p == nil {
		return 0, repositories.ErrPhaseTeamInvalid
	}
	r.m.AddTeamsLog = append(r.m.AddTeamsLog, append([]int(nil), teamIDs...))
	var inserted int64
	for _, id := range teamIDs {
		exists := false
		for _, ref := range p.Teams {
			if ref.TeamID == id {
				exists = true
				break
			}
		}
		if !exists {
			p.Teams = append(p.Teams, models.TeamRef{TeamID: id})
			inserted++
		}
	}
	return inserted, nil
}

func (r mockPhases) EnsureGroup(_ context.Context, _ repositories.SQLExecutor, phaseID int, name string) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p := r.find(phaseID)
	if p == nil {
		return 0, repositories.ErrPhaseNotFound
	}
	for _, g := range p.Groups {
		if g.Name == name {
			return g.ID, nil
		}
	}
	id := phaseID*100 + len(p.Groups) + 1
	p.Groups = append(p.Groups, models.Group{ID: id, PhaseID: phaseID, Name: name})
	return id, nil
}

func (r mockPhases) ReplaceGroupStandings(_ context.Context, _ repositories.SQLExecutor, groupID int, rows []models.StandingsRow) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for tid := range r.m.state.Phases {
		for i := range r.m.state.Phases[tid] {
			p := &r.m.state.Phases[tid][i]
			for j := range p.Groups {
				if p.Groups[j].ID == groupID {
					p.Groups[j].Standings = append([]models.StandingsRow(nil), rows...)
					return nil
				}
			}
		}
	}
	return repositories.ErrGroupNotFound
}

func (r mockPhases) ClearGroupStandings(_ context.Context, _ repositories.SQLExecutor, tournamentID int, phaseName string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range r.m.state.Phases[tournamentID] {
		p := &r.m.state.Phases[tournamentID][i]
		if p.Name != phaseName {
			continue
		}
		for j := range p.Groups {
			p.Groups[j].Standings = nil
		}
	}
	return nil
}

type mockMatches struct{ m *MockStore }

// ListByTournament, как и настоящий драйвер, не выполняет запрос с отменённым контекстом.
func (r mockMatches) ListByTournament(ctx context.Context, _ repositories.SQLExecutor, tournamentID int, phaseName *string) ([]models.Match, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.ListMatchesError != nil {
		return nil, r.m.ListMatchesError
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []models.Match
	for _, mt := range r.m.state.Matches {
		if mt.TournamentID != tournamentID {
			continue
		}
		if phaseName != nil && mt.TournamentPhase != *phaseName {
			continue
		}
		out = append(out, mt)
	}
	return cloneState(&memState{Matches: out}).Matches, nil
}

func (r mockMatches) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByIDForUpdate(ctx, exec, id)
}

func (r mockMatches) GetByIDForUpdate(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, mt := range r.m.state.Matches {
		if mt.ID == id {
			c := cloneState(&memState{Matches: []models.Match{mt}}).Matches[0]
			return &c, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r mockMatches) UpsertResults(_ context.Context, _ repositories.SQLExecutor, matchID int, results []models.MatchTeamResult) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.UpsertResultsError != nil {
		return r.m.UpsertResultsError
	}
	for i := range r.m.state.Matches {
		mt := &r.m.state.Matches[i]
		if mt.ID != matchID {
			continue
		}
		for _, res := range results {
			if existing, ok := mt.ResultFor(res.TeamID); ok {
				*existing = res
			} else {
				mt.ParticipatingTeams = append(mt.ParticipatingTeams, res)
			}
		}
		return nil
	}
	return repositories.ErrMatchNotFound
}

func (r mockMatches) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.MatchStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for i := range r.m.state.Matches {
		if r.m.state.Matches[i].ID == id {
			r.m.state.Matches[i].Status = status
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

type publishedEvent struct {
	TournamentID int
	Type         string
	Payload      interface{}
}

type mockBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *mockBroadcaster) Publish(tournamentID int, messageType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{TournamentID: tournamentID, Type: messageType, Payload: payload})
}

func (b *mockBroadcaster) Events() []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]publishedEvent(nil), b.events...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
