package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/swayamn72/aegis-sub001/models"
	"github.com/swayamn72/aegis-sub001/repositories"
	"github.com/swayamn72/aegis-sub001/standings"
)

// Broadcaster доставляет события подписчикам турнира. Реализуется standings.Hub.
type Broadcaster interface {
	Publish(tournamentID int, messageType string, payload interface{})
}

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(int, string, interface{}) {}

func broadcasterOrNoop(b Broadcaster) Broadcaster {
	if b == nil {
		return noopBroadcaster{}
	}
	return b
}

// StandingsEvent is the payload of STANDINGS_UPDATED and PHASE_ADVANCED messages.
type StandingsEvent struct {
	TournamentID  int    `json:"tournament_id"`
	Phase         string `json:"phase,omitempty"`
	MatchID       int    `json:"match_id,omitempty"`
	Revision      int64  `json:"revision"`
	TeamsAdvanced int    `json:"teams_advanced,omitempty"`
}

// snapshotLoader собирает документ турнира и матчи в один неизменяемый снимок.
type snapshotLoader struct {
	tournaments repositories.TournamentRepository
	phases      repositories.PhaseRepository
	matches     repositories.MatchRepository
}

// load reads the tournament, its phases and matches. Outside a transaction the three reads run
// concurrently; inside one they share the transaction's connection and run in order.
func (l snapshotLoader) load(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (standings.Snapshot, error) {
	var (
		tournament *models.Tournament
		phases     []models.Phase
		matches    []models.Match
	)
	loadTournament := func(ctx context.Context) (err error) {
		tournament, err = l.tournaments.GetByID(ctx, exec, tournamentID)
		return handleRepositoryError(err)
	}
	loadPhases := func(ctx context.Context) (err error) {
		phases, err = l.phases.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list phases of tournament %d: %w", tournamentID, err)
		}
		return nil
	}
	loadMatches := func(ctx context.Context) (err error) {
		matches, err = l.matches.ListByTournament(ctx, exec, tournamentID, nil)
		if err != nil {
			return fmt.Errorf("failed to list matches of tournament %d: %w", tournamentID, err)
		}
		return nil
	}

	if exec != nil {
		for _, step := range []func(context.Context) error{loadTournament, loadPhases, loadMatches} {
			if err := step(ctx); err != nil {
				return standings.Snapshot{}, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return loadTournament(gctx) })
		g.Go(func() error { return loadPhases(gctx) })
		g.Go(func() error { return loadMatches(gctx) })
		if err := g.Wait(); err != nil {
			return standings.Snapshot{}, err
		}
	}

	tournament.Phases = phases
	return standings.Snapshot{Tournament: tournament, Matches: matches}, nil
}

// handleRepositoryError maps repository sentinels onto service errors.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrPhaseNotFound):
		return ErrPhaseNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrGroupNotFound):
		return ErrNotFound
	case errors.Is(err, repositories.ErrMatchResultInvalid),
		errors.Is(err, repositories.ErrFinalStandingInvalid),
		errors.Is(err, repositories.ErrPhaseTeamInvalid),
		errors.Is(err, repositories.ErrStandingsRowTeams):
		return fmt.Errorf("%w: %v", ErrResultTeamInvalid, err)
	default:
		return err
	}
}

// keyedMutex serializes work per key. Entries are dropped once nobody holds or waits for them.
type keyedMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex[K comparable]() *keyedMutex[K] {
	return &keyedMutex[K]{locks: make(map[K]*refLock)}
}

// Lock blocks until key is free and returns the unlock function.
func (k *keyedMutex[K]) Lock(key K) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &refLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex[K]) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
