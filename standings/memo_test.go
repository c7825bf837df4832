package standings

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swayamn72/aegis-sub001/models"
)

func TestMemo_GetPut(t *testing.T) {
	memo := NewMemo()
	key := MemoKey{TournamentID: 1, Scope: PhaseScope("Groups", Named("Group A")), Revision: 4}

	_, ok := memo.Get(key)
	assert.False(t, ok)

	memo.Put(key, Result{Source: SourceLive, Rows: []models.StandingsRow{{TeamID: 1, Position: 1}}})
	got, ok := memo.Get(key)
	require.True(t, ok)
	assert.Equal(t, SourceLive, got.Source)

	// другие ревизии и скоупы - другие ключи
	_, ok = memo.Get(MemoKey{TournamentID: 1, Scope: key.Scope, Revision: 5})
	assert.False(t, ok)
	_, ok = memo.Get(MemoKey{TournamentID: 1, Scope: PhaseScope("Groups", Overall()), Revision: 4})
	assert.False(t, ok)
}

func TestMemo_ReturnsCopies(t *testing.T) {
	memo := NewMemo()
	key := MemoKey{TournamentID: 1, Scope: TournamentWide(), Revision: 1}
	rows := []models.StandingsRow{{TeamID: 1, TeamName: "A"}}
	memo.Put(key, Result{Source: SourceLive, Rows: rows})

	rows[0].TeamName = "changed"
	got, _ := memo.Get(key)
	got.Rows[0].TeamName = "changed again"

	again, _ := memo.Get(key)
	assert.Equal(t, "A", again.Rows[0].TeamName)
}

func TestMemo_PutEvictsOlderRevisions(t *testing.T) {
	memo := NewMemo()
	memo.Put(MemoKey{TournamentID: 1, Scope: TournamentWide(), Revision: 1}, Result{})
	memo.Put(MemoKey{TournamentID: 1, Scope: PhaseScope("Groups", Overall()), Revision: 1}, Result{})
	memo.Put(MemoKey{TournamentID: 2, Scope: TournamentWide(), Revision: 1}, Result{})
	require.Equal(t, 3, memo.Len())

	memo.Put(MemoKey{TournamentID: 1, Scope: TournamentWide(), Revision: 2}, Result{})
	assert.Equal(t, 2, memo.Len())

	memo.Invalidate(2)
	assert.Equal(t, 1, memo.Len())
}

func TestMemo_ConcurrentAccess(t *testing.T) {
	memo := NewMemo()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(rev int64) {
			defer wg.Done()
			key := MemoKey{TournamentID: 1, Scope: TournamentWide(), Revision: rev}
			memo.Put(key, Result{Source: SourceLive})
			memo.Get(key)
		}(int64(i % 4))
	}
	wg.Wait()
	assert.LessOrEqual(t, memo.Len(), 4)
}
