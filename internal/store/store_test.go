package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/wordmonster/internal/model"
	"github.com/verte-zerg/wordmonster/internal/progress"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "wordmonster.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestMissingRecords(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.LoadMastery(ctx)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	_, err = st.LoadWrongCounts(ctx)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRecordRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveMastery(ctx, []string{"cat", "dog"}))
	require.NoError(t, st.SaveWrongCounts(ctx, map[string]int{"cat": 2}))
	require.NoError(t, st.SaveMastery(ctx, []string{"dog"}))

	keys, err := st.LoadMastery(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog"}, keys)

	counts, err := st.LoadWrongCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"cat": 2}, counts)
}

func TestSaveNilWritesEmptyPayload(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.SaveMastery(ctx, nil))
	require.NoError(t, st.SaveWrongCounts(ctx, nil))

	var payload string
	require.NoError(t, st.db.QueryRow(`SELECT payload FROM progress_records WHERE name = ?`, RecordMastery).Scan(&payload))
	assert.Equal(t, "[]", payload)
	require.NoError(t, st.db.QueryRow(`SELECT payload FROM progress_records WHERE name = ?`, RecordWrongCounts).Scan(&payload))
	assert.Equal(t, "{}", payload)
}

func TestMalformedPayloads(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	_, err := st.db.Exec(`INSERT INTO progress_records (name, payload, updated_at) VALUES (?, ?, ?), (?, ?, ?)`,
		RecordMastery, "{not json", "x",
		RecordWrongCounts, `{"cat":-3}`, "x")
	require.NoError(t, err)

	_, err = st.LoadMastery(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed payload")

	_, err = st.LoadWrongCounts(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative count")
}

func TestProgressStoreDegradesOnCorruptDatabaseRecords(t *testing.T) {
	st := openTestStore(t)
	_, err := st.db.Exec(`INSERT INTO progress_records (name, payload, updated_at) VALUES (?, ?, ?)`,
		RecordMastery, `"cat"`, "x")
	require.NoError(t, err)
	require.NoError(t, st.SaveWrongCounts(context.Background(), map[string]int{"cat": 1}))

	ps := progress.Load(context.Background(), st, zerolog.Nop())
	mastery, wrong := ps.Snapshot()
	assert.Empty(t, mastery)
	assert.Equal(t, model.WrongCounts{"cat": 1}, wrong)
}

func TestProgressStoreWritesThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordmonster.db")
	st, err := Open(path)
	require.NoError(t, err)

	ps := progress.Load(context.Background(), st, zerolog.Nop())
	cat := model.WordPair{EN: "cat", ZH: "猫"}
	ps.MarkMastered(cat)
	ps.IncrementWrong(cat)
	ps.IncrementWrong(cat)
	require.NoError(t, st.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	ps = progress.Load(context.Background(), reopened, zerolog.Nop())
	assert.True(t, ps.IsMastered("cat"))
	assert.Equal(t, 2, ps.WrongCount("cat"))

	ps.ResetMastery()
	keys, err := reopened.LoadMastery(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
	counts, err := reopened.LoadWrongCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"cat": 2}, counts)
}

func TestRunsHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	modes := []model.Mode{model.ModeNormal, model.ModeWrong, model.ModeNormal}
	for i, mode := range modes {
		_, err := st.InsertRun(ctx, model.RunRecord{
			RunID:         "run-" + string(rune('a'+i)),
			Mode:          mode,
			StartedAt:     base.Add(time.Duration(i) * time.Hour),
			EndedAt:       base.Add(time.Duration(i)*time.Hour + 5*time.Minute),
			PoolSize:      10,
			Score:         i + 3,
			HeartsLeft:    3 - i,
			GameOver:      i == 2,
			MasteredAfter: 20 + i,
		})
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, model.HistoryConfig{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-a", runs[0].RunID)
	assert.Equal(t, base, runs[0].StartedAt.UTC())
	assert.True(t, runs[2].GameOver)
	assert.Equal(t, 22, runs[2].MasteredAfter)

	normal := model.ModeNormal
	runs, err = st.ListRuns(ctx, model.HistoryConfig{Mode: &normal})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	since := base.Add(90 * time.Minute)
	runs, err = st.ListRuns(ctx, model.HistoryConfig{Since: &since})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-c", runs[0].RunID)

	runs, err = st.ListRuns(ctx, model.HistoryConfig{Last: 2})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].RunID)
}
