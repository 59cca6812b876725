package filtration

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Amelie-Schreiber/persistent-homology-of-entanglement/internal/database"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "filtrations.db"),
		Profile: database.ProfileStandard,
		Name:    "results",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewRepository(db, zerolog.New(nil).Level(zerolog.Disabled))
	require.NoError(t, err)
	return repo
}

func sampleSequence(createdAt time.Time) *Sequence {
	return &Sequence{
		ID:        uuid.New().String(),
		CreatedAt: createdAt,
		Qubits:    2,
		Moments:   2,
		Strategy:  "mutual_information",
		LogBase:   "2",
		Frames: []Frame{
			{
				Moment:    0,
				Weights:   [][]float64{{0, 0}, {0, 0}},
				Distances: [][]float64{{0, 2}, {2, 0}},
			},
			{
				Moment:     1,
				Weights:    [][]float64{{0, 2}, {2, 0}},
				Distances:  [][]float64{{0, 0}, {0, 0}},
				MeanWeight: 2,
				MaxWeight:  2,
			},
		},
	}
}

func TestRepository_SaveAndGet(t *testing.T) {
	repo := testRepository(t)
	seq := sampleSequence(time.Now().UTC())

	require.NoError(t, repo.Save(seq))

	got, err := repo.Get(seq.ID)
	require.NoError(t, err)
	assert.Equal(t, seq.ID, got.ID)
	assert.Equal(t, seq.Qubits, got.Qubits)
	assert.Equal(t, seq.Moments, got.Moments)
	assert.Equal(t, seq.Strategy, got.Strategy)
	assert.Equal(t, seq.LogBase, got.LogBase)
	assert.WithinDuration(t, seq.CreatedAt, got.CreatedAt, time.Microsecond)

	require.Len(t, got.Frames, 2)
	assert.Equal(t, seq.Frames[0].Weights, got.Frames[0].Weights)
	assert.Equal(t, seq.Frames[1].Distances, got.Frames[1].Distances)
	assert.InDelta(t, 2, got.Frames[1].MaxWeight, 1e-9)
}

func TestRepository_GetUnknownRun(t *testing.T) {
	repo := testRepository(t)

	_, err := repo.Get(uuid.New().String())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRepository_List(t *testing.T) {
	repo := testRepository(t)

	older := sampleSequence(time.Now().UTC().Add(-time.Hour))
	newer := sampleSequence(time.Now().UTC())
	require.NoError(t, repo.Save(older))
	require.NoError(t, repo.Save(newer))

	runs, err := repo.List(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID, "newest run listed first")
	assert.Equal(t, older.ID, runs[1].ID)

	runs, err = repo.List(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, newer.ID, runs[0].ID)
}

func TestRepository_Delete(t *testing.T) {
	repo := testRepository(t)
	seq := sampleSequence(time.Now().UTC())
	require.NoError(t, repo.Save(seq))

	require.NoError(t, repo.Delete(seq.ID))

	_, err := repo.Get(seq.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)

	err = repo.Delete(seq.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRepository_PurgeOlderThan(t *testing.T) {
	repo := testRepository(t)

	stale := sampleSequence(time.Now().UTC().Add(-48 * time.Hour))
	fresh := sampleSequence(time.Now().UTC())
	require.NoError(t, repo.Save(stale))
	require.NoError(t, repo.Save(fresh))

	purged, err := repo.PurgeOlderThan(time.Now().UTC().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, err = repo.Get(stale.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = repo.Get(fresh.ID)
	assert.NoError(t, err)
}
