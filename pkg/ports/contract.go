package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractSession builds a session mid-run: some flow, a labeled path, a
// selected node and two history entries.
func contractSession(t *testing.T, id string) *domain.Session {
	t.Helper()
	net, err := domain.NewNetwork(4, []domain.EdgeSpec{
		{From: 0, To: 1, Capacity: 3},
		{From: 1, To: 3, Capacity: 2},
		{From: 0, To: 2, Capacity: 1},
		{From: 2, To: 3, Capacity: 4},
	})
	require.NoError(t, err)

	start := domain.NewSnapshot(net)
	mid := start.Clone()
	mid.State.Labeled = []int{0, 1, 2}
	mid.State.Scanned = []int{0}
	mid.State.Predecessor = map[int]int{1: 0, 2: 0}
	mid.State.StepCounter = 1

	cur := mid.Clone()
	cur.Network.Edges[0].Flow = 2
	cur.Network.Edges[1].Flow = 2
	node := 1
	cur.State.CurrentNode = &node
	cur.State.StepCounter = 2

	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Session{
		ID:        id,
		Config:    domain.Config{Granularity: domain.GranularitySelect, Labeling: domain.LabelingForward, HistoryLimit: 10},
		Current:   cur,
		History:   []domain.Snapshot{start, mid},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := contractSession(t, sessionID)

		err := store.Save(ctx, sessionID, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sess.ID, loaded.ID)
		assert.Equal(t, sess.Config, loaded.Config)
		assert.Equal(t, sess.Current, loaded.Current)
		assert.Equal(t, sess.History, loaded.History)
		assert.True(t, sess.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Load returns an independent copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Current.Network.Edges[0].Flow = 0
		loaded.History = nil

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), again.Current.Network.Edges[0].Flow)
		assert.Len(t, again.History, 2)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, contractSession(t, sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, contractSession(t, id1)))
		require.NoError(t, store.Save(ctx, id2, contractSession(t, id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
