package services

import (
	"testing"

	"EvergreenShareAPI/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveFromQueueIsIdempotent(t *testing.T) {
	state := newMemoryStore()
	queue := NewQueueService(state, nil)

	require.NoError(t, queue.Save(Queue{
		"tw_1": {
			{Time: 100, PostIDs: []string{"a"}},
			{Time: 200, PostIDs: []string{"b"}},
		},
	}))

	require.NoError(t, queue.RemoveFromQueue(100, "tw_1", false))

	loaded, err := queue.Load()
	require.NoError(t, err)
	require.Len(t, loaded["tw_1"], 1)
	assert.Equal(t, int64(200), loaded["tw_1"][0].Time)

	// Second removal of the same key is a no-op.
	require.NoError(t, queue.RemoveFromQueue(100, "tw_1", false))

	loaded, err = queue.Load()
	require.NoError(t, err)
	assert.Len(t, loaded["tw_1"], 1, "queue length unchanged by repeated removal")
}

func TestRemoveFromQueueUnknownAccountIsNoOp(t *testing.T) {
	state := newMemoryStore()
	queue := NewQueueService(state, nil)

	require.NoError(t, queue.RemoveFromQueue(100, "nobody", false))

	loaded, err := queue.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestRemoveFromQueueDropsEmptyAccountKey(t *testing.T) {
	state := newMemoryStore()
	queue := NewQueueService(state, nil)

	require.NoError(t, queue.Save(Queue{
		"tw_1": {{Time: 100, PostIDs: []string{"a"}}},
	}))
	require.NoError(t, queue.RemoveFromQueue(100, "tw_1", false))

	loaded, err := queue.Load()
	require.NoError(t, err)
	_, ok := loaded["tw_1"]
	assert.False(t, ok)
}

func TestRemoveFromQueueForceRefreshReloadsAccounts(t *testing.T) {
	state := newMemoryStore()
	refresher := &countingRefresher{}
	queue := NewQueueService(state, refresher)

	require.NoError(t, queue.RemoveFromQueue(100, "tw_1", false))
	assert.Equal(t, 0, refresher.calls)

	require.NoError(t, queue.RemoveFromQueue(100, "tw_1", true))
	assert.Equal(t, 1, refresher.calls, "forced removal reloads account data even for absent keys")
}

func TestInstantQueueAppendAndDrain(t *testing.T) {
	state := newMemoryStore()
	queue := NewQueueService(state, nil)

	require.NoError(t, queue.AppendInstant("tw_1", models.InstantShareEvent{PostIDs: []string{"42"}}))
	require.NoError(t, queue.AppendInstant("tw_1", models.InstantShareEvent{PostIDs: []string{"43"}, CustomMessage: "hi"}))

	drained, err := queue.DrainInstant()
	require.NoError(t, err)
	require.Len(t, drained["tw_1"], 2)
	assert.Equal(t, "hi", drained["tw_1"][1].CustomMessage)

	// Draining clears the queue.
	drained, err = queue.DrainInstant()
	require.NoError(t, err)
	assert.Empty(t, drained)
}

func TestLastSharedMarkerRoundTrip(t *testing.T) {
	state := newMemoryStore()
	queue := NewQueueService(state, nil)

	marker, err := queue.LastShared()
	require.NoError(t, err)
	assert.Empty(t, marker)

	require.NoError(t, queue.SetLastShared("tw_1_post_id_42"))

	marker, err = queue.LastShared()
	require.NoError(t, err)
	assert.Equal(t, "tw_1_post_id_42", marker)
}
