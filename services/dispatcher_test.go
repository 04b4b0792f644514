package services

import (
	"fmt"
	"testing"
	"time"

	"EvergreenShareAPI/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunShareCycleSharesDueEvent(t *testing.T) {
	account := twitterAccount("tw_1")
	scheduled := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := scheduled.Add(5 * time.Minute)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite", URL: "https://example.com/42"}}
	p.seedQueue("tw_1", models.ShareEvent{Time: scheduled.Unix(), PostIDs: []string{"42"}})

	p.dispatch.RunShareCycle()

	require.Len(t, p.publisher.shared, 1)
	assert.Equal(t, "42", p.publisher.shared[0].PostID)
	assert.Equal(t, "Old favorite", p.publisher.shared[0].Content)

	records := p.histStore.records["42"]
	require.Len(t, records, 1)
	assert.Equal(t, "tw_1", records[0].Account)
	assert.Equal(t, models.Twitter, records[0].Service)
	assert.Equal(t, models.ShareSuccess, records[0].Status)

	buffered, err := p.selector.BufferHasPostID("tw_1", "42")
	require.NoError(t, err)
	assert.True(t, buffered)

	queue, err := p.queue.Load()
	require.NoError(t, err)
	for _, event := range queue["tw_1"] {
		assert.NotEqual(t, scheduled.Unix(), event.Time, "fired event must be removed")
	}

	marker, err := p.queue.LastShared()
	require.NoError(t, err)
	assert.Equal(t, "tw_1_post_id_42", marker)
}

func TestRunShareCycleDiscardsEventsPastDueWindow(t *testing.T) {
	account := twitterAccount("tw_1")
	scheduled := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := scheduled.Add(20 * time.Minute)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}
	p.seedQueue("tw_1", models.ShareEvent{Time: scheduled.Unix(), PostIDs: []string{"42"}})

	p.dispatch.RunShareCycle()

	assert.Empty(t, p.publisher.shared, "stale event must not be dispatched")
	assert.Empty(t, p.histStore.records["42"])

	queue, err := p.queue.Load()
	require.NoError(t, err)
	for _, event := range queue["tw_1"] {
		assert.NotEqual(t, scheduled.Unix(), event.Time, "stale event must still be discarded from the queue")
	}
}

func TestRunShareCycleIgnoresFutureEvents(t *testing.T) {
	account := twitterAccount("tw_1")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}
	future := now.Add(time.Hour).Unix()
	p.seedQueue("tw_1", models.ShareEvent{Time: future, PostIDs: []string{"42"}})

	p.dispatch.RunShareCycle()

	assert.Empty(t, p.publisher.shared)

	queue, err := p.queue.Load()
	require.NoError(t, err)
	found := false
	for _, event := range queue["tw_1"] {
		if event.Time == future {
			found = true
		}
	}
	assert.True(t, found, "future event must stay queued")
}

func TestRunShareCycleRecordsAdapterError(t *testing.T) {
	account := twitterAccount("tw_1")
	scheduled := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := scheduled.Add(time.Minute)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{
		{ID: "42", Title: "First"},
		{ID: "43", Title: "Second"},
	}
	p.publisher.shareErr = fmt.Errorf("rate limited")
	p.seedQueue("tw_1", models.ShareEvent{Time: scheduled.Unix(), PostIDs: []string{"42", "43"}})

	// Must not panic or abort; both posts are attempted.
	p.dispatch.RunShareCycle()

	assert.Len(t, p.publisher.shared, 2, "a failing post must not abort its siblings")

	for _, postID := range []string{"42", "43"} {
		records := p.histStore.records[postID]
		require.Len(t, records, 1)
		assert.Equal(t, models.ShareError, records[0].Status)
		assert.Contains(t, records[0].Message, "rate limited")
	}
}

func TestRunShareCycleSkipsBufferedPost(t *testing.T) {
	account := twitterAccount("tw_1")
	scheduled := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := scheduled.Add(time.Minute)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}
	require.NoError(t, p.selector.UpdateBuffer("tw_1", "42"))
	p.seedQueue("tw_1", models.ShareEvent{Time: scheduled.Unix(), PostIDs: []string{"42"}})

	p.dispatch.RunShareCycle()

	assert.Empty(t, p.publisher.shared, "buffered post must not be shared again")
	assert.Empty(t, p.histStore.records["42"])
}

func TestRunShareCycleSkipsLastSharedMarker(t *testing.T) {
	account := twitterAccount("tw_1")
	scheduled := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := scheduled.Add(time.Minute)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}
	require.NoError(t, p.queue.SetLastShared("tw_1_post_id_42"))
	p.seedQueue("tw_1", models.ShareEvent{Time: scheduled.Unix(), PostIDs: []string{"42"}})

	p.dispatch.RunShareCycle()

	assert.Empty(t, p.publisher.shared, "marker match must suppress the duplicate share")
}

func TestRunShareCycleMarkerIgnoredInDebugMode(t *testing.T) {
	account := twitterAccount("tw_1")
	scheduled := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := scheduled.Add(time.Minute)

	p := newPipeline(now, account)
	p.dispatch.debug = true
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}
	require.NoError(t, p.queue.SetLastShared("tw_1_post_id_42"))
	p.seedQueue("tw_1", models.ShareEvent{Time: scheduled.Unix(), PostIDs: []string{"42"}})

	p.dispatch.RunShareCycle()

	assert.Len(t, p.publisher.shared, 1)
}

func TestRunShareCycleSkipsMissingAccount(t *testing.T) {
	account := twitterAccount("tw_1")
	scheduled := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := scheduled.Add(time.Minute)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}
	p.seedQueue("tw_1", models.ShareEvent{Time: scheduled.Unix(), PostIDs: []string{"42"}})

	// Account disappears after the queue was built.
	delete(p.source.accounts, "tw_1")

	p.dispatch.RunShareCycle()

	assert.Empty(t, p.publisher.shared)
	assert.Empty(t, p.histStore.records["42"])
}

func TestRunShareCycleSkipsMalformedEntries(t *testing.T) {
	account := twitterAccount("tw_1")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}
	p.seedQueue("tw_1",
		models.ShareEvent{Time: 0, PostIDs: []string{"42"}},
		models.ShareEvent{Time: now.Unix(), PostIDs: nil},
	)

	p.dispatch.RunShareCycle()

	assert.Empty(t, p.publisher.shared)
}

func TestRunShareCycleForcesAccountRefreshForGoogleBusinessFamily(t *testing.T) {
	tw := twitterAccount("tw_1")
	gmb := &models.Account{
		ID:          "gmb_1",
		Service:     models.GoogleBusiness,
		Name:        "store",
		Credentials: models.Credentials{"access_token": "t", "location_name": "accounts/1/locations/2"},
		Active:      true,
		Schedule:    models.Schedule{Type: models.ScheduleRecurring, IntervalHours: 8},
	}
	scheduled := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := scheduled.Add(time.Minute)

	p := newPipeline(now, tw, gmb)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}
	p.seedQueue("tw_1", models.ShareEvent{Time: scheduled.Unix(), PostIDs: []string{"42"}})
	p.seedQueue("gmb_1", models.ShareEvent{Time: scheduled.Add(time.Hour).Unix(), PostIDs: []string{"42"}})

	// Prime the registry cache, then count re-reads caused by the forced
	// refresh on the twitter event removal.
	_, err := p.registry.FindAccount("tw_1")
	require.NoError(t, err)
	before := p.source.getCalls

	p.dispatch.RunShareCycle()

	assert.Greater(t, p.source.getCalls, before,
		"removing a non-gmb event while a gmb account is queued must force account re-reads")
}

func TestRequestPublishNowWritesQueuedHistory(t *testing.T) {
	account := twitterAccount("tw_1")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}

	accepted, err := p.dispatch.RequestPublishNow("42", map[string]string{
		"tw_1":    "custom text",
		"unknown": "",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"tw_1"}, accepted, "accounts outside the active set are dropped")

	records := p.histStore.records["42"]
	require.Len(t, records, 1)
	assert.Equal(t, models.ShareQueued, records[0].Status)
	assert.Equal(t, models.ShareStateQueued, p.histStore.statuses["42"])
}

func TestRequestPublishNowSuppressesRapidRepeats(t *testing.T) {
	account := twitterAccount("tw_1")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}

	accepted, err := p.dispatch.RequestPublishNow("42", map[string]string{"tw_1": ""})
	require.NoError(t, err)
	require.Len(t, accepted, 1)

	accepted, err = p.dispatch.RequestPublishNow("42", map[string]string{"tw_1": ""})
	require.NoError(t, err)
	assert.Empty(t, accepted, "a repeat request within the guard window is ignored")

	// After the guard expires the request is accepted again.
	p.clock.now = now.Add(2 * time.Minute)
	accepted, err = p.dispatch.RequestPublishNow("42", map[string]string{"tw_1": ""})
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
}

func TestRunPublishNowTransitionsQueuedToSuccess(t *testing.T) {
	account := twitterAccount("tw_1")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}

	_, err := p.dispatch.RequestPublishNow("42", map[string]string{"tw_1": "custom text"})
	require.NoError(t, err)

	p.dispatch.RunPublishNow()

	require.Len(t, p.publisher.shared, 1)
	assert.Equal(t, "custom text", p.publisher.shared[0].Content, "custom message overrides the prepared content")

	records := p.histStore.records["42"]
	require.Len(t, records, 1, "the queued record is merged, not duplicated")
	assert.Equal(t, models.ShareSuccess, records[0].Status)
	assert.Equal(t, models.ShareStateDone, p.histStore.statuses["42"])

	// The instant queue fires exactly once.
	p.publisher.shared = nil
	p.dispatch.RunPublishNow()
	assert.Empty(t, p.publisher.shared)
}

func TestRunPublishNowRecordsErrorAndContinues(t *testing.T) {
	account := twitterAccount("tw_1")
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}
	p.publisher.shareErr = fmt.Errorf("boom")

	_, err := p.dispatch.RequestPublishNow("42", map[string]string{"tw_1": ""})
	require.NoError(t, err)

	p.dispatch.RunPublishNow()

	records := p.histStore.records["42"]
	require.Len(t, records, 1)
	assert.Equal(t, models.ShareError, records[0].Status)
	assert.Contains(t, records[0].Message, "boom")
	assert.Equal(t, models.ShareStateDone, p.histStore.statuses["42"])
}

func TestTransformHookRunsBeforeShare(t *testing.T) {
	account := twitterAccount("tw_1")
	scheduled := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := scheduled.Add(time.Minute)

	p := newPipeline(now, account)
	p.posts.posts = []*models.Post{{ID: "42", Title: "Old favorite"}}
	p.seedQueue("tw_1", models.ShareEvent{Time: scheduled.Unix(), PostIDs: []string{"42"}})

	p.dispatch.SetTransform(func(payload *models.SharePayload) *models.SharePayload {
		payload.Content = payload.Content + " #evergreen"
		return payload
	})

	p.dispatch.RunShareCycle()

	require.Len(t, p.publisher.shared, 1)
	assert.Equal(t, "Old favorite #evergreen", p.publisher.shared[0].Content)
}
