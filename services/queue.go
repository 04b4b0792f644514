package services

import (
	"EvergreenShareAPI/models"
)

// Queue maps an account ID to its pending share events, ordered by time.
type Queue map[string][]models.ShareEvent

const (
	queueStateKey        = "share_queue"
	instantQueueStateKey = "instant_share_queue"
	lastSharedStateKey   = "last_post_shared"
)

type accountRefresher interface {
	Refresh()
}

// QueueService owns the durable queue structure. The scheduler fills it; the
// dispatcher drains it. It survives across dispatch passes and is only fully
// rebuilt on the scheduler's cadence.
type QueueService struct {
	state    StateStore
	registry accountRefresher
}

func NewQueueService(state StateStore, registry accountRefresher) *QueueService {
	return &QueueService{state: state, registry: registry}
}

func (q *QueueService) Load() (Queue, error) {
	queue := Queue{}
	if _, err := q.state.GetState(queueStateKey, &queue); err != nil {
		return nil, err
	}
	return queue, nil
}

func (q *QueueService) Save(queue Queue) error {
	return q.state.SetState(queueStateKey, queue)
}

// RemoveFromQueue deletes the event keyed by (t, accountID). Removing a key
// that is not present is a no-op, never an error. With forceRefresh the
// account registry drops its cache first, so account data read after this
// call reflects credentials a provider may have rotated out of band.
func (q *QueueService) RemoveFromQueue(t int64, accountID string, forceRefresh bool) error {
	if forceRefresh && q.registry != nil {
		q.registry.Refresh()
	}

	queue, err := q.Load()
	if err != nil {
		return err
	}

	events, ok := queue[accountID]
	if !ok {
		return nil
	}

	kept := make([]models.ShareEvent, 0, len(events))
	for _, event := range events {
		if event.Time != t {
			kept = append(kept, event)
		}
	}
	if len(kept) == len(events) {
		return nil
	}

	if len(kept) == 0 {
		delete(queue, accountID)
	} else {
		queue[accountID] = kept
	}
	return q.Save(queue)
}

// AppendInstant adds a user-requested share to the instant queue.
func (q *QueueService) AppendInstant(accountID string, event models.InstantShareEvent) error {
	queue := map[string][]models.InstantShareEvent{}
	if _, err := q.state.GetState(instantQueueStateKey, &queue); err != nil {
		return err
	}
	queue[accountID] = append(queue[accountID], event)
	return q.state.SetState(instantQueueStateKey, queue)
}

// DrainInstant returns the pending instant shares and clears them; instant
// events fire exactly once regardless of outcome.
func (q *QueueService) DrainInstant() (map[string][]models.InstantShareEvent, error) {
	queue := map[string][]models.InstantShareEvent{}
	found, err := q.state.GetState(instantQueueStateKey, &queue)
	if err != nil {
		return nil, err
	}
	if !found {
		return queue, nil
	}
	if err := q.state.DeleteState(instantQueueStateKey); err != nil {
		return nil, err
	}
	return queue, nil
}

// LastShared returns the single-slot marker of the most recent successful
// share. It is a coarse duplicate guard, not a correctness guarantee.
func (q *QueueService) LastShared() (string, error) {
	var marker string
	if _, err := q.state.GetState(lastSharedStateKey, &marker); err != nil {
		return "", err
	}
	return marker, nil
}

func (q *QueueService) SetLastShared(marker string) error {
	return q.state.SetState(lastSharedStateKey, marker)
}
