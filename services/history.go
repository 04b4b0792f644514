package services

import (
	"EvergreenShareAPI/models"
)

// HistoryStore persists the per-post share journal.
type HistoryStore interface {
	GetHistory(postID string) ([]models.HistoryRecord, error)
	SaveHistory(postID string, records []models.HistoryRecord, status models.PostShareState) error
}

// HistoryLog is the append-only, merge-on-conflict journal of share
// attempts. At most one record per (account, service) pair may be in the
// queued state for a given post; a new record targeting an open queued pair
// merges into it instead of appending.
type HistoryLog struct {
	store HistoryStore
}

func NewHistoryLog(store HistoryStore) *HistoryLog {
	return &HistoryLog{store: store}
}

func (h *HistoryLog) Record(postID string, entry models.HistoryRecord) error {
	records, err := h.store.GetHistory(postID)
	if err != nil {
		return err
	}

	merged := false
	for i, item := range records {
		if item.Account == entry.Account && item.Service == entry.Service && item.Status == models.ShareQueued {
			records[i] = mergeRecord(item, entry)
			merged = true
			break
		}
	}
	if !merged {
		records = append(records, entry)
	}

	return h.store.SaveHistory(postID, records, AggregateStatus(records))
}

func (h *HistoryLog) History(postID string) ([]models.HistoryRecord, error) {
	return h.store.GetHistory(postID)
}

func (h *HistoryLog) Status(postID string) (models.PostShareState, error) {
	records, err := h.store.GetHistory(postID)
	if err != nil {
		return "", err
	}
	return AggregateStatus(records), nil
}

// AggregateStatus is done iff no record is still queued.
func AggregateStatus(records []models.HistoryRecord) models.PostShareState {
	for _, item := range records {
		if item.Status == models.ShareQueued {
			return models.ShareStateQueued
		}
	}
	return models.ShareStateDone
}

// mergeRecord overlays the new entry on the open queued one; fields the new
// entry leaves empty keep their previous value.
func mergeRecord(old, entry models.HistoryRecord) models.HistoryRecord {
	out := entry
	if out.Message == "" {
		out.Message = old.Message
	}
	if out.Timestamp == 0 {
		out.Timestamp = old.Timestamp
	}
	return out
}
