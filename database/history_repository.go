package database

import (
	"database/sql"
	"encoding/json"

	"EvergreenShareAPI/models"
)

func (d *Database) GetHistory(postID string) ([]models.HistoryRecord, error) {
	var raw []byte
	query := `SELECT records FROM post_history WHERE post_id = $1`

	err := d.DB.QueryRow(query, postID).Scan(&raw)
	if err == sql.ErrNoRows {
		return []models.HistoryRecord{}, nil
	}
	if err != nil {
		return nil, err
	}

	records := []models.HistoryRecord{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (d *Database) SaveHistory(postID string, records []models.HistoryRecord, status models.PostShareState) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}

	query := `INSERT INTO post_history (post_id, records, status, updated_at)
			  VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
			  ON CONFLICT (post_id) DO UPDATE SET records = $2, status = $3, updated_at = CURRENT_TIMESTAMP`

	_, err = d.DB.Exec(query, postID, raw, status)
	return err
}

func (d *Database) GetShareStatus(postID string) (models.PostShareState, error) {
	var status models.PostShareState
	query := `SELECT status FROM post_history WHERE post_id = $1`

	err := d.DB.QueryRow(query, postID).Scan(&status)
	if err == sql.ErrNoRows {
		return models.ShareStateDone, nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}
