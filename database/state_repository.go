package database

import (
	"database/sql"
	"encoding/json"
)

// GetState loads the JSON value stored under key into dest. The second
// return reports whether the key existed.
func (d *Database) GetState(key string, dest interface{}) (bool, error) {
	var raw []byte
	query := `SELECT value FROM app_state WHERE key = $1`

	err := d.DB.QueryRow(query, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Database) SetState(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	query := `INSERT INTO app_state (key, value, updated_at) VALUES ($1, $2, CURRENT_TIMESTAMP)
			  ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = CURRENT_TIMESTAMP`

	_, err = d.DB.Exec(query, key, raw)
	return err
}

func (d *Database) DeleteState(key string) error {
	_, err := d.DB.Exec(`DELETE FROM app_state WHERE key = $1`, key)
	return err
}
