package database

import (
	"encoding/json"

	"EvergreenShareAPI/models"
	"EvergreenShareAPI/utils"
)

func (d *Database) CreateAccount(account *models.Account) error {
	creds, err := encodeCredentials(account.Credentials)
	if err != nil {
		return err
	}
	schedule, err := json.Marshal(account.Schedule)
	if err != nil {
		return err
	}
	filters, err := json.Marshal(account.Filters)
	if err != nil {
		return err
	}

	query := `INSERT INTO accounts (id, service, name, credentials, active, posts_per_share, schedule, filters, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = d.DB.Exec(query, account.ID, account.Service, account.Name, creds,
		account.Active, account.PostsPerShare, schedule, filters, account.CreatedAt, account.UpdatedAt)
	return err
}

func (d *Database) UpdateAccount(account *models.Account) error {
	creds, err := encodeCredentials(account.Credentials)
	if err != nil {
		return err
	}
	schedule, err := json.Marshal(account.Schedule)
	if err != nil {
		return err
	}
	filters, err := json.Marshal(account.Filters)
	if err != nil {
		return err
	}

	query := `UPDATE accounts SET service = $1, name = $2, credentials = $3, active = $4,
			  posts_per_share = $5, schedule = $6, filters = $7, updated_at = $8
			  WHERE id = $9`

	_, err = d.DB.Exec(query, account.Service, account.Name, creds, account.Active,
		account.PostsPerShare, schedule, filters, account.UpdatedAt, account.ID)
	return err
}

func (d *Database) GetAccount(id string) (*models.Account, error) {
	query := `SELECT id, service, name, credentials, active, posts_per_share, schedule, filters, created_at, updated_at
			  FROM accounts WHERE id = $1`

	return d.scanAccount(d.DB.QueryRow(query, id))
}

func (d *Database) GetActiveAccounts() ([]*models.Account, error) {
	query := `SELECT id, service, name, credentials, active, posts_per_share, schedule, filters, created_at, updated_at
			  FROM accounts WHERE active = true ORDER BY created_at`

	rows, err := d.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		account, err := d.scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (d *Database) scanAccount(row rowScanner) (*models.Account, error) {
	account := &models.Account{}
	var creds string
	var schedule, filters []byte

	err := row.Scan(&account.ID, &account.Service, &account.Name, &creds,
		&account.Active, &account.PostsPerShare, &schedule, &filters,
		&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}

	account.Credentials, err = decodeCredentials(creds)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(schedule, &account.Schedule); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(filters, &account.Filters); err != nil {
		return nil, err
	}
	return account, nil
}

// Credentials are stored encrypted at rest when CREDENTIALS_ENCRYPTION_KEY
// is configured.
func encodeCredentials(creds models.Credentials) (string, error) {
	if creds == nil {
		creds = models.Credentials{}
	}
	raw, err := json.Marshal(creds)
	if err != nil {
		return "", err
	}
	return utils.EncryptSecret(string(raw))
}

func decodeCredentials(stored string) (models.Credentials, error) {
	if stored == "" {
		return models.Credentials{}, nil
	}
	raw, err := utils.DecryptSecret(stored)
	if err != nil {
		return nil, err
	}
	creds := models.Credentials{}
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, err
	}
	return creds, nil
}
