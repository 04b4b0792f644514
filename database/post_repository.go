package database

import (
	"EvergreenShareAPI/models"

	"github.com/lib/pq"
)

func (d *Database) CreatePost(post *models.Post) error {
	query := `INSERT INTO posts (id, title, content, url, post_type, taxonomies, media_path, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := d.DB.Exec(query, post.ID, post.Title, post.Content, post.URL,
		post.PostType, pq.Array(post.Taxonomies), post.MediaPath, post.CreatedAt)
	return err
}

func (d *Database) GetPost(id string) (*models.Post, error) {
	post := &models.Post{}
	var taxonomies []string

	query := `SELECT id, title, content, url, post_type, taxonomies, media_path, created_at
			  FROM posts WHERE id = $1`

	err := d.DB.QueryRow(query, id).Scan(&post.ID, &post.Title, &post.Content,
		&post.URL, &post.PostType, pq.Array(&taxonomies), &post.MediaPath, &post.CreatedAt)
	if err != nil {
		return nil, err
	}

	post.Taxonomies = taxonomies
	return post, nil
}

func (d *Database) GetPosts() ([]*models.Post, error) {
	query := `SELECT id, title, content, url, post_type, taxonomies, media_path, created_at
			  FROM posts ORDER BY created_at DESC`

	rows, err := d.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

// SelectPosts returns posts matching the account's filters, oldest first so
// the least recently published content is recycled before newer content.
// IDs in exclude (configured exclusions plus the account's share buffer) are
// never returned.
func (d *Database) SelectPosts(filters models.PostFilters, exclude []string, limit int) ([]*models.Post, error) {
	query := `SELECT id, title, content, url, post_type, taxonomies, media_path, created_at
			  FROM posts
			  WHERE ($1 = '{}'::text[] OR post_type = ANY($1))
			    AND ($2 = '{}'::text[] OR taxonomies && $2)
			    AND NOT (id = ANY($3))
			    AND ($4 = 0 OR created_at <= CURRENT_TIMESTAMP - make_interval(days => $4))
			    AND ($5 = 0 OR created_at >= CURRENT_TIMESTAMP - make_interval(days => $5))
			  ORDER BY created_at ASC
			  LIMIT $6`

	if exclude == nil {
		exclude = []string{}
	}
	postTypes := filters.PostTypes
	if postTypes == nil {
		postTypes = []string{}
	}
	taxonomies := filters.Taxonomies
	if taxonomies == nil {
		taxonomies = []string{}
	}

	rows, err := d.DB.Query(query, pq.Array(postTypes), pq.Array(taxonomies),
		pq.Array(exclude), filters.MinPostAge, filters.MaxPostAge, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPosts(rows)
}

func scanPosts(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]*models.Post, error) {
	posts := []*models.Post{}
	for rows.Next() {
		post := &models.Post{}
		var taxonomies []string
		if err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.URL,
			&post.PostType, pq.Array(&taxonomies), &post.MediaPath, &post.CreatedAt); err != nil {
			return nil, err
		}
		post.Taxonomies = taxonomies
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
