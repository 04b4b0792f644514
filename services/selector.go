package services

import (
	"EvergreenShareAPI/models"
)

// PostSource is the content pool the selector draws from.
type PostSource interface {
	GetPost(id string) (*models.Post, error)
	SelectPosts(filters models.PostFilters, exclude []string, limit int) ([]*models.Post, error)
}

const bufferKeyPrefix = "share_buffer_"

// PostSelector yields eligible posts for an account and keeps the per-account
// share buffer: a short-term memory of recently shared post IDs that must not
// be re-shared until evicted.
type PostSelector struct {
	posts      PostSource
	state      StateStore
	bufferSize int
}

func NewPostSelector(posts PostSource, state StateStore, bufferSize int) *PostSelector {
	if bufferSize <= 0 {
		bufferSize = 20
	}
	return &PostSelector{
		posts:      posts,
		state:      state,
		bufferSize: bufferSize,
	}
}

// SelectForAccount returns up to the account's posts-per-share eligible
// posts, excluding buffered posts, configured exclusions, and any extra IDs
// the caller already claimed in the current build.
func (s *PostSelector) SelectForAccount(account *models.Account, extraExclude []string) ([]*models.Post, error) {
	limit := account.PostsPerShare
	if limit <= 0 {
		limit = 1
	}

	buffer, err := s.buffer(account.ID)
	if err != nil {
		return nil, err
	}

	exclude := make([]string, 0, len(buffer)+len(account.Filters.ExcludedPosts)+len(extraExclude))
	exclude = append(exclude, buffer...)
	exclude = append(exclude, account.Filters.ExcludedPosts...)
	exclude = append(exclude, extraExclude...)

	return s.posts.SelectPosts(account.Filters, exclude, limit)
}

func (s *PostSelector) BufferHasPostID(accountID, postID string) (bool, error) {
	buffer, err := s.buffer(accountID)
	if err != nil {
		return false, err
	}
	for _, id := range buffer {
		if id == postID {
			return true, nil
		}
	}
	return false, nil
}

// UpdateBuffer records postID as recently shared for the account. Once the
// buffer exceeds its capacity the oldest entries are evicted.
func (s *PostSelector) UpdateBuffer(accountID, postID string) error {
	buffer, err := s.buffer(accountID)
	if err != nil {
		return err
	}

	for _, id := range buffer {
		if id == postID {
			return nil
		}
	}

	buffer = append(buffer, postID)
	if len(buffer) > s.bufferSize {
		buffer = buffer[len(buffer)-s.bufferSize:]
	}
	return s.state.SetState(bufferKeyPrefix+accountID, buffer)
}

func (s *PostSelector) ClearBuffer(accountID string) error {
	return s.state.DeleteState(bufferKeyPrefix + accountID)
}

func (s *PostSelector) buffer(accountID string) ([]string, error) {
	buffer := []string{}
	if _, err := s.state.GetState(bufferKeyPrefix+accountID, &buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}
