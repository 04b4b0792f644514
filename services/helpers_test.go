package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"EvergreenShareAPI/models"
	"EvergreenShareAPI/publishers"
)

// memoryStore is an in-memory StateStore with the same JSON round-trip
// semantics as the Postgres-backed one.
type memoryStore struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]json.RawMessage{}}
}

func (m *memoryStore) GetState(key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	raw, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *memoryStore) SetState(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) DeleteState(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// memoryHistory implements HistoryStore.
type memoryHistory struct {
	records  map[string][]models.HistoryRecord
	statuses map[string]models.PostShareState
}

func newMemoryHistory() *memoryHistory {
	return &memoryHistory{
		records:  map[string][]models.HistoryRecord{},
		statuses: map[string]models.PostShareState{},
	}
}

func (m *memoryHistory) GetHistory(postID string) ([]models.HistoryRecord, error) {
	return append([]models.HistoryRecord{}, m.records[postID]...), nil
}

func (m *memoryHistory) SaveHistory(postID string, records []models.HistoryRecord, status models.PostShareState) error {
	m.records[postID] = records
	m.statuses[postID] = status
	return nil
}

// stubAccountSource implements AccountSource and counts storage reads so
// tests can observe forced refreshes.
type stubAccountSource struct {
	accounts map[string]*models.Account
	getCalls int
}

func (s *stubAccountSource) GetAccount(id string) (*models.Account, error) {
	s.getCalls++
	account, ok := s.accounts[id]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	return account, nil
}

func (s *stubAccountSource) GetActiveAccounts() ([]*models.Account, error) {
	accounts := []*models.Account{}
	for _, account := range s.accounts {
		if account.Active {
			accounts = append(accounts, account)
		}
	}
	return accounts, nil
}

// stubPostSource implements PostSource over a fixed pool.
type stubPostSource struct {
	posts []*models.Post
}

func (s *stubPostSource) GetPost(id string) (*models.Post, error) {
	for _, post := range s.posts {
		if post.ID == id {
			return post, nil
		}
	}
	return nil, fmt.Errorf("no rows")
}

func (s *stubPostSource) SelectPosts(filters models.PostFilters, exclude []string, limit int) ([]*models.Post, error) {
	excluded := map[string]bool{}
	for _, id := range exclude {
		excluded[id] = true
	}
	selected := []*models.Post{}
	for _, post := range s.posts {
		if excluded[post.ID] {
			continue
		}
		selected = append(selected, post)
		if len(selected) == limit {
			break
		}
	}
	return selected, nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// stubPublisher records shares and can be told to fail.
type stubPublisher struct {
	creds    models.Credentials
	shared   []*models.SharePayload
	shareErr error
	reject   bool
}

func (p *stubPublisher) SetCredentials(creds models.Credentials) {
	p.creds = creds
}

func (p *stubPublisher) Share(payload *models.SharePayload, account *models.Account) (bool, error) {
	p.shared = append(p.shared, payload)
	if p.shareErr != nil {
		return false, p.shareErr
	}
	return !p.reject, nil
}

type stubFactory struct {
	publisher publishers.ServicePublisher
	buildErr  error
}

func (f *stubFactory) Build(service models.ServiceType) (publishers.ServicePublisher, error) {
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return f.publisher, nil
}

type countingRefresher struct {
	calls int
}

func (r *countingRefresher) Refresh() { r.calls++ }

func twitterAccount(id string) *models.Account {
	return &models.Account{
		ID:            id,
		Service:       models.Twitter,
		Name:          "test",
		Credentials:   models.Credentials{"access_token": "token"},
		Active:        true,
		PostsPerShare: 1,
		Schedule:      models.Schedule{Type: models.ScheduleRecurring, IntervalHours: 8},
	}
}

// pipeline bundles a fully wired dispatcher over in-memory stores.
type pipeline struct {
	clock     *fakeClock
	state     *memoryStore
	source    *stubAccountSource
	posts     *stubPostSource
	registry  *AccountRegistry
	selector  *PostSelector
	queue     *QueueService
	scheduler *Scheduler
	history   *HistoryLog
	histStore *memoryHistory
	publisher *stubPublisher
	dispatch  *Dispatcher
}

func newPipeline(now time.Time, accounts ...*models.Account) *pipeline {
	p := &pipeline{
		clock:     &fakeClock{now: now},
		state:     newMemoryStore(),
		source:    &stubAccountSource{accounts: map[string]*models.Account{}},
		posts:     &stubPostSource{},
		histStore: newMemoryHistory(),
		publisher: &stubPublisher{},
	}
	for _, account := range accounts {
		p.source.accounts[account.ID] = account
	}

	p.registry = NewAccountRegistry(p.source)
	p.selector = NewPostSelector(p.posts, p.state, 5)
	p.queue = NewQueueService(p.state, p.registry)
	p.scheduler = NewScheduler(p.clock, p.registry, p.selector, p.queue, p.state, 3, 8, "@every 1m")
	p.history = NewHistoryLog(p.histStore)

	p.dispatch = NewDispatcher(DispatcherConfig{
		Clock:     p.clock,
		Scheduler: p.scheduler,
		Queue:     p.queue,
		Registry:  p.registry,
		Selector:  p.selector,
		History:   p.history,
		Payloads:  NewPayloadBuilder(p.posts),
		Factory:   &stubFactory{publisher: p.publisher},
		State:     p.state,
		DueWindow: 15 * time.Minute,
	})
	return p
}

func (p *pipeline) seedQueue(accountID string, events ...models.ShareEvent) {
	queue, err := p.queue.Load()
	if err != nil {
		panic(err)
	}
	queue[accountID] = events
	if err := p.queue.Save(queue); err != nil {
		panic(err)
	}
}
