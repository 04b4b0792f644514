package services

import (
	"sort"
	"time"

	"EvergreenShareAPI/models"
	"EvergreenShareAPI/utils"

	"github.com/robfig/cron/v3"
)

const sharingEnabledStateKey = "sharing_enabled"

// Scheduler derives the time-keyed queue content from each account's
// schedule and keeps the dispatch tick alive.
type Scheduler struct {
	clock           Clock
	registry        *AccountRegistry
	selector        *PostSelector
	queue           *QueueService
	state           StateStore
	depth           int
	defaultInterval time.Duration
	cronSpec        string
	cron            *cron.Cron
}

func NewScheduler(clock Clock, registry *AccountRegistry, selector *PostSelector, queue *QueueService, state StateStore, depth int, defaultIntervalHours float64, cronSpec string) *Scheduler {
	if depth <= 0 {
		depth = 10
	}
	if defaultIntervalHours <= 0 {
		defaultIntervalHours = 8
	}
	if cronSpec == "" {
		cronSpec = "@every 1m"
	}
	return &Scheduler{
		clock:           clock,
		registry:        registry,
		selector:        selector,
		queue:           queue,
		state:           state,
		depth:           depth,
		defaultInterval: time.Duration(defaultIntervalHours * float64(time.Hour)),
		cronSpec:        cronSpec,
		cron:            cron.New(),
	}
}

// BuildQueue loads the stored queue, drops events for accounts that are no
// longer active plus any malformed entries, and tops every active account up
// to the configured depth. Deterministic given the account set, the content
// pool, and the clock. An account never gets two events at the same
// timestamp: generated times are strictly increasing.
func (s *Scheduler) BuildQueue() (Queue, error) {
	accounts, err := s.registry.GetActiveAccounts()
	if err != nil {
		return nil, err
	}

	queue, err := s.queue.Load()
	if err != nil {
		return nil, err
	}

	for accountID := range queue {
		if _, ok := accounts[accountID]; !ok {
			delete(queue, accountID)
		}
	}

	now := s.clock.Now()

	ids := make([]string, 0, len(accounts))
	for id := range accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, accountID := range ids {
		account := accounts[accountID]

		events := make([]models.ShareEvent, 0, s.depth)
		for _, event := range queue[accountID] {
			if event.Time <= 0 || len(event.PostIDs) == 0 {
				utils.Warnf("Dropping malformed queue entry for account %s", accountID)
				continue
			}
			events = append(events, event)
		}
		sort.Slice(events, func(i, j int) bool { return events[i].Time < events[j].Time })

		claimed := []string{}
		for _, event := range events {
			claimed = append(claimed, event.PostIDs...)
		}

		last := now
		if n := len(events); n > 0 && events[n-1].Time > now.Unix() {
			last = time.Unix(events[n-1].Time, 0)
		}

		for len(events) < s.depth {
			next := s.nextEventTime(account, last)
			posts, err := s.selector.SelectForAccount(account, claimed)
			if err != nil {
				utils.Errorf("Selecting posts for account %s: %v", accountID, err)
				break
			}
			if len(posts) == 0 {
				break
			}

			postIDs := make([]string, len(posts))
			for i, post := range posts {
				postIDs[i] = post.ID
			}
			claimed = append(claimed, postIDs...)

			events = append(events, models.ShareEvent{Time: next.Unix(), PostIDs: postIDs})
			last = next
		}

		if len(events) > 0 {
			queue[accountID] = events
		} else {
			delete(queue, accountID)
		}
	}

	if err := s.queue.Save(queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// nextEventTime returns the first share time strictly after `after` for the
// account's schedule.
func (s *Scheduler) nextEventTime(account *models.Account, after time.Time) time.Time {
	schedule := account.Schedule

	if schedule.Type == models.ScheduleFixed && len(schedule.Times) > 0 {
		if next, ok := nextFixedSlot(schedule, after); ok {
			return next
		}
	}

	interval := s.defaultInterval
	if schedule.IntervalHours > 0 {
		interval = time.Duration(schedule.IntervalHours * float64(time.Hour))
	}
	return after.Add(interval)
}

// nextFixedSlot scans forward from `after` for the earliest configured
// weekday/time slot. Empty Days means every day.
func nextFixedSlot(schedule models.Schedule, after time.Time) (time.Time, bool) {
	days := make(map[int]bool, len(schedule.Days))
	for _, d := range schedule.Days {
		days[d] = true
	}

	var best time.Time
	for offset := 0; offset <= 7; offset++ {
		day := after.AddDate(0, 0, offset)
		if len(days) > 0 && !days[int(day.Weekday())] {
			continue
		}
		for _, hm := range schedule.Times {
			parsed, err := time.Parse("15:04", hm)
			if err != nil {
				continue
			}
			slot := time.Date(day.Year(), day.Month(), day.Day(),
				parsed.Hour(), parsed.Minute(), 0, 0, after.Location())
			if !slot.After(after) {
				continue
			}
			if best.IsZero() || slot.Before(best) {
				best = slot
			}
		}
		if !best.IsZero() {
			return best, true
		}
	}
	return time.Time{}, false
}

// Start arms the recurring dispatch tick. run is the dispatcher's cycle.
func (s *Scheduler) Start(run func()) {
	s.cron.AddFunc(s.cronSpec, run)
	s.cron.Start()
	utils.Infof("Scheduler started (%s)", s.cronSpec)
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Rearm keeps the tick alive after a dispatch pass. cron.Start is a no-op
// when already running, so calling this every pass is safe. When sharing has
// been switched off the tick is stopped instead.
func (s *Scheduler) Rearm() {
	if !s.Enabled() {
		utils.Infof("Sharing is disabled, stopping the dispatch tick")
		s.cron.Stop()
		return
	}
	s.cron.Start()
}

// Enabled reports the sharing switch; missing state defaults to on.
func (s *Scheduler) Enabled() bool {
	enabled := true
	if _, err := s.state.GetState(sharingEnabledStateKey, &enabled); err != nil {
		utils.Errorf("Reading sharing switch: %v", err)
		return true
	}
	return enabled
}

func (s *Scheduler) SetEnabled(enabled bool) error {
	return s.state.SetState(sharingEnabledStateKey, enabled)
}
