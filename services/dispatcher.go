package services

import (
	"sort"
	"strings"
	"time"

	"EvergreenShareAPI/models"
	"EvergreenShareAPI/publishers"
	"EvergreenShareAPI/utils"
)

const instantGuardPrefix = "instant_share_guard_"

// PublisherFactory builds the network adapter for a service type.
type PublisherFactory interface {
	Build(service models.ServiceType) (publishers.ServicePublisher, error)
}

// TransformFunc can rewrite a payload before it is shared.
type TransformFunc func(*models.SharePayload) *models.SharePayload

// Dispatcher consumes due share events, invokes the network adapters, and
// records outcomes in the history log. Everything runs sequentially per
// post, per event, per account; there is no parallel fan-out.
type Dispatcher struct {
	clock     Clock
	scheduler *Scheduler
	queue     *QueueService
	registry  *AccountRegistry
	selector  *PostSelector
	history   *HistoryLog
	payloads  *PayloadBuilder
	factory   PublisherFactory
	state     StateStore
	transform TransformFunc
	debug     bool
	dueWindow time.Duration
}

type DispatcherConfig struct {
	Clock     Clock
	Scheduler *Scheduler
	Queue     *QueueService
	Registry  *AccountRegistry
	Selector  *PostSelector
	History   *HistoryLog
	Payloads  *PayloadBuilder
	Factory   PublisherFactory
	State     StateStore
	Debug     bool
	DueWindow time.Duration
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.DueWindow <= 0 {
		cfg.DueWindow = 15 * time.Minute
	}
	return &Dispatcher{
		clock:     cfg.Clock,
		scheduler: cfg.Scheduler,
		queue:     cfg.Queue,
		registry:  cfg.Registry,
		selector:  cfg.Selector,
		history:   cfg.History,
		payloads:  cfg.Payloads,
		factory:   cfg.Factory,
		state:     cfg.State,
		debug:     cfg.Debug,
		dueWindow: cfg.DueWindow,
	}
}

// SetTransform registers a hook that runs on every payload before sharing.
func (d *Dispatcher) SetTransform(fn TransformFunc) {
	d.transform = fn
}

// RunShareCycle is one dispatch pass. It never propagates a failure to its
// trigger: per-post errors are logged and journaled, and the scheduler is
// re-armed no matter what happened upstream.
func (d *Dispatcher) RunShareCycle() {
	if d.scheduler != nil {
		defer d.scheduler.Rearm()
	}
	defer func() {
		if r := recover(); r != nil {
			utils.Errorf("Share cycle aborted: %v", r)
		}
	}()

	if d.scheduler != nil && !d.scheduler.Enabled() {
		utils.Infof("Sharing is disabled, skipping dispatch pass")
		return
	}

	queue, err := d.scheduler.BuildQueue()
	if err != nil {
		utils.Errorf("Building share queue: %v", err)
		return
	}

	// One clock reading for the whole pass so due checks cannot drift.
	now := d.clock.Now().Unix()

	// When any queued account belongs to the Google Business family its
	// tokens may have been rotated by the provider side channel, so force
	// account re-reads for the co-scheduled accounts.
	refreshData := false
	for accountID := range queue {
		if isGoogleBusinessID(accountID) {
			refreshData = true
			break
		}
	}

	for _, accountID := range sortedKeys(queue) {
		for _, event := range queue[accountID] {
			if event.Time <= 0 || len(event.PostIDs) == 0 {
				utils.Warnf("Skipping malformed queue entry for account %s", accountID)
				continue
			}
			if event.Time > now {
				continue
			}

			forceRefresh := refreshData && !isGoogleBusinessID(accountID)
			if err := d.queue.RemoveFromQueue(event.Time, accountID, forceRefresh); err != nil {
				utils.Errorf("Removing event from queue: %v", err)
			}

			if now-event.Time >= int64(d.dueWindow.Seconds()) {
				// Missed the due window: discard, never fire late.
				utils.Infof("Discarding stale event for account %s scheduled at %d", accountID, event.Time)
				continue
			}

			d.dispatchEvent(accountID, event)
		}
	}
}

func (d *Dispatcher) dispatchEvent(accountID string, event models.ShareEvent) {
	account, err := d.registry.FindAccount(accountID)
	if err != nil {
		// Account deleted mid-queue; the event is a no-op.
		utils.Warnf("Skipping event for missing account %s: %v", accountID, err)
		return
	}

	publisher, err := d.factory.Build(account.Service)
	if err != nil {
		utils.Errorf("Building %s publisher: %v", account.Service, err)
		for _, postID := range event.PostIDs {
			d.recordOutcome(postID, account, models.ShareError, err.Error())
		}
		return
	}
	publisher.SetCredentials(account.Credentials)

	for _, postID := range event.PostIDs {
		d.sharePost(publisher, account, postID)
	}
}

// sharePost shares one post on the scheduled path. Two dedup layers run
// before the adapter: the global single-slot last-shared marker, then the
// per-account share buffer.
func (d *Dispatcher) sharePost(publisher publishers.ServicePublisher, account *models.Account, postID string) {
	marker := account.ID + "_post_id_" + postID
	lastShared, err := d.queue.LastShared()
	if err != nil {
		utils.Errorf("Reading last-shared marker: %v", err)
	}
	if lastShared == marker && !d.debug {
		utils.Infof("%s: post %s was just shared, skipping", account.Service, postID)
		return
	}

	payload, err := d.payloads.Prepare(postID, account.ID)
	if err != nil {
		utils.Errorf("Preparing payload: %v", err)
		d.recordOutcome(postID, account, models.ShareError, err.Error())
		return
	}
	if d.transform != nil {
		payload = d.transform(payload)
	}

	duplicate, err := d.selector.BufferHasPostID(account.ID, postID)
	if err != nil {
		utils.Errorf("Checking share buffer: %v", err)
	}

	success := false
	var shareErr error
	if duplicate {
		utils.Infof("Post %s is still in the share buffer for %s, skipping", postID, account.ID)
	} else {
		utils.Infof("Posting %s to %s (%s)", postID, account.ID, account.Service)
		success, shareErr = publisher.Share(payload, account)
	}

	// Buffer bookkeeping advances even when the share was skipped.
	if err := d.selector.UpdateBuffer(account.ID, postID); err != nil {
		utils.Errorf("Updating share buffer: %v", err)
	}

	if duplicate {
		return
	}

	if shareErr != nil || !success {
		msg := "share failed"
		if shareErr != nil {
			msg = shareErr.Error()
		}
		utils.Errorf("%s service error for post %s: %s", account.Service, postID, msg)
		d.recordOutcome(postID, account, models.ShareError, msg)
		return
	}

	if err := d.queue.SetLastShared(marker); err != nil {
		utils.Errorf("Updating last-shared marker: %v", err)
	}
	d.recordOutcome(postID, account, models.ShareSuccess, "")
}

// RequestPublishNow journals a queued attempt per enabled account and puts
// the post on the instant queue. Account IDs that are not active are
// silently dropped. Repeat requests for the same post inside a minute are
// suppressed. Returns the accepted account IDs.
func (d *Dispatcher) RequestPublishNow(postID string, accounts map[string]string) ([]string, error) {
	now := d.clock.Now()

	var guardUntil int64
	if found, err := d.state.GetState(instantGuardPrefix+postID, &guardUntil); err == nil && found && guardUntil > now.Unix() {
		utils.Infof("Duplicate instant share request for post %s, ignoring", postID)
		return nil, nil
	}
	if err := d.state.SetState(instantGuardPrefix+postID, now.Add(time.Minute).Unix()); err != nil {
		utils.Errorf("Setting instant share guard: %v", err)
	}

	active, err := d.registry.GetActiveAccounts()
	if err != nil {
		return nil, err
	}

	accepted := []string{}
	for _, accountID := range sortedKeys(accounts) {
		account, ok := active[accountID]
		if !ok {
			continue
		}

		event := models.InstantShareEvent{
			PostIDs:       []string{postID},
			CustomMessage: accounts[accountID],
		}
		if err := d.queue.AppendInstant(accountID, event); err != nil {
			return accepted, err
		}

		if err := d.history.Record(postID, models.HistoryRecord{
			Account:   accountID,
			Service:   account.Service,
			Timestamp: now.Unix(),
			Status:    models.ShareQueued,
		}); err != nil {
			utils.Errorf("Recording queued history: %v", err)
		}
		accepted = append(accepted, accountID)
	}
	return accepted, nil
}

// RunPublishNow drains the instant queue and shares each event once,
// transitioning its queued history record to success or error. No due
// window and no dedup layers apply: the user asked explicitly.
func (d *Dispatcher) RunPublishNow() {
	defer func() {
		if r := recover(); r != nil {
			utils.Errorf("Instant share pass aborted: %v", r)
		}
	}()

	queue, err := d.queue.DrainInstant()
	if err != nil {
		utils.Errorf("Draining instant share queue: %v", err)
		return
	}
	if len(queue) == 0 {
		utils.Debugf("Instant share queue is empty")
		return
	}

	for _, accountID := range sortedKeys(queue) {
		account, err := d.registry.FindAccount(accountID)
		if err != nil {
			utils.Warnf("Skipping instant share for missing account %s: %v", accountID, err)
			continue
		}

		publisher, err := d.factory.Build(account.Service)
		if err != nil {
			utils.Errorf("Building %s publisher: %v", account.Service, err)
			for _, event := range queue[accountID] {
				for _, postID := range event.PostIDs {
					d.recordOutcome(postID, account, models.ShareError, err.Error())
				}
			}
			continue
		}
		publisher.SetCredentials(account.Credentials)

		for _, event := range queue[accountID] {
			for _, postID := range event.PostIDs {
				d.shareInstant(publisher, account, postID, event.CustomMessage)
			}
		}
	}
}

func (d *Dispatcher) shareInstant(publisher publishers.ServicePublisher, account *models.Account, postID, customMessage string) {
	payload, err := d.payloads.Prepare(postID, account.ID)
	if err != nil {
		utils.Errorf("Preparing payload: %v", err)
		d.recordOutcome(postID, account, models.ShareError, err.Error())
		return
	}
	if customMessage != "" {
		payload.Content = customMessage
	}
	if d.transform != nil {
		payload = d.transform(payload)
	}

	utils.Infof("Instant posting %s to %s (%s)", postID, account.ID, account.Service)
	success, shareErr := publisher.Share(payload, account)
	if shareErr != nil || !success {
		msg := "share failed"
		if shareErr != nil {
			msg = shareErr.Error()
		}
		utils.Errorf("%s service error for post %s: %s", account.Service, postID, msg)
		d.recordOutcome(postID, account, models.ShareError, msg)
		return
	}
	d.recordOutcome(postID, account, models.ShareSuccess, "")
}

func (d *Dispatcher) recordOutcome(postID string, account *models.Account, status models.ShareStatus, message string) {
	err := d.history.Record(postID, models.HistoryRecord{
		Account:   account.ID,
		Service:   account.Service,
		Timestamp: d.clock.Now().Unix(),
		Status:    status,
		Message:   message,
	})
	if err != nil {
		utils.Errorf("Recording history for post %s: %v", postID, err)
	}
}

func isGoogleBusinessID(accountID string) bool {
	return strings.HasPrefix(accountID, string(models.GoogleBusiness)+"_")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
