package models

import "time"

type ServiceType string

const (
	Twitter        ServiceType = "twitter"
	Facebook       ServiceType = "facebook"
	LinkedIn       ServiceType = "linkedin"
	Pinterest      ServiceType = "pinterest"
	Mastodon       ServiceType = "mastodon"
	Tumblr         ServiceType = "tumblr"
	GoogleBusiness ServiceType = "gmb"
	VK             ServiceType = "vk"
)

type ShareStatus string

const (
	ShareQueued  ShareStatus = "queued"
	ShareSuccess ShareStatus = "success"
	ShareError   ShareStatus = "error"
)

type PostShareState string

const (
	ShareStateQueued PostShareState = "queued"
	ShareStateDone   PostShareState = "done"
)

type ScheduleType string

const (
	ScheduleRecurring ScheduleType = "recurring"
	ScheduleFixed     ScheduleType = "fixed"
)

// Schedule describes when an account shares. Recurring schedules fire every
// IntervalHours; fixed schedules fire on the listed weekdays (0 = Sunday) at
// the listed "HH:MM" times.
type Schedule struct {
	Type          ScheduleType `json:"type"`
	IntervalHours float64      `json:"interval_hours,omitempty"`
	Days          []int        `json:"days,omitempty"`
	Times         []string     `json:"times,omitempty"`
}

// PostFilters narrows the content pool an account shares from.
// Age bounds are in days; zero means unbounded.
type PostFilters struct {
	PostTypes     []string `json:"post_types,omitempty"`
	Taxonomies    []string `json:"taxonomies,omitempty"`
	ExcludedPosts []string `json:"excluded_posts,omitempty"`
	MinPostAge    int      `json:"min_post_age,omitempty"`
	MaxPostAge    int      `json:"max_post_age,omitempty"`
}

// Credentials is the opaque per-network credential bundle. The pipeline never
// inspects it; each publisher knows which keys it needs.
type Credentials map[string]string

type Account struct {
	ID            string      `json:"id"`
	Service       ServiceType `json:"service"`
	Name          string      `json:"name"`
	Credentials   Credentials `json:"-"`
	Active        bool        `json:"active"`
	PostsPerShare int         `json:"posts_per_share"`
	Schedule      Schedule    `json:"schedule"`
	Filters       PostFilters `json:"filters"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type Post struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	URL        string    `json:"url"`
	PostType   string    `json:"post_type"`
	Taxonomies []string  `json:"taxonomies,omitempty"`
	MediaPath  string    `json:"media_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ShareEvent is one scheduled unit of work: share the listed posts to an
// account at Time (unix seconds). Events are keyed by (Time, account) in the
// share queue.
type ShareEvent struct {
	Time    int64    `json:"time"`
	PostIDs []string `json:"posts"`
}

// InstantShareEvent is a user-requested share of specific posts to one
// account, optionally with a message overriding the prepared content.
type InstantShareEvent struct {
	PostIDs       []string `json:"posts"`
	CustomMessage string   `json:"custom_message,omitempty"`
}

// SharePayload is what a publisher actually sends: the prepared content for
// one post, bound to one account.
type SharePayload struct {
	PostID    string `json:"post_id"`
	AccountID string `json:"account_id"`
	Content   string `json:"content"`
	URL       string `json:"url,omitempty"`
	MediaPath string `json:"media_path,omitempty"`
	MediaMime string `json:"media_mime,omitempty"`
}

// HistoryRecord is one logged attempt to share a post to an account.
type HistoryRecord struct {
	Account   string      `json:"account"`
	Service   ServiceType `json:"service"`
	Timestamp int64       `json:"timestamp"`
	Status    ShareStatus `json:"status"`
	Message   string      `json:"message,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type ShareNowRequest struct {
	// Accounts maps an account ID to an optional custom message for that
	// account. An empty message means "use the prepared post content".
	Accounts map[string]string `json:"accounts"`
}

type HistoryResponse struct {
	PostID  string          `json:"post_id"`
	Status  PostShareState  `json:"status"`
	Records []HistoryRecord `json:"records"`
}
