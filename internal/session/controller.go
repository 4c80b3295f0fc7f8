package session

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"focusguard/internal/account"
	"focusguard/internal/logger"
	"focusguard/internal/matcher"
	"focusguard/internal/state"
	"focusguard/internal/store"
)

// Account is the slice of the remote auth/billing client the controller uses.
// A nil Account means the remote service is not configured.
type Account interface {
	IsAuthenticated() bool
	GetUser() *account.User
	SignUp(email, password string) error
	SignIn(email, password string) error
	SignOut() error
	ResetPassword(email string) error
	UpdatePassword(password string) error
	UpdateEmail(email string) error
	DeleteAccount() error
	RefreshSubscription() error
	CreateCheckoutSession(priceID string) (*account.CheckoutSession, error)
	CreatePortalSession() (*account.CheckoutSession, error)
	SyncData(doc state.Document) error
	LoadSyncedData() (*account.SyncedData, error)
}

// ProStatus answers tier queries, normally through an account.ProCache.
type ProStatus interface {
	Status(force bool) bool
	Invalidate()
}

// Notifier shows a fire-and-forget user notification. Failures never affect
// the blocking decision.
type Notifier interface {
	Notify(title, message string) error
}

// Redirector navigates a tab to the block page.
type Redirector interface {
	Redirect(tabID int, target string) error
}

// Activity is the focus state machine: inactive, manually active, or active
// through the schedule window.
type Activity int

const (
	Inactive Activity = iota
	ActiveManual
	ActiveScheduled
)

func (a Activity) String() string {
	switch a {
	case ActiveManual:
		return "active-manual"
	case ActiveScheduled:
		return "active-scheduled"
	default:
		return "inactive"
	}
}

// NavigationEvent is one intercepted navigation from the browser companion.
type NavigationEvent struct {
	URL       string `json:"url"`
	TabID     int    `json:"tab_id"`
	MainFrame bool   `json:"main_frame"`
}

// Decision is what the companion does with the navigation.
type Decision struct {
	Blocked  bool   `json:"blocked"`
	Site     string `json:"site,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// Options configure a Controller. Zero limits fall back to the free tier
// defaults (10 sites, 2 presets).
type Options struct {
	Store           *store.Store
	Account         Account
	Pro             ProStatus
	Notifier        Notifier
	Redirector      Redirector
	BlockPageURL    string
	AppVersion      string
	FreeSiteLimit   int
	FreePresetLimit int
	Clock           func() time.Time
}

// Controller orchestrates matcher, schedule and stats over the state store.
// All state mutations are serialized behind one mutex: navigation events,
// timer ticks and commands never interleave mid read-modify-write.
type Controller struct {
	mu           sync.Mutex
	store        *store.Store
	account      Account
	pro          ProStatus
	notifier     Notifier
	redirector   Redirector
	blockPage    string
	version      string
	siteLimit    int
	presetLimit  int
	now          func() time.Time
	lastActivity Activity
}

func New(opts Options) *Controller {
	c := &Controller{
		store:       opts.Store,
		account:     opts.Account,
		pro:         opts.Pro,
		notifier:    opts.Notifier,
		redirector:  opts.Redirector,
		blockPage:   opts.BlockPageURL,
		version:     opts.AppVersion,
		siteLimit:   opts.FreeSiteLimit,
		presetLimit: opts.FreePresetLimit,
		now:         opts.Clock,
	}
	if c.siteLimit <= 0 {
		c.siteLimit = 10
	}
	if c.presetLimit <= 0 {
		c.presetLimit = 2
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.version == "" {
		c.version = "2.0.0"
	}
	return c
}

// privileged URL schemes the blocker never touches.
var skipPrefixes = []string{
	"chrome://", "chrome-extension://", "moz-extension://",
	"edge://", "about:", "devtools://",
}

// HandleNavigation decides whether a navigation gets blocked and, on a match,
// records the block, persists, notifies and redirects the tab.
func (c *Controller) HandleNavigation(ev NavigationEvent) (Decision, error) {
	if !ev.MainFrame {
		return Decision{}, nil
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(ev.URL, p) {
			return Decision{}, nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.store.Load()
	if err != nil {
		return Decision{}, err
	}
	isPro := c.proStatus(false)
	now := c.now()

	if c.activityFor(doc, isPro, now) == Inactive {
		return Decision{}, nil
	}
	if !matcher.IsBlocked(ev.URL, doc.BlockedSites, doc.EnabledPresets) {
		return Decision{}, nil
	}

	host, _ := matcher.HostOf(ev.URL)
	doc.Stats.RecordBlock(host, now)
	if err := c.store.Save(doc); err != nil {
		return Decision{}, err
	}

	if doc.Settings.Notifications && c.notifier != nil {
		if err := c.notifier.Notify("Site Blocked", host+" was blocked. Stay focused!"); err != nil {
			logger.Warnf("Notification failed: %v", err)
		}
	}

	target := c.blockPage +
		"?url=" + url.QueryEscape(ev.URL) +
		"&site=" + url.QueryEscape(host)
	if c.redirector != nil {
		if err := c.redirector.Redirect(ev.TabID, target); err != nil {
			logger.Warnf("Redirect of tab %d failed: %v", ev.TabID, err)
		}
	}
	logger.Infof("Blocked %s (tab %d)", host, ev.TabID)
	return Decision{Blocked: true, Site: host, Redirect: target}, nil
}

// Activity returns the last activity computed by the schedule tick.
func (c *Controller) Activity() Activity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

func (c *Controller) activityFor(doc state.Document, isPro bool, now time.Time) Activity {
	if doc.FocusMode {
		return ActiveManual
	}
	if isPro && doc.Schedule.IsActive(now) {
		return ActiveScheduled
	}
	return Inactive
}

func (c *Controller) proStatus(force bool) bool {
	if c.pro == nil {
		return false
	}
	return c.pro.Status(force)
}

// normalizeSiteInput reduces user input like "https://www.Example.com/feed"
// to the bare hostname form sites are stored in.
func normalizeSiteInput(site string) string {
	s := strings.TrimSpace(strings.ToLower(site))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s, _, _ = strings.Cut(s, "/")
	return s
}

func (c *Controller) passwordAllowsDisable(doc state.Document, isPro bool, password string) bool {
	if !isPro || !doc.Password.Enabled {
		return true
	}
	if password == "" || doc.Password.Hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(doc.Password.Hash), []byte(password)) == nil
}
