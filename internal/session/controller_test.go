package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"focusguard/internal/account"
	"focusguard/internal/state"
	"focusguard/internal/store"
)

var anchor = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) // Monday

type memStorage struct {
	docs map[string][]byte
}

func (m *memStorage) Get(key string) ([]byte, bool, error) {
	v, ok := m.docs[key]
	return v, ok, nil
}

func (m *memStorage) Set(key string, value []byte) error {
	m.docs[key] = value
	return nil
}

type fakePro struct {
	pro         bool
	invalidated int
}

func (f *fakePro) Status(bool) bool { return f.pro }
func (f *fakePro) Invalidate()      { f.invalidated++ }

type fakeNotifier struct {
	titles []string
	err    error
}

func (f *fakeNotifier) Notify(title, _ string) error {
	f.titles = append(f.titles, title)
	return f.err
}

type fakeRedirector struct {
	targets []string
}

func (f *fakeRedirector) Redirect(_ int, target string) error {
	f.targets = append(f.targets, target)
	return nil
}

type fakeAccount struct {
	authed   bool
	synced   *account.SyncedData
	syncErr  error
	pushes   int
	signIns  int
	signOuts int
}

func (f *fakeAccount) IsAuthenticated() bool    { return f.authed }
func (f *fakeAccount) GetUser() *account.User   { return &account.User{ID: "u1", Email: "u@x.io"} }
func (f *fakeAccount) SignUp(string, string) error {
	f.authed = true
	return nil
}
func (f *fakeAccount) SignIn(string, string) error {
	f.signIns++
	f.authed = true
	return nil
}
func (f *fakeAccount) SignOut() error {
	f.signOuts++
	f.authed = false
	return nil
}
func (f *fakeAccount) ResetPassword(string) error     { return nil }
func (f *fakeAccount) UpdatePassword(string) error    { return nil }
func (f *fakeAccount) UpdateEmail(string) error       { return nil }
func (f *fakeAccount) DeleteAccount() error           { return nil }
func (f *fakeAccount) RefreshSubscription() error     { return nil }
func (f *fakeAccount) CreateCheckoutSession(string) (*account.CheckoutSession, error) {
	return &account.CheckoutSession{URL: "https://pay.example/checkout"}, nil
}
func (f *fakeAccount) CreatePortalSession() (*account.CheckoutSession, error) {
	return &account.CheckoutSession{URL: "https://pay.example/portal"}, nil
}
func (f *fakeAccount) SyncData(state.Document) error {
	f.pushes++
	return f.syncErr
}
func (f *fakeAccount) LoadSyncedData() (*account.SyncedData, error) {
	return f.synced, f.syncErr
}

type fixture struct {
	ctrl     *Controller
	pro      *fakePro
	acct     *fakeAccount
	notifier *fakeNotifier
	redirect *fakeRedirector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pro := &fakePro{}
	acct := &fakeAccount{}
	notifier := &fakeNotifier{}
	redirect := &fakeRedirector{}
	st := store.New(&memStorage{docs: map[string][]byte{}}, nil).
		WithClock(func() time.Time { return anchor })
	ctrl := New(Options{
		Store:        st,
		Account:      acct,
		Pro:          pro,
		Notifier:     notifier,
		Redirector:   redirect,
		BlockPageURL: "http://127.0.0.1:8645/blocked",
		Clock:        func() time.Time { return anchor },
	})
	return &fixture{ctrl: ctrl, pro: pro, acct: acct, notifier: notifier, redirect: redirect}
}

func TestAddSiteNormalizesInput(t *testing.T) {
	f := newFixture(t)
	res := f.ctrl.Dispatch(AddSite{Site: "https://www.Example.com/feed?x=1"})
	require.Empty(t, res.Error)
	require.Equal(t, []string{"example.com"}, res.State.BlockedSites)
}

func TestAddSiteDuplicateWarnsWithoutMutation(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Dispatch(AddSite{Site: "example.com"})
	res := f.ctrl.Dispatch(AddSite{Site: "www.example.com"})
	require.Equal(t, CodeAlreadyBlocked, res.Warning)
	require.Empty(t, res.Error)
	require.Len(t, res.State.BlockedSites, 1)
}

func TestAddSiteFreeTierLimit(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 10; i++ {
		res := f.ctrl.Dispatch(AddSite{Site: fmt.Sprintf("site%d.com", i)})
		require.Empty(t, res.Error)
	}
	res := f.ctrl.Dispatch(AddSite{Site: "eleventh.com"})
	require.Equal(t, CodeLimitReached, res.Error)
	require.Equal(t, 10, res.Limit)

	after := f.ctrl.Dispatch(GetState{})
	require.Len(t, after.State.BlockedSites, 10, "limit error must not mutate")
}

func TestAddSiteProHasNoLimit(t *testing.T) {
	f := newFixture(t)
	f.pro.pro = true
	for i := 0; i < 15; i++ {
		res := f.ctrl.Dispatch(AddSite{Site: fmt.Sprintf("site%d.com", i)})
		require.Empty(t, res.Error)
	}
}

func TestRemoveSiteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Dispatch(AddSite{Site: "example.com"})

	res := f.ctrl.Dispatch(RemoveSite{Site: "absent.com"})
	require.Empty(t, res.Error)
	require.Len(t, res.State.BlockedSites, 1)

	res = f.ctrl.Dispatch(RemoveSite{Site: "https://example.com"})
	require.Empty(t, res.Error)
	require.Empty(t, res.State.BlockedSites)
}

func TestTogglePreset(t *testing.T) {
	f := newFixture(t)

	res := f.ctrl.Dispatch(TogglePreset{ID: "nope"})
	require.Equal(t, CodeInvalidPreset, res.Error)

	res = f.ctrl.Dispatch(TogglePreset{ID: "social"})
	require.Equal(t, []string{"social"}, res.State.EnabledPresets)

	res = f.ctrl.Dispatch(TogglePreset{ID: "video"})
	require.Len(t, res.State.EnabledPresets, 2)

	// free tier preset limit
	res = f.ctrl.Dispatch(TogglePreset{ID: "news"})
	require.Equal(t, CodePresetLimitReached, res.Error)

	// toggling an enabled preset always removes it
	res = f.ctrl.Dispatch(TogglePreset{ID: "social"})
	require.Equal(t, []string{"video"}, res.State.EnabledPresets)
}

func TestScheduleAndPasswordAreProGated(t *testing.T) {
	f := newFixture(t)

	res := f.ctrl.Dispatch(UpdateSchedule{})
	require.Equal(t, CodeProRequired, res.Error)

	res = f.ctrl.Dispatch(SetPassword{Password: "hunter2"})
	require.Equal(t, CodeProRequired, res.Error)
}

func TestUpdateScheduleValidatesWindow(t *testing.T) {
	f := newFixture(t)
	f.pro.pro = true

	cmd := UpdateSchedule{}
	cmd.Schedule.Enabled = true
	cmd.Schedule.Days = []int{1, 2, 3}
	cmd.Schedule.StartTime = "17:00"
	cmd.Schedule.EndTime = "09:00"
	res := f.ctrl.Dispatch(cmd)
	require.Equal(t, CodeInvalidSchedule, res.Error)

	cmd.Schedule.StartTime = "09:00"
	cmd.Schedule.EndTime = "17:00"
	res = f.ctrl.Dispatch(cmd)
	require.Empty(t, res.Error)
	require.True(t, res.State.Schedule.Enabled)
}

func TestPasswordProtectionGatesDisable(t *testing.T) {
	f := newFixture(t)
	f.pro.pro = true

	require.Empty(t, f.ctrl.Dispatch(SetPassword{Password: "hunter2"}).Error)
	require.True(t, f.ctrl.Dispatch(ToggleFocus{}).State.FocusMode)

	res := f.ctrl.Dispatch(ToggleFocus{})
	require.Equal(t, CodePasswordRequired, res.Error)

	res = f.ctrl.Dispatch(ToggleFocus{Password: "wrong"})
	require.Equal(t, CodePasswordRequired, res.Error)

	res = f.ctrl.Dispatch(ToggleFocus{Password: "hunter2"})
	require.Empty(t, res.Error)
	require.False(t, res.State.FocusMode)
}

func TestPasswordIgnoredOnFreeTier(t *testing.T) {
	f := newFixture(t)
	f.pro.pro = true
	f.ctrl.Dispatch(SetPassword{Password: "hunter2"})
	f.ctrl.Dispatch(ToggleFocus{})

	// tier lapsed: protection no longer applies
	f.pro.pro = false
	res := f.ctrl.Dispatch(ToggleFocus{})
	require.Empty(t, res.Error)
	require.False(t, res.State.FocusMode)
}

func TestExportImportRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Dispatch(AddSite{Site: "example.com"})
	f.ctrl.Dispatch(TogglePreset{ID: "social"})
	f.ctrl.Dispatch(ToggleFocus{})

	exp := f.ctrl.Dispatch(ExportData{})
	require.NotNil(t, exp.Export)
	require.NotEmpty(t, exp.Export.Version)

	payload, err := json.Marshal(exp.Export)
	require.NoError(t, err)

	f.ctrl.Dispatch(ResetAll{})
	require.Empty(t, f.ctrl.Dispatch(GetState{}).State.BlockedSites)

	res := f.ctrl.Dispatch(ImportData{Payload: payload})
	require.True(t, res.Success)
	require.Equal(t, exp.Export.Data, *res.State)
}

func TestUpdateSettingsPatchesOneKey(t *testing.T) {
	f := newFixture(t)

	res := f.ctrl.Dispatch(UpdateSettings{Patch: []byte(`{"theme":"dark"}`)})
	require.Empty(t, res.Error)
	require.Equal(t, "dark", res.State.Settings.Theme)
	require.True(t, res.State.Settings.SyncEnabled, "absent keys keep their values")
	require.True(t, res.State.Settings.Notifications, "absent keys keep their values")

	res = f.ctrl.Dispatch(UpdateSettings{Patch: []byte(`{"syncEnabled":false}`)})
	require.Empty(t, res.Error)
	require.False(t, res.State.Settings.SyncEnabled)
	require.Equal(t, "dark", res.State.Settings.Theme)
}

func TestUpdateSettingsRejectsBadPatch(t *testing.T) {
	f := newFixture(t)

	for _, payload := range []string{"", "null", `{"theme":5}`} {
		res := f.ctrl.Dispatch(UpdateSettings{Patch: []byte(payload)})
		require.Equal(t, CodeInvalidData, res.Error, "payload %q", payload)
	}
	require.True(t, f.ctrl.Dispatch(GetState{}).State.Settings.SyncEnabled)
}

func TestImportRejectsBadEnvelope(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Dispatch(AddSite{Site: "example.com"})

	res := f.ctrl.Dispatch(ImportData{Payload: []byte(`{"version":"2.0.0"}`)})
	require.Equal(t, CodeInvalidData, res.Error)

	res = f.ctrl.Dispatch(ImportData{Payload: []byte(`{"version":"2.0.0","data":null}`)})
	require.Equal(t, CodeInvalidData, res.Error)

	require.Len(t, f.ctrl.Dispatch(GetState{}).State.BlockedSites, 1, "rejected import must not mutate")
}

func TestResetStatsKeepsConfiguration(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Dispatch(AddSite{Site: "example.com"})
	f.ctrl.Dispatch(ToggleFocus{})
	_, err := f.ctrl.HandleNavigation(NavigationEvent{URL: "https://example.com", TabID: 1, MainFrame: true})
	require.NoError(t, err)

	res := f.ctrl.Dispatch(ResetStats{})
	require.Zero(t, res.State.Stats.BlocksTotal)
	require.Equal(t, []string{"example.com"}, res.State.BlockedSites)
	require.True(t, res.State.FocusMode)
}

func TestResetAll(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Dispatch(AddSite{Site: "example.com"})
	res := f.ctrl.Dispatch(ResetAll{})
	require.True(t, res.Success)
	require.Empty(t, res.State.BlockedSites)
}

func TestSyncNowRequiresSession(t *testing.T) {
	f := newFixture(t)
	res := f.ctrl.Dispatch(SyncNow{})
	require.Equal(t, CodeNotAuthenticated, res.Error)

	f.acct.authed = true
	res = f.ctrl.Dispatch(SyncNow{})
	require.True(t, res.Success)
	require.Equal(t, 1, f.acct.pushes)

	f.acct.syncErr = errors.New("down")
	res = f.ctrl.Dispatch(SyncNow{})
	require.Equal(t, CodeSyncFailed, res.Error)
}

func TestSignInAdoptsSyncedData(t *testing.T) {
	f := newFixture(t)
	f.acct.synced = &account.SyncedData{BlockedSites: []string{"remote.com"}}

	res := f.ctrl.Dispatch(SignIn{Email: "u@x.io", Password: "pw"})
	require.True(t, res.Success)
	require.Equal(t, 1, f.acct.signIns)
	require.Equal(t, 1, f.pro.invalidated)

	doc := f.ctrl.Dispatch(GetState{}).State
	require.Equal(t, []string{"remote.com"}, doc.BlockedSites)
}

func TestHandleNavigationBlocks(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Dispatch(AddSite{Site: "example.com"})
	f.ctrl.Dispatch(ToggleFocus{})

	dec, err := f.ctrl.HandleNavigation(NavigationEvent{
		URL: "https://sub.example.com/page", TabID: 7, MainFrame: true,
	})
	require.NoError(t, err)
	require.True(t, dec.Blocked)
	require.Equal(t, "sub.example.com", dec.Site)
	require.Contains(t, dec.Redirect, "site=sub.example.com")
	require.Len(t, f.notifier.titles, 1)
	require.Len(t, f.redirect.targets, 1)

	doc := f.ctrl.Dispatch(GetState{}).State
	require.Equal(t, 1, doc.Stats.BlocksToday)
	require.Equal(t, "sub.example.com", doc.Stats.MostBlocked[0].Site)
}

func TestHandleNavigationIgnoresSubframesAndPrivileged(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Dispatch(AddSite{Site: "example.com"})
	f.ctrl.Dispatch(ToggleFocus{})

	dec, err := f.ctrl.HandleNavigation(NavigationEvent{URL: "https://example.com", MainFrame: false})
	require.NoError(t, err)
	require.False(t, dec.Blocked)

	dec, err = f.ctrl.HandleNavigation(NavigationEvent{URL: "chrome://settings", MainFrame: true})
	require.NoError(t, err)
	require.False(t, dec.Blocked)
}

func TestHandleNavigationInactiveDoesNothing(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Dispatch(AddSite{Site: "example.com"})

	dec, err := f.ctrl.HandleNavigation(NavigationEvent{URL: "https://example.com", MainFrame: true})
	require.NoError(t, err)
	require.False(t, dec.Blocked)
	require.Zero(t, f.ctrl.Dispatch(GetState{}).State.Stats.BlocksTotal)
}

func TestScheduledActivityRequiresPro(t *testing.T) {
	f := newFixture(t)
	f.pro.pro = true
	cmd := UpdateSchedule{}
	cmd.Schedule.Enabled = true
	cmd.Schedule.Days = []int{1, 2, 3, 4, 5}
	cmd.Schedule.StartTime = "09:00"
	cmd.Schedule.EndTime = "17:00"
	cmd.Schedule.Timezone = "UTC"
	require.Empty(t, f.ctrl.Dispatch(cmd).Error)
	f.ctrl.Dispatch(AddSite{Site: "example.com"})

	// anchor is Monday 12:00 UTC: inside the window
	dec, err := f.ctrl.HandleNavigation(NavigationEvent{URL: "https://example.com", MainFrame: true})
	require.NoError(t, err)
	require.True(t, dec.Blocked, "pro tier: schedule window blocks")

	f.pro.pro = false
	dec, err = f.ctrl.HandleNavigation(NavigationEvent{URL: "https://example.com", MainFrame: true})
	require.NoError(t, err)
	require.False(t, dec.Blocked, "schedule is never consulted on free tier")
}

func TestNotifierFailureDoesNotAffectDecision(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("no notification daemon")
	f.ctrl.Dispatch(AddSite{Site: "example.com"})
	f.ctrl.Dispatch(ToggleFocus{})

	dec, err := f.ctrl.HandleNavigation(NavigationEvent{URL: "https://example.com", TabID: 1, MainFrame: true})
	require.NoError(t, err)
	require.True(t, dec.Blocked)
}

func TestFocusMinuteTick(t *testing.T) {
	f := newFixture(t)
	f.ctrl.tickFocusMinute()
	require.Zero(t, f.ctrl.Dispatch(GetState{}).State.Stats.TotalFocusMinutes, "inactive: no accrual")

	f.ctrl.Dispatch(ToggleFocus{})
	f.ctrl.tickFocusMinute()
	f.ctrl.tickFocusMinute()
	doc := f.ctrl.Dispatch(GetState{}).State
	require.Equal(t, 2, doc.Stats.FocusMinutesToday)
	require.Equal(t, 2, doc.Stats.TotalFocusMinutes)
}

func TestRollOverTickArchivesWithoutBlocks(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Dispatch(ToggleFocus{})
	f.ctrl.tickFocusMinute()

	// next day: the boundary tick alone must roll the counters
	f.ctrl.now = func() time.Time { return anchor.AddDate(0, 0, 1) }
	f.ctrl.tickRollOver()

	doc := f.ctrl.Dispatch(GetState{}).State
	require.Zero(t, doc.Stats.FocusMinutesToday)
	require.Len(t, doc.Stats.DailyHistory, 1)
	require.Equal(t, 1, doc.Stats.DailyHistory[0].FocusMinutes)
	require.Equal(t, 1, doc.Stats.StreakDays)
}
