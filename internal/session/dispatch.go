package session

import (
	"bytes"
	"encoding/json"

	"golang.org/x/crypto/bcrypt"

	"focusguard/internal/logger"
	"focusguard/internal/preset"
	"focusguard/internal/state"
	"focusguard/internal/stats"
)

// Dispatch executes one command against current state. Commands run one at a
// time; an error result always means nothing was persisted.
func (c *Controller) Dispatch(cmd Command) Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.store.Load()
	if err != nil {
		logger.Errorf("Load state failed: %v", err)
		return Result{Error: CodeInvalidData, Message: err.Error()}
	}
	isPro := c.proStatus(false)

	switch cmd := cmd.(type) {
	case GetState:
		res := c.stateResult(doc, isPro)
		if c.account != nil {
			res.User = c.account.GetUser()
		}
		return res

	case GetPresets:
		return Result{IsPro: isPro, Presets: preset.Catalog}

	case ToggleFocus:
		if doc.FocusMode && !c.passwordAllowsDisable(doc, isPro, cmd.Password) {
			return errResult(CodePasswordRequired)
		}
		doc.FocusMode = !doc.FocusMode
		return c.persist(doc, isPro)

	case SetFocusMode:
		if !cmd.Enabled && doc.FocusMode && !c.passwordAllowsDisable(doc, isPro, cmd.Password) {
			return errResult(CodePasswordRequired)
		}
		doc.FocusMode = cmd.Enabled
		return c.persist(doc, isPro)

	case AddSite:
		site := normalizeSiteInput(cmd.Site)
		if site == "" {
			return errResult(CodeInvalidData)
		}
		for _, s := range doc.BlockedSites {
			if s == site {
				res := c.stateResult(doc, isPro)
				res.Warning = CodeAlreadyBlocked
				return res
			}
		}
		if !isPro && len(doc.BlockedSites) >= c.siteLimit {
			return Result{Error: CodeLimitReached, Limit: c.siteLimit}
		}
		doc.BlockedSites = append(doc.BlockedSites, site)
		return c.persist(doc, isPro)

	case RemoveSite:
		site := normalizeSiteInput(cmd.Site)
		kept := doc.BlockedSites[:0]
		for _, s := range doc.BlockedSites {
			if s != site {
				kept = append(kept, s)
			}
		}
		doc.BlockedSites = kept
		return c.persist(doc, isPro)

	case TogglePreset:
		if _, ok := preset.Get(cmd.ID); !ok {
			return errResult(CodeInvalidPreset)
		}
		idx := -1
		for i, id := range doc.EnabledPresets {
			if id == cmd.ID {
				idx = i
				break
			}
		}
		if idx >= 0 {
			doc.EnabledPresets = append(doc.EnabledPresets[:idx], doc.EnabledPresets[idx+1:]...)
		} else {
			if !isPro && len(doc.EnabledPresets) >= c.presetLimit {
				return Result{Error: CodePresetLimitReached, Limit: c.presetLimit}
			}
			doc.EnabledPresets = append(doc.EnabledPresets, cmd.ID)
		}
		return c.persist(doc, isPro)

	case UpdateSchedule:
		if !isPro {
			return errResult(CodeProRequired)
		}
		if !cmd.Schedule.Valid() {
			return errResult(CodeInvalidSchedule)
		}
		doc.Schedule = cmd.Schedule
		return c.persist(doc, isPro)

	case SetPassword:
		if !isPro {
			return errResult(CodeProRequired)
		}
		if cmd.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
			if err != nil {
				return Result{Error: CodeInvalidData, Message: err.Error()}
			}
			doc.Password = state.PasswordProtection{Enabled: true, Hash: string(hash)}
		} else {
			doc.Password = state.PasswordProtection{}
		}
		return c.persist(doc, isPro)

	case UpdateSettings:
		if !validObject(cmd.Patch) {
			return errResult(CodeInvalidData)
		}
		if err := json.Unmarshal(cmd.Patch, &doc.Settings); err != nil {
			return errResult(CodeInvalidData)
		}
		return c.persist(doc, isPro)

	case SignUp:
		if c.account == nil {
			return errResult(CodeAccountUnavailable)
		}
		if err := c.account.SignUp(cmd.Email, cmd.Password); err != nil {
			return Result{Error: CodeAuthFailed, Message: err.Error()}
		}
		c.invalidatePro()
		return Result{Success: true, User: c.account.GetUser(), IsPro: c.proStatus(false)}

	case SignIn:
		if c.account == nil {
			return errResult(CodeAccountUnavailable)
		}
		if err := c.account.SignIn(cmd.Email, cmd.Password); err != nil {
			return Result{Error: CodeAuthFailed, Message: err.Error()}
		}
		c.invalidatePro()
		if doc.Settings.SyncEnabled {
			c.adoptSyncedData(&doc)
		}
		return Result{Success: true, User: c.account.GetUser(), IsPro: c.proStatus(false)}

	case SignOut:
		if c.account != nil {
			if err := c.account.SignOut(); err != nil {
				logger.Warnf("Sign-out cleanup failed: %v", err)
			}
		}
		c.invalidatePro()
		return Result{Success: true}

	case ResetPassword:
		if c.account == nil {
			return errResult(CodeAccountUnavailable)
		}
		if err := c.account.ResetPassword(cmd.Email); err != nil {
			return Result{Error: CodeAuthFailed, Message: err.Error()}
		}
		return Result{Success: true, IsPro: isPro}

	case UpdatePassword:
		if c.account == nil {
			return errResult(CodeAccountUnavailable)
		}
		if err := c.account.UpdatePassword(cmd.Password); err != nil {
			return Result{Error: CodeAuthFailed, Message: err.Error()}
		}
		return Result{Success: true, IsPro: isPro}

	case UpdateEmail:
		if c.account == nil {
			return errResult(CodeAccountUnavailable)
		}
		if err := c.account.UpdateEmail(cmd.Email); err != nil {
			return Result{Error: CodeAuthFailed, Message: err.Error()}
		}
		return Result{Success: true, IsPro: isPro}

	case DeleteAccount:
		if c.account == nil {
			return errResult(CodeAccountUnavailable)
		}
		if err := c.account.DeleteAccount(); err != nil {
			return Result{Error: CodeAuthFailed, Message: err.Error()}
		}
		c.invalidatePro()
		return Result{Success: true}

	case CreateCheckout:
		if c.account == nil {
			return errResult(CodeAccountUnavailable)
		}
		if !c.account.IsAuthenticated() {
			return errResult(CodeNotAuthenticated)
		}
		cs, err := c.account.CreateCheckoutSession(cmd.PriceID)
		if err != nil {
			return Result{Error: CodeAuthFailed, Message: err.Error()}
		}
		return Result{Success: true, URL: cs.URL, IsPro: isPro}

	case OpenPortal:
		if c.account == nil {
			return errResult(CodeAccountUnavailable)
		}
		if !c.account.IsAuthenticated() {
			return errResult(CodeNotAuthenticated)
		}
		cs, err := c.account.CreatePortalSession()
		if err != nil {
			return Result{Error: CodeAuthFailed, Message: err.Error()}
		}
		return Result{Success: true, URL: cs.URL, IsPro: isPro}

	case RefreshSubscription:
		if c.account == nil {
			return errResult(CodeAccountUnavailable)
		}
		if err := c.account.RefreshSubscription(); err != nil {
			logger.Warnf("Subscription refresh failed: %v", err)
		}
		c.invalidatePro()
		return Result{Success: true, IsPro: c.proStatus(true)}

	case ExportData:
		return Result{
			IsPro: isPro,
			Export: &state.Export{
				Version:    c.version,
				ExportedAt: c.now(),
				Data:       doc,
			},
		}

	case ImportData:
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(cmd.Payload, &envelope); err != nil || !validObject(envelope.Data) {
			return errResult(CodeInvalidData)
		}
		imported, err := state.Overlay(state.Default(c.now()), envelope.Data)
		if err != nil {
			return errResult(CodeInvalidData)
		}
		res := c.persist(imported, isPro)
		res.Success = res.Error == ""
		return res

	case ResetStats:
		doc.Stats = stats.New(c.now())
		return c.persist(doc, isPro)

	case ResetAll:
		res := c.persist(state.Default(c.now()), isPro)
		res.Success = res.Error == ""
		return res

	case SyncNow:
		if c.account == nil || !c.account.IsAuthenticated() {
			return errResult(CodeNotAuthenticated)
		}
		if err := c.account.SyncData(doc); err != nil {
			return Result{Error: CodeSyncFailed, Message: err.Error()}
		}
		return Result{Success: true, IsPro: isPro}
	}

	return errResult(CodeUnknownCommand)
}

// validObject rejects the absent and literal-null payloads json.Unmarshal
// would otherwise accept as a silent no-op.
func validObject(raw json.RawMessage) bool {
	return len(raw) > 0 && string(bytes.TrimSpace(raw)) != "null"
}

func (c *Controller) stateResult(doc state.Document, isPro bool) Result {
	return Result{State: &doc, IsPro: isPro}
}

func (c *Controller) persist(doc state.Document, isPro bool) Result {
	if err := c.store.Save(doc); err != nil {
		logger.Errorf("Save state failed: %v", err)
		return Result{Error: CodeInvalidData, Message: err.Error()}
	}
	return c.stateResult(doc, isPro)
}

func (c *Controller) invalidatePro() {
	if c.pro != nil {
		c.pro.Invalidate()
	}
}

// adoptSyncedData overlays the remote copy onto local state after sign-in.
// Remote errors leave local state untouched.
func (c *Controller) adoptSyncedData(doc *state.Document) {
	sd, err := c.account.LoadSyncedData()
	if err != nil {
		logger.Warnf("Loading synced data failed: %v", err)
		return
	}
	if sd == nil {
		return
	}
	if len(sd.BlockedSites) > 0 {
		doc.BlockedSites = sd.BlockedSites
	}
	if sd.Settings != nil {
		doc.Settings = *sd.Settings
	}
	if sd.Schedule != nil {
		doc.Schedule = *sd.Schedule
	}
	if err := c.store.Save(*doc); err != nil {
		logger.Errorf("Persisting synced data failed: %v", err)
	}
}
