package session

import (
	"context"
	"time"

	"focusguard/internal/logger"
)

// Fixed periods of the independent background ticks.
const (
	ScheduleTick = 1 * time.Minute
	FocusTick    = 1 * time.Minute
	SyncTick     = 5 * time.Minute
	RollOverTick = 60 * time.Minute
	ProTick      = 30 * time.Minute
)

// Run drives the periodic work until the context is cancelled: schedule
// transitions, focus-minute accrual, remote sync, stats boundary rolls and
// subscription refresh. Each fires on its own period; none blocks another
// beyond the shared state mutex.
func (c *Controller) Run(ctx context.Context) {
	scheduleT := time.NewTicker(ScheduleTick)
	focusT := time.NewTicker(FocusTick)
	syncT := time.NewTicker(SyncTick)
	rollT := time.NewTicker(RollOverTick)
	proT := time.NewTicker(ProTick)
	defer scheduleT.Stop()
	defer focusT.Stop()
	defer syncT.Stop()
	defer rollT.Stop()
	defer proT.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-scheduleT.C:
			c.tickSchedule()
		case <-focusT.C:
			c.tickFocusMinute()
		case <-syncT.C:
			c.tickSync()
		case <-rollT.C:
			c.tickRollOver()
		case <-proT.C:
			c.proStatus(true)
		}
	}
}

// tickSchedule recomputes effective activity and logs transitions. A closing
// schedule window ends scheduled activity; manual focus persists on its own.
func (c *Controller) tickSchedule() {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.store.Load()
	if err != nil {
		logger.Warnf("Schedule tick load failed: %v", err)
		return
	}
	act := c.activityFor(doc, c.proStatus(false), c.now())
	if act != c.lastActivity {
		logger.Infof("Focus activity %s -> %s", c.lastActivity, act)
		c.lastActivity = act
	}
}

// tickFocusMinute accrues one focus minute while effectively active.
func (c *Controller) tickFocusMinute() {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.store.Load()
	if err != nil {
		logger.Warnf("Focus tick load failed: %v", err)
		return
	}
	if c.activityFor(doc, c.proStatus(false), c.now()) == Inactive {
		return
	}
	doc.Stats.AccrueFocusMinute()
	if err := c.store.Save(doc); err != nil {
		logger.Errorf("Focus tick save failed: %v", err)
	}
}

// tickRollOver applies calendar boundary resets even on days without a block,
// so focusMinutesToday and the streak roll promptly.
func (c *Controller) tickRollOver() {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.store.Load()
	if err != nil {
		logger.Warnf("Rollover tick load failed: %v", err)
		return
	}
	before := doc.Stats.LastResetDate + doc.Stats.WeekStartDate + doc.Stats.MonthStartDate
	doc.Stats.RollOver(c.now())
	after := doc.Stats.LastResetDate + doc.Stats.WeekStartDate + doc.Stats.MonthStartDate
	if before == after {
		return
	}
	if err := c.store.Save(doc); err != nil {
		logger.Errorf("Rollover tick save failed: %v", err)
	}
}

// tickSync pushes state to the remote service when sync is on and a session
// exists. Failures are logged and swallowed.
func (c *Controller) tickSync() {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := c.store.Load()
	if err != nil {
		return
	}
	if !doc.Settings.SyncEnabled || c.account == nil || !c.account.IsAuthenticated() {
		return
	}
	if err := c.account.SyncData(doc); err != nil {
		logger.Warnf("Auto-sync failed: %v", err)
	}
}
