package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Config is a weekly blocking window. Days use 0=Sunday..6=Saturday.
// StartTime and EndTime are "HH:MM" clocks within one day; no overnight
// wraparound.
type Config struct {
	Enabled   bool   `json:"enabled"`
	Days      []int  `json:"days"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Timezone  string `json:"timezone"`
}

// IsActive reports whether now falls inside the configured window. Evaluation
// happens in the schedule's own timezone; when the zone name is empty or
// unknown the time's existing location is used. The window is inclusive at the
// start and exclusive at the end.
func (c Config) IsActive(now time.Time) bool {
	if !c.Enabled {
		return false
	}
	if c.Timezone != "" {
		if loc, err := time.LoadLocation(c.Timezone); err == nil {
			now = now.In(loc)
		}
	}

	day := int(now.Weekday())
	found := false
	for _, d := range c.Days {
		if d == day {
			found = true
			break
		}
	}
	if !found {
		return false
	}

	start, ok := clockMinutes(c.StartTime)
	if !ok {
		return false
	}
	end, ok := clockMinutes(c.EndTime)
	if !ok {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	return cur >= start && cur < end
}

// Valid reports whether the window is well formed: parseable clocks with
// start strictly before end.
func (c Config) Valid() bool {
	start, ok := clockMinutes(c.StartTime)
	if !ok {
		return false
	}
	end, ok := clockMinutes(c.EndTime)
	if !ok {
		return false
	}
	return start < end
}

func clockMinutes(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	min, err := strconv.Atoi(m)
	if err != nil || min < 0 || min > 59 {
		return 0, false
	}
	return hour*60 + min, true
}
