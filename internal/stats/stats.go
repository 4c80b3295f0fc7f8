package stats

import (
	"sort"
	"strings"
	"time"
)

const (
	historyCap = 90
	topCap     = 20
)

// DayRecord is one archived day of activity.
type DayRecord struct {
	Date         string `json:"date"`
	Blocks       int    `json:"blocks"`
	FocusMinutes int    `json:"focusMinutes"`
}

// SiteCount is one entry of the most-blocked ranking. The slice it lives in is
// kept sorted by count descending; ties keep first-seen order.
type SiteCount struct {
	Site  string `json:"site"`
	Count int    `json:"count"`
}

// Stats holds the rolling block counters. Daily, weekly and monthly counters
// reset when their boundary marker no longer matches the current calendar
// period.
type Stats struct {
	BlocksToday     int `json:"blocksToday"`
	BlocksTotal     int `json:"blocksTotal"`
	BlocksThisWeek  int `json:"blocksThisWeek"`
	BlocksThisMonth int `json:"blocksThisMonth"`

	LastResetDate  string `json:"lastResetDate"`
	WeekStartDate  string `json:"weekStartDate"`
	MonthStartDate string `json:"monthStartDate"`

	DailyHistory []DayRecord `json:"dailyHistory"`

	StreakDays    int `json:"streakDays"`
	LongestStreak int `json:"longestStreak"`

	FocusMinutesToday int `json:"focusMinutesToday"`
	TotalFocusMinutes int `json:"totalFocusMinutes"`

	MostBlocked []SiteCount `json:"mostBlockedSites"`
}

// New returns zeroed stats with boundary markers anchored at now.
func New(now time.Time) Stats {
	return Stats{
		LastResetDate:  DateKey(now),
		WeekStartDate:  WeekStart(now),
		MonthStartDate: MonthStart(now),
		DailyHistory:   []DayRecord{},
		MostBlocked:    []SiteCount{},
	}
}

// DateKey formats a calendar date marker.
func DateKey(t time.Time) string { return t.Format("2006-01-02") }

// WeekStart returns the date of the Monday of t's week.
func WeekStart(t time.Time) string {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return DateKey(t.AddDate(0, 0, -(wd - 1)))
}

// MonthStart returns the date of the first of t's month.
func MonthStart(t time.Time) string {
	return DateKey(time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()))
}

// RollOver applies any pending day, week and month boundary crossings. A
// closing day with activity is archived to DailyHistory (oldest entries beyond
// the cap evicted) and extends the streak; an idle day resets the streak.
// Exposed separately from RecordBlock so a periodic tick can roll counters on
// days that see focus time but no blocks.
func (s *Stats) RollOver(now time.Time) {
	today := DateKey(now)
	if s.LastResetDate != today {
		if s.BlocksToday > 0 || s.FocusMinutesToday > 0 {
			s.DailyHistory = append(s.DailyHistory, DayRecord{
				Date:         s.LastResetDate,
				Blocks:       s.BlocksToday,
				FocusMinutes: s.FocusMinutesToday,
			})
			if n := len(s.DailyHistory); n > historyCap {
				s.DailyHistory = s.DailyHistory[n-historyCap:]
			}
			s.StreakDays++
			if s.StreakDays > s.LongestStreak {
				s.LongestStreak = s.StreakDays
			}
		} else {
			s.StreakDays = 0
		}
		s.BlocksToday = 0
		s.FocusMinutesToday = 0
		s.LastResetDate = today
	}

	if ws := WeekStart(now); s.WeekStartDate != ws {
		s.BlocksThisWeek = 0
		s.WeekStartDate = ws
	}
	if ms := MonthStart(now); s.MonthStartDate != ms {
		s.BlocksThisMonth = 0
		s.MonthStartDate = ms
	}
}

// RecordBlock rolls pending boundaries, increments every counter and bumps the
// hostname in the most-blocked ranking.
func (s *Stats) RecordBlock(hostname string, now time.Time) {
	s.RollOver(now)

	s.BlocksToday++
	s.BlocksTotal++
	s.BlocksThisWeek++
	s.BlocksThisMonth++

	s.bumpSite(strings.TrimPrefix(strings.ToLower(hostname), "www."))
}

// AccrueFocusMinute adds one minute of focus time. Callers invoke it at most
// once per minute while focus is active; boundary handling lives in RollOver.
func (s *Stats) AccrueFocusMinute() {
	s.FocusMinutesToday++
	s.TotalFocusMinutes++
}

func (s *Stats) bumpSite(site string) {
	found := false
	for i := range s.MostBlocked {
		if s.MostBlocked[i].Site == site {
			s.MostBlocked[i].Count++
			found = true
			break
		}
	}
	if !found {
		s.MostBlocked = append(s.MostBlocked, SiteCount{Site: site, Count: 1})
	}
	// stable sort keeps first-seen order among equal counts
	sort.SliceStable(s.MostBlocked, func(i, j int) bool {
		return s.MostBlocked[i].Count > s.MostBlocked[j].Count
	})
	if len(s.MostBlocked) > topCap {
		s.MostBlocked = s.MostBlocked[:topCap]
	}
}
