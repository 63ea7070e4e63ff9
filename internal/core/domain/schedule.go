package domain

import (
	"fmt"
	"sort"
	"time"
)

// TimeOfDay is minutes since midnight, in the scheduler's local day.
type TimeOfDay int

// At anchors the time of day on the calendar date of t, preserving t's
// location.
func (d TimeOfDay) At(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, int(d)/60, int(d)%60, 0, 0, t.Location())
}

func (d TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(d)/60, int(d)%60)
}

// Schedule is one weekly recurring launch window for a campaign: on the
// given weekday the campaign may run between [StartTime, EndTime).
type Schedule struct {
	ID         int64
	CampaignID int64
	Weekday    time.Weekday
	StartTime  TimeOfDay
	EndTime    TimeOfDay
}

// Contains reports whether the instant t falls inside this schedule's
// weekly window.
func (s Schedule) Contains(t time.Time) bool {
	if t.Weekday() != s.Weekday {
		return false
	}
	minute := TimeOfDay(t.Hour()*60 + t.Minute())
	return minute >= s.StartTime && minute < s.EndTime
}

// Window computes the concrete [start, end) launch window for the calendar
// day of now.
func (s Schedule) Window(now time.Time) (time.Time, time.Time) {
	return s.StartTime.At(now), s.EndTime.At(now)
}

// ValidateSchedules checks a campaign's full schedule set. Each row must
// have start < end, and rows sharing a weekday must not overlap. The whole
// set is rejected on the first violation; schedule rules are enforced at
// save time so the evaluator never has to resolve conflicts.
func ValidateSchedules(rows []Schedule) error {
	for _, s := range rows {
		if s.StartTime >= s.EndTime {
			return fmt.Errorf("schedule on %s: start %s is not before end %s", s.Weekday, s.StartTime, s.EndTime)
		}
		if s.StartTime < 0 || s.EndTime > 24*60 {
			return fmt.Errorf("schedule on %s: window %s-%s is outside the day", s.Weekday, s.StartTime, s.EndTime)
		}
	}
	byDay := make(map[time.Weekday][]Schedule)
	for _, s := range rows {
		byDay[s.Weekday] = append(byDay[s.Weekday], s)
	}
	for day, rows := range byDay {
		sort.Slice(rows, func(i, j int) bool { return rows[i].StartTime < rows[j].StartTime })
		for i := 1; i < len(rows); i++ {
			if rows[i].StartTime < rows[i-1].EndTime {
				return fmt.Errorf("schedules on %s overlap: %s-%s and %s-%s",
					day, rows[i-1].StartTime, rows[i-1].EndTime, rows[i].StartTime, rows[i].EndTime)
			}
		}
	}
	return nil
}
