package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"adpilot/internal/core/domain"
)

// windowHours returns the reference window's hour sequence as hour-of-day
// labels, inclusive of both the start and end hours. Hours wrap at 24 when
// the window spans into the next calendar day; the sequence is capped at a
// full day since labels repeat past that.
func windowHours(start, end time.Time) []string {
	if end.Before(start) {
		return nil
	}
	var hours []string
	t := start.Truncate(time.Hour)
	for !t.After(end) && len(hours) < 24 {
		hours = append(hours, fmt.Sprintf("%02d", t.Hour()))
		t = t.Add(time.Hour)
	}
	return hours
}

// finalWindowHour is the hour label of the window's last hour. It comes
// from the window end directly, not from the windowHours sequence, so a
// window longer than the capped label sequence still finalizes on its
// true last hour.
func finalWindowHour(end time.Time) string {
	return fmt.Sprintf("%02d", end.Hour())
}

// normalizeHourly re-keys a remote hourly map by canonical zero-padded
// labels. Remote platforms are inconsistent about key shape, so "9",
// "09" and "09:00" all land on "09". Unparseable keys are dropped; a
// sparse or misshapen map must never abort the whole reconciliation.
func normalizeHourly(raw map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(raw))
	for key, views := range raw {
		h := strings.TrimSpace(key)
		if i := strings.IndexByte(h, ':'); i >= 0 {
			h = h[:i]
		}
		n, err := strconv.Atoi(h)
		if err != nil || n < 0 || n > 23 {
			continue
		}
		out[fmt.Sprintf("%02d", n)] = views
	}
	return out
}

// cumulativeSeries orders the raw cumulative counts by the window's hour
// sequence. Hours missing from the remote data are simply omitted.
func cumulativeSeries(hours []string, hourly map[string]int64) []domain.HourlyPoint {
	var series []domain.HourlyPoint
	for _, h := range hours {
		views, ok := hourly[h]
		if !ok {
			continue
		}
		series = append(series, domain.HourlyPoint{Hour: h, Views: views})
	}
	return series
}

// deltaSeries derives the per-hour view series from a cumulative one. The
// first present hour's delta is its own cumulative value (the baseline is
// zero); every later hour is the absolute difference from the previous
// present hour, so a gap in the remote data charges the whole missing span
// to the next hour that did report.
func deltaSeries(cumulative []domain.HourlyPoint) []domain.HourlyPoint {
	if len(cumulative) == 0 {
		return nil
	}
	series := make([]domain.HourlyPoint, 0, len(cumulative))
	prev := int64(0)
	for i, p := range cumulative {
		delta := p.Views - prev
		if i > 0 && delta < 0 {
			delta = -delta
		}
		series = append(series, domain.HourlyPoint{Hour: p.Hour, Views: delta})
		prev = p.Views
	}
	return series
}
