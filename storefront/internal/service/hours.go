package service

import (
	"strings"
	"time"

	"ardelivero-storefront/storefront/internal/domain"
)

type HoursStatus struct {
	Open  bool
	Label string
}

var clockLayouts = []string{"15:04", "3:04 PM", "3:04PM"}

// minuteOfDay parses a wall-clock time such as "09:00" or "9:00 PM".
func minuteOfDay(s string) (int, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

// window returns the parsed bounds of the entry for weekday. A missing,
// empty or unparseable entry reports ok=false.
func window(hours domain.OpeningHours, weekday time.Weekday) (from, to int, ok bool) {
	day, found := hours[strings.ToLower(weekday.String())]
	if !found || strings.TrimSpace(day.From) == "" || strings.TrimSpace(day.To) == "" {
		return 0, 0, false
	}
	from, okFrom := minuteOfDay(day.From)
	to, okTo := minuteOfDay(day.To)
	return from, to, okFrom && okTo
}

// EvaluateHours reports whether a restaurant is open at now, in now's
// location. Today's entry opens the restaurant from its "from" time; when
// "to" is earlier than "from" that window runs past midnight, so the hours
// after midnight belong to the previous weekday's entry. Equal bounds are
// closed. The label is today's window, or the previous day's while its tail
// is still running and today has no usable entry.
func EvaluateHours(hours domain.OpeningHours, now time.Time) HoursStatus {
	current := now.Hour()*60 + now.Minute()
	var status HoursStatus

	if from, to, ok := window(hours, now.Weekday()); ok {
		status.Label = formatMinute(from) + "–" + formatMinute(to)
		switch {
		case from < to:
			status.Open = current >= from && current < to
		case from > to:
			status.Open = current >= from
		}
	}

	yesterday := now.AddDate(0, 0, -1).Weekday()
	if from, to, ok := window(hours, yesterday); ok && from > to && current < to {
		status.Open = true
		if status.Label == "" {
			status.Label = formatMinute(from) + "–" + formatMinute(to)
		}
	}
	return status
}

func formatMinute(m int) string {
	return time.Date(0, 1, 1, m/60, m%60, 0, 0, time.UTC).Format("15:04")
}
