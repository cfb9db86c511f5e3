package record

import (
	"regexp"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var timeOfDay = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// FormatDateKey renders t as the YYYY-MM-DD document key in loc.
func FormatDateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// ParseDateKey validates a YYYY-MM-DD key.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, key)
	if err != nil || t.Format(DateLayout) != key {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatTimeOfDay renders t as HH:mm in loc.
func FormatTimeOfDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimeLayout)
}

func validTimeOfDay(s string) bool {
	return timeOfDay.MatchString(s)
}

// RecentDates returns days date keys ending with today, newest first.
func RecentDates(now time.Time, days int, loc *time.Location) []string {
	if days < 1 {
		return nil
	}
	today := now.In(loc)
	keys := make([]string, days)
	for i := 0; i < days; i++ {
		keys[i] = today.AddDate(0, 0, -i).Format(DateLayout)
	}
	return keys
}
