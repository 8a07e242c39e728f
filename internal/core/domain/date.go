package domain

import (
	"strings"
	"time"
)

// DateLayout is the day/month/year form used for every date shown or typed
// in the UI. Single-digit days and months are accepted on input.
const (
	DateLayout      = "02/01/2006"
	dateInputLayout = "2/1/2006"
)

// ParseDate parses a dd/mm/yyyy string. Impossible dates such as 31/02/2024
// are rejected.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateInputLayout, strings.TrimSpace(s))
}

// FormatDate renders t as dd/mm/yyyy, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
