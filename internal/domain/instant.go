package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type instantKind uint8

const (
	instantEmpty instantKind = iota
	instantNative
	instantRaw
)

// Instant is a date representation as it arrives from clients or storage:
// either a native timestamp or a raw string ("Monday, October 6, 2025",
// "2025-10-06", RFC 3339, ...). NormalizeDate is the only place that looks
// inside it.
type Instant struct {
	kind   instantKind
	native time.Time
	raw    string
}

// NativeInstant wraps a timestamp
func NativeInstant(t time.Time) Instant {
	return Instant{kind: instantNative, native: t}
}

// RawInstant wraps a client-supplied date string
func RawInstant(s string) Instant {
	return Instant{kind: instantRaw, raw: s}
}

// IsZero returns true for an empty instant, a zero timestamp or a blank string
func (i Instant) IsZero() bool {
	switch i.kind {
	case instantNative:
		return i.native.IsZero()
	case instantRaw:
		return strings.TrimSpace(i.raw) == ""
	}
	return true
}

func (i Instant) String() string {
	switch i.kind {
	case instantNative:
		return i.native.Format(time.RFC3339)
	case instantRaw:
		return i.raw
	}
	return ""
}

var longDatePattern = regexp.MustCompile(`(\w+), (\w+) (\d+), (\d+)`)

var monthNumbers = map[string]string{
	"January":   "01",
	"February":  "02",
	"March":     "03",
	"April":     "04",
	"May":       "05",
	"June":      "06",
	"July":      "07",
	"August":    "08",
	"September": "09",
	"October":   "10",
	"November":  "11",
	"December":  "12",
}

type dateLayout struct {
	layout  string
	hasZone bool
}

// Порядок важен: сначала форматы с зоной, затем локальные
var genericLayouts = []dateLayout{
	{time.RFC3339, true},
	{time.RFC1123Z, true},
	{time.RFC1123, true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04:05", false},
	{DateFormat, false},
	{"2006/01/02", false},
	{"January 2, 2006", false},
	{"Jan 2, 2006", false},
	{"Mon, Jan 2, 2006", false},
	{"2 January 2006", false},
}

// NormalizeDate returns the canonical YYYY-MM-DD key of an instant.
// Native timestamps take their date in loc. Raw strings go through the long
// locale form first, then generic parsing; values with an explicit offset are
// moved to loc before the date is taken. Unrecognised strings are returned
// verbatim so that callers can still compare them as-is.
func NormalizeDate(i Instant, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}

	switch i.kind {
	case instantNative:
		if i.native.IsZero() {
			return ""
		}
		return i.native.In(loc).Format(DateFormat)
	case instantRaw:
		return normalizeDateString(i.raw, loc)
	}
	return ""
}

func normalizeDateString(value string, loc *time.Location) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return ""
	}

	if strings.Contains(s, ",") {
		if m := longDatePattern.FindStringSubmatch(s); m != nil {
			if month, ok := monthNumbers[m[2]]; ok {
				day := m[3]
				if len(day) < 2 {
					day = "0" + day
				}
				return fmt.Sprintf("%s-%s-%s", m[4], month, day)
			}
		}
	}

	for _, l := range genericLayouts {
		if l.hasZone {
			t, err := time.Parse(l.layout, s)
			if err == nil {
				return t.In(loc).Format(DateFormat)
			}
			continue
		}
		t, err := time.ParseInLocation(l.layout, s, loc)
		if err == nil {
			return t.Format(DateFormat)
		}
	}

	return value
}

// FormatTimeKey formats the time-of-day part used in slot keys
func FormatTimeKey(t time.Time, loc *time.Location, layout string) string {
	if loc == nil {
		loc = time.UTC
	}
	if layout == "" {
		layout = TimeFormat
	}
	return t.In(loc).Format(layout)
}
