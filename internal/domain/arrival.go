package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// arrivalLead is the delay between an order date and its arrival date. It is
// an absolute duration, not a calendar day.
const arrivalLead = 24 * time.Hour

var (
	// ErrNoDate is returned by ParseDateInput for absent input.
	ErrNoDate = errors.New("no date")
	// ErrInvalidDate is returned by ParseDateInput for input that is not a date.
	ErrInvalidDate = errors.New("invalid date")
)

// seoul is the display timezone for arrival labels. Korea has not observed
// DST since 1988, so the fixed offset is an exact fallback when tzdata is missing.
var seoul = loadSeoul()

func loadSeoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// koreanWeekdays holds the full ko-KR weekday names, indexed by time.Weekday.
var koreanWeekdays = [...]string{
	time.Sunday:    "일요일",
	time.Monday:    "월요일",
	time.Tuesday:   "화요일",
	time.Wednesday: "수요일",
	time.Thursday:  "목요일",
	time.Friday:    "금요일",
	time.Saturday:  "토요일",
}

// dateLayout is a string layout accepted by ParseDateInput. A nil loc means
// the layout either carries its own offset or is read as UTC.
type dateLayout struct {
	layout string
	loc    *time.Location
}

// dateLayouts follows browser Date parsing: ISO date-only strings (YYYY,
// YYYY-MM, YYYY-MM-DD) are UTC, zone-less date-times are wall-clock time in
// the display timezone.
var dateLayouts = []dateLayout{
	{layout: time.RFC3339Nano},
	{layout: "2006-01-02T15:04Z07:00"},
	{layout: "2006-01-02"},
	{layout: "2006-01"},
	{layout: "2006"},
	{layout: "2006-01-02T15:04:05.999999999", loc: seoul},
	{layout: "2006-01-02T15:04", loc: seoul},
	{layout: "2006-01-02 15:04:05.999999999", loc: seoul},
	{layout: "2006-01-02 15:04", loc: seoul},
	{layout: "2006/01/02 15:04:05", loc: seoul},
	{layout: "2006/01/02", loc: seoul},
	{layout: time.RFC1123},
	{layout: time.RFC1123Z},
}

// ParseDateInput converts a loosely typed date value into a time.Time.
// Accepted inputs are nil, string, time.Time and *time.Time. Absent values
// (nil, empty string, zero time) yield ErrNoDate. Anything that cannot be read
// as a date yields ErrInvalidDate.
func ParseDateInput(input any) (time.Time, error) {
	switch v := input.(type) {
	case nil:
		return time.Time{}, ErrNoDate
	case time.Time:
		if v.IsZero() {
			return time.Time{}, ErrNoDate
		}
		return v, nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, ErrNoDate
		}
		return *v, nil
	case string:
		return parseDateString(v)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, input)
	}
}

func parseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrNoDate
	}
	for _, l := range dateLayouts {
		var (
			t   time.Time
			err error
		)
		if l.loc != nil {
			t, err = time.ParseInLocation(l.layout, s, l.loc)
		} else {
			t, err = time.Parse(l.layout, s)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ArrivalDate returns the expected arrival instant for an order placed at t,
// expressed in the display timezone.
func ArrivalDate(t time.Time) time.Time {
	return t.Add(arrivalLead).In(seoul)
}

// ArrivalLabel renders the "M/D(weekday) 도착" label for a date one day after
// input. It returns "" when input is absent or not a date.
func ArrivalLabel(input any) string {
	t, err := ParseDateInput(input)
	if err != nil {
		return ""
	}
	return formatArrival(ArrivalDate(t))
}

func formatArrival(arrival time.Time) string {
	return fmt.Sprintf("%d/%d(%s) 도착", int(arrival.Month()), arrival.Day(), shortWeekday(arrival.Weekday()))
}

// shortWeekday strips the "요일" suffix from the full weekday name, "화요일" -> "화".
func shortWeekday(d time.Weekday) string {
	if int(d) < 0 || int(d) >= len(koreanWeekdays) {
		return ""
	}
	return strings.TrimSuffix(koreanWeekdays[d], "요일")
}
