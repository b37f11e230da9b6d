package timeofday

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidFormat = errors.New("time of day must be in HH:MM 24-hour format")

// TimeOfDay is a wall-clock time with minute precision, stored as minutes since midnight.
type TimeOfDay int

const (
	Midnight   TimeOfDay = 0
	LastMinute TimeOfDay = 23*60 + 59
)

// Parse parses a zero-padded "HH:MM" string.
func Parse(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	h, okH := twoDigits(s[0], s[1])
	m, okM := twoDigits(s[3], s[4])
	if !okH || !okM || h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return TimeOfDay(h*60 + m), nil
}

// MustParse is Parse for package-level defaults.
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Of returns the wall-clock time of t in t's own location. Seconds are dropped.
func Of(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On places t on the calendar day of d, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, d.Location())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// Window is a same-day range with inclusive bounds.
type Window struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// NewWindow parses both bounds and rejects start > end.
func NewWindow(start, end string) (Window, error) {
	s, err := Parse(start)
	if err != nil {
		return Window{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Window{}, err
	}
	w := Window{Start: s, End: e}
	if err := w.Validate(); err != nil {
		return Window{}, err
	}
	return w, nil
}

func (w Window) Validate() error {
	if w.Start < Midnight || w.End > LastMinute {
		return ErrInvalidFormat
	}
	if w.Start > w.End {
		return fmt.Errorf("window start %s is after end %s", w.Start, w.End)
	}
	return nil
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t TimeOfDay) bool {
	return w.Start <= t && t <= w.End
}

// ContainsTime is Contains applied to the wall-clock time of instant.
func (w Window) ContainsTime(instant time.Time) bool {
	return w.Contains(Of(instant))
}

func (w Window) String() string {
	return w.Start.String() + " - " + w.End.String()
}
