// Package clock is the single time-arithmetic authority of the
// service.  Every comparison the system makes (conflict detection,
// check-in windows, the advance-booking cutoff) runs through a Clock
// bound to one fixed civil timezone.  No other code path may fall back
// to the host machine's local zone.
package clock

import (
    "fmt"
    "time"
)

// DefaultTimezone is used when the TIMEZONE environment variable is
// unset.  All civil-day boundaries are computed in this location.
const DefaultTimezone = "Asia/Shanghai"

// Clock produces the current instant and civil-day boundaries in a
// fixed timezone.  The now function is injectable so tests can freeze
// time; in production it defaults to time.Now.
type Clock struct {
    loc *time.Location
    now func() time.Time
}

// New returns a Clock bound to the named timezone.  The name must be a
// valid IANA zone such as "Asia/Shanghai".
func New(name string) (*Clock, error) {
    loc, err := time.LoadLocation(name)
    if err != nil {
        return nil, fmt.Errorf("load timezone %q: %w", name, err)
    }
    return &Clock{loc: loc, now: time.Now}, nil
}

// NewFixed returns a Clock whose Now always reports the instant
// produced by the supplied function, expressed in the given location.
// Intended for tests.
func NewFixed(loc *time.Location, now func() time.Time) *Clock {
    return &Clock{loc: loc, now: now}
}

// Location exposes the clock's civil timezone.
func (c *Clock) Location() *time.Location { return c.loc }

// Now returns the current instant in the clock's civil timezone.
func (c *Clock) Now() time.Time { return c.now().In(c.loc) }

// In re-expresses an instant in the clock's civil timezone.  Use this
// on every timestamp read back from storage before doing day
// arithmetic on it.
func (c *Clock) In(t time.Time) time.Time { return t.In(c.loc) }

// StartOfDay returns midnight of the civil day containing t.
func (c *Clock) StartOfDay(t time.Time) time.Time {
    t = t.In(c.loc)
    y, m, d := t.Date()
    return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// EndOfDay returns the last included millisecond of the civil day
// containing t (23:59:59.999).  Reservations are half-open intervals,
// so a reservation running "to the end of the day" ends at this
// instant.
func (c *Clock) EndOfDay(t time.Time) time.Time {
    return c.StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// AddMinutes returns t shifted by n minutes, in the civil timezone.
func (c *Clock) AddMinutes(t time.Time, n int) time.Time {
    return t.In(c.loc).Add(time.Duration(n) * time.Minute)
}

// AddDays returns t shifted by n civil days.  AddDate is used so the
// shift follows the calendar rather than a fixed 24h duration.
func (c *Clock) AddDays(t time.Time, n int) time.Time {
    return t.In(c.loc).AddDate(0, 0, n)
}

// DiffMinutes returns the signed whole number of minutes a-b,
// truncated toward zero.
func (c *Clock) DiffMinutes(a, b time.Time) int {
    return int(a.Sub(b) / time.Minute)
}

// Next24Hours returns the instant exactly 24 hours after t.  It bounds
// the lookahead horizon used by seat status resolution.
func (c *Clock) Next24Hours(t time.Time) time.Time {
    return t.In(c.loc).Add(24 * time.Hour)
}

// Tomorrow returns midnight of the civil day after the one containing t.
func (c *Clock) Tomorrow(t time.Time) time.Time {
    return c.StartOfDay(t).AddDate(0, 0, 1)
}

// ParseError reports a malformed date-string input.
type ParseError struct {
    Input string
    Err   error
}

func (e *ParseError) Error() string {
    return fmt.Sprintf("invalid time %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse interprets an RFC3339 timestamp and re-expresses it in the
// clock's civil timezone.  Malformed input yields a *ParseError.
func (c *Clock) Parse(s string) (time.Time, error) {
    t, err := time.Parse(time.RFC3339, s)
    if err != nil {
        return time.Time{}, &ParseError{Input: s, Err: err}
    }
    return t.In(c.loc), nil
}
