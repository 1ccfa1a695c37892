// Package clock supplies the current instant and civil day in one fixed time
// zone. Receipts, snapshots, and day boundaries are always evaluated in the
// configured zone, never the host machine's local zone.
package clock

import (
	"fmt"
	"time"
)

// DayFormat is the civil date layout used for plan days, snapshot dates, and
// goal date ranges.
const DayFormat = "2006-01-02"

// Clock provides timestamps and the current civil day.
type Clock interface {
	Now() time.Time
	Today() string
}

type zoned struct {
	loc *time.Location
}

// New returns a Clock evaluated in the named IANA zone. An empty name means
// UTC.
func New(timezone string) (Clock, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}
	return &zoned{loc: loc}, nil
}

func (c *zoned) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *zoned) Today() string {
	return c.Now().Format(DayFormat)
}

// Fixed is a Clock pinned to a single instant, for tests.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time {
	return f.Instant
}

func (f Fixed) Today() string {
	return f.Instant.Format(DayFormat)
}

// ParseDay parses a civil date string in DayFormat as a UTC instant.
func ParseDay(day string) (time.Time, error) {
	t, err := time.ParseInLocation(DayFormat, day, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing day %q: %w", day, err)
	}
	return t, nil
}
