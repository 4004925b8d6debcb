package progression

import (
	"fmt"
	"time"
)

type RangeToken string

const (
	RangeOneMonth    RangeToken = "1m"
	RangeThreeMonths RangeToken = "3m"
	RangeSixMonths   RangeToken = "6m"
	RangeOneYear     RangeToken = "1y"
	RangeAll         RangeToken = "all"

	DefaultRange = RangeThreeMonths
)

var ErrUnknownRange = fmt.Errorf("unknown range, expected one of %s, %s, %s, %s, %s",
	RangeOneMonth, RangeThreeMonths, RangeSixMonths, RangeOneYear, RangeAll)

// ResolveRange turns a range token into the inclusive start date relative to now.
// Relative ranges start at midnight of the day in now's location, so every
// request of the same day resolves to the same start. An empty token resolves
// to DefaultRange, "all" to the Unix epoch.
func ResolveRange(token string, now time.Time) (time.Time, error) {
	if token == "" {
		token = string(DefaultRange)
	}
	now = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch RangeToken(token) {
	case RangeOneMonth:
		return now.AddDate(0, -1, 0), nil
	case RangeThreeMonths:
		return now.AddDate(0, -3, 0), nil
	case RangeSixMonths:
		return now.AddDate(0, -6, 0), nil
	case RangeOneYear:
		return now.AddDate(-1, 0, 0), nil
	case RangeAll:
		return time.Unix(0, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownRange, token)
	}
}
