package ledger

import (
	"fmt"
	"time"

	"walletcore/internal/models"
)

// Window returns the calendar days covered by period around ref, as the
// first and last day (both at 00:00 UTC), and the half-open instant range
// [from, until) used to select transactions.
func Window(period models.Period, ref time.Time) (firstDay, lastDay, from, until time.Time, err error) {
	ref = ref.UTC()
	y, m, d := ref.Date()

	switch period {
	case models.PeriodDay:
		firstDay = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		until = firstDay.AddDate(0, 0, 1)
	case models.PeriodMonth:
		firstDay = time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		until = firstDay.AddDate(0, 1, 0)
	case models.PeriodYear:
		firstDay = time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		until = firstDay.AddDate(1, 0, 0)
	default:
		return time.Time{}, time.Time{}, time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", period)
	}
	return firstDay, until.AddDate(0, 0, -1), firstDay, until, nil
}
