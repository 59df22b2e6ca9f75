package limit

import (
	"time"

	apperrors "walletcore/internal/errors"
	"walletcore/internal/models"
)

// resolveKey fills omitted date parts from now and reduces the triple to the
// granularity of period. Unused parts are 0.
func resolveKey(period models.Period, now time.Time, year, month, day *int) (int, int, int, error) {
	now = now.UTC()
	y, m, d := now.Year(), int(now.Month()), now.Day()
	if year != nil {
		y = *year
	}
	if month != nil {
		m = *month
	}
	if day != nil {
		d = *day
	}

	switch period {
	case models.PeriodYear:
		m, d = 0, 0
	case models.PeriodMonth:
		d = 0
	case models.PeriodDay:
	default:
		return 0, 0, 0, apperrors.Validation("definition has unknown period %q", period)
	}

	if y < 1 || y > 9999 {
		return 0, 0, 0, apperrors.Validation("year %d is out of range", y)
	}
	if period != models.PeriodYear && (m < 1 || m > 12) {
		return 0, 0, 0, apperrors.Validation("month %d is out of range", m)
	}
	if period == models.PeriodDay {
		last := time.Date(y, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
		if d < 1 || d > last {
			return 0, 0, 0, apperrors.Validation("day %d is out of range", d)
		}
	}
	return y, m, d, nil
}
