// README: Billable day count for a rental window.
package quote

import "time"

const day = 24 * time.Hour

// BillableDays rounds any positive duration up to whole days, minimum one.
// Equal or reversed instants bill zero days.
func BillableDays(pickup, ret time.Time) int {
	d := ret.Sub(pickup)
	if d <= 0 {
		return 0
	}
	n := int((d + day - 1) / day)
	return max(1, n)
}
