// Package media talks to the external media host: ids, thumbnails and durations.
package media

import (
	"fmt"
	"math"

	"github.com/sosodev/duration"
)

// maxDurationSeconds bounds displayable durations; anything longer is treated as malformed.
const maxDurationSeconds = math.MaxInt32

// FormatDuration renders an ISO-8601 duration as "H:MM:SS" when it spans an hour
// or more and "MM:SS" otherwise. Malformed, negative or out-of-range input yields "00:00".
func FormatDuration(iso string) string {
	d, err := duration.Parse(iso)
	if err != nil || d.Negative || d.Years != 0 || d.Months != 0 {
		return "00:00"
	}
	secs := d.Weeks*7*86400 + d.Days*86400 + d.Hours*3600 + d.Minutes*60 + d.Seconds
	if math.IsNaN(secs) || secs < 0 || secs > maxDurationSeconds {
		return "00:00"
	}

	total := int64(secs)
	h, rem := total/3600, total%3600
	mins, s := rem/60, rem%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, mins, s)
	}
	return fmt.Sprintf("%02d:%02d", mins, s)
}
