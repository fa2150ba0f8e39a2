package capture

import "time"

// Remaining returns how many frames are left, never negative.
func Remaining(completed, total int) int {
	if completed >= total {
		return 0
	}
	return total - completed
}

// Percentage returns completion as 0-100, guarded against a zero total.
func Percentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(completed) / float64(total)
}

// ETA projects the completion timestamp of a running sequence.
//
// The average seconds-per-frame is either the configured interval (bulk
// capture, where the interval dominates) or the observed elapsed time per
// completed frame (adaptive, used for calibration runs whose exposure time
// dominates). Returns nil until at least one frame has completed, when
// nothing remains, or when no per-frame duration can be derived.
func ETA(now, startedAt time.Time, completed, total int, interval time.Duration, adaptive bool) *time.Time {
	remaining := Remaining(completed, total)
	if completed == 0 || remaining == 0 {
		return nil
	}

	perFrame := interval
	if adaptive {
		perFrame = now.Sub(startedAt) / time.Duration(completed)
	}
	if perFrame <= 0 {
		return nil
	}

	eta := now.Add(time.Duration(remaining) * perFrame)
	return &eta
}
