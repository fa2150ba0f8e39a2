package capture

import (
	"fmt"
	"strings"
	"time"
)

// FrameName builds the filename (without extension) for one frame.
//
// Shape: {prefix}_{params}_{timestamp}_f{index:03d}. The prefix falls back
// from the spec's base name, to the session target, to a family default.
// The frame index is always appended, so names stay unique even when several
// frames land in the same timestamp second.
func FrameName(spec SequenceSpec, sessionTarget string, index int, temperature *float64) string {
	prefix := spec.BaseName
	if prefix == "" {
		prefix = sessionTarget
	}
	if prefix == "" {
		if spec.Kind == KindBulk {
			prefix = "bulk"
		} else {
			prefix = string(spec.Kind) + "_frame"
		}
	}

	var params []string
	if spec.ExposureTime != "" {
		params = append(params, "exp"+safeExposure(spec.ExposureTime))
	}
	if spec.ISO != "" {
		params = append(params, "iso"+spec.ISO)
	}
	if temperature != nil {
		params = append(params, fmt.Sprintf("temp%.1fC", *temperature))
	}

	timestamp := time.Now().Format("20060102_150405")

	if len(params) > 0 {
		return fmt.Sprintf("%s_%s_%s_f%03d", prefix, strings.Join(params, "_"), timestamp, index)
	}
	return fmt.Sprintf("%s_%s_f%03d", prefix, timestamp, index)
}

// safeExposure makes a shutter speed filename-safe: "1/60" -> "1-60",
// `0.5"` -> "0.5s".
func safeExposure(exposure string) string {
	s := strings.ReplaceAll(exposure, "/", "-")
	return strings.ReplaceAll(s, `"`, "s")
}
