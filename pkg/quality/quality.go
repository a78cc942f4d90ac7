// Package quality derives resolution and audio-format labels from
// file paths and stream attributes.
package quality

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Unknown is the label used when no resolution could be derived.
const Unknown = "Unknown"

// resolutionRegex matches an explicit resolution token embedded in a
// path or release name: a 3-4 digit number immediately followed by "p"
// (480p, 1080p, 2160p).
var resolutionRegex = regexp.MustCompile(`(?i)\b(\d{3,4})p\b`)

// ParseResolution extracts the first resolution token from a path or
// release name. Returns "" when no token is present.
func ParseResolution(path string) string {
	match := resolutionRegex.FindStringSubmatch(path)
	if match == nil {
		return ""
	}
	return match[1] + "p"
}

// FromHeight formats a video stream height as a resolution label.
// Returns "" for non-positive heights.
func FromHeight(height int) string {
	if height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dp", height)
}

// Rank orders resolution labels by numeric height ascending. Unknown
// and unparseable labels sort last.
func Rank(label string) int {
	trimmed := strings.TrimSuffix(strings.ToLower(label), "p")
	height, err := strconv.Atoi(trimmed)
	if err != nil || height <= 0 {
		return 1 << 30
	}
	return height
}

// AudioLabel derives the audio-format label from a channel count.
// 2 channels is stereo "2.0", 6 is "5.1", 8 is "7.1"; other counts
// follow the "{channels-1}.1" convention with the denominator clamped
// to a minimum of 1 for degenerate counts.
func AudioLabel(channels int) string {
	switch channels {
	case 2:
		return "2.0"
	case 6:
		return "5.1"
	case 8:
		return "7.1"
	}
	main := channels - 1
	if main < 1 {
		main = 1
	}
	return fmt.Sprintf("%d.1", main)
}
