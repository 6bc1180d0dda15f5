// Package youtubeurl recognises YouTube video URLs and extracts their video IDs.
// All functions are pure and safe for concurrent use.
package youtubeurl

import (
	"regexp"
	"strings"
)

// IDLength is the fixed length of a YouTube video ID.
const IDLength = 11

var (
	// extractRe finds the last known path or query marker and captures what follows it.
	extractRe = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|shorts/|watch\?v=|&v=)([^#&?]*).*`)

	// validRe is the strict form accepted from user input.
	validRe = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})(\S*)?$`)

	// hostRe requires a youtube.com/watch?v= or youtu.be/ marker anywhere in s.
	hostRe = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)

	idRe = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// ExtractVideoID returns the 11-character video ID embedded in s, or "" when
// none can be found. It is lenient: anything before the marker is ignored and
// the ID ends at the first '#', '&' or '?'.
func ExtractVideoID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	m := extractRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	id := m[2]
	if !idRe.MatchString(id) {
		return ""
	}
	return id
}

// IsValidURL reports whether s is a youtube.com/watch?v= or youtu.be/ URL
// with a well-formed video ID. s is matched as given: surrounding whitespace
// makes it invalid. It is stricter than ExtractVideoID, so the two may
// disagree on input that has a valid prefix but trailing text.
func IsValidURL(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return validRe.MatchString(s)
}

// HostVideoID returns the video ID following the first youtube.com/watch?v=
// or youtu.be/ marker in s, or "" when there is none. Unlike ExtractVideoID
// it never accepts embed, shorts, or v/ paths, nor markers on other hosts.
func HostVideoID(s string) string {
	m := hostRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

// MatchesHost reports whether HostVideoID finds an ID in s.
func MatchesHost(s string) bool {
	return HostVideoID(s) != ""
}

// WatchURL returns the canonical watch page URL for a video ID.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
