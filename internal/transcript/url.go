// Package transcript resolves YouTube video URLs to IDs and fetches the
// spoken-word transcript used as strategy context.
package transcript

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidURL reports a URL that does not contain a recognizable video ID.
var ErrInvalidURL = errors.New("no video ID found in URL")

// Video IDs are 11 characters, appearing after "v=" or the last path
// segment. Matches both watch URLs and youtu.be short links.
var videoIDPattern = regexp.MustCompile(`(?:v=|\/)([0-9A-Za-z_-]{11})`)

// ExtractVideoID pulls the 11-character video ID out of a YouTube URL.
func ExtractVideoID(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}

	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	return m[1], nil
}
