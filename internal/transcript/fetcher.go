package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable reports a video with no retrievable transcript: captions
// disabled, video private or removed, or the caption endpoint returning
// nothing usable.
var ErrUnavailable = errors.New("transcript unavailable")

// Fetcher retrieves the transcript text for a video ID.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// HTTPFetcher fetches transcripts from YouTube's public caption endpoints:
// the watch page carries the caption track list, each track a timedtext XML
// document.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a transcript fetcher with a bounded HTTP client.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// captionTrack mirrors the relevant slice of the player response embedded in
// the watch page.
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// timedText mirrors the caption XML document.
type timedText struct {
	Texts []struct {
		Body string `xml:",chardata"`
	} `xml:"text"`
}

// Fetch downloads and flattens the transcript for videoID. Caption lines are
// joined with newlines so paragraph-aware chunking still finds boundaries.
func (f *HTTPFetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	tracks, err := f.listCaptionTracks(ctx, videoID)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", fmt.Errorf("%w: video %s has no caption tracks", ErrUnavailable, videoID)
	}

	track := pickTrack(tracks)

	body, err := f.get(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: fetch caption track: %v", ErrUnavailable, err)
	}

	var doc timedText
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("%w: decode caption track: %v", ErrUnavailable, err)
	}

	lines := make([]string, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Body))
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: video %s caption track is empty", ErrUnavailable, videoID)
	}

	return strings.Join(lines, "\n"), nil
}

// listCaptionTracks scrapes the caption track list out of the watch page's
// embedded player response.
func (f *HTTPFetcher) listCaptionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	body, err := f.get(ctx, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch watch page: %v", ErrUnavailable, err)
	}

	const marker = `"captionTracks":`
	page := string(body)
	i := strings.Index(page, marker)
	if i < 0 {
		return nil, nil
	}

	// The track list is a JSON array; decode just that prefix.
	dec := json.NewDecoder(strings.NewReader(page[i+len(marker):]))
	var tracks []captionTrack
	if err := dec.Decode(&tracks); err != nil {
		return nil, fmt.Errorf("%w: decode caption track list: %v", ErrUnavailable, err)
	}

	return tracks, nil
}

// pickTrack prefers manually authored English captions, then any manual
// track, then whatever is first (typically auto-generated).
func pickTrack(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if t.Kind != "asr" && strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}
	for _, t := range tracks {
		if t.Kind != "asr" {
			return t
		}
	}
	return tracks[0]
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
