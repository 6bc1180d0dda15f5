package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

const (
	// playerResponseMarker precedes the player response JSON in watch page scripts.
	playerResponseMarker = "ytInitialPlayerResponse = "

	maxWatchPageBytes = 6 * 1024 * 1024
	maxTimedTextBytes = 2 * 1024 * 1024

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

var tagRe = regexp.MustCompile(`<[^>]+>`)

// YouTubeFetcher implements Fetcher by scraping the watch page for caption
// tracks and downloading the chosen track's timedtext XML.
type YouTubeFetcher struct {
	baseURL string
	lang    string
	client  *http.Client
}

// NewYouTubeFetcher creates a fetcher. baseURL is normally https://www.youtube.com.
func NewYouTubeFetcher(baseURL, lang string, timeout time.Duration) *YouTubeFetcher {
	return &YouTubeFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		lang:    lang,
		client:  &http.Client{Timeout: timeout},
	}
}

var _ Fetcher = (*YouTubeFetcher)(nil)

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type timedText struct {
	Lines []timedTextLine `xml:"text"`
}

type timedTextLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// FetchTranscript returns the caption segments of videoID.
func (f *YouTubeFetcher) FetchTranscript(ctx context.Context, videoID string) ([]models.TranscriptItem, error) {
	tracks, err := f.captionTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track := pickBestTrack(tracks, []string{f.lang})
	return f.fetchTimedText(ctx, videoID, track.BaseURL)
}

func (f *YouTubeFetcher) captionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	watchURL := fmt.Sprintf("%s/watch?v=%s", f.baseURL, url.QueryEscape(videoID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if f.lang != "" {
		req.Header.Set("Accept-Language", f.lang)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Code: CodeNetwork, VideoID: videoID, Msg: "failed to fetch watch page", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &FetchError{Code: CodeTooManyRequests, VideoID: videoID, Msg: "youtube is receiving too many requests"}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Code: CodeUnknown, VideoID: videoID, Msg: fmt.Sprintf("watch page returned status %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxWatchPageBytes))
	if err != nil {
		return nil, &FetchError{Code: CodeNetwork, VideoID: videoID, Msg: "failed to fetch watch page body", Err: err}
	}

	var payload []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, playerResponseMarker)
		if idx < 0 {
			return true
		}
		payload = extractJSON([]byte(text[idx+len(playerResponseMarker):]))
		return payload == nil
	})

	if payload == nil {
		if doc.Find(".g-recaptcha").Length() > 0 {
			return nil, &FetchError{Code: CodeTooManyRequests, VideoID: videoID, Msg: "youtube is receiving too many requests"}
		}
		return nil, &FetchError{Code: CodeVideoUnavailable, VideoID: videoID, Msg: "the video is no longer available"}
	}

	var player playerResponse
	if err := json.Unmarshal(payload, &player); err != nil {
		return nil, &FetchError{Code: CodeUnknown, VideoID: videoID, Msg: "decoding player response", Err: err}
	}

	if player.PlayabilityStatus != nil && player.PlayabilityStatus.Status == "ERROR" {
		return nil, &FetchError{Code: CodeVideoUnavailable, VideoID: videoID, Msg: "the video is no longer available: " + player.PlayabilityStatus.Reason}
	}
	if player.Captions == nil {
		return nil, &FetchError{Code: CodeDisabled, VideoID: videoID, Msg: "transcript is disabled on this video"}
	}

	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, &FetchError{Code: CodeNotAvailable, VideoID: videoID, Msg: "could not find any transcripts for this video"}
	}
	return tracks, nil
}

func (f *YouTubeFetcher) fetchTimedText(ctx context.Context, videoID, trackURL string) ([]models.TranscriptItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trackURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Code: CodeNetwork, VideoID: videoID, Msg: "failed to fetch caption track", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Code: CodeUnknown, VideoID: videoID, Msg: fmt.Sprintf("caption track returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTimedTextBytes))
	if err != nil {
		return nil, &FetchError{Code: CodeNetwork, VideoID: videoID, Msg: "failed to fetch caption track body", Err: err}
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, &FetchError{Code: CodeUnknown, VideoID: videoID, Msg: "parsing caption track", Err: err}
	}

	items := make([]models.TranscriptItem, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := cleanCaption(line.Text)
		if text == "" {
			continue
		}
		items = append(items, models.TranscriptItem{
			Text:     text,
			Offset:   parseSeconds(line.Start),
			Duration: parseSeconds(line.Dur),
		})
	}
	return items, nil
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track, then the first track.
func pickBestTrack(tracks []captionTrack, langs []string) captionTrack {
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t
			}
		}
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t
			}
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}
	return tracks[0]
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by tracking brace depth.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
	}
	return nil
}

// cleanCaption decodes entities left after XML decoding and strips inline markup.
func cleanCaption(s string) string {
	s = html.UnescapeString(s)
	s = tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
