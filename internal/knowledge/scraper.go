package knowledge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"complyscan.app/engine/internal/model"
)

// DefaultSourceURL is the reference site scraped for live snapshots.
const DefaultSourceURL = "https://gdpr-info.eu/"

// DefaultUserAgent identifies the engine's outbound fetches.
const DefaultUserAgent = "complyscan-knowledge-fetcher/1.0"

// keyArticles are the GDPR articles the fetcher summarizes into key
// requirements (the processing-principles block, Articles 5-11).
var keyArticles = []int{5, 6, 7, 8, 9, 10, 11}

// Fetcher produces a fresh RequirementsSnapshot from an external knowledge
// source. Implementations may fail; the Store absorbs failures.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (*model.RequirementsSnapshot, error)
}

// FetcherConfig configures the HTTP fetcher.
type FetcherConfig struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

type httpFetcher struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewHTTPFetcher creates a Fetcher that scrapes the reference site for
// recent updates and article summaries.
func NewHTTPFetcher(cfg FetcherConfig) Fetcher {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultSourceURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &httpFetcher{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    client,
	}
}

var (
	recentEntriesPattern = regexp.MustCompile(`(?s)widget_recent_entries.*?</ul>`)
	listItemPattern      = regexp.MustCompile(`(?s)<li[^>]*>(.*?)</li>`)
	anchorPattern        = regexp.MustCompile(`(?s)<a[^>]*>(.*?)</a>`)
	postDatePattern      = regexp.MustCompile(`(?s)<span[^>]*post-date[^>]*>(.*?)</span>`)
	entryTitlePattern    = regexp.MustCompile(`(?s)<h1[^>]*entry-title[^>]*>(.*?)</h1>`)
	entryContentPattern  = regexp.MustCompile(`(?s)<div[^>]*entry-content[^>]*>(.*?)</div>`)
	tagPattern           = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

// FetchSnapshot scrapes the landing page for recent updates and the key
// articles for requirement summaries. The per-category weak-point and
// template maps always come from the frozen defaults; the live source only
// contributes narrative changes and the requirements list.
func (f *httpFetcher) FetchSnapshot(ctx context.Context) (*model.RequirementsSnapshot, error) {
	mainHTML, err := f.fetchPage(ctx, f.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetching knowledge source: %w", err)
	}

	frozen := Frozen()
	snapshot := &model.RequirementsSnapshot{
		IsLiveData:       true,
		FetchedAt:        time.Now().UTC(),
		CommonWeakPoints: frozen.CommonWeakPoints,
		ActionTemplates:  frozen.ActionTemplates,
	}

	updates := f.extractRecentUpdates(mainHTML)
	if len(updates) > 0 {
		snapshot.RecentChanges = "Latest updates: " + strings.Join(updates, "; ")
	} else {
		snapshot.RecentChanges = frozen.RecentChanges
	}

	requirements := f.fetchArticleSummaries(ctx)
	if len(requirements) == 0 {
		return nil, fmt.Errorf("knowledge source returned no article content")
	}
	snapshot.KeyRequirements = requirements

	slog.DebugContext(ctx, "live snapshot fetched",
		"updates", len(updates),
		"requirements", len(requirements))

	return snapshot, nil
}

func (f *httpFetcher) fetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}

// extractRecentUpdates pulls up to three headline entries from the landing
// page's recent-entries widget, formatted "title (date)".
func (f *httpFetcher) extractRecentUpdates(html string) []string {
	section := recentEntriesPattern.FindString(html)
	if section == "" {
		return nil
	}

	var updates []string
	for _, item := range listItemPattern.FindAllStringSubmatch(section, -1) {
		if len(updates) == 3 {
			break
		}
		anchor := anchorPattern.FindStringSubmatch(item[1])
		if anchor == nil {
			continue
		}
		title := stripTags(anchor[1])
		if title == "" {
			continue
		}
		if date := postDatePattern.FindStringSubmatch(item[1]); date != nil {
			if d := stripTags(date[1]); d != "" {
				title += " (" + d + ")"
			}
		}
		updates = append(updates, title)
	}
	return updates
}

// fetchArticleSummaries builds one requirement line per key article:
// "<title>: <first sentence of the content, capped at 200 chars>".
// Articles that fail to fetch are skipped rather than failing the snapshot.
func (f *httpFetcher) fetchArticleSummaries(ctx context.Context) []string {
	var requirements []string
	for _, n := range keyArticles {
		url := fmt.Sprintf("%sart-%d-gdpr/", f.baseURL, n)
		html, err := f.fetchPage(ctx, url)
		if err != nil {
			slog.WarnContext(ctx, "article fetch failed", "article", n, "error", err)
			continue
		}

		titleMatch := entryTitlePattern.FindStringSubmatch(html)
		contentMatch := entryContentPattern.FindStringSubmatch(html)
		if titleMatch == nil || contentMatch == nil {
			continue
		}

		title := stripTags(titleMatch[1])
		content := stripTags(contentMatch[1])
		if title == "" || content == "" {
			continue
		}

		requirements = append(requirements, title+": "+summarize(content, 200))
	}
	return requirements
}

// summarize truncates to maxLen and then backs up to the last sentence end
// so requirement lines read cleanly.
func summarize(text string, maxLen int) string {
	if len(text) > maxLen {
		text = text[:maxLen]
	}
	if end := strings.LastIndex(text, "."); end > 0 {
		return text[:end+1]
	}
	return text
}

func stripTags(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}
