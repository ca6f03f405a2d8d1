// Package fetch downloads pages and reduces them to their main article.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

// DefaultMaxBodySize bounds the HTML read from untrusted URLs.
const DefaultMaxBodySize = 10 * 1024 * 1024

var ErrTooLarge = errors.New("fetch: response body exceeds size limit")

// StatusError reports a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: got status code %d", e.URL, e.Code)
}

// Client fetches HTML with browser-like headers so sites do not block it.
type Client struct {
	HTTP        *http.Client
	MaxBodySize int64
	Header      http.Header
	Log         *zap.Logger
}

// NewClient returns a client with the given timeout and body limit. Zero
// values select the defaults.
func NewClient(timeout time.Duration, maxBodySize int64, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		HTTP:        &http.Client{Timeout: timeout},
		MaxBodySize: maxBodySize,
		Header:      browserHeader(),
		Log:         log,
	}
}

func browserHeader() http.Header {
	h := make(http.Header)
	// Mimic a real browser (Windows Chrome)
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7")
	h.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")
	h.Set("Referer", "https://www.google.com/")
	h.Set("Sec-Ch-Ua", `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "cross-site")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

// Get fetches rawURL and returns the body.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.Header {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	if resp.ContentLength > c.MaxBodySize {
		return nil, fmt.Errorf("%w: content-length %d > %d", ErrTooLarge, resp.ContentLength, c.MaxBodySize)
	}

	// Read one byte past the limit to tell a full body from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.MaxBodySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, c.MaxBodySize)
	}

	c.Log.Debug("Fetched page",
		zap.String("url", rawURL),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)))
	return body, nil
}

var (
	// (?s) allows dot to match newlines
	// (?i) makes it case-insensitive
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes ruby text (<rt>...</rt>) and ruby parentheses
// (<rp>...</rp>) from HTML so furigana does not duplicate the base text
// ("漢字" becoming "漢字かんじ"). It works on raw bytes and is safe for
// Shift_JIS, where < is never a trailing byte.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, []byte{})
	cleaned = reRP.ReplaceAll(cleaned, []byte{})
	return cleaned
}

// Article is the main content of a page.
type Article struct {
	Title       string
	Byline      string
	SiteName    string
	Content     string // HTML
	TextContent string
}

// ExtractArticle runs readability over body. pageURL resolves relative links
// and may be nil.
func ExtractArticle(body []byte, pageURL *url.URL) (Article, error) {
	if pageURL == nil {
		pageURL = &url.URL{Scheme: "http", Host: "localhost"}
	}
	a, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return Article{}, fmt.Errorf("extract article: %w", err)
	}
	return Article{
		Title:       a.Title,
		Byline:      a.Byline,
		SiteName:    a.SiteName,
		Content:     a.Content,
		TextContent: a.TextContent,
	}, nil
}

// ArticleHTML wraps an extracted article into a standalone page.
func ArticleHTML(a Article) string {
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(a.Title))
	b.WriteString("</title></head><body><h1>")
	b.WriteString(html.EscapeString(a.Title))
	b.WriteString("</h1>")
	b.WriteString(a.Content)
	b.WriteString("</body></html>")
	return b.String()
}
