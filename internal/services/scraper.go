package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	ScraperModeReader = "reader"
	ScraperModeDirect = "direct"

	DefaultScraperTimeout = 30 * time.Second
	DefaultReaderURL      = "https://r.jina.ai/"

	maxPageBytes = 5 * 1024 * 1024
	maxRedirects = 5
	userAgent    = "Mozilla/5.0 (compatible; SuperCV/1.0)"
)

// FetchError is the single failure reported for any job-posting fetch problem.
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// JobScraper turns a job-posting URL into clean, machine-readable text.
type JobScraper interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

type ScraperOptions struct {
	Mode      string
	ReaderURL string
	APIKey    string
	Timeout   time.Duration

	// AllowPrivateHosts lets direct mode connect to loopback, private and
	// link-local addresses. Reader mode only talks to ReaderURL.
	AllowPrivateHosts bool
}

// ErrNonPublicAddress is returned when direct mode would dial an address
// outside the public internet.
var ErrNonPublicAddress = errors.New("refusing to connect to non-public address")

type jobScraper struct {
	client *http.Client
	opts   ScraperOptions
}

func NewJobScraper(opts ScraperOptions) JobScraper {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultScraperTimeout
	}
	if opts.Mode != ScraperModeDirect {
		opts.Mode = ScraperModeReader
	}
	if opts.ReaderURL == "" {
		opts.ReaderURL = DefaultReaderURL
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.New("too many redirects")
			}
			return nil
		},
	}

	// Redirects reuse the transport, so every hop goes through the dial check.
	if opts.Mode == ScraperModeDirect && !opts.AllowPrivateHosts {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = nil
		transport.DialContext = (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
			Control:   refuseNonPublicAddress,
		}).DialContext
		client.Transport = transport
	}

	return &jobScraper{
		client: client,
		opts:   opts,
	}
}

// refuseNonPublicAddress runs after name resolution, so it sees the IP that
// is actually dialed.
func refuseNonPublicAddress(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNonPublicAddress, address)
	}
	ip := net.ParseIP(host)
	if ip == nil ||
		ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() {
		return fmt.Errorf("%w: %s", ErrNonPublicAddress, address)
	}
	return nil
}

// Fetch implements JobScraper.
func (s *jobScraper) Fetch(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", &FetchError{URL: pageURL, Message: "invalid URL", Cause: err}
	}

	if s.opts.Mode == ScraperModeDirect {
		return s.fetchDirect(ctx, pageURL)
	}
	return s.fetchReader(ctx, pageURL)
}

// fetchReader asks a reader proxy to render the page as markdown.
func (s *jobScraper) fetchReader(ctx context.Context, pageURL string) (string, error) {
	headers := map[string]string{"Accept": "text/plain, text/markdown"}
	if s.opts.APIKey != "" {
		headers["Authorization"] = "Bearer " + s.opts.APIKey
	}

	body, err := s.get(ctx, s.opts.ReaderURL+pageURL, pageURL, headers)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(body)
	if text == "" {
		return "", &FetchError{URL: pageURL, Message: "empty content"}
	}
	return text, nil
}

func (s *jobScraper) fetchDirect(ctx context.Context, pageURL string) (string, error) {
	body, err := s.get(ctx, pageURL, pageURL, map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
	})
	if err != nil {
		return "", err
	}

	text, err := ExtractMainText(body, JobPostingSelectors())
	if err != nil {
		return "", &FetchError{URL: pageURL, Message: "content extraction failed", Cause: err}
	}
	if text == "" {
		return "", &FetchError{URL: pageURL, Message: "empty content"}
	}
	return text, nil
}

func (s *jobScraper) get(ctx context.Context, requestURL, pageURL string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", &FetchError{URL: pageURL, Message: "failed to create request", Cause: err}
	}

	req.Header.Set("User-Agent", userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: pageURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: pageURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", &FetchError{URL: pageURL, Message: "failed to read response body", Cause: err}
	}

	return string(body), nil
}

// ExtractMainText parses HTML, drops navigation and other noise, and returns
// the text of the first element matching contentSelectors (or the body).
func ExtractMainText(html string, contentSelectors []string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, iframe, form, .ad, .ads, .sidebar, .cookie-banner, .popup").Remove()

	var mainContent *goquery.Selection
	for _, selector := range contentSelectors {
		if selection := doc.Find(selector); selection.Length() > 0 {
			mainContent = selection.First()
			break
		}
	}

	if mainContent == nil {
		mainContent = doc.Find("body")
	}

	return cleanWhitespace(mainContent.Text()), nil
}

// JobPostingSelectors returns selectors tried, in order, on job board pages.
func JobPostingSelectors() []string {
	return []string{
		".job-description",
		"#job-description",
		".job-content",
		"#job-content",
		".posting-content",
		".job-details",
		"[data-testid='job-description']",
		"main",
		"article",
		".content",
		"#content",
	}
}

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
