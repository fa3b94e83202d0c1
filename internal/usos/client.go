// Package usos handles CAS login and scraping of USOS registration pages.
package usos

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"usos_monitor/internal/model"
)

const (
	defaultBaseURL = "https://usosweb.usos.pw.edu.pl/kontroler.php"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxBodySize = 5 * 1024 * 1024
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the USOS registration site over an authenticated session.
type Client struct {
	client  HTTPClient
	baseURL string
	log     *slog.Logger
}

// New creates a Client with the given HTTP client, which must carry a cookie
// jar for the CAS session to survive across requests.
func New(client HTTPClient, log *slog.Logger) *Client {
	return &Client{
		client:  client,
		baseURL: defaultBaseURL,
		log:     log,
	}
}

// NewDefault creates a Client with a redirect-following, cookie-carrying
// HTTP client suitable for production use.
func NewDefault(log *slog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return New(&http.Client{Jar: jar, Timeout: 30 * time.Second}, log), nil
}

// SetBaseURL overrides the USOS controller URL (useful for testing).
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// Login authenticates against USOS via the CAS form: fetch the login page,
// extract the hidden execution token, post the credentials and verify that
// the session is logged in.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, finalURL, err := c.get(ctx, c.baseURL+"?_action=logowaniecas/index")
	if err != nil {
		return fmt.Errorf("fetch login page: %w", err)
	}

	form, err := parseLoginForm(strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse login form: %w", err)
	}

	actionURL, err := resolveFormAction(finalURL, form.Action)
	if err != nil {
		return fmt.Errorf("resolve form action: %w", err)
	}

	data := url.Values{
		"username":    {username},
		"password":    {password},
		"execution":   {form.Execution},
		"_eventId":    {"submit"},
		"geolocation": {""},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, actionURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post credentials: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read login response: %w", err)
	}

	if !loggedIn(string(raw)) {
		return fmt.Errorf("login rejected for user %s", username)
	}
	c.log.Debug("logged in", "user", username)
	return nil
}

// loggedIn checks for markers of an authenticated USOS page.
func loggedIn(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "wyloguj") || strings.Contains(lower, "zalogowany")
}

// FetchGroups scrapes all course groups of a registration category. It lists
// the category's subjects, then scrapes each subject's group table. The
// second return value counts rows skipped due to parse problems.
func (c *Client) FetchGroups(ctx context.Context, cat model.Category) ([]model.RawGroup, int, error) {
	subjectsURL := fmt.Sprintf("%s?_action=dla_stud/rejestracja/brdg2/wyborPrzedmiotu&rej_kod=%s",
		c.baseURL, url.QueryEscape(cat.Code))
	body, _, err := c.get(ctx, subjectsURL)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch subjects for %s: %w", cat.Code, err)
	}

	subjects, err := parseSubjects(strings.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("parse subjects for %s: %w", cat.Code, err)
	}
	c.log.Debug("found subjects", "category", cat.Code, "count", len(subjects))

	var groups []model.RawGroup
	skipped := 0
	for _, subj := range subjects {
		if ctx.Err() != nil {
			return nil, skipped, ctx.Err()
		}
		groupsURL := fmt.Sprintf(
			"%s?_action=dla_stud/rejestracja/brdg2/grupyPrzedmiotu&rej_kod=%s&prz_kod=%s&odczyt=1&formFlag=1",
			c.baseURL, url.QueryEscape(cat.Code), url.QueryEscape(subj.Code))
		body, _, err := c.get(ctx, groupsURL)
		if err != nil {
			c.log.Warn("fetch groups failed", "subject", subj.Code, "error", err)
			skipped++
			continue
		}
		parsed, skippedRows, err := parseGroups(strings.NewReader(body), subj)
		if err != nil {
			c.log.Warn("parse groups failed", "subject", subj.Code, "error", err)
			skipped++
			continue
		}
		skipped += skippedRows
		groups = append(groups, parsed...)
	}
	return groups, skipped, nil
}

// get performs a GET request and returns the body together with the final
// URL after redirects.
func (c *Client) get(ctx context.Context, rawURL string) (string, *url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := req.URL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}
	return string(body), finalURL, nil
}

// resolveFormAction resolves a possibly relative form action against the
// page it was served from. CAS keeps its flow state in the query string, so
// an action without a query inherits the page's one.
func resolveFormAction(pageURL *url.URL, action string) (string, error) {
	if action == "" {
		return pageURL.String(), nil
	}
	ref, err := url.Parse(action)
	if err != nil {
		return "", fmt.Errorf("parse action %q: %w", action, err)
	}
	resolved := pageURL.ResolveReference(ref)
	if resolved.RawQuery == "" {
		resolved.RawQuery = pageURL.RawQuery
	}
	return resolved.String(), nil
}
