package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/pfrederiksen/mytimetable-export/internal/config"
	"github.com/pfrederiksen/mytimetable-export/internal/logger"
	"github.com/pfrederiksen/mytimetable-export/internal/timetable"
)

// SessionCookie is the cookie the timetable site authenticates with.
const SessionCookie = "mytimetable_session"

// signInTitle is the page title the site serves when the session is expired
// or invalid and the request got redirected to the login page.
const signInTitle = "Sign in to your account"

var (
	// ErrFetch covers network failures and non-success HTTP statuses.
	ErrFetch = errors.New("fetch failed")
	// ErrAuthentication means the session cookie was rejected.
	ErrAuthentication = errors.New("authentication error: please update the session cookie")
)

// Client fetches weekly timetable pages with an authenticated session.
type Client struct {
	http    *resty.Client
	baseURL string
	token   string
}

// New creates a Client using the configured endpoint, HTTP identity and
// timeout, authenticated with the given session token.
func New(cfg *config.Config, token string) *Client {
	httpClient := resty.New().
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(cfg.Timeout())

	return &Client{
		http:    httpClient,
		baseURL: cfg.BaseURL,
		token:   token,
	}
}

// FetchWeek fetches and parses the timetable page for the week containing
// date. A zero date selects the current week, which is how the
// authentication probe works.
func (c *Client) FetchWeek(date time.Time) (*goquery.Document, error) {
	url := c.baseURL + "/"
	if !date.IsZero() {
		url += date.Format("2006-01-02")
	}

	logger.Debug("fetching timetable page", logger.Fields{"url": url})

	resp, err := c.http.R().
		SetCookie(&http.Cookie{Name: SessionCookie, Value: c.token}).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrFetch, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return doc, nil
}

// CheckAuthentication inspects a fetched page and reports ErrAuthentication
// when the page is the site's login redirect rather than a timetable.
func CheckAuthentication(doc *goquery.Document) error {
	title := timetable.NormalizeText(doc.Find("title").First().Text())
	if title == signInTitle {
		return ErrAuthentication
	}
	return nil
}
