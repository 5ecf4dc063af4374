package appstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultFeedBaseURL   = "https://itunes.apple.com"
	defaultLookupBaseURL = "https://itunes.apple.com/lookup"
	defaultCountry       = "us"
)

// Client fetches public App Store data: one page of customer reviews at a
// time, and the software lookup record for an app.
type Client interface {
	ReviewsPage(ctx context.Context, appID string, page int) ([]Review, error)
	Lookup(ctx context.Context, appID string) (*AppInfo, error)
}

// Review is one customer review as delivered by the RSS feed. Rating is the
// string-encoded 1-5 star value exactly as the feed carries it.
type Review struct {
	Rating string `json:"rating"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// AppInfo is the subset of the lookup record the pipeline surfaces.
type AppInfo struct {
	Name          string  `json:"name"`
	Developer     string  `json:"developer"`
	IconURL       string  `json:"icon_url"`
	Genre         string  `json:"genre"`
	AverageRating float64 `json:"average_rating"`
	RatingCount   int64   `json:"rating_count"`
	StoreURL      string  `json:"store_url"`
}

// Option configures the client.
type Option func(*httpClient)

// WithFeedBaseURL overrides the review feed root.
func WithFeedBaseURL(u string) Option {
	return func(c *httpClient) {
		c.feedBaseURL = u
	}
}

// WithLookupBaseURL overrides the lookup endpoint.
func WithLookupBaseURL(u string) Option {
	return func(c *httpClient) {
		c.lookupBaseURL = u
	}
}

// WithCountry overrides the storefront country code.
func WithCountry(country string) Option {
	return func(c *httpClient) {
		c.country = country
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	feedBaseURL   string
	lookupBaseURL string
	country       string
	http          *http.Client
	limiter       *rate.Limiter
}

// NewClient creates an App Store client. Requests against either endpoint
// share one rate limiter to stay under the public feed's tolerance.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		feedBaseURL:   defaultFeedBaseURL,
		lookupBaseURL: defaultLookupBaseURL,
		country:       defaultCountry,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// feedEnvelope mirrors the RSS JSON wrapping. Every leaf value sits under a
// "label" key.
type feedEnvelope struct {
	Feed struct {
		Entry []feedEntry `json:"entry"`
	} `json:"feed"`
}

type feedEntry struct {
	Rating  labeled `json:"im:rating"`
	Title   labeled `json:"title"`
	Content labeled `json:"content"`
}

type labeled struct {
	Label string `json:"label"`
}

func (c *httpClient) ReviewsPage(ctx context.Context, appID string, page int) ([]Review, error) {
	u := fmt.Sprintf("%s/%s/rss/customerreviews/page=%d/id=%s/sortBy=mostRecent/json",
		c.feedBaseURL, c.country, page, appID)

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, eris.Wrapf(err, "appstore: reviews page %d", page)
	}

	var env feedEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrapf(err, "appstore: decode reviews page %d", page)
	}

	reviews := make([]Review, 0, len(env.Feed.Entry))
	for _, e := range env.Feed.Entry {
		reviews = append(reviews, Review{
			Rating: e.Rating.Label,
			Title:  e.Title.Label,
			Body:   e.Content.Label,
		})
	}
	return reviews, nil
}

// lookupEnvelope mirrors the iTunes lookup response.
type lookupEnvelope struct {
	ResultCount int `json:"resultCount"`
	Results     []struct {
		TrackName         string  `json:"trackName"`
		ArtistName        string  `json:"artistName"`
		ArtworkURL100     string  `json:"artworkUrl100"`
		PrimaryGenreName  string  `json:"primaryGenreName"`
		AverageUserRating float64 `json:"averageUserRating"`
		UserRatingCount   int64   `json:"userRatingCount"`
		TrackViewURL      string  `json:"trackViewUrl"`
	} `json:"results"`
}

func (c *httpClient) Lookup(ctx context.Context, appID string) (*AppInfo, error) {
	q := url.Values{}
	q.Set("id", appID)
	q.Set("country", c.country)
	q.Set("entity", "software")

	body, err := c.get(ctx, c.lookupBaseURL+"?"+q.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "appstore: lookup")
	}

	var env lookupEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "appstore: decode lookup")
	}
	if env.ResultCount == 0 || len(env.Results) == 0 {
		return nil, eris.Errorf("appstore: no lookup result for id %s", appID)
	}

	r := env.Results[0]
	return &AppInfo{
		Name:          r.TrackName,
		Developer:     r.ArtistName,
		IconURL:       r.ArtworkURL100,
		Genre:         r.PrimaryGenreName,
		AverageRating: r.AverageUserRating,
		RatingCount:   r.UserRatingCount,
		StoreURL:      r.TrackViewURL,
	}, nil
}

func (c *httpClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	return body, nil
}
