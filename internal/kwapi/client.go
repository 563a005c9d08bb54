// Package kwapi is a client for the Keywords Everywhere keyword data API.
package kwapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rshade/kwvolume/internal/logging"
)

// Form field and header names of the keyword data API.
const (
	fieldKeyword    = "kw[]"
	fieldCountry    = "country"
	fieldCurrency   = "currency"
	fieldDataSource = "dataSource"

	headerRequestID = "X-Request-Id"
)

// Fetcher retrieves keyword data for one batch of keywords.
type Fetcher interface {
	FetchBatch(ctx context.Context, keywords []string) (*BatchResult, error)
}

// Options configures a Client.
type Options struct {
	Endpoint   string
	APIKey     string
	Country    string
	Currency   string
	DataSource string
	UserAgent  string

	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout time.Duration

	// HTTPClient overrides the client used to send requests.
	HTTPClient *http.Client
}

// Client sends keyword data requests over HTTP.
type Client struct {
	opts Options
	http *http.Client
}

var _ Fetcher = (*Client)(nil)

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{opts: opts, http: hc}
}

// FetchBatch posts one request for keywords and decodes the response.
// Keywords are sent in order, duplicates included.
func (c *Client) FetchBatch(ctx context.Context, keywords []string) (*BatchResult, error) {
	log := logging.FromContext(ctx).With().
		Str("component", "kwapi").
		Str("operation", "fetch_batch").
		Logger()

	requestID := uuid.NewString()
	req, err := c.newRequest(ctx, keywords, requestID)
	if err != nil {
		return nil, err
	}

	log.Debug().Ctx(ctx).
		Str("request_id", requestID).
		Int("keyword_count", len(keywords)).
		Str("endpoint", c.opts.Endpoint).
		Msg("sending keyword data request")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	log.Debug().Ctx(ctx).
		Str("request_id", requestID).
		Int("status_code", resp.StatusCode).
		Dur("duration", duration).
		Int("body_bytes", len(body)).
		Msg("received keyword data response")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	result, err := decode(body)
	if err != nil {
		return nil, err
	}
	result.RequestID = requestID
	result.Duration = duration
	return result, nil
}

func (c *Client) newRequest(ctx context.Context, keywords []string, requestID string) (*http.Request, error) {
	form := url.Values{}
	for _, kw := range keywords {
		form.Add(fieldKeyword, kw)
	}
	form.Set(fieldCountry, c.opts.Country)
	form.Set(fieldCurrency, c.opts.Currency)
	form.Set(fieldDataSource, c.opts.DataSource)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(headerRequestID, requestID)
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	return req, nil
}

func decode(body []byte) (*BatchResult, error) {
	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if wire.Data == nil {
		return nil, &DecodeError{Err: ErrMissingData}
	}

	keywords := make([]KeywordData, len(*wire.Data))
	for i, entry := range *wire.Data {
		if entry.Keyword == nil {
			return nil, &DecodeError{Err: fmt.Errorf("data[%d]: %w", i, ErrMissingKeyword)}
		}
		keywords[i] = entry.KeywordData
		keywords[i].Keyword = *entry.Keyword
	}

	return &BatchResult{
		Keywords: keywords,
		Credits:  wire.Credits,
		Time:     wire.Time,
		Raw:      body,
	}, nil
}
