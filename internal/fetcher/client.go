package fetcher

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"sportsync/internal/config"
	"sportsync/internal/model"
	"sportsync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// RetrievalError is the terminal failure of a retrieval call: transport
// failure, non-2xx status, or rate-limit rejection after retries are
// exhausted. The scheduler fails the cycle on it and keeps running.
type RetrievalError struct {
	Endpoint   string
	StatusCode int // 0 when the transport failed before a response
	Attempts   int
	Err        error
}

func (e *RetrievalError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("retrieval of %s failed with status %d after %d attempts", e.Endpoint, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("retrieval of %s failed after %d attempts: %v", e.Endpoint, e.Attempts, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Client calls the football-data.org v4 API under a fixed rate budget and
// captures every successful response as a snapshot file before returning.
type Client struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	snapshots *SnapshotStore
	logger    *logrus.Logger

	retries     int
	backoffBase time.Duration

	mu         sync.Mutex
	spacing    time.Duration
	lastCall   time.Time
	retryAfter time.Duration
}

// NewClient wires the client from config. The snapshot store must already
// point at a writable directory.
func NewClient(cfg *config.FootballDataConfig, snapshots *SnapshotStore, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		http:        httpclient.New(cfg.Timeout()),
		snapshots:   snapshots,
		logger:      logger,
		retries:     cfg.RetryCount,
		backoffBase: 500 * time.Millisecond,
		spacing:     cfg.RateSpacing(),
	}
}

// FetchMatches retrieves fixtures for the filter's competition (or across
// competitions when the code is empty) and snapshots the raw body.
func (c *Client) FetchMatches(ctx context.Context, filter model.MatchFilter) (*model.RawSnapshot, error) {
	endpoint := "matches"
	name := "matches_all"
	if filter.CompetitionCode != "" {
		endpoint = fmt.Sprintf("competitions/%s/matches", filter.CompetitionCode)
		name = "matches_" + filter.CompetitionCode
	}

	query := url.Values{}
	if !filter.DateFrom.IsZero() {
		query.Set("dateFrom", filter.DateFrom.UTC().Format("2006-01-02"))
	}
	if !filter.DateTo.IsZero() {
		query.Set("dateTo", filter.DateTo.UTC().Format("2006-01-02"))
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Matchday > 0 {
		query.Set("matchday", strconv.Itoa(filter.Matchday))
	}
	if filter.Season > 0 {
		query.Set("season", strconv.Itoa(filter.Season))
	}

	return c.get(ctx, endpoint, query, name)
}

// FetchTeam retrieves one team's full record.
func (c *Client) FetchTeam(ctx context.Context, teamID int64) (*model.RawSnapshot, error) {
	endpoint := fmt.Sprintf("teams/%d", teamID)
	return c.get(ctx, endpoint, nil, fmt.Sprintf("team_%d", teamID))
}

// FetchScorers retrieves the top-scorers table for a competition.
func (c *Client) FetchScorers(ctx context.Context, competitionCode string, limit int) (*model.RawSnapshot, error) {
	endpoint := fmt.Sprintf("competitions/%s/scorers", competitionCode)
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return c.get(ctx, endpoint, query, "scorers_"+competitionCode)
}

// get runs one logical retrieval: rate gate, bounded retries with backoff,
// snapshot write on success. Every attempt logs endpoint, outcome and
// latency.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, snapshotName string) (*model.RawSnapshot, error) {
	target := c.baseURL + "/" + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var lastStatus int
	var lastErr error

	attempts := 0
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := c.backoff(ctx, attempt, lastStatus, lastErr); err != nil {
				return nil, &RetrievalError{Endpoint: endpoint, StatusCode: lastStatus, Attempts: attempts, Err: err}
			}
		}
		if err := c.acquire(ctx); err != nil {
			return nil, &RetrievalError{Endpoint: endpoint, StatusCode: lastStatus, Attempts: attempts, Err: err}
		}
		attempts++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, &RetrievalError{Endpoint: endpoint, Attempts: attempts, Err: err}
		}
		req.Header.Set("X-Auth-Token", c.apiKey)

		start := time.Now()
		resp, err := c.http.Do(req)
		latency := time.Since(start)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"endpoint": endpoint,
				"latency":  latency.Round(time.Millisecond).String(),
			}).WithError(err).Warn("request failed")
			lastErr, lastStatus = err, 0
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		entry := c.logger.WithFields(logrus.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
			"latency":  latency.Round(time.Millisecond).String(),
		})

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				entry.WithError(readErr).Warn("reading response body failed")
				lastErr, lastStatus = readErr, resp.StatusCode
				continue
			}
			capturedAt := time.Now()
			path, err := c.snapshots.Write(snapshotName, capturedAt, body)
			if err != nil {
				return nil, &RetrievalError{Endpoint: endpoint, StatusCode: resp.StatusCode, Attempts: attempts, Err: err}
			}
			entry.WithField("snapshot", path).Info("fetch ok")
			return &model.RawSnapshot{Name: snapshotName, Body: body, CapturedAt: capturedAt, Path: path}, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			lastStatus, lastErr = resp.StatusCode, nil
			c.noteRetryAfter(resp)
			entry.Warn("rate limited")

		case resp.StatusCode >= 500:
			lastStatus, lastErr = resp.StatusCode, nil
			entry.Warn("server error")

		default:
			// Client errors other than 429 will not improve on retry.
			entry.Error("fetch rejected")
			return nil, &RetrievalError{Endpoint: endpoint, StatusCode: resp.StatusCode, Attempts: attempts}
		}
	}

	return nil, &RetrievalError{Endpoint: endpoint, StatusCode: lastStatus, Attempts: attempts, Err: lastErr}
}

// acquire blocks until the minimum inter-call spacing has elapsed. Callers
// are serialized; the wait is abandoned when the context is cancelled.
func (c *Client) acquire(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastCall.IsZero() {
		if wait := c.spacing - time.Since(c.lastCall); wait > 0 {
			timer := time.NewTimer(wait)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	c.lastCall = time.Now()
	return nil
}

// backoff sleeps before a retry: exponential with jitter, stretched to the
// server's Retry-After when one was given on a 429.
func (c *Client) backoff(ctx context.Context, attempt, lastStatus int, lastErr error) error {
	delay := c.backoffBase << (attempt - 1)
	delay += time.Duration(rand.Int63n(int64(c.backoffBase)/2 + 1))

	c.mu.Lock()
	if c.retryAfter > delay && lastStatus == http.StatusTooManyRequests {
		delay = c.retryAfter
	}
	c.retryAfter = 0
	c.mu.Unlock()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) noteRetryAfter(resp *http.Response) {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.mu.Lock()
			c.retryAfter = time.Duration(secs) * time.Second
			c.mu.Unlock()
		}
	}
}
