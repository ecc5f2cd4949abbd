// Package api is the client for the marketplace HTTP API: catalog listings,
// the worker profile, quiz generation and quiz submission.
//
// Every call is a single attempt. When the API is unreachable, answers with
// an error status or sends something that does not decode, the call logs a
// warning and returns built-in mock data instead.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/cashngo/am"
	"github.com/teranos/cashngo/errors"
	"github.com/teranos/cashngo/gig"
	"github.com/teranos/cashngo/internal/httpclient"
	"github.com/teranos/cashngo/logger"
	"github.com/teranos/cashngo/version"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// Client talks to the marketplace API
type Client struct {
	http    *httpclient.SaferClient
	baseURL string
	log     *zap.SugaredLogger
}

// New creates a client for baseURL using httpClient
func New(baseURL string, httpClient *httpclient.SaferClient) *Client {
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.ComponentLogger("api"),
	}
}

// NewFromConfig creates a client from the [api] config section
func NewFromConfig(cfg am.APIConfig) *Client {
	return New(cfg.BaseURL, httpclient.New(httpclient.Options{
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		BlockPrivateIP:    cfg.BlockPrivateIP,
		RequestsPerSecond: cfg.RequestsPerSecond,
		UserAgent:         "cashngo/" + version.Short(),
	}))
}

// BaseURL returns the API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrServiceUnavailable, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debugw("API call",
		logger.FieldMethod, method,
		logger.FieldPath, path,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", path)
	}
	return nil
}

func (c *Client) fallback(op string, err error) {
	c.log.Warnw("API call failed, using mock data",
		logger.FieldOperation, op,
		logger.FieldURL, c.baseURL,
		logger.FieldError, err,
	)
}

// FetchGigs returns the marketplace catalog
func (c *Client) FetchGigs(ctx context.Context) []gig.CatalogGig {
	var gigs []gig.CatalogGig
	if err := c.do(ctx, http.MethodGet, "/gigs", nil, &gigs); err != nil {
		c.fallback("fetch_gigs", err)
		return MockGigs()
	}
	return gigs
}

// FetchUserProfile returns the signed-in worker's profile
func (c *Client) FetchUserProfile(ctx context.Context) gig.UserProfile {
	var profile gig.UserProfile
	if err := c.do(ctx, http.MethodGet, "/user/profile", nil, &profile); err != nil {
		c.fallback("fetch_user_profile", err)
		return MockUserProfile()
	}
	return profile
}

type generateRequest struct {
	Skill string `json:"skill"`
}

// GenerateQuiz returns a quiz for skill
func (c *Client) GenerateQuiz(ctx context.Context, skill string) gig.Quiz {
	var quiz gig.Quiz
	err := c.do(ctx, http.MethodPost, "/quiz/generate", generateRequest{Skill: skill}, &quiz)
	if err == nil && len(quiz.Questions) == 0 {
		err = errors.New("quiz has no questions")
	}
	if err != nil {
		c.fallback("generate_quiz", err)
		return MockQuiz(skill)
	}
	return quiz
}
