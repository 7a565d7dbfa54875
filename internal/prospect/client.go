package prospect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"prospect-engine/internal/domain"
)

const (
	DefaultBaseURL = "https://api.waterfall.to/v1/prospector"
	APIKeyHeader   = "x-waterfall-api-key"

	opLaunch = "launch"
	opPoll   = "poll"

	maxBody = 8 << 20
)

type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
}

// Limiter gates every outbound request.
type Limiter interface {
	Acquire(ctx context.Context) error
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter Limiter
	log     logrus.FieldLogger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

func NewClient(cfg Config, limiter Limiter, log logrus.FieldLogger, opts ...Option) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "prospect-engine/1.0"
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Launch creates a prospect job for d. Non-2xx responses are logged and
// returned as *APIError; the caller decides whether to skip the domain.
func (c *Client) Launch(ctx context.Context, d domain.Domain, titleFilter string) (domain.JobHandle, error) {
	body, err := json.Marshal(launchRequest{Domain: string(d), TitleFilter: titleFilter})
	if err != nil {
		return "", fmt.Errorf("prospect launch encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("prospect launch request: %w", err)
	}

	status, raw, err := c.do(ctx, req)
	if err != nil {
		if stop := stopErr(ctx, err); stop != nil {
			return "", stop
		}
		c.log.WithFields(logrus.Fields{"domain": d, "err": err}).Warn("[prospect] launch transport error")
		return "", &APIError{Op: opLaunch, Domain: d, Err: err}
	}
	if !is2xx(status) {
		c.log.WithFields(logrus.Fields{"domain": d, "status": status, "body": string(raw)}).
			Warn("[prospect] error while launching prospect")
		return "", &APIError{Op: opLaunch, Domain: d, StatusCode: status, Body: string(raw)}
	}

	var out launchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &PayloadError{Op: opLaunch, Reason: "decode body", Err: err}
	}
	if strings.TrimSpace(out.JobID) == "" {
		return "", &PayloadError{Op: opLaunch, Reason: "missing job_id"}
	}
	return domain.JobHandle(out.JobID), nil
}

// Poll fetches the current status of a launched job. A non-2xx response is a
// transient *APIError; a body that cannot be trusted is a *PayloadError.
func (c *Client) Poll(ctx context.Context, h domain.JobHandle) (PollResult, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return PollResult{}, fmt.Errorf("prospect poll url: %w", err)
	}
	q := u.Query()
	q.Set("job_id", string(h))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return PollResult{}, fmt.Errorf("prospect poll request: %w", err)
	}

	status, raw, err := c.do(ctx, req)
	if err != nil {
		if stop := stopErr(ctx, err); stop != nil {
			return PollResult{}, stop
		}
		c.log.WithFields(logrus.Fields{"job_id": h, "err": err}).Warn("[prospect] poll transport error")
		return PollResult{}, &APIError{Op: opPoll, Handle: h, Err: err}
	}
	if !is2xx(status) {
		c.log.WithFields(logrus.Fields{"job_id": h, "status": status, "body": string(raw)}).
			Warn("[prospect] error while fetching prospect")
		return PollResult{}, &APIError{Op: opPoll, Handle: h, StatusCode: status, Body: string(raw)}
	}

	return decodePoll(h, raw)
}

func decodePoll(h domain.JobHandle, raw []byte) (PollResult, error) {
	var pr pollResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return PollResult{}, &PayloadError{Op: opPoll, Handle: h, Reason: "decode body", Err: err}
	}
	st, ok := domain.ParseJobStatus(pr.Status)
	if !ok {
		return PollResult{}, &PayloadError{Op: opPoll, Handle: h, Reason: fmt.Sprintf("unknown status %q", pr.Status)}
	}
	if st != domain.StatusSucceeded {
		return PollResult{Status: st}, nil
	}

	if len(bytes.TrimSpace(pr.Output)) == 0 || bytes.Equal(bytes.TrimSpace(pr.Output), []byte("null")) {
		return PollResult{}, &PayloadError{Op: opPoll, Handle: h, Reason: "succeeded without output"}
	}
	var out domain.ProspectResult
	if err := json.Unmarshal(pr.Output, &out); err != nil {
		return PollResult{}, &PayloadError{Op: opPoll, Handle: h, Reason: "decode output", Err: err}
	}
	if err := validateResult(&out); err != nil {
		return PollResult{}, &PayloadError{Op: opPoll, Handle: h, Reason: "invalid output", Err: err}
	}
	return PollResult{Status: st, Output: &out}, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (int, []byte, error) {
	req.Header.Set(APIKeyHeader, c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return 0, nil, &waitError{err: err}
		}
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return res.StatusCode, bytes.TrimSpace(b), nil
}

// waitError marks a request that was never sent because the limiter refused.
type waitError struct{ err error }

func (e *waitError) Error() string { return e.err.Error() }
func (e *waitError) Unwrap() error { return e.err }

// stopErr returns the error to hand back unwrapped: the context's own error,
// or the limiter's refusal. Neither is a remote failure.
func stopErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var we *waitError
	if errors.As(err, &we) {
		return we.err
	}
	return nil
}

func is2xx(code int) bool { return code >= 200 && code <= 299 }

// IsTransient reports whether err should leave a job queued for another poll.
func IsTransient(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
