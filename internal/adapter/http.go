package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/amishk599/jobsweep/internal/model"
	"github.com/amishk599/jobsweep/internal/quota"
	"github.com/amishk599/jobsweep/internal/ratelimit"
	"github.com/amishk599/jobsweep/internal/retry"
)

const userAgent = "jobsweep/1.0 (+https://github.com/amishk599/jobsweep)"

// errQuotaExhausted is returned when the daily quota refuses another call.
var errQuotaExhausted = errors.New("daily quota exhausted")

// Deps bundles the collaborators every adapter needs. A zero Pacer, Quota or
// Retry policy disables the respective behaviour.
type Deps struct {
	Client *http.Client
	Logger *slog.Logger
	Pacer  *ratelimit.Pacer
	Quota  quota.Store
	Retry  retry.Policy
}

// base carries the shared request plumbing embedded by each adapter.
type base struct {
	name   string
	client *http.Client
	logger *slog.Logger
	pacer  *ratelimit.Pacer
	quota  quota.Store
	retry  retry.Policy
}

func newBase(name string, d Deps) base {
	client := d.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return base{
		name:   name,
		client: client,
		logger: logger.With("source", name),
		pacer:  d.Pacer,
		quota:  d.Quota,
		retry:  d.Retry,
	}
}

// Name returns the adapter name.
func (b *base) Name() string { return b.name }

// fetchJSON paces, checks the quota, then issues the request built by
// newReq and decodes a 2xx JSON body into v, retrying transient failures.
// newReq is called once per attempt so request bodies can be rebuilt.
func (b *base) fetchJSON(ctx context.Context, newReq func(ctx context.Context) (*http.Request, error), v any) error {
	if err := b.pacer.Wait(ctx, b.name); err != nil {
		return err
	}

	ok, err := quota.Check(ctx, b.quota, b.name)
	if err != nil {
		b.logger.Warn("quota store unavailable, allowing call", "error", err)
	}
	if !ok {
		return errQuotaExhausted
	}

	return retry.Do(ctx, b.retry, b.logger, b.name, func(ctx context.Context) error {
		req, err := newReq(ctx)
		if err != nil {
			return retry.Permanent(fmt.Errorf("building request: %w", err))
		}
		return doJSON(b.client, req, v)
	})
}

// doJSON executes req and decodes a 2xx JSON response into v. Non-2xx
// responses become *model.HTTPError; decode failures are permanent.
func doJSON(client *http.Client, req *http.Request, v any) error {
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Host, resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return retry.Permanent(fmt.Errorf("decoding %s response: %w", req.URL.Host, err))
	}
	return nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
