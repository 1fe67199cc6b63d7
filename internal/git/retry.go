package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"git.home.luguber.info/inful/pkgbuild/internal/logfields"
)

// withRetry wraps a clone attempt with the client's backoff policy.
func (c *Client) withRetry(ctx context.Context, op, url string, fn func() error) error {
	if c.policy.MaxRetries <= 0 {
		return fn()
	}
	var lastErr error
	for attempt := 0; attempt <= c.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("retrying git operation", slog.String("operation", op), logfields.URL(url), slog.Int("attempt", attempt))
		}
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if isPermanentGitError(err) {
			slog.Debug("permanent git error", slog.String("operation", op), logfields.URL(url), logfields.Error(err))
			return err
		}
		if attempt == c.policy.MaxRetries {
			break
		}
		if err := c.sleep(ctx, c.policy.Delay(attempt+1)); err != nil {
			return err
		}
	}
	return fmt.Errorf("git %s failed after retries: %w", op, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func isPermanentGitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.As(err, new(*NetworkTimeoutError)) {
		return false
	}
	if errors.As(err, new(*AuthError)) || errors.As(err, new(*NotFoundError)) ||
		errors.As(err, new(*UnsupportedProtocolError)) || errors.As(err, new(*RevisionNotFoundError)) {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "denied") || strings.Contains(msg, "invalid reference") {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return !nerr.Timeout()
	}
	return false
}
