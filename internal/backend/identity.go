package backend

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/orderdesk/internal/metrics"
	"go.uber.org/zap"
)

// IsNetworkError reports timeouts, refused connections and DNS failures,
// which are expected while the backend is unreachable.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

type ProfileFetcher interface {
	FetchProfile(ctx context.Context) (Profile, error)
}

// ResolveIdentity keeps fetching the profile until it yields an id or ctx ends.
// Until then the caller stays in the "waiting for identity" state.
func ResolveIdentity(ctx context.Context, fetcher ProfileFetcher, interval time.Duration, logger *zap.Logger) (string, error) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	l := logger.With(zap.String("component", "identity"))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		profile, err := fetcher.FetchProfile(ctx)
		switch {
		case err == nil && profile.ID != "":
			l.Info("restaurant identity resolved", zap.String("restaurant_id", profile.ID), zap.String("name", profile.Name))
			return profile.ID, nil
		case err == nil:
			l.Warn("profile has no restaurant id", zap.Int("attempt", attempt))
		case ctx.Err() != nil:
			return "", ctx.Err()
		case IsNetworkError(err):
			l.Debug("backend unreachable, waiting for identity", zap.Int("attempt", attempt), zap.Error(err))
		default:
			metrics.OperationErrorsTotal.WithLabelValues("fetch_profile").Inc()
			l.Warn("fetch profile failed", zap.Int("attempt", attempt), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
