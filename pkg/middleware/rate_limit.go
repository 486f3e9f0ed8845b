package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	apperrors "medibook/pkg/errors"
	"medibook/pkg/logger"
)

// KeyExtractor names the bucket a request is counted against. An empty key
// skips limiting.
type KeyExtractor func(r *http.Request) string

// ActorRateLimiter is a sliding-window limiter keyed per caller.
type ActorRateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor KeyExtractor
	log       *logger.Logger
	stopCh    chan struct{}
	now       func() time.Time
}

func NewActorRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *ActorRateLimiter {
	if extractor == nil {
		extractor = DefaultKeyExtractor
	}
	limiter := &ActorRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
		now:       time.Now,
	}

	go limiter.cleanup()

	return limiter
}

func (rl *ActorRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || rl.now().Sub(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ActorRateLimiter) Stop() {
	close(rl.stopCh)
}

// Allow records a request for key and reports whether it fits the window.
func (rl *ActorRateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := make([]time.Time, 0, rl.limit)
	for _, ts := range rl.requests[key] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

func ActorRateLimit(limiter *ActorRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extractor(r)

			if !limiter.Allow(key) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", requestIDFrom(r),
					"key", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
				_ = apperrors.WriteError(w, apperrors.New(apperrors.CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultKeyExtractor counts authenticated callers by user ID and everyone
// else by remote address.
func DefaultKeyExtractor(r *http.Request) string {
	if actor, ok := ActorFromContext(r.Context()); ok {
		return "user:" + actor.UserID
	}
	if id := r.Header.Get(ActorIDHeader); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
