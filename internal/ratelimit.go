package internal

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimit wraps an HTTP handler with a per-client token bucket. A zero or
// negative rps disables limiting entirely.
func RateLimit(next http.Handler, rps, burst int64) http.Handler {
	if rps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = rps
	}

	buckets := &clientBuckets{
		entries: make(map[string]*bucket),
		rps:     float64(rps),
		burst:   float64(burst),
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !buckets.allow(clientIP(r), time.Now()) {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type clientBuckets struct {
	mu      sync.Mutex
	entries map[string]*bucket
	rps     float64
	burst   float64
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// staleAfter bounds the bucket map: clients idle longer than this are
// dropped on the next allow call.
const staleAfter = 10 * time.Minute

func (b *clientBuckets) allow(key string, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for client, entry := range b.entries {
		if now.Sub(entry.seen) > staleAfter {
			delete(b.entries, client)
		}
	}

	entry, ok := b.entries[key]
	if !ok {
		b.entries[key] = &bucket{tokens: b.burst - 1, seen: now}
		return true
	}

	entry.tokens += now.Sub(entry.seen).Seconds() * b.rps
	if entry.tokens > b.burst {
		entry.tokens = b.burst
	}
	entry.seen = now

	if entry.tokens < 1 {
		return false
	}
	entry.tokens--
	return true
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if ip := r.Header.Get("X-Real-Ip"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
