package restapi

import (
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long a client's limiter survives without requests.
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits requests per client address.
type RateLimitMiddleware struct {
	mu          sync.Mutex
	limiters    map[string]*clientLimiter
	rateLimit   rate.Limit
	burstSize   int
	lastCleanup time.Time
	now         func() time.Time
	// trusted are the proxies whose X-Forwarded-For header is believed.
	trusted []netip.Prefix
}

// NewRateLimitMiddleware allows requestsPerInterval requests per interval
// and client, with bursts of the same size. Zero or less disables limiting.
// Clients are keyed by their connection address unless it belongs to one of
// trustedProxies.
func NewRateLimitMiddleware(requestsPerInterval int, interval time.Duration, trustedProxies []string) func(http.Handler) http.Handler {
	if requestsPerInterval <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	rl := newRateLimiter(requestsPerInterval, interval)
	rl.trusted = parseTrustedProxies(trustedProxies)
	return rl.rateLimitHandler
}

func newRateLimiter(requestsPerInterval int, interval time.Duration) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		limiters:  make(map[string]*clientLimiter),
		rateLimit: rate.Every(interval / time.Duration(requestsPerInterval)),
		burstSize: requestsPerInterval,
		now:       time.Now,
	}
}

// parseTrustedProxies accepts addresses and CIDR ranges. Entries that are
// neither are skipped; the config layer rejects them before this point.
func parseTrustedProxies(entries []string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return prefixes
}

// getLimiter returns the client's limiter, dropping idle ones along the way.
func (rl *RateLimitMiddleware) getLimiter(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastCleanup) > idleLimiterTTL {
		for key, cl := range rl.limiters {
			if now.Sub(cl.lastSeen) > idleLimiterTTL {
				delete(rl.limiters, key)
			}
		}
		rl.lastCleanup = now
	}

	cl, ok := rl.limiters[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rateLimit, rl.burstSize)}
		rl.limiters[client] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (rl *RateLimitMiddleware) rateLimitHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(clientAddress(r, rl.trusted)).Allow() {
			retryAfter := time.Duration(float64(time.Second) / float64(rl.rateLimit))
			w.Header().Set("Retry-After", strconv.Itoa(max(1, int(retryAfter.Seconds()))))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burstSize))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"code":429,"text":"rate limit exceeded"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddress identifies the caller. X-Forwarded-For is only read when
// the connection comes from a trusted proxy; the client is then the nearest
// hop that is not itself a trusted proxy.
func clientAddress(r *http.Request, trusted []netip.Prefix) string {
	remote := remoteHost(r)
	if !isTrusted(remote, trusted) {
		return remote
	}

	var hops []string
	for _, value := range r.Header.Values("X-Forwarded-For") {
		hops = append(hops, strings.Split(value, ",")...)
	}
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop != "" && !isTrusted(hop, trusted) {
			return hop
		}
	}
	return remote
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isTrusted(address string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
