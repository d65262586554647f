// Package timeouts holds the context deadlines handlers apply to
// database and external calls. Keeping them in one place makes the
// tiers consistent across features and tunable without code changes.
//
// Tier guide:
//   - Ping: health-check connectivity probes
//   - Short: single-document reads and lookups
//   - Medium: list queries, simple creates and updates
//   - Long: multi-collection writes, deletes with cleanup
//   - Batch: media uploads and other slow external calls
package timeouts

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults, used unless overridden via ConfigureFromEnv.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var (
	mu     sync.RWMutex
	values = map[string]time.Duration{
		"ping":   DefaultPing,
		"short":  DefaultShort,
		"medium": DefaultMedium,
		"long":   DefaultLong,
		"batch":  DefaultBatch,
	}
)

func get(tier string) time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return values[tier]
}

// Ping returns the deadline for connectivity probes.
func Ping() time.Duration { return get("ping") }

// Short returns the deadline for single-document operations.
func Short() time.Duration { return get("short") }

// Medium returns the deadline for list queries and simple writes.
func Medium() time.Duration { return get("medium") }

// Long returns the deadline for multi-collection writes.
func Long() time.Duration { return get("long") }

// Batch returns the deadline for slow external calls, e.g. pushing a
// lecture video to the media host.
func Batch() time.Duration { return get("batch") }

// ConfigureFromEnv applies TIMEOUT_PING, TIMEOUT_SHORT, TIMEOUT_MEDIUM,
// TIMEOUT_LONG, and TIMEOUT_BATCH overrides (Go duration syntax, e.g.
// "500ms", "2m"). Unset or unparsable variables keep the current value.
// Returns how many overrides were applied.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()

	applied := 0
	for tier := range values {
		v := os.Getenv("TIMEOUT_" + strings.ToUpper(tier))
		if v == "" {
			continue
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			values[tier] = d
			applied++
		}
	}
	return applied
}

// Reset restores the defaults. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	values["ping"] = DefaultPing
	values["short"] = DefaultShort
	values["medium"] = DefaultMedium
	values["long"] = DefaultLong
	values["batch"] = DefaultBatch
}

// WithTimeout wraps context.WithTimeout and logs a warning from the
// returned cancel func when the operation ran out of time. Use it where
// a deadline firing is worth investigating, not just an aborted request.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "lecture video upload")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
