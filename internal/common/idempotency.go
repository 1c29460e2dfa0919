package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Idem provides an Idempotency-Key middleware backed by Redis. Settlement and
// payment recording endpoints honor it so a terminal retrying over a flaky
// link cannot double-charge.
type Idem struct {
	R   *redis.Client
	TTL time.Duration
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "idem:" + hex.EncodeToString(sum[:])
}

// statusCapture remembers the status the handler wrote so the middleware can
// decide whether the key should survive.
type statusCapture struct {
	http.ResponseWriter
	status int
}

func (sc *statusCapture) WriteHeader(code int) {
	sc.status = code
	sc.ResponseWriter.WriteHeader(code)
}

// Middleware enforces idempotency semantics for write endpoints. The key is
// claimed before the handler runs; if the handler answers with an error status
// the claim is released so the cashier can retry the whole operation with the
// same key.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.R == nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		key := hashKey(header)
		ok, err := i.R.SetNX(ctx, key, "locked", i.TTL).Result()
		if err != nil {
			JSONError(w, http.StatusInternalServerError, CodeInternal, "idempotency store error", map[string]any{"error": err.Error()})
			return
		}
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, "{\"error\":{\"code\":\"IDEMPOTENT_REPLAY\",\"message\":\"duplicate request\"}}")
			return
		}
		capture := &statusCapture{ResponseWriter: w, status: http.StatusOK}
		succeeded := false
		defer func() {
			if succeeded {
				_ = i.R.Expire(context.Background(), key, i.TTL).Err()
				return
			}
			// The operation did not take effect (error response or panic).
			// Free the key so the retry is not mistaken for a replay.
			_ = i.R.Del(context.Background(), key).Err()
		}()
		next.ServeHTTP(capture, r)
		succeeded = capture.status < http.StatusBadRequest
	})
}
