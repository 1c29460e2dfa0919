package common_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
)

func newIdem(t *testing.T) common.Idem {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return common.Idem{R: client, TTL: time.Minute}
}

func do(t *testing.T, h http.Handler, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)
	req.Header.Set("Idempotency-Key", key)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdemBlocksReplayAfterSuccess(t *testing.T) {
	idem := newIdem(t)
	calls := 0
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	first := do(t, h, "sale-abc")
	require.Equal(t, http.StatusCreated, first.Code)

	second := do(t, h, "sale-abc")
	require.Equal(t, http.StatusConflict, second.Code)
	require.Contains(t, second.Body.String(), "IDEMPOTENT_REPLAY")
	require.Equal(t, 1, calls)
}

func TestIdemReleasesKeyOnErrorResponse(t *testing.T) {
	idem := newIdem(t)
	calls := 0
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			common.RenderError(w, common.InsufficientStockError("stock is short", nil))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))

	first := do(t, h, "sale-retry")
	require.Equal(t, http.StatusConflict, first.Code)

	// The failed attempt must not consume the key: the cashier restocks and
	// submits the same sale again.
	second := do(t, h, "sale-retry")
	require.Equal(t, http.StatusCreated, second.Code)
	require.Equal(t, 2, calls)

	// Once it has succeeded the key sticks.
	third := do(t, h, "sale-retry")
	require.Equal(t, http.StatusConflict, third.Code)
	require.Contains(t, third.Body.String(), "IDEMPOTENT_REPLAY")
	require.Equal(t, 2, calls)
}

func TestIdemPassthroughWithoutHeader(t *testing.T) {
	idem := newIdem(t)
	calls := 0
	h := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, 2, calls)
}
