package suspend_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/suspend"
)

func newStore(t *testing.T) (*suspend.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &suspend.Store{R: client, TTL: 12 * time.Hour}, mr
}

func TestSuspendAndList(t *testing.T) {
	store, _ := newStore(t)
	clock := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	store.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	ctx := context.Background()

	first, err := store.Suspend(ctx, suspend.Snapshot{
		Label:       "meja 4",
		Lines:       []suspend.Line{{ProductID: "p1", Qty: 2}},
		SuspendedBy: "cashier-1",
	})
	require.NoError(t, err)
	require.Len(t, first.Code, 6)
	for _, c := range first.Code {
		require.Contains(t, "ABCDEFGHJKMNPQRSTUVWXYZ23456789", string(c))
	}
	require.False(t, first.SuspendedAt.IsZero())

	second, err := store.Suspend(ctx, suspend.Snapshot{
		Lines:       []suspend.Line{{ProductID: "p2", Qty: 1}},
		SuspendedBy: "cashier-1",
	})
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first.Code, list[0].Code)
	require.Equal(t, second.Code, list[1].Code)
	require.Equal(t, "meja 4", list[0].Label)
}

func TestSuspendRejectsEmptyCart(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Suspend(context.Background(), suspend.Snapshot{SuspendedBy: "cashier-1"})
	require.Error(t, err)
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeValidation, app.Code)
}

func TestClaimIsSingleShot(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	snap, err := store.Suspend(ctx, suspend.Snapshot{
		Lines:       []suspend.Line{{ProductID: "p1", Qty: 3, Note: "no ice"}},
		SuspendedBy: "cashier-1",
	})
	require.NoError(t, err)

	claimed, err := store.Claim(ctx, snap.Code)
	require.NoError(t, err)
	require.Equal(t, snap.Code, claimed.Code)
	require.Equal(t, "no ice", claimed.Lines[0].Note)

	_, err = store.Claim(ctx, snap.Code)
	require.Error(t, err)
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeNotFound, app.Code)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestListPrunesExpiredEntries(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	snap, err := store.Suspend(ctx, suspend.Snapshot{
		Lines:       []suspend.Line{{ProductID: "p1", Qty: 1}},
		SuspendedBy: "cashier-1",
	})
	require.NoError(t, err)

	mr.FastForward(13 * time.Hour)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = store.Claim(ctx, snap.Code)
	require.Error(t, err)
}
