package suspend

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

const (
	keyPrefix = "suspend:sale:"
	indexKey  = "suspend:index"

	codeLen = 6
	// No 0/O/1/I/L: claim codes get read aloud or copied off a till display.
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// newClaimCode mints a short human-relayable code.
func newClaimCode() (string, error) {
	buf := make([]byte, codeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// Line is one suspended cart line, enough to rebuild the cart later.
type Line struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Qty       int    `json:"qty" validate:"required,min=1"`
	Note      string `json:"note,omitempty"`
}

// Snapshot is a parked cart. Prices are not stored; they are re-resolved from
// the catalog when the snapshot is claimed.
type Snapshot struct {
	Code               string        `json:"code"`
	Label              string        `json:"label,omitempty"`
	Lines              []Line        `json:"lines"`
	MemberID           *string       `json:"memberId,omitempty"`
	AdditionalDiscount pricing.Money `json:"additionalDiscount"`
	SuspendedBy        string        `json:"suspendedBy"`
	SuspendedAt        time.Time     `json:"suspendedAt"`
}

// Store parks carts in Redis so a cashier can hand a sale to another till.
// Entries expire after the configured TTL; an abandoned cart never needs
// manual cleanup.
type Store struct {
	R   *redis.Client
	TTL time.Duration
	Now func() time.Time
}

func (s *Store) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Suspend parks a snapshot and returns it with the minted claim code.
func (s *Store) Suspend(ctx context.Context, snap Snapshot) (Snapshot, error) {
	if s == nil || s.R == nil {
		return Snapshot{}, errors.New("suspend store not configured")
	}
	if len(snap.Lines) == 0 {
		return Snapshot{}, common.ValidationError("cannot suspend an empty cart", nil)
	}
	snap.SuspendedAt = s.now()

	// Codes are short, so claim the key with SETNX and re-roll on collision.
	for attempt := 0; attempt < 5; attempt++ {
		code, err := newClaimCode()
		if err != nil {
			return Snapshot{}, err
		}
		snap.Code = code
		data, err := json.Marshal(snap)
		if err != nil {
			return Snapshot{}, err
		}
		ok, err := s.R.SetNX(ctx, keyPrefix+code, data, s.TTL).Result()
		if err != nil {
			return Snapshot{}, err
		}
		if !ok {
			continue
		}
		if err := s.R.ZAdd(ctx, indexKey, redis.Z{Score: float64(snap.SuspendedAt.UnixMilli()), Member: code}).Err(); err != nil {
			return Snapshot{}, err
		}
		return snap, nil
	}
	return Snapshot{}, errors.New("could not allocate a claim code")
}

// List returns parked snapshots, oldest first. Index entries whose payload
// already expired are pruned as they are encountered.
func (s *Store) List(ctx context.Context) ([]Snapshot, error) {
	if s == nil || s.R == nil {
		return nil, errors.New("suspend store not configured")
	}
	ids, err := s.R.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Snapshot, 0, len(ids))
	for _, code := range ids {
		data, err := s.R.Get(ctx, keyPrefix+code).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				_ = s.R.ZRem(ctx, indexKey, code).Err()
				continue
			}
			return nil, err
		}
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// Claim atomically takes a snapshot off the shelf. GETDEL guarantees exactly
// one of two racing cashiers gets the cart.
func (s *Store) Claim(ctx context.Context, code string) (Snapshot, error) {
	if s == nil || s.R == nil {
		return Snapshot{}, errors.New("suspend store not configured")
	}
	data, err := s.R.GetDel(ctx, keyPrefix+code).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, common.NotFoundError("suspended sale not found or already claimed")
		}
		return Snapshot{}, err
	}
	_ = s.R.ZRem(ctx, indexKey, code).Err()

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
