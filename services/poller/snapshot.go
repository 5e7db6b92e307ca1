package poller

import (
	"context"
	"encoding/json"
	"time"

	"servihub/models"
	"servihub/utils"

	"github.com/go-redis/redis/v8"
)

// SnapshotStore persists the latest payment-status snapshot so diffing
// survives a dashboard session restart.
type SnapshotStore interface {
	Save(ctx context.Context, userID string, snap models.BookingListSnapshot) error
	Load(ctx context.Context, userID string) (*models.BookingListSnapshot, error)
}

// RedisSnapshotStore keeps snapshots in the generic cache DB.
type RedisSnapshotStore struct {
	Client *redis.Client
}

func (s *RedisSnapshotStore) Save(ctx context.Context, userID string, snap models.BookingListSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, utils.SnapshotCachePrefix+userID, data, utils.SnapshotTTL).Err()
}

func (s *RedisSnapshotStore) Load(ctx context.Context, userID string) (*models.BookingListSnapshot, error) {
	data, err := s.Client.Get(ctx, utils.SnapshotCachePrefix+userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap models.BookingListSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SnapshotFrom builds a snapshot of the given bookings at version v.
func SnapshotFrom(v int64, bookings []models.Booking, now time.Time) models.BookingListSnapshot {
	payments := make(map[string]models.PaymentStatus, len(bookings))
	for _, b := range bookings {
		if b.Payment != nil {
			payments[b.ID] = b.Payment.Status
		}
	}
	return models.BookingListSnapshot{Version: v, FetchedAt: now, Payments: payments}
}
