package helper

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"tourism_marketplace/model"
)

const capacityCacheTTL = 30 * time.Second

// Realtime caches capacity answers and fans out availability changes over
// Redis pub/sub. A nil *Realtime is valid and does nothing.
type Realtime struct {
	client *redis.Client
}

func NewRealtime(addr, password string, db int) *Realtime {
	if addr == "" {
		return nil
	}
	return &Realtime{client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})}
}

func SectorChannel(sectorID uint) string {
	return fmt.Sprintf("sector:%d", sectorID)
}

func capacityKey(sectorID uint, day string) string {
	return fmt.Sprintf("capacity:%d:%s", sectorID, day)
}

// SectorEvent is what subscribers of a sector channel receive.
type SectorEvent struct {
	SectorID uint   `json:"sectorId"`
	Date     string `json:"date"`
}

// SectorChanged drops the cached capacity and publishes the change.
func (r *Realtime) SectorChanged(ctx context.Context, sectorID uint, day string) {
	if r == nil {
		return
	}
	if err := r.client.Del(ctx, capacityKey(sectorID, day)).Err(); err != nil {
		logrus.WithError(err).WithField("sector_id", sectorID).Warn("capacity cache invalidation failed")
	}
	payload, _ := json.Marshal(SectorEvent{SectorID: sectorID, Date: day})
	if err := r.client.Publish(ctx, SectorChannel(sectorID), payload).Err(); err != nil {
		logrus.WithError(err).WithField("sector_id", sectorID).Warn("sector publish failed")
	}
}

func (r *Realtime) CachedCapacity(ctx context.Context, sectorID uint, day string) (*model.Capacity, bool) {
	if r == nil {
		return nil, false
	}
	raw, err := r.client.Get(ctx, capacityKey(sectorID, day)).Bytes()
	if err != nil {
		return nil, false
	}
	var capacity model.Capacity
	if err := json.Unmarshal(raw, &capacity); err != nil {
		return nil, false
	}
	return &capacity, true
}

func (r *Realtime) CacheCapacity(ctx context.Context, capacity model.Capacity) {
	if r == nil {
		return
	}
	raw, _ := json.Marshal(capacity)
	if err := r.client.Set(ctx, capacityKey(capacity.SectorID, capacity.Date), raw, capacityCacheTTL).Err(); err != nil {
		logrus.WithError(err).Warn("capacity cache write failed")
	}
}

// Subscribe returns the stream of events for one sector. The caller closes
// the returned PubSub.
func (r *Realtime) Subscribe(ctx context.Context, sectorID uint) (*redis.PubSub, bool) {
	if r == nil {
		return nil, false
	}
	return r.client.Subscribe(ctx, SectorChannel(sectorID)), true
}

func (r *Realtime) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}
