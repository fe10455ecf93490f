package helper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"tourism_marketplace/model"
)

func TestRealtimeDisabledWithoutAddress(t *testing.T) {
	rt := NewRealtime("", "", 0)
	assert.Nil(t, rt)

	ctx := context.Background()
	rt.SectorChanged(ctx, 1, "2025-03-10")
	rt.CacheCapacity(ctx, model.Capacity{SectorID: 1, Date: "2025-03-10"})

	_, ok := rt.CachedCapacity(ctx, 1, "2025-03-10")
	assert.False(t, ok)
	_, ok = rt.Subscribe(ctx, 1)
	assert.False(t, ok)
	assert.NoError(t, rt.Close())
}

func TestSectorChannel(t *testing.T) {
	assert.Equal(t, "sector:12", SectorChannel(12))
	assert.Equal(t, "capacity:12:2025-03-10", capacityKey(12, "2025-03-10"))
}
