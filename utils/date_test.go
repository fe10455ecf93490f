package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	// 01:30 UTC on the 17th is still the 16th three hours west.
	instant := time.Date(2026, 10, 17, 1, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-10-16", DateOf(instant, loc).String())
	assert.Equal(t, "2026-10-17", DateOf(instant, time.UTC).String())
}

func TestCustomDateJSON(t *testing.T) {
	var payload struct {
		ValidFor CustomDate `json:"validFor"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"validFor":"2026-12-24"}`), &payload))
	assert.Equal(t, "2026-12-24", payload.ValidFor.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"validFor":"2026-12-24"}`, string(out))

	err = json.Unmarshal([]byte(`{"validFor":"24/12/2026"}`), &payload)
	assert.Error(t, err)
}

func TestCustomDateScan(t *testing.T) {
	var d CustomDate
	require.NoError(t, d.Scan(time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)))
	assert.Equal(t, "2026-01-02", d.String())

	require.NoError(t, d.Scan("2026-03-04T00:00:00Z"))
	assert.Equal(t, "2026-03-04", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestSameDayAndBefore(t *testing.T) {
	a, _ := ParseDate("2026-10-16")
	b := DateOf(time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC), time.UTC)
	c, _ := ParseDate("2026-10-17")

	assert.True(t, a.SameDay(b))
	assert.True(t, a.Before(c))
	assert.False(t, c.Before(a))
}
