package service

import (
	"context"
	"strconv"
	"time"

	"tourism_marketplace/utils"
)

// Clock is swapped in tests to pin "today".
type Clock func() time.Time

// Notifier is told whenever the availability of a sector day changes.
type Notifier interface {
	SectorChanged(ctx context.Context, sectorID uint, day string)
}

// TicketMailer delivers purchase confirmations.
type TicketMailer interface {
	SendTickets(data utils.TicketMailData) error
}

type sectorDay struct {
	sectorID uint
	day      string
}

func parseUint(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
