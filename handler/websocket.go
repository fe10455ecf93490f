package handler

import (
	"context"
	"strconv"

	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

// SectorStream sends the sector's capacity for today, then relays every
// change published for it until the client goes away.
func (h *Handler) SectorStream(c *websocket.Conn) {
	defer c.Close()

	id64, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id64 == 0 {
		_ = c.WriteJSON(map[string]string{"error": "invalid sector id"})
		return
	}
	sectorID := uint(id64)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	capacity, err := h.Sectors.CheckCapacityAvailable(ctx, sectorID, h.today())
	if err != nil {
		_ = c.WriteJSON(map[string]string{"error": err.Error()})
		return
	}
	if err := c.WriteJSON(capacity); err != nil {
		return
	}

	pubsub, ok := h.Realtime.Subscribe(ctx, sectorID)
	if !ok {
		return
	}
	defer pubsub.Close()

	// a read error means the client closed the socket
	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	channel := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-channel:
			if !open {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				logrus.WithError(err).WithField("sector_id", sectorID).Debug("sector stream closed")
				return
			}
		}
	}
}
