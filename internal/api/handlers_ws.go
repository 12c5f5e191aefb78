package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const wsWriteTimeout = 5 * time.Second

// handleProgressFeed streams tracker changes to a websocket client until
// either side goes away. Clients only listen; anything they send is discarded.
func (s *Server) handleProgressFeed(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept failed", "error", err)
		return
	}
	defer c.CloseNow()

	sub := s.tracker.Subscribe(s.opts.EventsBuffer)
	defer sub.Close()

	ctx := c.CloseRead(r.Context())
	s.log.Debug("progress feed opened", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-sub.C:
			if !ok {
				c.Close(websocket.StatusGoingAway, "feed closed")
				return
			}
			if err := writeChange(ctx, c, change); err != nil {
				if !errors.Is(err, context.Canceled) {
					s.log.Debug("progress feed write failed", "error", err)
				}
				return
			}
		}
	}
}

func writeChange(ctx context.Context, c *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, c, v)
}
