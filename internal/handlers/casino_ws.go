package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/gianlucanapo/terrazzo-manager/internal/middleware"
)

// snapshotInterval is how often the websocket re-sends the table view.
const snapshotInterval = time.Second

// CasinoWSHandler upgrades to WebSocket and pushes the table snapshot on an
// interval. It is a convenience wrapper over the polling endpoint: the table
// itself stays pull-based and clients reconcile from each full snapshot.
func (ch *CasinoHandlers) CasinoWSHandler(logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"casino"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		defer c.Close(websocket.StatusNormalClosure, "")

		ctx := r.Context()
		ticker := time.NewTicker(snapshotInterval)
		defer ticker.Stop()

		// Drain client frames so pings are answered and closure is noticed.
		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			for {
				if _, _, err := c.Read(ctx); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, ctx.Err())
				return
			case <-readDone:
				middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
				return
			case <-ticker.C:
				data, err := json.Marshal(ch.Table.Snapshot())
				if err != nil {
					logger.WithError(err).Error("failed to marshal snapshot")
					continue
				}
				writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				err = c.Write(writeCtx, websocket.MessageText, data)
				cancel()
				if err != nil {
					middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
					return
				}
			}
		}
	}
}
