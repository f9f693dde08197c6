package broadcast

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	pongWait     = 2 * pingInterval
)

// ServeWS upgrades the request to a websocket and streams every hub message
// to the client as a JSON {event, data} text frame until either side closes.
// allowOrigin "*" accepts any origin.
func ServeWS(h *Hub, allowOrigin string) http.HandlerFunc {
	upgr := &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowOrigin == "" || allowOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowOrigin
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		wc, err := upgr.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		sub := h.Subscribe()
		h.log.Info().Str("subscriber", sub.ID).Str("remote", r.RemoteAddr).Msg("client connected")

		go writeLoop(wc, sub)
		readLoop(wc)

		h.Unsubscribe(sub)
		h.log.Info().Str("subscriber", sub.ID).Msg("client disconnected")
	}
}

// readLoop discards client frames and returns once the connection is gone
func readLoop(wc *websocket.Conn) {
	wc.SetReadLimit(512)
	wc.SetReadDeadline(time.Now().Add(pongWait))
	wc.SetPongHandler(func(string) error {
		return wc.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := wc.NextReader(); err != nil {
			return
		}
	}
}

func writeLoop(wc *websocket.Conn, sub *Subscription) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	defer wc.Close()

	for {
		select {
		case msg, ok := <-sub.C:
			if !ok {
				wc.SetWriteDeadline(time.Now().Add(writeTimeout))
				wc.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			b, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := wc.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-t.C:
			wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := wc.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
