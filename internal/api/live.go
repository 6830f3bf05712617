package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"stream-accounting/internal/observability"
)

const liveWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveMessage is one push of the live feed. Exactly one of the fields is set.
type liveMessage struct {
	Records any            `json:"records,omitempty"`
	Error   *errorResponse `json:"error,omitempty"`
}

// handleLive upgrades to a websocket, reads one query message holding the same parameters as
// the stream-periods endpoint, then pushes a freshly computed result every live interval until
// the client goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("live feed upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	observability.LiveConnectionOpened()
	defer observability.LiveConnectionClosed()

	var params map[string]string
	if err := conn.ReadJSON(&params); err != nil {
		s.logger.Debugw("live feed closed before query", "error", err)
		return
	}

	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, v)
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain reads so a client close cancels the feed.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.liveInterval)
	defer ticker.Stop()

	for {
		msg, fatal := s.livePush(ctx, values)
		if err := writeLive(conn, msg); err != nil {
			s.logger.Debugw("live feed write failed", "error", err)
			return
		}
		if fatal {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid query"),
				time.Now().Add(liveWriteTimeout))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// livePush computes one message. A validation failure is fatal for the connection; a failed
// run is reported and retried on the next tick.
func (s *Server) livePush(ctx context.Context, values url.Values) (liveMessage, bool) {
	q, err := ParseQuery(values, s.now())
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return liveMessage{Error: &errorResponse{Message: "Validation error", Errors: verr.Errors}}, true
		}
		return liveMessage{Error: &errorResponse{Message: err.Error()}}, true
	}

	runCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	res, err := s.runner.Run(runCtx, q)
	if err != nil {
		s.logger.Warnw("live feed run failed", "error", err)
		return liveMessage{Error: &errorResponse{Message: err.Error()}}, false
	}
	return liveMessage{Records: records(res)}, false
}

func writeLive(conn *websocket.Conn, msg liveMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
