package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-web/internal/adapter/presenter"
	"github.com/park285/cheese-web/internal/broker"
	"github.com/park285/cheese-web/internal/session"
	"github.com/park285/cheese-web/pkg/chessdto"
)

const pingInterval = 30 * time.Second

// handleEvents streams a view of the session on every state change. The first event is the
// current state; the stream ends when the session closes.
func handleEvents(b broker.Broker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b == nil {
			writeError(w, http.StatusServiceUnavailable, codeInternal, "event stream unavailable")
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, codeInternal, "streaming not supported")
			return
		}

		s := sessionFrom(r)
		sub, err := b.Subscribe(r.Context(), broker.SessionTopic(s.ID()))
		if err != nil {
			logger.Error("subscribe_failed", zap.String("session_id", s.ID()), zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, codeInternal, "event stream unavailable")
			return
		}
		defer sub.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		initial, _ := json.Marshal(presenter.ToSessionView(s.Snapshot()))
		fmt.Fprintf(w, "event: state\ndata: %s\n\n", initial)
		flusher.Flush()

		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case payload, ok := <-sub.C():
				if !ok {
					return
				}
				kind, view, err := decodeEvent(payload)
				if err != nil {
					logger.Warn("event_decode_failed", zap.String("session_id", s.ID()), zap.Error(err))
					continue
				}
				data, _ := json.Marshal(view)
				fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
				flusher.Flush()
				if kind == session.EventClosed {
					return
				}
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

func decodeEvent(payload []byte) (string, chessdto.SessionView, error) {
	var ev session.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return "", chessdto.SessionView{}, err
	}
	return ev.Type, presenter.ToSessionView(ev.Session), nil
}
