package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/cheese-web/internal/adapter/presenter"
	"github.com/park285/cheese-web/internal/broker"
	"github.com/park285/cheese-web/internal/domain"
	"github.com/park285/cheese-web/internal/session"
	"github.com/park285/cheese-web/pkg/chessdto"
)

// Frame types.
const (
	frameState  = "state"
	frameResult = "result"
	frameError  = "error"

	frameMove    = "move"
	frameResign  = "resign"
	frameDraw    = "draw"
	frameRestart = "restart"
	frameChat    = "chat"
	frameMode    = "mode"
)

const wsSessionLimit = 2 * time.Hour

// handleWS pushes a state frame on every session event and answers each command frame
// with a result frame. State changes caused by a command arrive as state frames as well.
func handleWS(b broker.Broker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if b == nil {
			writeError(w, http.StatusServiceUnavailable, codeInternal, "event stream unavailable")
			return
		}
		s := sessionFrom(r)
		log := logger.With(zap.String("session_id", s.ID()))

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Error("websocket_accept_failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), wsSessionLimit)
		defer cancel()

		sub, err := b.Subscribe(ctx, broker.SessionTopic(s.ID()))
		if err != nil {
			log.Error("subscribe_failed", zap.Error(err))
			conn.Close(websocket.StatusInternalError, "subscribe failed")
			return
		}
		defer sub.Close()

		view := presenter.ToSessionView(s.Snapshot())
		if err := wsjson.Write(ctx, conn, chessdto.ServerFrame{Type: frameState, Session: &view}); err != nil {
			return
		}

		replies := make(chan chessdto.ServerFrame, 8)
		go func() {
			defer cancel()
			for {
				var frame chessdto.ClientFrame
				if err := wsjson.Read(ctx, conn, &frame); err != nil {
					log.Debug("websocket_read_ended", zap.Error(err))
					return
				}
				select {
				case replies <- dispatchFrame(s, frame):
				case <-ctx.Done():
					return
				}
			}
		}()

		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			var out chessdto.ServerFrame
			closing := false
			select {
			case <-ctx.Done():
				return
			case out = <-replies:
			case payload, ok := <-sub.C():
				if !ok {
					conn.Close(websocket.StatusNormalClosure, "")
					return
				}
				kind, view, err := decodeEvent(payload)
				if err != nil {
					log.Warn("event_decode_failed", zap.Error(err))
					continue
				}
				out = chessdto.ServerFrame{Type: frameState, Session: &view}
				closing = kind == session.EventClosed
			case <-ping.C:
				if err := conn.Ping(ctx); err != nil {
					log.Debug("websocket_ping_failed", zap.Error(err))
					return
				}
				continue
			}

			if err := wsjson.Write(ctx, conn, out); err != nil {
				log.Debug("websocket_write_failed", zap.Error(err))
				return
			}
			if closing {
				conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
		}
	}
}

// dispatchFrame runs one client command against the session.
func dispatchFrame(s *session.Session, f chessdto.ClientFrame) chessdto.ServerFrame {
	switch strings.ToLower(strings.TrimSpace(f.Type)) {
	case frameMove:
		mv := presenter.FromMoveRequest(chessdto.MoveRequest{From: f.From, To: f.To, Promotion: f.Promotion})
		if err := mv.Validate(); err != nil {
			return errorFrame(err)
		}
		snap, ok := s.Move(mv)
		return resultFrame(snap, ok)
	case frameResign:
		var side domain.Side
		if strings.TrimSpace(f.Side) != "" {
			parsed, err := domain.ParseSide(f.Side)
			if err != nil {
				return errorFrame(err)
			}
			side = parsed
		}
		return snapshotFrame(s.Resign(side))
	case frameDraw:
		return snapshotFrame(s.OfferDraw())
	case frameRestart:
		return snapshotFrame(s.Restart())
	case frameMode:
		mode, err := domain.ParseMode(f.Mode)
		if err != nil {
			return errorFrame(err)
		}
		return snapshotFrame(s.SetMode(mode))
	case frameChat:
		if _, err := s.Chat(f.Sender, f.Text); err != nil {
			return errorFrame(err)
		}
		return resultFrame(s.Snapshot(), true)
	default:
		return chessdto.ServerFrame{
			Type:  frameError,
			Error: &chessdto.ErrorResponse{Code: codeBadRequest, Message: "unknown frame type " + f.Type},
		}
	}
}

func resultFrame(snap session.Snapshot, accepted bool) chessdto.ServerFrame {
	view := presenter.ToSessionView(snap)
	return chessdto.ServerFrame{Type: frameResult, Session: &view, Accepted: &accepted}
}

func snapshotFrame(snap session.Snapshot, err error) chessdto.ServerFrame {
	if err != nil {
		return errorFrame(err)
	}
	return resultFrame(snap, true)
}

func errorFrame(err error) chessdto.ServerFrame {
	return chessdto.ServerFrame{Type: frameError, Error: errorResponse(err)}
}
