package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-web/internal/adapter/presenter"
	"github.com/park285/cheese-web/internal/chess"
	"github.com/park285/cheese-web/internal/chess/openingbook"
	"github.com/park285/cheese-web/internal/domain"
	"github.com/park285/cheese-web/internal/render"
	"github.com/park285/cheese-web/internal/session"
	"github.com/park285/cheese-web/pkg/chessdto"
)

func handleCreateSession(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chessdto.CreateSessionRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
			return
		}

		s, err := sessions.Create(domain.Mode(strings.ToLower(strings.TrimSpace(req.Mode))))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, presenter.ToSessionView(s.Snapshot()))
	}
}

func handleGetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, presenter.ToSessionView(sessionFrom(r).Snapshot()))
	}
}

func handleDeleteSession(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sessions.Remove(sessionFrom(r).ID()); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleMove answers 400 for a malformed move and 200 with accepted=false for a
// well-formed move the position does not allow.
func handleMove() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chessdto.MoveRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
			return
		}
		mv := presenter.FromMoveRequest(req)
		if err := mv.Validate(); err != nil {
			writeSessionError(w, err)
			return
		}

		snap, ok := sessionFrom(r).Move(mv)
		writeJSON(w, http.StatusOK, chessdto.MoveResponse{
			Accepted: ok,
			Session:  presenter.ToSessionView(snap),
		})
	}
}

func handleMode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chessdto.ModeRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
			return
		}
		mode, err := domain.ParseMode(req.Mode)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeSnapshot(w)(sessionFrom(r).SetMode(mode))
	}
}

func handleResign() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chessdto.ResignRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
			return
		}
		var side domain.Side
		if strings.TrimSpace(req.Side) != "" {
			parsed, err := domain.ParseSide(req.Side)
			if err != nil {
				writeSessionError(w, err)
				return
			}
			side = parsed
		}
		writeSnapshot(w)(sessionFrom(r).Resign(side))
	}
}

func handleDraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSnapshot(w)(sessionFrom(r).OfferDraw())
	}
}

func handleRestart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSnapshot(w)(sessionFrom(r).Restart())
	}
}

func handleChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chessdto.ChatRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
			return
		}
		entry, err := sessionFrom(r).Chat(req.Sender, req.Text)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, chessdto.ChatResponse{Message: presenter.ToChatView(entry)})
	}
}

func handleLegalMoves() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		snap := s.Snapshot()
		writeJSON(w, http.StatusOK, chessdto.LegalMovesResponse{
			Turn:  string(snap.Turn),
			Moves: presenter.ToMoveRequests(s.LegalMoves()),
		})
	}
}

// handleBoard renders the position. Query: size (pixels per square), flip (bool).
func handleBoard(renderer *render.Renderer, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := render.Options{}
		if v := q.Get("size"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeBadRequest, "size must be an integer")
				return
			}
			opts.SquareSize = n
		}
		if v := q.Get("flip"); v != "" {
			flip, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeBadRequest, "flip must be a boolean")
				return
			}
			opts.Flip = flip
		}

		snap := sessionFrom(r).Snapshot()
		if snap.LastMove != nil {
			opts.From, opts.To = snap.LastMove.From, snap.LastMove.To
		}
		opts.Caption = boardCaption(snap)

		png, err := renderer.RenderPNG(r.Context(), snap.FEN, opts)
		if err != nil {
			logger.Error("board_render_failed", zap.String("session_id", snap.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, codeInternal, "render failed")
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		w.Write(png)
	}
}

func boardCaption(snap session.Snapshot) string {
	if snap.Outcome != nil {
		return snap.Outcome.Text
	}
	if snap.Opening != "" && snap.Opening != openingbook.NoOpening {
		return snap.Opening
	}
	return ""
}

func handlePGN() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		snap := s.Snapshot()
		headers := chess.PGNHeaders{Date: time.Now(), White: "White", Black: "Black"}
		if snap.Mode == domain.ModeComputer {
			if snap.ComputerSide == domain.White {
				headers.White, headers.Black = "Computer", "You"
			} else {
				headers.White, headers.Black = "You", "Computer"
			}
		}
		w.Header().Set("Content-Type", "application/x-chess-pgn; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+snap.ID+`.pgn"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(s.PGN(headers)))
	}
}

// writeSnapshot adapts the (Snapshot, error) results of session commands.
func writeSnapshot(w http.ResponseWriter) func(session.Snapshot, error) {
	return func(snap session.Snapshot, err error) {
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, presenter.ToSessionView(snap))
	}
}
