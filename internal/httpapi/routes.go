package httpapi

import (
	"github.com/go-chi/chi/v5"
)

func addRoutes(r chi.Router, deps Deps) {
	r.Get("/healthz", handleHealth(deps.Logger, deps.Checks))
	r.Get("/api/openings/detect", handleDetectOpening(deps.Openings))

	r.Post("/api/sessions", handleCreateSession(deps.Sessions))

	// {id} resolved by sessionMiddleware.
	r.Route("/api/sessions/{id}", func(r chi.Router) {
		r.Use(sessionMiddleware(deps.Sessions))
		r.Get("/", handleGetSession())
		r.Delete("/", handleDeleteSession(deps.Sessions))
		r.Post("/moves", handleMove())
		r.Put("/mode", handleMode())
		r.Post("/resign", handleResign())
		r.Post("/draw", handleDraw())
		r.Post("/restart", handleRestart())
		r.Post("/chat", handleChat())
		r.Get("/legal-moves", handleLegalMoves())
		r.Get("/board.png", handleBoard(deps.Renderer, deps.Logger))
		r.Get("/pgn", handlePGN())
		r.Get("/events", handleEvents(deps.Broker, deps.Logger))
		r.Get("/ws", handleWS(deps.Broker, deps.Logger))
	})
}
