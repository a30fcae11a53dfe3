package chessdto

type CreateSessionRequest struct {
	Mode string `json:"mode,omitempty"`
}

type MoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// MoveResponse reports whether the move was played. A rejected move carries the unchanged session.
type MoveResponse struct {
	Accepted bool        `json:"accepted"`
	Session  SessionView `json:"session"`
}

type ModeRequest struct {
	Mode string `json:"mode"`
}

type ResignRequest struct {
	Side string `json:"side,omitempty"`
}

type ChatRequest struct {
	Text   string `json:"text"`
	Sender string `json:"sender,omitempty"`
}

type ChatResponse struct {
	Message ChatView `json:"message"`
}

type LegalMovesResponse struct {
	Turn  string        `json:"turn"`
	Moves []MoveRequest `json:"moves"`
}

type OpeningResponse struct {
	Name string   `json:"name"`
	ECO  *ECOView `json:"eco,omitempty"`
}

// ClientFrame is a command sent over the session WebSocket. Type selects which fields apply.
type ClientFrame struct {
	Type      string `json:"type"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Side      string `json:"side,omitempty"`
	Text      string `json:"text,omitempty"`
	Sender    string `json:"sender,omitempty"`
}

// ServerFrame is pushed over the session WebSocket.
type ServerFrame struct {
	Type     string         `json:"type"`
	Session  *SessionView   `json:"session,omitempty"`
	Accepted *bool          `json:"accepted,omitempty"`
	Error    *ErrorResponse `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
