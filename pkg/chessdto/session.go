package chessdto

import "time"

// SessionView is the full state pushed to a browser tab.
type SessionView struct {
	ID           string           `json:"id"`
	FEN          string           `json:"fen"`
	Turn         string           `json:"turn"`
	Mode         string           `json:"mode"`
	ComputerSide string           `json:"computer_side"`
	Status       string           `json:"status"`
	Over         bool             `json:"over"`
	Outcome      *OutcomeView     `json:"outcome,omitempty"`
	Opening      string           `json:"opening"`
	ECO          *ECOView         `json:"eco,omitempty"`
	Moves        []MoveRecordView `json:"moves"`
	LastMove     *MoveRequest     `json:"last_move,omitempty"`
	Clock        ClockView        `json:"clock"`
	Chat         []ChatView       `json:"chat"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type OutcomeView struct {
	Termination string `json:"termination"`
	Winner      string `json:"winner,omitempty"`
	Text        string `json:"text"`
}

type ECOView struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

// MoveRecordView is one numbered row. The evaluation is a random placeholder with no
// engine behind it.
type MoveRecordView struct {
	Number                int     `json:"number"`
	White                 string  `json:"white"`
	Black                 string  `json:"black"`
	EvaluationPlaceholder float64 `json:"evaluation_placeholder"`
	EvaluationText        string  `json:"evaluation_text"`
	EvaluationTone        string  `json:"evaluation_tone"`
}

type ClockView struct {
	White  SideClockView `json:"white"`
	Black  SideClockView `json:"black"`
	Active bool          `json:"active"`
	Side   string        `json:"side"`
}

type SideClockView struct {
	Seconds int    `json:"seconds"`
	Text    string `json:"text"`
	Level   string `json:"level"`
}

type ChatView struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}
