package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidSide = errors.New("invalid side")
	ErrInvalidMode = errors.New("invalid mode")
)

type Side string

const (
	White Side = "white"
	Black Side = "black"
)

func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}

func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

// Title is the capitalised name used in outcome text.
func (s Side) Title() string {
	switch s {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return ""
	}
}

type Mode string

const (
	ModeHuman    Mode = "human"
	ModeComputer Mode = "computer"
)

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human":
		return ModeHuman, nil
	case "computer":
		return ModeComputer, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusOver       Status = "over"
)

// Termination names why a game ended.
type Termination string

const (
	TerminationCheckmate            Termination = "checkmate"
	TerminationStalemate            Termination = "stalemate"
	TerminationInsufficientMaterial Termination = "insufficient_material"
	TerminationRuleDraw             Termination = "draw"
	TerminationRepetition           Termination = "threefold_repetition"
	TerminationResignation          Termination = "resignation"
	TerminationAgreement            Termination = "agreement"
	TerminationTimeout              Termination = "timeout"
)

type Outcome struct {
	Termination Termination `json:"termination"`
	Winner      Side        `json:"winner,omitempty"`
	Text        string      `json:"text"`
}

func (o Outcome) IsDraw() bool { return o.Winner == "" }

// MoveRecord is one row of the move list. Black is empty while the row is open.
// Evaluation is a random placeholder, not an engine score.
type MoveRecord struct {
	Number     int     `json:"number"`
	White      string  `json:"white"`
	Black      string  `json:"black,omitempty"`
	Evaluation float64 `json:"evaluation"`
}

type ChatType string

const (
	ChatSystem  ChatType = "system"
	ChatMessage ChatType = "message"
	ChatEmoji   ChatType = "emoji"
)

type ChatEntry struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Type      ChatType  `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}
