package domain

import (
	"errors"
	"testing"
)

func TestParseSide(t *testing.T) {
	s, err := ParseSide(" W ")
	if err != nil {
		t.Fatalf("ParseSide: %v", err)
	}
	if s != White || s.Opponent() != Black {
		t.Fatalf("side = %q, opponent = %q", s, s.Opponent())
	}
	if got := s.Opponent().Title(); got != "Black" {
		t.Fatalf("Title = %q", got)
	}

	if _, err := ParseSide("red"); !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("ParseSide(red) err = %v", err)
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Computer")
	if err != nil {
		t.Fatalf("ParseMode: %v", err)
	}
	if m != ModeComputer {
		t.Fatalf("mode = %q", m)
	}

	if _, err := ParseMode(""); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("ParseMode(\"\") err = %v", err)
	}
}

func TestOutcomeIsDraw(t *testing.T) {
	if !(Outcome{Termination: TerminationStalemate}).IsDraw() {
		t.Fatal("stalemate should be a draw")
	}
	if !(Outcome{Termination: TerminationRepetition}).IsDraw() {
		t.Fatal("repetition should be a draw")
	}
	if (Outcome{Termination: TerminationCheckmate, Winner: White}).IsDraw() {
		t.Fatal("checkmate is not a draw")
	}
}
