package chess

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/park285/cheese-web/internal/domain"
)

var scholarsMate = []string{"e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7"}

func mustState(t *testing.T, fen string) BoardState {
	t.Helper()
	s, err := stateFromFEN(fen)
	require.NoError(t, err)
	return s
}

func mustApply(t *testing.T, s BoardState, uci string) BoardState {
	t.Helper()
	mv, err := ParseMove(uci)
	require.NoError(t, err)
	next, ok := ApplyMove(s, mv)
	require.Truef(t, ok, "move %s rejected in %s", uci, s.FEN())
	return next
}

func TestNewBoardState(t *testing.T) {
	s := NewBoardState()
	assert.Equal(t, StartFEN, s.FEN())
	assert.Equal(t, domain.White, s.Turn())
	assert.Equal(t, "KQkq", s.CastlingRights())
	assert.Equal(t, "-", s.EnPassant())
	assert.Equal(t, 0, s.HalfMoveClock())
	assert.Equal(t, 1, s.FullMoveNumber())
	assert.False(t, s.Over())
	assert.Len(t, LegalMoves(s), 20)
}

func TestApplyMoveUpdatesState(t *testing.T) {
	s := mustApply(t, NewBoardState(), "e2e4")

	assert.Equal(t, domain.Black, s.Turn())
	assert.Equal(t, []string{"e4"}, s.SAN())
	assert.Equal(t, []string{"e2e4"}, s.UCI())
	last, ok := s.LastMove()
	require.True(t, ok)
	assert.Equal(t, Move{From: "e2", To: "e4"}, last)
}

func TestApplyMoveRejectsIllegal(t *testing.T) {
	start := NewBoardState()
	cases := []Move{
		{From: "e2", To: "e5"},
		{From: "g1", To: "g3"},
		{From: "e7", To: "e5"},
		{From: "e3", To: "e4"},
		{From: "z9", To: "e4"},
		{From: "e2", To: "e4", Promotion: "k"},
	}
	for _, mv := range cases {
		next, ok := ApplyMove(start, mv)
		assert.Falsef(t, ok, "expected %v rejected", mv)
		assert.True(t, next.Equal(start))
	}
}

func TestApplyMoveNormalizesInput(t *testing.T) {
	s, ok := ApplyMove(NewBoardState(), Move{From: " E2", To: "E4 "})
	require.True(t, ok)
	assert.Equal(t, []string{"e2e4"}, s.UCI())
}

func TestCheckmateEndsGame(t *testing.T) {
	s := NewBoardState()
	for _, uci := range scholarsMate {
		s = mustApply(t, s, uci)
	}
	assert.True(t, s.Over())
	assert.Equal(t, domain.TerminationCheckmate, s.Termination())
	assert.Equal(t, domain.White, s.Winner())
	san := s.SAN()
	assert.Equal(t, "Qxf7#", san[len(san)-1])
	assert.Empty(t, LegalMoves(s))

	next, ok := ApplyMove(s, Move{From: "a7", To: "a6"})
	assert.False(t, ok)
	assert.True(t, next.Equal(s))
}

func TestStalemate(t *testing.T) {
	s := mustApply(t, mustState(t, "k7/2K5/8/8/8/8/8/1Q6 w - - 0 1"), "b1b6")
	assert.Equal(t, domain.TerminationStalemate, s.Termination())
	assert.Equal(t, domain.Side(""), s.Winner())
}

func TestInsufficientMaterial(t *testing.T) {
	s := mustApply(t, mustState(t, "k7/8/8/8/8/8/1r6/K5B1 w - - 0 1"), "a1b2")
	assert.Equal(t, domain.TerminationInsufficientMaterial, s.Termination())
}

var knightShuffle = []string{"g1f3", "g8f6", "f3g1", "f6g8"}

func TestThreefoldRepetitionEndsGame(t *testing.T) {
	s := NewBoardState()
	for i := 0; i < 2; i++ {
		for _, uci := range knightShuffle {
			require.False(t, s.Over())
			s = mustApply(t, s, uci)
		}
	}

	assert.Equal(t, 3, s.Repetitions())
	assert.Equal(t, domain.TerminationRepetition, s.Termination())
	assert.Equal(t, domain.Side(""), s.Winner())
	assert.Empty(t, LegalMoves(s))

	replayed, err := ReplayUCI(s.UCI())
	require.NoError(t, err)
	assert.Equal(t, domain.TerminationRepetition, replayed.Termination())
}

func TestIrreversibleMoveResetsRepetition(t *testing.T) {
	s := NewBoardState()
	for _, uci := range knightShuffle {
		s = mustApply(t, s, uci)
	}
	assert.Equal(t, 2, s.Repetitions())

	s = mustApply(t, s, "e2e4")
	s = mustApply(t, s, "e7e5")
	assert.Equal(t, 1, s.Repetitions())
	for _, uci := range knightShuffle {
		s = mustApply(t, s, uci)
	}
	assert.Equal(t, 2, s.Repetitions())
	assert.False(t, s.Over())
}

func TestPromotionDefaultsToQueen(t *testing.T) {
	s := mustApply(t, mustState(t, "8/P7/8/8/8/8/8/k6K w - - 0 1"), "a7a8")
	assert.Equal(t, []string{"a7a8q"}, s.UCI())
	assert.True(t, strings.HasPrefix(s.SAN()[0], "a8=Q"))

	under := mustApply(t, mustState(t, "8/P7/8/8/8/8/8/k6K w - - 0 1"), "a7a8n")
	assert.Equal(t, []string{"a7a8n"}, under.UCI())
}

func TestReplayIsDeterministic(t *testing.T) {
	s := NewBoardState()
	for _, uci := range scholarsMate {
		s = mustApply(t, s, uci)
	}
	replayed, err := ReplayUCI(s.UCI())
	require.NoError(t, err)
	assert.True(t, replayed.Equal(s))
	assert.Equal(t, s.FEN(), replayed.FEN())

	_, err = ReplayUCI([]string{"e2e4", "e2e4"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalMove))
}

func TestParseMove(t *testing.T) {
	mv, err := ParseMove("E7E8Q")
	require.NoError(t, err)
	assert.Equal(t, Move{From: "e7", To: "e8", Promotion: "q"}, mv)
	assert.Equal(t, "e7e8q", mv.UCI())

	for _, bad := range []string{"", "e2", "e2e4e5", "i2i4", "e2e2", "e7e8x"} {
		_, err := ParseMove(bad)
		assert.Truef(t, errors.Is(err, ErrInvalidMove), "ParseMove(%q) = %v", bad, err)
	}
}

func TestAppendMoveRecord(t *testing.T) {
	var rows []domain.MoveRecord
	rows = AppendMoveRecord(rows, domain.White, "e4", 0.5)
	rows = AppendMoveRecord(rows, domain.Black, "e5", -0.25)
	rows = AppendMoveRecord(rows, domain.White, "Nf3", 1)

	require.Len(t, rows, 2)
	assert.Equal(t, domain.MoveRecord{Number: 1, White: "e4", Black: "e5", Evaluation: -0.25}, rows[0])
	assert.Equal(t, domain.MoveRecord{Number: 2, White: "Nf3", Evaluation: 1}, rows[1])
}

func TestPlaceholderEvaluationRange(t *testing.T) {
	assert.Equal(t, -2.0, PlaceholderEvaluation(0))
	assert.InDelta(t, 2.0, PlaceholderEvaluation(0.999999), 1e-5)
}

func TestRandomMover(t *testing.T) {
	r := NewSeededRandomMover(7)
	s := NewBoardState()
	legal := LegalMoves(s)
	for i := 0; i < 20; i++ {
		mv, ok := r.Choose(s)
		require.True(t, ok)
		assert.Contains(t, legal, mv)
	}

	mated := NewBoardState()
	for _, uci := range scholarsMate {
		mated = mustApply(t, mated, uci)
	}
	_, ok := r.Choose(mated)
	assert.False(t, ok)
}

func TestBuildPGN(t *testing.T) {
	pgn := BuildPGN(PGNHeaders{White: "You", Black: "Computer"}, []string{"e4", "e5", "Nf3"}, "", "")
	assert.Contains(t, pgn, `[White "You"]`)
	assert.Contains(t, pgn, `[Result "*"]`)
	assert.True(t, strings.HasSuffix(pgn, "1. e4 e5 2. Nf3 *"))

	done := BuildPGN(PGNHeaders{}, []string{"f3", "e5", "g4", "Qh4#"}, domain.TerminationCheckmate, domain.Black)
	assert.Contains(t, done, `[Termination "checkmate"]`)
	assert.True(t, strings.HasSuffix(done, "2. g4 Qh4# 0-1"))
}
