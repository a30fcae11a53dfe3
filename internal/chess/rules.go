package chess

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	chesslib "github.com/corentings/chess/v2"

	"github.com/park285/cheese-web/internal/domain"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var (
	ErrInvalidMove = errors.New("invalid move")
	ErrIllegalMove = errors.New("illegal move")
)

// Move is a move request in coordinate form. Promotion is one of q, r, b, n or empty.
type Move struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// ParseMove reads UCI text such as "e2e4" or "e7e8q".
func ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidMove, s)
	}
	m := Move{From: s[:2], To: s[2:4]}
	if len(s) == 5 {
		m.Promotion = s[4:]
	}
	if err := m.Validate(); err != nil {
		return Move{}, err
	}
	return m, nil
}

// Normalize lower-cases and trims every field.
func (m Move) Normalize() Move {
	return Move{
		From:      strings.ToLower(strings.TrimSpace(m.From)),
		To:        strings.ToLower(strings.TrimSpace(m.To)),
		Promotion: strings.ToLower(strings.TrimSpace(m.Promotion)),
	}
}

// Validate checks the shape of the move, not its legality.
func (m Move) Validate() error {
	if !validSquare(m.From) || !validSquare(m.To) {
		return fmt.Errorf("%w: bad square in %q-%q", ErrInvalidMove, m.From, m.To)
	}
	if m.From == m.To {
		return fmt.Errorf("%w: null move %q", ErrInvalidMove, m.From)
	}
	switch m.Promotion {
	case "", "q", "r", "b", "n":
		return nil
	default:
		return fmt.Errorf("%w: promotion %q", ErrInvalidMove, m.Promotion)
	}
}

func (m Move) UCI() string { return m.From + m.To + m.Promotion }

func validSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}

func toSquare(s string) chesslib.Square {
	return chesslib.NewSquare(chesslib.File(s[0]-'a'), chesslib.Rank(s[1]-'1'))
}

// BoardState is an immutable snapshot of a game. The zero value is not usable; start from
// NewBoardState. Accessors return copies.
type BoardState struct {
	fen         string
	turn        domain.Side
	castling    string
	enPassant   string
	halfMove    int
	fullMove    int
	termination domain.Termination
	winner      domain.Side
	san         []string
	uci         []string
	// positions since the last capture or pawn move, current one last
	positions []string
}

const repetitionLimit = 3

func NewBoardState() BoardState {
	s, err := stateFromFEN(StartFEN)
	if err != nil {
		panic(fmt.Sprintf("chess: start position: %v", err))
	}
	return s
}

func stateFromFEN(fen string) (BoardState, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return BoardState{}, fmt.Errorf("fen %q: expected 6 fields, got %d", fen, len(fields))
	}
	half, err := strconv.Atoi(fields[4])
	if err != nil {
		return BoardState{}, fmt.Errorf("fen %q: halfmove clock: %w", fen, err)
	}
	full, err := strconv.Atoi(fields[5])
	if err != nil {
		return BoardState{}, fmt.Errorf("fen %q: fullmove number: %w", fen, err)
	}
	turn := domain.White
	if fields[1] == "b" {
		turn = domain.Black
	}
	return BoardState{
		fen:       fen,
		turn:      turn,
		castling:  fields[2],
		enPassant: fields[3],
		halfMove:  half,
		fullMove:  full,
		positions: []string{positionKey(fields)},
	}, nil
}

// positionKey identifies a position for repetition: placement, side to move, castling
// rights and en-passant target.
func positionKey(fields []string) string {
	return strings.Join(fields[:4], " ")
}

// Repetitions counts how often the current position has occurred since the last capture
// or pawn move, including now.
func (s BoardState) Repetitions() int {
	if len(s.positions) == 0 {
		return 0
	}
	current := s.positions[len(s.positions)-1]
	n := 0
	for _, p := range s.positions {
		if p == current {
			n++
		}
	}
	return n
}

func (s BoardState) FEN() string { return s.fen }
func (s BoardState) Turn() domain.Side { return s.turn }
func (s BoardState) CastlingRights() string { return s.castling }
func (s BoardState) EnPassant() string { return s.enPassant }
func (s BoardState) HalfMoveClock() int { return s.halfMove }
func (s BoardState) FullMoveNumber() int { return s.fullMove }
func (s BoardState) Ply() int { return len(s.uci) }
func (s BoardState) SAN() []string { return append([]string(nil), s.san...) }
func (s BoardState) UCI() []string { return append([]string(nil), s.uci...) }
func (s BoardState) Over() bool { return s.termination != "" }
func (s BoardState) Termination() domain.Termination { return s.termination }

// Winner is empty for draws and unfinished games.
func (s BoardState) Winner() domain.Side { return s.winner }

// LastMove returns the most recent move, if any.
func (s BoardState) LastMove() (Move, bool) {
	if len(s.uci) == 0 {
		return Move{}, false
	}
	m, err := ParseMove(s.uci[len(s.uci)-1])
	if err != nil {
		return Move{}, false
	}
	return m, true
}

// Equal compares position and history.
func (s BoardState) Equal(o BoardState) bool {
	if s.fen != o.fen || s.termination != o.termination || s.winner != o.winner || len(s.uci) != len(o.uci) {
		return false
	}
	for i := range s.uci {
		if s.uci[i] != o.uci[i] || s.san[i] != o.san[i] {
			return false
		}
	}
	return true
}

func (s BoardState) game() (*chesslib.Game, error) {
	option, err := chesslib.FEN(s.fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen %q: %w", s.fen, err)
	}
	return chesslib.NewGame(option), nil
}

// Board exposes the piece placement for rendering.
func (s BoardState) Board() (*chesslib.Board, error) {
	g, err := s.game()
	if err != nil {
		return nil, err
	}
	return g.Position().Board(), nil
}

// ApplyMove validates mv against state and returns the resulting state. A rejected move
// returns the input state unchanged and false. Promotion defaults to a queen.
func ApplyMove(state BoardState, mv Move) (BoardState, bool) {
	next, err := apply(state, mv)
	if err != nil {
		return state, false
	}
	return next, true
}

func apply(state BoardState, mv Move) (BoardState, error) {
	if state.fen == "" {
		return state, fmt.Errorf("%w: uninitialised board", ErrIllegalMove)
	}
	if state.Over() {
		return state, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	mv = mv.Normalize()
	if err := mv.Validate(); err != nil {
		return state, err
	}

	game, err := state.game()
	if err != nil {
		return state, err
	}
	mv = withDefaultPromotion(game.Position().Board(), mv)
	uci := mv.UCI()
	if err := game.PushNotationMove(uci, chesslib.UCINotation{}, nil); err != nil {
		return state, fmt.Errorf("%w: %s: %v", ErrIllegalMove, uci, err)
	}

	// SAN is encoded against the position before the move.
	before, err := state.game()
	if err != nil {
		return state, err
	}
	moves := game.Moves()
	san := chesslib.AlgebraicNotation{}.Encode(before.Position(), moves[len(moves)-1])

	next, err := stateFromFEN(game.FEN())
	if err != nil {
		return state, err
	}
	next.san = append(state.SAN(), san)
	next.uci = append(state.UCI(), uci)
	if next.halfMove > 0 {
		next.positions = append(append([]string(nil), state.positions...), next.positions...)
	}
	next.termination, next.winner = terminationOf(game)
	if next.termination == "" && next.Repetitions() >= repetitionLimit {
		next.termination = domain.TerminationRepetition
	}
	return next, nil
}

// withDefaultPromotion adds a queen promotion to bare pawn moves onto the last rank.
func withDefaultPromotion(board *chesslib.Board, mv Move) Move {
	if mv.Promotion != "" {
		return mv
	}
	if mv.To[1] != '8' && mv.To[1] != '1' {
		return mv
	}
	piece := board.Piece(toSquare(mv.From))
	if piece == chesslib.NoPiece || piece.Type() != chesslib.Pawn {
		return mv
	}
	if (piece.Color() == chesslib.White && mv.To[1] == '8') || (piece.Color() == chesslib.Black && mv.To[1] == '1') {
		mv.Promotion = "q"
	}
	return mv
}

func terminationOf(game *chesslib.Game) (domain.Termination, domain.Side) {
	outcome := game.Outcome()
	if outcome == chesslib.NoOutcome {
		return "", ""
	}
	switch game.Method() {
	case chesslib.Checkmate:
		if outcome == chesslib.WhiteWon {
			return domain.TerminationCheckmate, domain.White
		}
		return domain.TerminationCheckmate, domain.Black
	case chesslib.Stalemate:
		return domain.TerminationStalemate, ""
	case chesslib.InsufficientMaterial:
		return domain.TerminationInsufficientMaterial, ""
	default:
		return domain.TerminationRuleDraw, ""
	}
}

// LegalMoves lists every legal move for the side to move. It is empty once the game is over.
func LegalMoves(state BoardState) []Move {
	if state.fen == "" || state.Over() {
		return nil
	}
	game, err := state.game()
	if err != nil {
		return nil
	}
	valid := game.ValidMoves()
	out := make([]Move, 0, len(valid))
	for _, m := range valid {
		mv, err := ParseMove(m.String())
		if err != nil {
			continue
		}
		out = append(out, mv)
	}
	return out
}

// Replay applies moves from the initial position.
func Replay(moves []Move) (BoardState, error) {
	state := NewBoardState()
	for i, mv := range moves {
		next, err := apply(state, mv)
		if err != nil {
			return state, fmt.Errorf("replay move %d (%s): %w", i+1, mv.UCI(), err)
		}
		state = next
	}
	return state, nil
}

// ReplayUCI is Replay over UCI strings.
func ReplayUCI(uci []string) (BoardState, error) {
	moves := make([]Move, 0, len(uci))
	for _, s := range uci {
		mv, err := ParseMove(s)
		if err != nil {
			return BoardState{}, err
		}
		moves = append(moves, mv)
	}
	return Replay(moves)
}
