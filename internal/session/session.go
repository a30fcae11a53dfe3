package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-web/internal/broker"
	"github.com/park285/cheese-web/internal/chess"
	"github.com/park285/cheese-web/internal/chess/openingbook"
	"github.com/park285/cheese-web/internal/clock"
	"github.com/park285/cheese-web/internal/domain"
	"github.com/park285/cheese-web/internal/msgcat"
	"github.com/park285/cheese-web/internal/relay"
)

var (
	ErrGameOver       = errors.New("game is over")
	ErrNotInProgress  = errors.New("game has not started")
	ErrSessionClosed  = errors.New("session closed")
	ErrEmptyMessage   = errors.New("chat message is empty")
	ErrMessageTooLong = errors.New("chat message is too long")
)

// Event types published on the session topic.
const (
	EventCreated  = "created"
	EventMove     = "move"
	EventMode     = "mode"
	EventGameOver = "game_over"
	EventRestart  = "restart"
	EventChat     = "chat"
	EventTick     = "tick"
	EventClosed   = "closed"
)

const (
	eventQueueSize = 64
	publishTimeout = 2 * time.Second
)

// Options configures a Session. Zero values fall back to the defaults of a local game.
type Options struct {
	InitialClock  int           // seconds per side
	TickInterval  time.Duration // 0 disables the background ticker; callers drive Tick
	ComputerDelay time.Duration
	ComputerSide  domain.Side
	Mode          domain.Mode

	Scheduler    Scheduler
	Mover        *chess.RandomMover
	Openings     *openingbook.Catalog
	Messages     *msgcat.Catalog
	Broker       broker.Broker
	Relay        relay.Notifier
	RelayTimeout time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.InitialClock <= 0 {
		o.InitialClock = 600
	}
	if o.ComputerSide == "" {
		o.ComputerSide = domain.Black
	}
	if o.Mode == "" {
		o.Mode = domain.ModeComputer
	}
	if o.Scheduler == nil {
		o.Scheduler = WallScheduler()
	}
	if o.Mover == nil {
		o.Mover = chess.NewRandomMover()
	}
	if o.Messages == nil {
		o.Messages = msgcat.Default()
	}
	if o.RelayTimeout <= 0 {
		o.RelayTimeout = 5 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Event is the payload published for every state change.
type Event struct {
	Type    string   `json:"type"`
	Session Snapshot `json:"session"`
}

// Snapshot is a consistent copy of a session taken under its lock.
type Snapshot struct {
	ID           string              `json:"id"`
	FEN          string              `json:"fen"`
	Turn         domain.Side         `json:"turn"`
	Mode         domain.Mode         `json:"mode"`
	ComputerSide domain.Side         `json:"computer_side"`
	Status       domain.Status       `json:"status"`
	Outcome      *domain.Outcome     `json:"outcome,omitempty"`
	Opening      string              `json:"opening"`
	ECO          *openingbook.ECO    `json:"eco,omitempty"`
	Moves        []domain.MoveRecord `json:"moves"`
	SAN          []string            `json:"san"`
	LastMove     *chess.Move         `json:"last_move,omitempty"`
	Clock        clock.State         `json:"clock"`
	Chat         []domain.ChatEntry  `json:"chat"`
	UpdatedAt    time.Time           `json:"updated_at"`

	board chess.BoardState
}

// Board is the underlying position. It is empty on snapshots decoded from JSON.
func (s Snapshot) Board() chess.BoardState { return s.board }

// Session is one game. Every mutation, including clock ticks and scheduled computer
// replies, is serialized by mu.
type Session struct {
	id     string
	opts   Options
	logger *zap.Logger

	mu         sync.Mutex
	board      chess.BoardState
	clock      *clock.Clock
	records    []domain.MoveRecord
	opening    string
	eco        *openingbook.ECO
	chat       chatLog
	status     domain.Status
	mode       domain.Mode
	outcome    *domain.Outcome
	generation uint64
	pending    Timer
	replySeq   uint64
	ticker     *clock.Ticker
	lastActive time.Time
	closed     bool

	classify func([]string) (openingbook.ECO, bool)
	events   chan []byte
	wg       sync.WaitGroup
}

// New starts a session in the initial position and posts the welcome notice.
func New(id string, opts Options) *Session {
	opts = opts.withDefaults()
	s := &Session{
		id:     id,
		opts:   opts,
		logger: opts.Logger.With(zap.String("session_id", id)),
		clock:    clock.New(opts.InitialClock),
		mode:     opts.Mode,
		classify: openingbook.Classify,
	}
	if opts.Broker != nil {
		s.events = make(chan []byte, eventQueueSize)
		s.wg.Add(1)
		go s.publishLoop()
	}

	s.mu.Lock()
	s.touchLocked()
	s.resetLocked()
	s.systemNoticeLocked(s.opts.Messages.RenderOr(msgcat.KeySystemWelcome, nil, "Game started! Good luck!"))
	s.maybeScheduleComputerLocked()
	s.emitLocked(EventCreated)
	s.mu.Unlock()

	s.logger.Info("session_created", zap.String("mode", string(opts.Mode)), zap.Int("initial_clock", opts.InitialClock))
	return s
}

func (s *Session) ID() string { return s.id }

// Move applies a move for the side to move. A rejected move leaves the session untouched.
// In computer mode only the human side may move.
func (s *Session) Move(mv chess.Move) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()

	if s.closed || s.status == domain.StatusOver {
		s.logger.Debug("move_rejected", zap.String("move", mv.UCI()), zap.String("reason", "game_over"))
		return s.snapshotLocked(), false
	}
	if s.mode == domain.ModeComputer && s.board.Turn() == s.opts.ComputerSide {
		s.logger.Debug("move_rejected", zap.String("move", mv.UCI()), zap.String("reason", "computer_turn"))
		return s.snapshotLocked(), false
	}
	if !s.applyLocked(mv) {
		s.logger.Debug("move_rejected", zap.String("move", mv.UCI()), zap.String("reason", "illegal"))
		return s.snapshotLocked(), false
	}
	return s.snapshotLocked(), true
}

// applyLocked runs the full cascade for one accepted move: history, opening, clock,
// termination and the computer reply.
func (s *Session) applyLocked(mv chess.Move) bool {
	mover := s.board.Turn()
	next, ok := chess.ApplyMove(s.board, mv)
	if !ok {
		return false
	}
	s.board = next

	san := next.SAN()
	s.records = chess.AppendMoveRecord(s.records, mover, san[len(san)-1], chess.PlaceholderEvaluation(s.opts.Mover.Float64()))
	s.opening = s.detectOpening(san)
	if len(san) <= openingbook.ECODepth {
		if eco, ok := s.classify(san); ok {
			s.eco = &eco
		} else {
			s.eco = nil
		}
	}

	if s.status == domain.StatusNotStarted {
		s.status = domain.StatusInProgress
		s.clock.Start()
		s.startTickerLocked()
	}
	s.clock.SetSide(next.Turn())

	if next.Over() {
		s.finishLocked(s.outcomeFor(next.Termination(), next.Winner()))
		return true
	}
	s.emitLocked(EventMove)
	s.maybeScheduleComputerLocked()
	return true
}

func (s *Session) detectOpening(san []string) string {
	if s.opts.Openings != nil {
		return s.opts.Openings.Detect(san)
	}
	return openingbook.DetectOpening(san)
}

// maybeScheduleComputerLocked arms the delayed reply when the computer is to move.
func (s *Session) maybeScheduleComputerLocked() {
	if s.closed || s.mode != domain.ModeComputer || s.status == domain.StatusOver {
		return
	}
	if s.board.Turn() != s.opts.ComputerSide || s.pending != nil {
		return
	}
	s.replySeq++
	seq := s.replySeq
	s.pending = s.opts.Scheduler.AfterFunc(s.opts.ComputerDelay, func() { s.computerMove(seq) })
}

func (s *Session) cancelPendingLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// computerMove is the scheduled reply. Only the most recently armed reply may play, and
// only while the game is still running and waiting on the computer.
func (s *Session) computerMove(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.pending == nil || seq != s.replySeq {
		s.logger.Debug("computer_move_skipped", zap.String("reason", "stale"))
		return
	}
	s.pending = nil
	switch {
	case s.status == domain.StatusOver:
		s.logger.Debug("computer_move_skipped", zap.String("reason", "game_over"))
		return
	case s.mode != domain.ModeComputer:
		s.logger.Debug("computer_move_skipped", zap.String("reason", "mode"))
		return
	case s.board.Turn() != s.opts.ComputerSide:
		s.logger.Debug("computer_move_skipped", zap.String("reason", "not_computer_turn"))
		return
	}

	mv, ok := s.opts.Mover.Choose(s.board)
	if !ok {
		term, winner := s.board.Termination(), s.board.Winner()
		if term == "" {
			term = domain.TerminationStalemate
		}
		s.finishLocked(s.outcomeFor(term, winner))
		return
	}
	if !s.applyLocked(mv) {
		s.logger.Warn("computer_move_rejected", zap.String("move", mv.UCI()), zap.String("fen", s.board.FEN()))
	}
}

// SetMode switches between local two-player and playing the computer.
func (s *Session) SetMode(mode domain.Mode) (Snapshot, error) {
	if _, err := domain.ParseMode(string(mode)); err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrSessionClosed
	}
	s.touchLocked()
	s.mode = mode
	if mode == domain.ModeHuman {
		s.cancelPendingLocked()
	}
	s.maybeScheduleComputerLocked()
	s.emitLocked(EventMode)
	return s.snapshotLocked(), nil
}

// Resign ends the game in favour of side's opponent. An empty side resigns for the human
// player against the computer, and for the side to move otherwise.
func (s *Session) Resign(side domain.Side) (Snapshot, error) {
	if side != "" && side != domain.White && side != domain.Black {
		return Snapshot{}, domain.ErrInvalidSide
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkActiveLocked(); err != nil {
		return s.snapshotLocked(), err
	}
	if side == "" {
		side = s.board.Turn()
		if s.mode == domain.ModeComputer {
			side = s.opts.ComputerSide.Opponent()
		}
	}
	s.touchLocked()
	s.finishLocked(s.outcomeFor(domain.TerminationResignation, side.Opponent()))
	return s.snapshotLocked(), nil
}

// OfferDraw is accepted immediately.
func (s *Session) OfferDraw() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkActiveLocked(); err != nil {
		return s.snapshotLocked(), err
	}
	s.touchLocked()
	s.finishLocked(s.outcomeFor(domain.TerminationAgreement, ""))
	return s.snapshotLocked(), nil
}

func (s *Session) checkActiveLocked() error {
	switch {
	case s.closed:
		return ErrSessionClosed
	case s.status == domain.StatusOver:
		return ErrGameOver
	case s.status == domain.StatusNotStarted:
		return ErrNotInProgress
	}
	return nil
}

// Restart returns to the initial position. Mode and chat survive.
func (s *Session) Restart() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrSessionClosed
	}
	s.touchLocked()
	s.resetLocked()
	s.maybeScheduleComputerLocked()
	s.emitLocked(EventRestart)
	s.logger.Info("session_restarted")
	return s.snapshotLocked(), nil
}

func (s *Session) resetLocked() {
	s.generation++
	s.cancelPendingLocked()
	s.stopTickerLocked()
	s.board = chess.NewBoardState()
	s.records = nil
	s.opening = openingbook.NoOpening
	s.eco = nil
	s.clock.Reset()
	s.status = domain.StatusNotStarted
	s.outcome = nil
}

// Chat appends a user message. It never touches the game.
func (s *Session) Chat(sender, text string) (domain.ChatEntry, error) {
	sender, text, err := normalizeChat(sender, text)
	if err != nil {
		return domain.ChatEntry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ChatEntry{}, ErrSessionClosed
	}
	s.touchLocked()
	entry := s.chat.append(newChatEntry(sender, text, ClassifyChat(text), s.opts.Now()))
	s.emitLocked(EventChat)
	return entry, nil
}

// Tick charges one second to the side to move. The background ticker calls it once per
// interval; tests call it directly.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickLocked()
}

func (s *Session) tickFrom(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.tickLocked()
}

func (s *Session) tickLocked() {
	if s.closed || s.status != domain.StatusInProgress || !s.clock.Active() {
		return
	}
	side := s.clock.Side()
	if s.clock.Tick() {
		s.logger.Info("clock_expired", zap.String("side", string(side)))
		s.finishLocked(s.outcomeFor(domain.TerminationTimeout, side.Opponent()))
		return
	}
	s.emitLocked(EventTick)
}

func (s *Session) startTickerLocked() {
	if s.opts.TickInterval <= 0 || s.ticker != nil {
		return
	}
	gen := s.generation
	s.ticker = clock.StartTicker(s.opts.TickInterval, func() { s.tickFrom(gen) })
}

func (s *Session) stopTickerLocked() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

// finishLocked moves the game to Over exactly once.
func (s *Session) finishLocked(outcome domain.Outcome) {
	if s.status == domain.StatusOver {
		return
	}
	s.status = domain.StatusOver
	s.outcome = &outcome
	s.clock.Stop()
	s.stopTickerLocked()
	s.cancelPendingLocked()

	text := s.opts.Messages.RenderOr(msgcat.KeySystemGameOver, map[string]any{"Outcome": outcome.Text}, "Game Over: "+outcome.Text)
	s.systemNoticeLocked(text)
	s.emitLocked(EventGameOver)
	s.logger.Info("game_over",
		zap.String("termination", string(outcome.Termination)),
		zap.String("winner", string(outcome.Winner)),
		zap.Int("ply", s.board.Ply()),
	)
	s.forwardToRelay(text)
}

func (s *Session) outcomeFor(term domain.Termination, winner domain.Side) domain.Outcome {
	data := map[string]any{"Winner": winner.Title()}
	var key, fallback string
	switch term {
	case domain.TerminationCheckmate:
		key, fallback = msgcat.KeyOutcomeCheckmate, winner.Title()+" wins!"
	case domain.TerminationStalemate:
		key, fallback = msgcat.KeyOutcomeStalemate, "Stalemate - Draw!"
	case domain.TerminationInsufficientMaterial:
		key, fallback = msgcat.KeyOutcomeInsufficientMaterial, "Insufficient material - Draw!"
	case domain.TerminationResignation:
		key, fallback = msgcat.KeyOutcomeResignation, winner.Title()+" wins by resignation!"
	case domain.TerminationAgreement:
		key, fallback = msgcat.KeyOutcomeAgreement, "Draw by agreement!"
	case domain.TerminationTimeout:
		key, fallback = msgcat.KeyOutcomeTimeout, winner.Title()+" wins on time!"
	case domain.TerminationRepetition:
		winner = ""
		key, fallback = msgcat.KeyOutcomeDraw, "Draw"
	default:
		term, winner = domain.TerminationRuleDraw, ""
		key, fallback = msgcat.KeyOutcomeDraw, "Draw"
	}
	return domain.Outcome{
		Termination: term,
		Winner:      winner,
		Text:        s.opts.Messages.RenderOr(key, data, fallback),
	}
}

func (s *Session) systemNoticeLocked(text string) {
	sender := s.opts.Messages.RenderOr(msgcat.KeySystemSender, nil, "System")
	s.chat.append(newChatEntry(sender, text, domain.ChatSystem, s.opts.Now()))
}

func (s *Session) forwardToRelay(text string) {
	if s.opts.Relay == nil {
		return
	}
	notice := relay.Notice{
		SessionID: s.id,
		Sender:    s.opts.Messages.RenderOr(msgcat.KeySystemSender, nil, "System"),
		Text:      text,
		SentAt:    s.opts.Now().UTC(),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.RelayTimeout)
		defer cancel()
		if err := s.opts.Relay.Send(ctx, notice); err != nil {
			s.logger.Warn("relay_send_failed", zap.Error(err))
		}
	}()
}

// emitLocked queues an event without blocking; a full queue drops the event.
func (s *Session) emitLocked(kind string) {
	if s.events == nil || s.closed {
		return
	}
	payload, err := json.Marshal(Event{Type: kind, Session: s.snapshotLocked()})
	if err != nil {
		s.logger.Error("event_encode_failed", zap.String("type", kind), zap.Error(err))
		return
	}
	select {
	case s.events <- payload:
	default:
		s.logger.Warn("event_dropped", zap.String("type", kind))
	}
}

func (s *Session) publishLoop() {
	defer s.wg.Done()
	topic := broker.SessionTopic(s.id)
	for payload := range s.events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := s.opts.Broker.Publish(ctx, topic, payload); err != nil {
			s.logger.Warn("event_publish_failed", zap.Error(err))
		}
		cancel()
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:           s.id,
		FEN:          s.board.FEN(),
		Turn:         s.board.Turn(),
		Mode:         s.mode,
		ComputerSide: s.opts.ComputerSide,
		Status:       s.status,
		Opening:      s.opening,
		Moves:        append([]domain.MoveRecord(nil), s.records...),
		SAN:          s.board.SAN(),
		Clock:        s.clock.Snapshot(),
		Chat:         s.chat.snapshot(),
		UpdatedAt:    s.lastActive,
		board:        s.board,
	}
	if s.outcome != nil {
		o := *s.outcome
		snap.Outcome = &o
	}
	if s.eco != nil {
		e := *s.eco
		snap.ECO = &e
	}
	if mv, ok := s.board.LastMove(); ok {
		snap.LastMove = &mv
	}
	return snap
}

// LegalMoves lists the moves the side to move may make.
func (s *Session) LegalMoves() []chess.Move {
	s.mu.Lock()
	board := s.board
	s.mu.Unlock()
	return chess.LegalMoves(board)
}

// PGN exports the current game.
func (s *Session) PGN(headers chess.PGNHeaders) string {
	s.mu.Lock()
	board := s.board
	var term domain.Termination
	var winner domain.Side
	if s.outcome != nil {
		term, winner = s.outcome.Termination, s.outcome.Winner
	}
	s.mu.Unlock()
	return chess.BuildPGN(headers, board.SAN(), term, winner)
}

// IdleSince reports how long the session has gone without a user action.
func (s *Session) IdleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

func (s *Session) touchLocked() {
	s.lastActive = s.opts.Now()
}

// Close cancels the ticker and any pending reply, then waits for queued events and relay
// calls to drain. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.emitLocked(EventClosed)
	s.closed = true
	s.generation++
	s.cancelPendingLocked()
	s.stopTickerLocked()
	if s.events != nil {
		close(s.events)
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("session_closed")
}
