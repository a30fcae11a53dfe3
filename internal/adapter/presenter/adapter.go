package presenter

import (
	"github.com/park285/cheese-web/internal/chess"
	"github.com/park285/cheese-web/internal/clock"
	"github.com/park285/cheese-web/internal/domain"
	"github.com/park285/cheese-web/internal/session"
	"github.com/park285/cheese-web/pkg/chessdto"
)

func ToSessionView(s session.Snapshot) chessdto.SessionView {
	v := chessdto.SessionView{
		ID:           s.ID,
		FEN:          s.FEN,
		Turn:         string(s.Turn),
		Mode:         string(s.Mode),
		ComputerSide: string(s.ComputerSide),
		Status:       string(s.Status),
		Over:         s.Status == domain.StatusOver,
		Opening:      s.Opening,
		Moves:        toMoveRecords(s.Moves),
		Clock:        toClock(s.Clock),
		Chat:         toChat(s.Chat),
		UpdatedAt:    s.UpdatedAt,
	}
	if s.Outcome != nil {
		v.Outcome = &chessdto.OutcomeView{
			Termination: string(s.Outcome.Termination),
			Winner:      string(s.Outcome.Winner),
			Text:        s.Outcome.Text,
		}
	}
	if s.ECO != nil {
		v.ECO = &chessdto.ECOView{Code: s.ECO.Code, Title: s.ECO.Title}
	}
	if s.LastMove != nil {
		mv := ToMoveRequest(*s.LastMove)
		v.LastMove = &mv
	}
	return v
}

func toMoveRecords(rows []domain.MoveRecord) []chessdto.MoveRecordView {
	out := make([]chessdto.MoveRecordView, 0, len(rows))
	for _, r := range rows {
		out = append(out, chessdto.MoveRecordView{
			Number:                r.Number,
			White:                 r.White,
			Black:                 r.Black,
			EvaluationPlaceholder: r.Evaluation,
			EvaluationText:        FormatEvaluation(r.Evaluation),
			EvaluationTone:        EvaluationTone(r.Evaluation),
		})
	}
	return out
}

func toClock(c clock.State) chessdto.ClockView {
	return chessdto.ClockView{
		White:  toSideClock(c.White),
		Black:  toSideClock(c.Black),
		Active: c.Active,
		Side:   string(c.Side),
	}
}

func toSideClock(seconds int) chessdto.SideClockView {
	return chessdto.SideClockView{
		Seconds: seconds,
		Text:    clock.Format(seconds),
		Level:   clock.Level(seconds),
	}
}

func toChat(entries []domain.ChatEntry) []chessdto.ChatView {
	out := make([]chessdto.ChatView, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToChatView(e))
	}
	return out
}

func ToChatView(e domain.ChatEntry) chessdto.ChatView {
	return chessdto.ChatView{
		ID:        e.ID,
		Sender:    e.Sender,
		Text:      e.Text,
		Type:      string(e.Type),
		Timestamp: e.Timestamp,
	}
}

func ToMoveRequest(m chess.Move) chessdto.MoveRequest {
	return chessdto.MoveRequest{From: m.From, To: m.To, Promotion: m.Promotion}
}

func FromMoveRequest(r chessdto.MoveRequest) chess.Move {
	return chess.Move{From: r.From, To: r.To, Promotion: r.Promotion}.Normalize()
}

func ToMoveRequests(moves []chess.Move) []chessdto.MoveRequest {
	out := make([]chessdto.MoveRequest, 0, len(moves))
	for _, m := range moves {
		out = append(out, ToMoveRequest(m))
	}
	return out
}
