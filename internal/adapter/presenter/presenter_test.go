package presenter

import (
	"reflect"
	"strings"
	"testing"

	"github.com/park285/cheese-web/internal/chess"
	"github.com/park285/cheese-web/internal/domain"
	"github.com/park285/cheese-web/internal/session"
	"github.com/park285/cheese-web/pkg/chessdto"
)

func TestFormatEvaluation(t *testing.T) {
	cases := map[float64]string{
		0.44:  "+0.4",
		-1.25: "-1.2",
		0:     "0.0",
		5:     "+5.0",
		5.1:   "+M",
		-7:    "-M",
	}
	for eval, want := range cases {
		if got := FormatEvaluation(eval); got != want {
			t.Fatalf("FormatEvaluation(%v) = %q, want %q", eval, got, want)
		}
	}
}

func TestEvaluationTone(t *testing.T) {
	cases := []struct {
		eval float64
		want string
	}{
		{2.1, ToneStrongWhite},
		{1, ToneWhite},
		{0, ToneEven},
		{-1, ToneBlack},
		{-2, ToneStrongBlack},
	}
	for _, c := range cases {
		if got := EvaluationTone(c.eval); got != c.want {
			t.Fatalf("EvaluationTone(%v) = %v, want %v", c.eval, got, c.want)
		}
	}
}

func newSnapshot(t *testing.T, uci ...string) session.Snapshot {
	t.Helper()
	s := session.New("view", session.Options{
		Mode:      domain.ModeHuman,
		Scheduler: session.NewManualScheduler(),
		Mover:     chess.NewSeededRandomMover(3),
	})
	t.Cleanup(s.Close)
	var snap session.Snapshot
	for _, u := range uci {
		mv, err := chess.ParseMove(u)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", u, err)
		}
		var ok bool
		if snap, ok = s.Move(mv); !ok {
			t.Fatalf("move %s rejected", u)
		}
	}
	if len(uci) == 0 {
		snap = s.Snapshot()
	}
	return snap
}

func TestToSessionView(t *testing.T) {
	v := ToSessionView(newSnapshot(t, "e2e4", "e7e5", "g1f3"))

	if v.ID != "view" || v.Turn != "black" || v.Mode != "human" || v.Status != "in_progress" {
		t.Fatalf("header = %q %q %q %q", v.ID, v.Turn, v.Mode, v.Status)
	}
	if v.Over || v.Outcome != nil {
		t.Fatalf("unexpected outcome: over=%v %+v", v.Over, v.Outcome)
	}
	if v.Opening != "King's Knight Opening" {
		t.Fatalf("Opening = %q", v.Opening)
	}
	if len(v.Moves) != 2 {
		t.Fatalf("len(Moves) = %d", len(v.Moves))
	}
	if v.Moves[0].White != "e4" || v.Moves[0].Black != "e5" || v.Moves[1].White != "Nf3" {
		t.Fatalf("moves = %+v", v.Moves)
	}
	if want := FormatEvaluation(v.Moves[1].EvaluationPlaceholder); v.Moves[1].EvaluationText != want {
		t.Fatalf("EvaluationText = %q, want %q", v.Moves[1].EvaluationText, want)
	}
	if v.LastMove == nil || *v.LastMove != (chessdto.MoveRequest{From: "g1", To: "f3"}) {
		t.Fatalf("LastMove = %+v", v.LastMove)
	}
	if v.Clock.White.Text != "10:00" || v.Clock.Black.Level != "normal" {
		t.Fatalf("clock = %+v", v.Clock)
	}
	if !v.Clock.Active || v.Clock.Side != "black" {
		t.Fatalf("clock active=%v side=%q", v.Clock.Active, v.Clock.Side)
	}
	if len(v.Chat) != 1 || v.Chat[0].Type != "system" {
		t.Fatalf("chat = %+v", v.Chat)
	}
}

func TestToSessionViewGameOver(t *testing.T) {
	v := ToSessionView(newSnapshot(t, "f2f3", "e7e5", "g2g4", "d8h4"))

	if !v.Over || v.Outcome == nil {
		t.Fatalf("expected game over, got over=%v outcome=%+v", v.Over, v.Outcome)
	}
	if v.Outcome.Termination != "checkmate" || v.Outcome.Winner != "black" || v.Outcome.Text != "Black wins!" {
		t.Fatalf("outcome = %+v", *v.Outcome)
	}
	if v.Clock.Active {
		t.Fatal("clock still active after mate")
	}
}

func TestMoveRequestConversion(t *testing.T) {
	mv := FromMoveRequest(chessdto.MoveRequest{From: " E7", To: "e8 ", Promotion: "Q"})
	if want := (chess.Move{From: "e7", To: "e8", Promotion: "q"}); mv != want {
		t.Fatalf("FromMoveRequest = %+v, want %+v", mv, want)
	}
	got := ToMoveRequests([]chess.Move{mv})
	want := []chessdto.MoveRequest{{From: "e7", To: "e8", Promotion: "q"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ToMoveRequests = %+v, want %+v", got, want)
	}
}

func TestStatus(t *testing.T) {
	v := chessdto.SessionView{
		Turn:    "white",
		Mode:    "computer",
		Opening: "Open Game",
		ECO:     &chessdto.ECOView{Code: "C20"},
		Clock: chessdto.ClockView{
			White: chessdto.SideClockView{Text: "9:58"},
			Black: chessdto.SideClockView{Text: "10:00"},
		},
		Moves: []chessdto.MoveRecordView{{Number: 1, White: "e4", Black: "e5"}},
	}
	text := Status(v)
	for _, want := range []string{"White to move", "Open Game (C20)", "White 9:58 | Black 10:00", "1. e4 e5"} {
		if !strings.Contains(text, want) {
			t.Fatalf("Status missing %q:\n%s", want, text)
		}
	}

	v.Outcome = &chessdto.OutcomeView{Text: "Draw by agreement!"}
	if text := Status(v); !strings.Contains(text, "Draw by agreement!") {
		t.Fatalf("Status missing outcome:\n%s", text)
	}
}
