package openingbook

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	chesslib "github.com/corentings/chess/v2"
)

func newTestCatalog(t *testing.T, body string) *Catalog {
	t.Helper()
	c, err := Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func TestDetectEmptySequence(t *testing.T) {
	c := newTestCatalog(t, `[{"eco":"C20","name":"Open Game","moves":"e4 e5"}]`)
	if got := c.Detect(nil); got != NoOpening {
		t.Fatalf("Detect(nil) = %q", got)
	}
	if got := c.Detect([]string{}); got != NoOpening {
		t.Fatalf("Detect([]) = %q", got)
	}
}

func TestDetectFirstMatchWins(t *testing.T) {
	c := newTestCatalog(t, `[
		{"eco":"C20","name":"Open Game","moves":"e4 e5"},
		{"eco":"C40","name":"King's Knight","moves":"e4 e5 Nf3"}
	]`)
	if got := c.Detect([]string{"e4", "e5", "Nf3"}); got != "Open Game" {
		t.Fatalf("Detect = %q, want Open Game", got)
	}
}

func TestDetectIgnoresTrailingMoves(t *testing.T) {
	c := newTestCatalog(t, `[
		{"eco":"C40","name":"King's Knight","moves":"e4 e5 Nf3"},
		{"eco":"C20","name":"Open Game","moves":"e4 e5"}
	]`)
	cases := []struct {
		moves []string
		want  string
	}{
		{[]string{"e4", "e5", "Nf3", "Nc6", "Bb5"}, "King's Knight"},
		{[]string{"e4", "e5", "Nc3"}, "Open Game"},
		{[]string{"e4"}, NoOpening},
		{[]string{"d4", "d5"}, NoOpening},
		{[]string{"e4", "e5", "nf3"}, "Open Game"},
	}
	for _, tc := range cases {
		if got := c.Detect(tc.moves); got != tc.want {
			t.Errorf("Detect(%v) = %q, want %q", tc.moves, got, tc.want)
		}
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	c, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	moves := []string{"e4", "c5", "Nf3", "d6"}
	first := c.Detect(moves)
	for i := 0; i < 3; i++ {
		if got := c.Detect(moves); got != first {
			t.Fatalf("Detect not stable: %q vs %q", got, first)
		}
	}
	if first != "Sicilian Defense" {
		t.Fatalf("Detect = %q, want Sicilian Defense", first)
	}
}

func TestEmbeddedCatalog(t *testing.T) {
	c, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Len() < 50 {
		t.Fatalf("embedded catalog too small: %d", c.Len())
	}
	cases := map[string]string{
		"e4 e5 Nf3 Nc6 Bb5 a6":    "Ruy Lopez",
		"e4 e5 Nf3":               "King's Knight Opening",
		"e4 e5 Qh5":               "Open Game",
		"d4 Nf6 c4 g6 Nc3 d5 cxd5": "Grünfeld Defense",
		"h4":                      NoOpening,
	}
	for line, want := range cases {
		if got := c.Detect(strings.Fields(line)); got != want {
			t.Errorf("Detect(%s) = %q, want %q", line, got, want)
		}
	}
}

func TestMatchReturnsCopy(t *testing.T) {
	c := newTestCatalog(t, `[{"eco":"C20","name":"Open Game","moves":"e4 e5"}]`)
	e, ok := c.Match([]string{"e4", "e5"})
	if !ok {
		t.Fatalf("expected match")
	}
	e.Moves[0] = "d4"
	if got := c.Detect([]string{"e4", "e5"}); got != "Open Game" {
		t.Fatalf("catalog mutated through Match result: %q", got)
	}
}

func TestParseRejectsInvalidEntries(t *testing.T) {
	_, err := Parse(strings.NewReader(`[
		{"eco":"A00","name":"","moves":"g4"},
		{"eco":"A01","name":"Empty","moves":"   "},
		{"eco":"A02","name":"Bird Opening","moves":"f4"}
	]`))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
	if !strings.Contains(err.Error(), "entry 0") || !strings.Contains(err.Error(), "entry 1") {
		t.Fatalf("expected both bad entries reported, got %v", err)
	}

	if _, err := Parse(strings.NewReader(`[]`)); !errors.Is(err, ErrCatalogEmpty) {
		t.Fatalf("expected ErrCatalogEmpty, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(`[{"eco":"A02","name":"Bird Opening","moves":"f4"}]`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := c.Detect([]string{"f4", "e5"}); got != "Bird Opening" {
		t.Fatalf("Detect = %q", got)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestResolveCatalogPathEnv(t *testing.T) {
	t.Setenv("CHESS_OPENING_CATALOG_PATH", filepath.Join(t.TempDir(), "nope.json"))
	if _, err := ResolveCatalogPath(); err == nil {
		t.Fatalf("expected error for missing env path")
	}
}

func TestClassify(t *testing.T) {
	eco, ok := Classify([]string{"e4", "e5", "Nf3", "Nc6", "Bb5"})
	if !ok {
		t.Fatalf("expected ECO classification")
	}
	if !strings.HasPrefix(eco.Code, "C") {
		t.Fatalf("unexpected ECO code %q (%s)", eco.Code, eco.Title)
	}
	if _, ok := Classify([]string{"e4", "Ke7", "Qxf7"}); ok {
		t.Fatalf("expected unplayable line to be rejected")
	}
	if _, ok := Classify(nil); ok {
		t.Fatalf("expected empty line to be rejected")
	}
}

// longGame plays a deterministic sequence of legal moves and returns the game and its SAN.
func longGame(t *testing.T, plies int) (*chesslib.Game, []string) {
	t.Helper()
	game := chesslib.NewGame()
	san := make([]string, 0, plies)
	for ply := 0; ply < plies; ply++ {
		if game.Outcome() != chesslib.NoOutcome {
			t.Fatalf("game ended after %d plies", ply)
		}
		valid := game.ValidMoves()
		mv := valid[(ply*7+3)%len(valid)]
		san = append(san, chesslib.AlgebraicNotation{}.Encode(game.Position(), &mv))
		if err := game.Move(&mv, nil); err != nil {
			t.Fatalf("ply %d: %v", ply, err)
		}
	}
	return game, san
}

func TestClassifyStopsAtBookDepth(t *testing.T) {
	game, san := longGame(t, ECODepth*2)

	got, gotOK := Classify(san)
	found := loadECOBook().Find(game.Moves())
	if (found != nil) != gotOK {
		t.Fatalf("Classify ok=%v, full lookup found=%v", gotOK, found != nil)
	}
	if found != nil && (got.Code != found.Code() || got.Title != found.Title()) {
		t.Fatalf("Classify = %+v, full lookup = %s %s", got, found.Code(), found.Title())
	}

	prefix, prefixOK := Classify(san[:ECODepth])
	if prefix != got || prefixOK != gotOK {
		t.Fatalf("prefix classification %+v differs from %+v", prefix, got)
	}
}
