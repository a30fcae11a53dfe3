package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	chesslib "github.com/corentings/chess/v2"
)

const (
	startFEN     = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	afterE4FEN   = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	afterE4E5FEN = "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"
)

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func sq(s string) chesslib.Square {
	v, _ := parseSquare(s)
	return v
}

func pixelNear(img image.Image, r image.Rectangle) color.RGBA {
	c := img.At(r.Min.X+2, r.Min.Y+2)
	rr, gg, bb, aa := c.RGBA()
	return color.RGBA{R: uint8(rr >> 8), G: uint8(gg >> 8), B: uint8(bb >> 8), A: uint8(aa >> 8)}
}

func TestRenderStartPosition(t *testing.T) {
	data, err := NewRenderer().RenderPNG(context.Background(), startFEN, Options{})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img := decode(t, data)

	side := DefaultSquareSize*8 + boardMargin*2
	if img.Bounds().Dx() != side || img.Bounds().Dy() != side {
		t.Fatalf("bounds = %v, want %dx%d", img.Bounds(), side, side)
	}

	l := layout{squareSize: DefaultSquareSize, origin: image.Point{X: boardMargin, Y: boardMargin}}
	if got := pixelNear(img, l.squareRect(sq("a3"))); got != darkSquare {
		t.Fatalf("a3 = %v, want dark", got)
	}
	if got := pixelNear(img, l.squareRect(sq("b3"))); got != lightSquare {
		t.Fatalf("b3 = %v, want light", got)
	}
}

func TestRenderHighlightsWhiteMove(t *testing.T) {
	r := NewRenderer()
	data, err := r.RenderPNG(context.Background(), afterE4FEN, Options{From: "e2", To: "e4"})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img := decode(t, data)

	l := layout{squareSize: DefaultSquareSize, origin: image.Point{X: boardMargin, Y: boardMargin}}
	if got := pixelNear(img, l.squareRect(sq("e2"))); got == lightSquare {
		t.Fatal("e2 is not highlighted")
	}
	if got := pixelNear(img, l.squareRect(sq("e3"))); got != darkSquare {
		t.Fatalf("e3 = %v, want dark", got)
	}
}

func TestRenderBlackMoveArrow(t *testing.T) {
	data, err := NewRenderer().RenderPNG(context.Background(), afterE4E5FEN, Options{From: "e7", To: "e5"})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img := decode(t, data)

	l := layout{squareSize: DefaultSquareSize, origin: image.Point{X: boardMargin, Y: boardMargin}}
	mid := l.center(sq("e6"))
	rr, _, _, _ := img.At(mid.X, mid.Y).RGBA()
	base := lightSquare
	if squareColor(sq("e6")) == darkSquare {
		base = darkSquare
	}
	if rr>>8 == uint32(base.R) {
		t.Fatal("arrow shaft does not cross e6")
	}
}

func TestRenderFlipAndCaption(t *testing.T) {
	data, err := NewRenderer().RenderPNG(context.Background(), startFEN, Options{SquareSize: 32, Flip: true, Caption: "King's Pawn Game"})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img := decode(t, data)

	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w != 32*8+boardMargin*2 || h != 32*8+boardMargin*2+captionHeight+captionGap {
		t.Fatalf("bounds = %dx%d", w, h)
	}

	flipped := layout{squareSize: 32, origin: image.Point{X: boardMargin, Y: boardMargin + captionHeight + captionGap}, flip: true}
	want := image.Rect(boardMargin, flipped.origin.Y, boardMargin+32, flipped.origin.Y+32)
	if got := flipped.squareRect(sq("h1")); got != want {
		t.Fatalf("flipped h1 = %v, want %v", got, want)
	}
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer()
	bad := []struct {
		name string
		fen  string
		opts Options
	}{
		{name: "empty fen", fen: ""},
		{name: "garbage fen", fen: "not a fen"},
		{name: "tiny squares", fen: startFEN, opts: Options{SquareSize: 4}},
		{name: "bad square", fen: startFEN, opts: Options{From: "z9", To: "e4"}},
	}
	for _, tt := range bad {
		if _, err := r.RenderPNG(context.Background(), tt.fen, tt.opts); err == nil {
			t.Fatalf("%s: expected error", tt.name)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderPNG(ctx, startFEN, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled render err = %v", err)
	}
}

func TestPieceImagesAreCached(t *testing.T) {
	piece := chesslib.WhiteKnight
	a, err := renderPieceImage(piece, 40)
	if err != nil {
		t.Fatalf("renderPieceImage: %v", err)
	}
	b, err := renderPieceImage(piece, 40)
	if err != nil {
		t.Fatalf("renderPieceImage: %v", err)
	}
	if a.(*image.RGBA) != b.(*image.RGBA) {
		t.Fatal("piece image was rendered twice")
	}

	doc, err := pieceSVG(chesslib.BlackQueen)
	if err != nil {
		t.Fatalf("pieceSVG: %v", err)
	}
	if !strings.Contains(doc, `fill="#2b2b2b"`) || !strings.Contains(doc, "<circle") {
		t.Fatalf("unexpected svg:\n%s", doc)
	}
}
