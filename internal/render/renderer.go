package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	chesslib "github.com/corentings/chess/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultSquareSize = 64
	minSquareSize     = 16
	maxSquareSize     = 160

	boardMargin   = 24
	captionHeight = 32
	captionGap    = 10
	panelRadius   = 8
)

// Options control one rendering. From/To are algebraic squares of the last move.
type Options struct {
	SquareSize int
	From       string
	To         string
	Flip       bool
	Caption    string
}

type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// RenderPNG draws the position in fen as a PNG.
func (r *Renderer) RenderPNG(ctx context.Context, fen string, opts Options) ([]byte, error) {
	board, err := boardFromFEN(fen)
	if err != nil {
		return nil, err
	}

	squareSize := opts.SquareSize
	if squareSize <= 0 {
		squareSize = DefaultSquareSize
	}
	if squareSize < minSquareSize || squareSize > maxSquareSize {
		return nil, fmt.Errorf("square size %d out of range [%d, %d]", squareSize, minSquareSize, maxSquareSize)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	caption := strings.TrimSpace(opts.Caption)
	top := boardMargin
	if caption != "" {
		top += captionHeight + captionGap
	}
	boardSize := squareSize * 8
	l := layout{
		squareSize: squareSize,
		origin:     image.Point{X: boardMargin, Y: top},
		flip:       opts.Flip,
	}
	img := image.NewRGBA(image.Rect(0, 0, boardSize+boardMargin*2, boardSize+top+boardMargin))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	boardRect := image.Rect(l.origin.X, l.origin.Y, l.origin.X+boardSize, l.origin.Y+boardSize)
	drawBoardShadow(img, boardRect)
	drawSquares(img, l)
	highlight, err := parseHighlight(opts.From, opts.To)
	if err != nil {
		return nil, err
	}
	drawHighlight(img, board, highlight, l)
	if err := drawPieces(img, board, l); err != nil {
		return nil, err
	}
	drawCoordinates(img, l)
	if caption != "" {
		drawCaption(img, caption, image.Rect(boardRect.Min.X, boardMargin, boardRect.Max.X, boardMargin+captionHeight))
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return pngBuf.Bytes(), nil
}

func boardFromFEN(fen string) (*chesslib.Board, error) {
	if strings.TrimSpace(fen) == "" {
		return nil, errors.New("fen is empty")
	}
	option, err := chesslib.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return chesslib.NewGame(option).Position().Board(), nil
}

type moveHighlight struct {
	From chesslib.Square
	To   chesslib.Square
}

func parseHighlight(from, to string) (*moveHighlight, error) {
	from, to = strings.ToLower(strings.TrimSpace(from)), strings.ToLower(strings.TrimSpace(to))
	if from == "" && to == "" {
		return nil, nil
	}
	f, ok := parseSquare(from)
	t, ok2 := parseSquare(to)
	if !ok || !ok2 {
		return nil, fmt.Errorf("bad highlight squares %q-%q", from, to)
	}
	return &moveHighlight{From: f, To: t}, nil
}

func parseSquare(s string) (chesslib.Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return 0, false
	}
	return chesslib.NewSquare(chesslib.File(s[0]-'a'), chesslib.Rank(s[1]-'1')), true
}

// layout maps squares to pixels; flip puts black at the bottom.
type layout struct {
	squareSize int
	origin     image.Point
	flip       bool
}

func (l layout) squareRect(sq chesslib.Square) image.Rectangle {
	col := int(sq.File())
	row := 7 - int(sq.Rank())
	if l.flip {
		col, row = 7-col, 7-row
	}
	x := l.origin.X + col*l.squareSize
	y := l.origin.Y + row*l.squareSize
	return image.Rect(x, y, x+l.squareSize, y+l.squareSize)
}

func (l layout) center(sq chesslib.Square) image.Point {
	r := l.squareRect(sq)
	return image.Point{X: r.Min.X + l.squareSize/2, Y: r.Min.Y + l.squareSize/2}
}

var (
	backgroundColor           = color.RGBA{R: 30, G: 32, B: 40, A: 255}
	lightSquare               = color.RGBA{233, 207, 163, 255}
	darkSquare                = color.RGBA{187, 136, 96, 255}
	whiteMoveHighlightFill    = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveHighlightArrow   = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	neutralMoveHighlightArrow = color.NRGBA{R: 182, G: 184, B: 190, A: 140}
	captionPanelColor         = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	captionTextColor          = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	boardShadowColor          = color.NRGBA{0, 0, 0, 60}
	coordinateTextColor       = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
)

func squareColor(sq chesslib.Square) color.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}

func allSquares() []chesslib.Square {
	out := make([]chesslib.Square, 0, 64)
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			out = append(out, chesslib.NewSquare(chesslib.File(file), chesslib.Rank(rank)))
		}
	}
	return out
}

func drawBoardShadow(img *image.RGBA, boardRect image.Rectangle) {
	shadowRect := image.Rect(boardRect.Min.X+4, boardRect.Min.Y+8, boardRect.Max.X+10, boardRect.Max.Y+12)
	imagedraw.Draw(img, shadowRect.Intersect(img.Bounds()), image.NewUniform(boardShadowColor), image.Point{}, imagedraw.Over)
}

func drawSquares(dst imagedraw.Image, l layout) {
	for _, sq := range allSquares() {
		imagedraw.Draw(dst, l.squareRect(sq), image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
	}
}

func drawPieces(dst imagedraw.Image, board *chesslib.Board, l layout) error {
	for sq, piece := range board.SquareMap() {
		if piece == chesslib.NoPiece {
			continue
		}
		img, err := renderPieceImage(piece, l.squareSize)
		if err != nil {
			return err
		}
		imagedraw.Draw(dst, l.squareRect(sq), img, image.Point{}, imagedraw.Over)
	}
	return nil
}

// drawHighlight tints both squares of a white move and draws an arrow for a black one.
func drawHighlight(img *image.RGBA, board *chesslib.Board, h *moveHighlight, l layout) {
	if h == nil {
		return
	}
	switch moverColor, ok := moveHighlightMoverColor(board, h); {
	case ok && moverColor == chesslib.Black:
		drawArrow(img, h.From, h.To, l, blackMoveHighlightArrow)
	case ok && moverColor == chesslib.White:
		drawSquareOverlay(img, l.squareRect(h.From), whiteMoveHighlightFill)
		drawSquareOverlay(img, l.squareRect(h.To), whiteMoveHighlightFill)
	default:
		drawArrow(img, h.From, h.To, l, neutralMoveHighlightArrow)
	}
}

func moveHighlightMoverColor(board *chesslib.Board, h *moveHighlight) (chesslib.Color, bool) {
	if piece := board.Piece(h.To); piece != chesslib.NoPiece {
		return piece.Color(), true
	}
	if piece := board.Piece(h.From); piece != chesslib.NoPiece {
		return piece.Color(), true
	}
	return chesslib.NoColor, false
}

func drawSquareOverlay(img *image.RGBA, rect image.Rectangle, clr color.Color) {
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawCoordinates(dst imagedraw.Image, l layout) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()

	for i := 0; i < 8; i++ {
		file := chesslib.File(i)
		rank := chesslib.Rank(i)

		fileCenter := l.center(chesslib.NewSquare(file, chesslib.Rank1))
		bottom := l.origin.Y + 8*l.squareSize
		drawCenteredText(drawer, file.String(), fileCenter.X, bottom+ascent+4)

		rankCenter := l.center(chesslib.NewSquare(chesslib.FileA, rank))
		drawCenteredText(drawer, rank.String(), l.origin.X-boardMargin/2, rankCenter.Y+ascent/2)
	}
}

func drawCaption(img *image.RGBA, caption string, rect image.Rectangle) {
	drawRoundedPanel(img, rect, panelRadius, captionPanelColor)
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	caption = truncateWithEllipsis(drawer.Face, caption, rect.Dx()-16)
	drawCenteredString(drawer, rect, caption, captionTextColor)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	if text == "" {
		return
	}
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 || face == nil {
		return trimmed
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}
