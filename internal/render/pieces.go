package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	chesslib "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

type pieceCacheKey struct {
	piece chesslib.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

// Glyph outlines on a 45x45 canvas. Circles mark crowns and heads.
type glyph struct {
	polygons []string
	circles  [][3]float64
}

var glyphs = map[chesslib.PieceType]glyph{
	chesslib.Pawn: {
		polygons: []string{"15,36 30,36 27,22 18,22"},
		circles:  [][3]float64{{22.5, 15, 5.5}},
	},
	chesslib.Rook: {
		polygons: []string{"12,36 33,36 33,32 30,32 29,17 32,17 32,10 28,10 28,13 25,13 25,10 20,10 20,13 17,13 17,10 13,10 13,17 16,17 15,32 12,32"},
	},
	chesslib.Knight: {
		polygons: []string{"14,36 33,36 31,22 30,12 24,9 22,6 20,10 13,17 12,22 16,23 20,19 22,21 16,30"},
	},
	chesslib.Bishop: {
		polygons: []string{"14,36 31,36 28,31 27,22 29,17 22.5,10 16,17 18,22 17,31"},
		circles:  [][3]float64{{22.5, 8, 2.5}},
	},
	chesslib.Queen: {
		polygons: []string{"11,36 34,36 32,30 36,13 29,25 27,11 22.5,24 18,11 16,25 9,13 13,30"},
		circles:  [][3]float64{{9, 12, 2}, {18, 10, 2}, {27, 10, 2}, {36, 12, 2}},
	},
	chesslib.King: {
		polygons: []string{
			"21,4 24,4 24,7 27,7 27,10 24,10 24,14 21,14 21,10 18,10 18,7 21,7",
			"12,36 33,36 31,29 35,20 28,16 22.5,19 17,16 10,20 14,29",
		},
	},
}

// pieceSVG renders the glyph for piece as a standalone SVG document.
func pieceSVG(piece chesslib.Piece) (string, error) {
	g, ok := glyphs[piece.Type()]
	if !ok {
		return "", fmt.Errorf("no glyph for piece %v", piece)
	}
	fill, stroke := "#ffffff", "#1b1b1b"
	if piece.Color() == chesslib.Black {
		fill, stroke = "#2b2b2b", "#000000"
	}

	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">`)
	for _, pts := range g.polygons {
		fmt.Fprintf(&b, `<polygon points="%s" fill="%s" stroke="%s" stroke-width="1.5" stroke-linejoin="round"/>`, pts, fill, stroke)
	}
	for _, c := range g.circles {
		fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="%g" fill="%s" stroke="%s" stroke-width="1.5"/>`, c[0], c[1], c[2], fill, stroke)
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}

func renderPieceImage(piece chesslib.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	doc, err := pieceSVG(piece)
	if err != nil {
		return nil, err
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}
