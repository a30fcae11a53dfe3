package openingbook

import (
	"sync"

	chesslib "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

// ECODepth is the longest line, in plies, of the bundled ECO table. Plies past it never
// change the classification.
const ECODepth = 36

// ECO is the chess library's own classification of a position.
type ECO struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

func loadECOBook() *opening.BookECO {
	ecoOnce.Do(func() {
		ecoBook = opening.NewBookECO()
	})
	return ecoBook
}

// Classify replays SAN moves from the initial position and looks the game up in the
// built-in ECO book. It reports false for unknown lines or unplayable moves. Only the
// first ECODepth plies are replayed.
func Classify(sanMoves []string) (ECO, bool) {
	if len(sanMoves) == 0 {
		return ECO{}, false
	}
	if len(sanMoves) > ECODepth {
		sanMoves = sanMoves[:ECODepth]
	}
	game := chesslib.NewGame()
	for _, san := range sanMoves {
		if err := game.PushNotationMove(san, chesslib.AlgebraicNotation{}, nil); err != nil {
			return ECO{}, false
		}
	}
	found := loadECOBook().Find(game.Moves())
	if found == nil {
		return ECO{}, false
	}
	return ECO{Code: found.Code(), Title: found.Title()}, true
}
