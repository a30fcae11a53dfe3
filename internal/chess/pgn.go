package chess

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-web/internal/domain"
)

// PGNHeaders are the tag pairs written above the movetext.
type PGNHeaders struct {
	Event string
	Site  string
	Date  time.Time
	White string
	Black string
}

// ResultToken maps a board state to a PGN result token.
func ResultToken(termination domain.Termination, winner domain.Side) string {
	if termination == "" {
		return "*"
	}
	switch winner {
	case domain.White:
		return "1-0"
	case domain.Black:
		return "0-1"
	default:
		return "1/2-1/2"
	}
}

// BuildPGN renders SAN history with headers. termination and winner describe how the game
// ended; an empty termination yields the "*" result.
func BuildPGN(h PGNHeaders, san []string, termination domain.Termination, winner domain.Side) string {
	result := ResultToken(termination, winner)
	date := h.Date
	if date.IsZero() {
		date = time.Now()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[Event \"%s\"]\n", sanitizePGN(orDefault(h.Event, "Casual Game"))))
	b.WriteString(fmt.Sprintf("[Site \"%s\"]\n", sanitizePGN(orDefault(h.Site, "cheese-web"))))
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(orDefault(h.White, "White"))))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(orDefault(h.Black, "Black"))))
	if termination != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(string(termination))))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n\n", result))

	for i := 0; i < len(san); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s ", i/2+1, strings.TrimSpace(san[i])))
		if i+1 < len(san) {
			b.WriteString(strings.TrimSpace(san[i+1]))
			b.WriteString(" ")
		}
	}
	b.WriteString(result)
	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}
