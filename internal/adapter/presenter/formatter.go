package presenter

import (
	"fmt"
	"math"
	"strings"

	"github.com/park285/cheese-web/pkg/chessdto"
)

const recentMovesLimit = 5

// Evaluation tones, strongest white advantage first.
const (
	ToneStrongWhite = "strong_white"
	ToneWhite       = "white"
	ToneEven        = "even"
	ToneBlack       = "black"
	ToneStrongBlack = "strong_black"
)

// FormatEvaluation renders +0.4 or -1.2, and +M or -M beyond five pawns.
func FormatEvaluation(eval float64) string {
	if math.Abs(eval) > 5 {
		if eval > 0 {
			return "+M"
		}
		return "-M"
	}
	if eval > 0 {
		return fmt.Sprintf("+%.1f", eval)
	}
	return fmt.Sprintf("%.1f", eval)
}

func EvaluationTone(eval float64) string {
	switch {
	case eval > 2:
		return ToneStrongWhite
	case eval > 0.5:
		return ToneWhite
	case eval > -0.5:
		return ToneEven
	case eval > -2:
		return ToneBlack
	default:
		return ToneStrongBlack
	}
}

// Status renders a view as a short plain-text block for logs and terminal tools.
func Status(v chessdto.SessionView) string {
	var sb strings.Builder
	if v.Outcome != nil {
		sb.WriteString(v.Outcome.Text)
	} else {
		sb.WriteString(fmt.Sprintf("%s to move", capitalize(v.Turn)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("• Opening: %s", v.Opening))
	if v.ECO != nil && v.ECO.Code != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", v.ECO.Code))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("• Clock: White %s | Black %s\n", v.Clock.White.Text, v.Clock.Black.Text))
	sb.WriteString(fmt.Sprintf("• Mode: %s\n", v.Mode))
	sb.WriteString("• Moves: ")
	sb.WriteString(formatRecentMoves(v.Moves))
	return sb.String()
}

func formatRecentMoves(rows []chessdto.MoveRecordView) string {
	if len(rows) == 0 {
		return "-"
	}
	start := 0
	if len(rows) > recentMovesLimit {
		start = len(rows) - recentMovesLimit
	}
	parts := make([]string, 0, len(rows)-start)
	for _, r := range rows[start:] {
		white := r.White
		if white == "" {
			white = "..."
		}
		part := fmt.Sprintf("%d. %s", r.Number, white)
		if r.Black != "" {
			part += " " + r.Black
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
