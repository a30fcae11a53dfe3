package httpapi

import (
	"net/http"
	"strings"

	"github.com/park285/cheese-web/internal/chess/openingbook"
	"github.com/park285/cheese-web/pkg/chessdto"
)

// handleDetectOpening names the opening of a SAN sequence given as ?moves=e4+e5 (spaces or
// commas).
func handleDetectOpening(catalog *openingbook.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if catalog == nil {
			writeError(w, http.StatusServiceUnavailable, codeInternal, "opening catalog unavailable")
			return
		}
		moves := strings.FieldsFunc(r.URL.Query().Get("moves"), func(c rune) bool {
			return c == ' ' || c == ','
		})

		resp := chessdto.OpeningResponse{Name: catalog.Detect(moves)}
		if eco, ok := openingbook.Classify(moves); ok {
			resp.ECO = &chessdto.ECOView{Code: eco.Code, Title: eco.Title}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
