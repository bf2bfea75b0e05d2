package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"semantic-ats/internal/contextutil"
	"semantic-ats/internal/search"
)

// SearchHandler handles HTTP requests for candidate search.
type SearchHandler struct {
	searcher search.Searcher
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searcher search.Searcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// SearchRequest represents the HTTP request payload for candidate search.
//
// swagger:model SearchRequest
type SearchRequest struct {
	// Free-text description of the candidate being looked for
	Query string `json:"query"`
	// Search mode: "story", "personality", or "resume"
	Mode string `json:"mode"`
}

// SearchResponse represents the HTTP response payload for candidate search.
//
// swagger:model SearchResponse
type SearchResponse struct {
	// Ranked candidate results, best match first
	Results []search.Result `json:"results"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for candidate search.
//
// swagger:route POST /api/search searchCandidates
//
// # Search candidates semantically
//
// Embeds the query and ranks stored candidates against the vector space
// selected by the mode.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Ranked results (empty list for an empty query)
//	  schema:
//	    "$ref": "#/definitions/SearchResponse"
//	'400':
//	  description: Bad request (malformed body or unknown mode)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Embedding service unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'503':
//	  description: Vector store unavailable
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	results, err := h.searcher.Search(ctx, req.Query, search.Mode(req.Mode))
	if err != nil {
		switch {
		case errors.Is(err, search.ErrInvalidMode):
			writeError(w, http.StatusBadRequest, "Mode must be one of: story, personality, resume")
		case errors.Is(err, search.ErrEmbeddingUnavailable):
			writeError(w, http.StatusBadGateway, "Embedding service unavailable")
		case errors.Is(err, search.ErrStoreUnavailable):
			writeError(w, http.StatusServiceUnavailable, "Vector store unavailable")
		default:
			logger.ErrorContext(ctx, "search failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
