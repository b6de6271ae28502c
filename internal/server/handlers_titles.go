package server

import (
	"net/http"
	"strings"

	"github.com/jonathan/listing-optimizer/internal/titles"
	"github.com/jonathan/listing-optimizer/internal/types"
)

// generateTitlesRequest names the components to build from. Keywords is the catalog the component
// terms are looked up in; when omitted the stored catalog and its saved scores are used.
type generateTitlesRequest struct {
	Components types.ProductTitleComponents `json:"components"`
	Keywords   []types.Keyword              `json:"keywords"`
}

type evaluateTitleRequest struct {
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

type spacingRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleGenerateTitles(w http.ResponseWriter, r *http.Request) {
	var req generateTitlesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	catalog, err := s.keywordsOrCatalog(r.Context(), req.Keywords)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if req.Keywords != nil {
		catalog = s.engines.Scorer.ScoreMissing(catalog)
	}

	generated, err := s.engines.Generator.GenerateTitles(req.Components, catalog)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string][]types.ProductTitle{"titles": generated})
}

func (s *Server) handleEvaluateTitle(w http.ResponseWriter, r *http.Request) {
	var req evaluateTitleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		verr := &types.ValidationError{Subject: "title evaluation"}
		verr.Add("title", "is required")
		s.errorResponse(w, r, verr)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.engines.Generator.EvaluateTitle(req.Title, req.Keywords...))
}

func (s *Server) handleSpacing(w http.ResponseWriter, r *http.Request) {
	var req spacingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, titles.GenerateSpacingVariants(req.Text))
}
