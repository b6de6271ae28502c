package server

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jonathan/listing-optimizer/internal/pipeline"
	"github.com/jonathan/listing-optimizer/internal/types"
)

// analyzeRequest mirrors pipeline.Request. Omitted keywords analyze the stored catalog.
type analyzeRequest struct {
	Keywords        []types.Keyword               `json:"keywords"`
	Components      *types.ProductTitleComponents `json:"components,omitempty"`
	Count           int                           `json:"count,omitempty"`
	DiversityFactor *float64                      `json:"diversity_factor,omitempty"`
	MaxCategories   int                           `json:"max_categories,omitempty"`
	Seed            *uint64                       `json:"seed,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	keywords, err := s.keywordsOrCatalog(r.Context(), req.Keywords)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	diversity := s.diversityFactor
	if req.DiversityFactor != nil {
		diversity = *req.DiversityFactor
	}

	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
	result, err := pipeline.Analyze(r.Context(), s.engines, pipeline.Request{
		Keywords:        keywords,
		Components:      req.Components,
		Count:           req.Count,
		DiversityFactor: diversity,
		MaxCategories:   req.MaxCategories,
	}, pipeline.Options{
		Random: s.random(req.Seed),
		OnProgress: func(event pipeline.ProgressEvent) {
			logger.Debug("analysis progress", "step", event.Step, "message", event.Message)
		},
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}
