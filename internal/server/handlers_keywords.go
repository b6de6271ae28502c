package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jonathan/listing-optimizer/internal/exchange"
	"github.com/jonathan/listing-optimizer/internal/pipeline"
	"github.com/jonathan/listing-optimizer/internal/recommend"
	"github.com/jonathan/listing-optimizer/internal/scoring"
	"github.com/jonathan/listing-optimizer/internal/types"
)

// keywordsRequest carries a keyword batch. An omitted batch means the stored catalog where allowed.
type keywordsRequest struct {
	Keywords []types.Keyword `json:"keywords"`
}

type scoreResponse struct {
	Keywords []types.Keyword         `json:"keywords"`
	Results  []scoring.Result        `json:"results"`
	Stats    types.KeywordGroupStats `json:"stats"`
}

type recommendRequest struct {
	Keywords        []types.Keyword `json:"keywords"`
	Count           *int            `json:"count,omitempty"`
	DiversityFactor *float64        `json:"diversity_factor,omitempty"`
	Seed            *uint64         `json:"seed,omitempty"`
}

type recommendResponse struct {
	Keywords []types.Keyword `json:"keywords"`
	Summary  string          `json:"summary"`
}

type gapsRequest struct {
	CompetitorTerms []string        `json:"competitor_terms"`
	Keywords        []types.Keyword `json:"keywords"`
}

type importResponse struct {
	Imported int             `json:"imported"`
	Keywords []types.Keyword `json:"keywords"`
}

// keywordsOrCatalog returns the validated request batch, or the stored catalog when the batch is omitted.
func (s *Server) keywordsOrCatalog(ctx context.Context, provided []types.Keyword) ([]types.Keyword, error) {
	if provided == nil {
		return s.store.ListKeywords(ctx)
	}
	for i := range provided {
		provided[i].Tags = types.NormalizeTags(provided[i].Tags)
	}
	if err := pipeline.ValidateKeywords(provided); err != nil {
		return nil, err
	}
	return provided, nil
}

func (s *Server) handleScoreKeywords(w http.ResponseWriter, r *http.Request) {
	var req keywordsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if req.Keywords == nil {
		req.Keywords = []types.Keyword{}
	}
	keywords, err := s.keywordsOrCatalog(r.Context(), req.Keywords)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	stats := scoring.CalculateGroupStats(keywords)
	resp := scoreResponse{
		Keywords: make([]types.Keyword, len(keywords)),
		Results:  make([]scoring.Result, len(keywords)),
		Stats:    stats,
	}
	for i, kw := range keywords {
		result := s.engines.Scorer.CalculateScore(kw, &stats)
		kw.Score = types.Float64Ptr(result.Score)
		resp.Keywords[i] = kw
		resp.Results[i] = result
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleRecommendKeywords(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	keywords, err := s.keywordsOrCatalog(r.Context(), req.Keywords)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	count := pipeline.DefaultRecommendCount
	if req.Count != nil {
		count = *req.Count
	}
	diversity := s.diversityFactor
	if req.DiversityFactor != nil {
		diversity = *req.DiversityFactor
	}

	selected, err := recommend.Recommend(s.engines.Scorer.CalculateScores(keywords), recommend.Options{
		Count:           count,
		DiversityFactor: diversity,
		Random:          s.random(req.Seed),
	})
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, recommendResponse{Keywords: selected, Summary: recommend.Describe(selected)})
}

func (s *Server) handleKeywordGaps(w http.ResponseWriter, r *http.Request) {
	var req gapsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	catalog, err := s.keywordsOrCatalog(r.Context(), req.Keywords)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string][]string{"gaps": recommend.FindKeywordGaps(catalog, req.CompetitorTerms)})
}

// handleRescoreKeywords scores the stored catalog as one batch and writes the scores back.
func (s *Server) handleRescoreKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := s.store.ListKeywords(r.Context())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	scored := s.engines.Scorer.CalculateScores(keywords)
	scores := make(map[string]float64, len(scored))
	for _, kw := range scored {
		scores[kw.ID] = kw.ScoreValue()
	}
	if err := s.store.SaveScores(r.Context(), scores); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.logger.Info("catalog rescored", "keywords", len(scored))
	s.jsonResponse(w, http.StatusOK, map[string][]types.Keyword{"keywords": scored})
}

// handleImportKeywords adds a CSV or JSON batch to the catalog. The batch is rejected as a whole
// when any row is invalid or repeats a stored term.
func (s *Server) handleImportKeywords(w http.ResponseWriter, r *http.Request) {
	format, err := exchange.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.errorResponse(w, r, &ErrBadRequest{Message: "unsupported format", Cause: err})
		return
	}
	keywords, err := exchange.ImportKeywords(http.MaxBytesReader(w, r.Body, maxBodyBytes), format)
	if err != nil {
		// Parse and schema failures are the client's file, not a server fault.
		if HTTPStatus(err) == http.StatusInternalServerError {
			err = &ErrBadRequest{Message: "invalid keyword file", Cause: err}
		}
		s.errorResponse(w, r, err)
		return
	}

	existing, err := s.store.ListKeywords(r.Context())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	known := make(map[string]bool, len(existing))
	for _, kw := range existing {
		known[kw.NormalizedTerm()] = true
	}
	verr := &types.ValidationError{Subject: "keyword batch"}
	for i, kw := range keywords {
		if known[kw.NormalizedTerm()] {
			verr.Add(fmt.Sprintf("[%d].term", i), "already exists in the catalog")
		}
	}
	if err := verr.Err(); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	created := make([]types.Keyword, 0, len(keywords))
	for _, kw := range keywords {
		saved, err := s.store.CreateKeyword(r.Context(), kw)
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}
		created = append(created, *saved)
	}
	s.jsonResponse(w, http.StatusCreated, importResponse{Imported: len(created), Keywords: created})
}

func (s *Server) handleExportKeywords(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(exchange.FormatJSON)
	}
	format, err := exchange.ParseFormat(name)
	if err != nil {
		s.errorResponse(w, r, &ErrBadRequest{Message: "unsupported format", Cause: err})
		return
	}
	keywords, err := s.store.ListKeywords(r.Context())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exchange.ExportKeywords(&buf, format, keywords); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	contentType := "application/json"
	if format == exchange.FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("failed to write export", "error", err)
	}
}

func (s *Server) handleListKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := s.store.ListKeywords(r.Context())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string][]types.Keyword{"keywords": keywords})
}

func (s *Server) handleCreateKeyword(w http.ResponseWriter, r *http.Request) {
	var kw types.Keyword
	if err := decodeJSON(w, r, &kw); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	created, err := s.store.CreateKeyword(r.Context(), kw)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, created)
}

func (s *Server) handleGetKeyword(w http.ResponseWriter, r *http.Request) {
	kw, err := s.store.GetKeyword(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, kw)
}

func (s *Server) handleUpdateKeyword(w http.ResponseWriter, r *http.Request) {
	var kw types.Keyword
	if err := decodeJSON(w, r, &kw); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	kw.ID = chi.URLParam(r, "id")
	updated, err := s.store.UpdateKeyword(r.Context(), kw)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteKeyword(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteKeyword(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
