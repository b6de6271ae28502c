package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/jonathan/listing-optimizer/internal/category"
	"github.com/jonathan/listing-optimizer/internal/types"
)

type recommendCategoriesRequest struct {
	Keywords   []types.Keyword               `json:"keywords"`
	Components *types.ProductTitleComponents `json:"components,omitempty"`
	Max        int                           `json:"max,omitempty"`
}

type checklistResponse struct {
	Category   string                    `json:"category"`
	Attributes []types.CategoryAttribute `json:"attributes"`
}

// categoryParam decodes the {name} segment. Names such as "디지털/가전" arrive with an escaped slash.
func categoryParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func (s *Server) handleRecommendCategories(w http.ResponseWriter, r *http.Request) {
	var req recommendCategoriesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if req.Max < 0 {
		verr := &types.ValidationError{Subject: "category request"}
		verr.Add("max", "must be >= 0")
		s.errorResponse(w, r, verr)
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

	matches := s.engines.Categories.RecommendCategories(s.engines.Scorer.ScoreMissing(keywords), req.Components, req.Max)
	s.jsonResponse(w, http.StatusOK, map[string][]category.Match{"categories": matches})
}

func (s *Server) handleSearchCategories(w http.ResponseWriter, r *http.Request) {
	rules := s.engines.Categories.SearchCategories(r.URL.Query().Get("q"))
	s.jsonResponse(w, http.StatusOK, map[string][]types.CategoryRule{"categories": rules})
}

func (s *Server) handleCategoryChecklist(w http.ResponseWriter, r *http.Request) {
	name := categoryParam(r)
	attrs, err := s.engines.Categories.CategoryChecklist(name)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, checklistResponse{Category: name, Attributes: attrs})
}

// handlePutCategoryRule adds a rule or replaces the rule with the same name.
func (s *Server) handlePutCategoryRule(w http.ResponseWriter, r *http.Request) {
	var rule types.CategoryRule
	if err := decodeJSON(w, r, &rule); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := s.engines.Categories.AddRule(rule); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.logger.Info("category rule saved", "category", rule.CategoryName)
	s.jsonResponse(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteCategoryRule(w http.ResponseWriter, r *http.Request) {
	name := categoryParam(r)
	if !s.engines.Categories.RemoveRule(name) {
		s.errorResponse(w, r, fmt.Errorf("%w: %s", category.ErrRuleNotFound, name))
		return
	}
	s.logger.Info("category rule removed", "category", name)
	w.WriteHeader(http.StatusNoContent)
}
