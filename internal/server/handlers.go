package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ppiankov/brandguard/internal/model"
	"go.uber.org/zap"
)

type retrieveRequest struct {
	Query       string `json:"query"`
	ContextType string `json:"context_type"`
	K           int    `json:"k,omitempty"`
}

type retrievedChunk struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Source string  `json:"source,omitempty"`
	Score  float64 `json:"score"`
}

type verifyRequest struct {
	Claims         []string `json:"claims"`
	SourceChunkIDs []string `json:"source_chunk_ids"`
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	category, err := model.ParseCategory(req.ContextType)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	k := req.K
	if k <= 0 {
		k = s.topK
	}

	s.logger.Debug("retrieve request", zap.String("query", req.Query), zap.String("category", string(category)), zap.Int("k", k))
	matches, err := s.store.SearchScored(r.Context(), req.Query, category, k)
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}

	out := make([]retrievedChunk, len(matches))
	for i, m := range matches {
		out[i] = retrievedChunk{ID: m.Chunk.ID, Text: m.Chunk.Text, Source: m.Chunk.Source, Score: m.Score}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"chunks": out})
}

func (s *Server) handleCritique(w http.ResponseWriter, r *http.Request) {
	var draft model.ChannelDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	channel, err := model.ParseChannel(string(draft.Channel))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft.Channel = channel

	s.respondJSON(w, http.StatusOK, s.critic.Critique(draft))
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Claims) == 0 {
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"claims": []model.Claim{}})
		return
	}

	s.logger.Debug("verify request", zap.Int("claims", len(req.Claims)), zap.Int("candidates", len(req.SourceChunkIDs)))
	claims, err := s.verifier.Verify(r.Context(), req.Claims, req.SourceChunkIDs)
	if err != nil {
		s.logger.Error("verify failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"claims": claims})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.respondError(w, http.StatusNotImplemented, "runs are not enabled (no drafting agent configured)")
		return
	}

	var brief model.EventBrief
	if err := json.NewDecoder(r.Body).Decode(&brief); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := brief.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.Info("run request", zap.String("event", brief.Title), zap.Int("channels", len(brief.Channels)))
	res := s.runner.Run(r.Context(), brief)
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"chunks": s.store.Len(),
		"runs":   s.runner != nil,
	})
}

// statusFor maps input problems to 400 and everything else to 500
func statusFor(err error) int {
	if errors.Is(err, model.ErrEmbedding) && errors.Is(err, model.ErrEmptyInput) {
		return http.StatusBadRequest
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
