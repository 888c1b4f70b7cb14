package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"webmgen/encoder"
	"webmgen/metrics"
	"webmgen/probe"
)

const maxBodyBytes = 1 << 20

type probeRequest struct {
	Path string `json:"path"`
}

type scriptRequest struct {
	Path        string            `json:"path"`
	Constraints encoder.Overrides `json:"constraints"`
	Sample      bool              `json:"sample"`
}

type scriptResponse struct {
	Stats  *probe.MediaStats `json:"stats"`
	Plan   encoder.Plan      `json:"plan"`
	Script encoder.Script    `json:"script"`
	Text   string            `json:"text"`
}

type errorResponse struct {
	Error string          `json:"error"`
	Code  probe.ErrorCode `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	var req probeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Path) == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "path is required"})
		return
	}

	result, err := s.inspector.Inspect(r.Context(), req.Path)
	if err != nil {
		var pe *probe.Error
		if errors.As(err, &pe) {
			s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: pe.Error(), Code: pe.Code})
			return
		}
		s.logger.Warn("probe aborted", zap.String("path", req.Path), zap.Error(err))
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleScript(w http.ResponseWriter, r *http.Request) {
	var req scriptRequest
	if !s.decode(w, r, &req) {
		return
	}

	var stats *probe.MediaStats
	if path := strings.TrimSpace(req.Path); path != "" {
		result, err := s.inspector.Inspect(r.Context(), path)
		if err != nil {
			s.logger.Debug("probe failed, continuing without stats", zap.String("path", path), zap.Error(err))
		} else {
			stats = result.VideoStats()
		}
	}

	constraints := s.defaults
	constraints.Source = req.Path
	req.Constraints.Apply(&constraints, stats)

	plan := encoder.DerivePlan(stats, constraints)
	if req.Sample {
		plan = encoder.SamplePlan(plan)
	}
	script := encoder.Render(plan)
	metrics.RecordScript(metrics.SurfaceHTTP, req.Sample)

	s.writeJSON(w, http.StatusOK, scriptResponse{
		Stats:  stats,
		Plan:   plan,
		Script: script,
		Text:   script.Text(),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}
