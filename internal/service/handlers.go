package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

// RegisterRoutes mounts the insight endpoints on mux. All endpoints are GET
// with query parameters; responses are JSON.
func (s *InsightsService) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/insights/health-score", s.handleHealthScore)
	mux.HandleFunc("/api/insights/anomalies", s.handleAnomalies)
	mux.HandleFunc("/api/insights/forecast", s.handleForecast)
	mux.HandleFunc("/api/insights/recommendations", s.handleRecommendations)
	mux.HandleFunc("/api/insights/benchmark", s.handleBenchmark)
}

func (s *InsightsService) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	period, err := intParam(r, "period_months")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.HealthScore(r.Context(), r.URL.Query().Get("user_id"), period)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *InsightsService) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	period, err := intParam(r, "period_months")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	anomalies, err := s.Anomalies(r.Context(), r.URL.Query().Get("user_id"), period)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"anomalies": anomalies})
}

func (s *InsightsService) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	months, err := intParam(r, "months")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.Forecast(r.Context(), r.URL.Query().Get("user_id"), months)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *InsightsService) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	period, err := intParam(r, "period_months")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	recs, err := s.Recommendations(r.Context(), r.URL.Query().Get("user_id"), period, limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"recommendations": recs})
}

func (s *InsightsService) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	period, err := intParam(r, "period_months")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	q := r.URL.Query()
	result, err := s.Benchmark(r.Context(), q.Get("user_id"), q.Get("segment"), period)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// intParam parses an optional integer query parameter; absent means 0,
// which the service methods resolve to their defaults.
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidArgf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func (s *InsightsService) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidArgument) {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.log.WithError(err).Error("request failed")
	s.writeError(w, http.StatusInternalServerError, errors.New("internal error"))
}

func (s *InsightsService) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *InsightsService) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.WithFields(logrus.Fields{"error": err}).Error("encoding response")
	}
}
