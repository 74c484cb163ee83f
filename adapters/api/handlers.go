package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"vbtlab/app"
	"vbtlab/domain/core"
	"vbtlab/domain/protocol"
	"vbtlab/domain/study"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Error string `json:"error"`
}

// generateRequest carries per-request overrides of the configured defaults.
// Seed is a pointer so that an explicit zero seed survives decoding.
type generateRequest struct {
	Participants    int       `json:"participants,omitempty"`
	Seed            *int64    `json:"seed,omitempty"`
	StudyStartDate  string    `json:"study_start_date,omitempty"`
	LoadPercentages []float64 `json:"load_percentages,omitempty"`
	RepsPerLoad     int       `json:"reps_per_load,omitempty"`
	RunID           string    `json:"run_id,omitempty"`
	Persist         bool      `json:"persist,omitempty"`
}

type generateResponse struct {
	Manifest  study.Manifest       `json:"manifest"`
	Quality   *study.QualityReport `json:"quality_report"`
	RuntimeMs int64                `json:"runtime_ms"`
	Persisted bool                 `json:"persisted"`
}

type splitRequest struct {
	Ratios *protocol.SplitRatios `json:"ratios,omitempty"`
}

type splitResponse struct {
	Assignment protocol.SplitAssignment `json:"assignment"`
	TrainN     int                      `json:"train_n"`
	ValidateN  int                      `json:"validation_n"`
	TestN      int                      `json:"test_n"`
}

// handleHealth reports process liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGenerateDataset runs a generation request and optionally persists the
// result. The response carries the manifest and quality report; the tables
// are retrieved through the dataset sub-resources.
func (s *Server) handleGenerateDataset(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	cfg := s.defaults
	if body.Participants > 0 {
		cfg.ParticipantCount = body.Participants
	}
	if body.Seed != nil {
		cfg.Seed = *body.Seed
	}
	if body.StudyStartDate != "" {
		start, err := time.Parse(dateLayout, body.StudyStartDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "study_start_date must be formatted as YYYY-MM-DD"})
			return
		}
		cfg.StudyStartDate = start
	}
	if len(body.LoadPercentages) > 0 {
		cfg.LoadPercentages = body.LoadPercentages
	}
	if body.RepsPerLoad > 0 {
		cfg.RepsPerLoad = body.RepsPerLoad
	}

	result, err := s.gen.GenerateConcurrent(r.Context(), app.GenerationRequest{
		Config: cfg,
		RunID:  core.RunID(body.RunID),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	persisted := false
	if body.Persist {
		if s.repo == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "dataset storage is not configured"})
			return
		}
		if err := s.repo.SaveDataset(r.Context(), result.Dataset, result.Quality); err != nil {
			s.writeError(w, err)
			return
		}
		persisted = true
	}

	s.logger.Info("Generated dataset %s (%d participants, %d measurements) in %dms",
		result.Dataset.Manifest.DatasetID, result.Dataset.Manifest.ParticipantCount,
		result.Dataset.Manifest.MeasurementCount, result.RuntimeMs)

	writeJSON(w, http.StatusCreated, generateResponse{
		Manifest:  result.Dataset.Manifest,
		Quality:   result.Quality,
		RuntimeMs: result.RuntimeMs,
		Persisted: persisted,
	})
}

// handleListManifests lists stored manifests with pagination
func (s *Server) handleListManifests(w http.ResponseWriter, r *http.Request) {
	if !s.requireRepo(w) {
		return
	}

	limit, offset := parseListParams(r)
	manifests, err := s.repo.ListManifests(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if manifests == nil {
		manifests = []study.Manifest{}
	}
	writeJSON(w, http.StatusOK, manifests)
}

// handleGetManifest returns one stored manifest
func (s *Server) handleGetManifest(w http.ResponseWriter, r *http.Request) {
	if !s.requireRepo(w) {
		return
	}

	id := core.DatasetID(chi.URLParam(r, "id"))
	manifest, err := s.repo.GetManifest(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

// handleGetQualityReport returns the stored quality report
func (s *Server) handleGetQualityReport(w http.ResponseWriter, r *http.Request) {
	if !s.requireRepo(w) {
		return
	}

	id := core.DatasetID(chi.URLParam(r, "id"))
	report, err := s.repo.GetQualityReport(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleListParticipants returns the participants table
func (s *Server) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	if !s.requireRepo(w) {
		return
	}

	id := core.DatasetID(chi.URLParam(r, "id"))
	participants, err := s.repo.ListParticipants(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participants)
}

// handleListMeasurements returns the measurements table
func (s *Server) handleListMeasurements(w http.ResponseWriter, r *http.Request) {
	if !s.requireRepo(w) {
		return
	}

	id := core.DatasetID(chi.URLParam(r, "id"))
	measurements, err := s.repo.ListMeasurements(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, measurements)
}

// handlePlanSplit plans a reproducible participant-level split for a stored
// dataset. The assignment is derived from the dataset's own seed, so repeated
// calls return the same partition.
func (s *Server) handlePlanSplit(w http.ResponseWriter, r *http.Request) {
	if !s.requireRepo(w) {
		return
	}

	var body splitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	ratios := protocol.DefaultSplitRatios()
	if body.Ratios != nil {
		ratios = *body.Ratios
	}

	id := core.DatasetID(chi.URLParam(r, "id"))
	manifest, err := s.repo.GetManifest(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	participants, err := s.repo.ListParticipants(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ds := &study.Dataset{ID: id, Participants: participants, Manifest: *manifest}
	assignment, err := s.gen.PlanSplit(ds, ratios)
	if err != nil {
		s.writeError(w, err)
		return
	}

	trainN, validationN, testN := assignment.Sizes()
	writeJSON(w, http.StatusOK, splitResponse{
		Assignment: assignment,
		TrainN:     trainN,
		ValidateN:  validationN,
		TestN:      testN,
	})
}

// handleDeleteDataset removes a stored dataset
func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	if !s.requireRepo(w) {
		return
	}

	id := core.DatasetID(chi.URLParam(r, "id"))
	if err := s.repo.DeleteDataset(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCollectionProtocol returns the data collection protocol document
func (s *Server) handleCollectionProtocol(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, protocol.DefaultCollectionProtocol())
}

// handleMLTrainingProtocol returns the ML training protocol document
func (s *Server) handleMLTrainingProtocol(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, protocol.DefaultMLTrainingProtocol())
}

// requireRepo guards endpoints that need configured storage
func (s *Server) requireRepo(w http.ResponseWriter) bool {
	if s.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "dataset storage is not configured"})
		return false
	}
	return true
}

// writeError maps domain errors onto HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	case core.IsInvalidParameterError(err), core.IsProtocolError(err):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseListParams(r *http.Request) (limit, offset int) {
	limit = 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
