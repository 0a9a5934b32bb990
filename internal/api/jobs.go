package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/clawinfra/herald/internal/scheduler"
)

// handleSchedulerStatus returns scheduler statistics
func (s *Server) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.scheduler == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"enabled": false,
			"message": "scheduler not enabled",
		})
		return
	}

	writeJSON(w, http.StatusOK, s.scheduler.GetStats())
}

// handleSchedulerJobs handles /api/scheduler/jobs (list or add)
func (s *Server) handleSchedulerJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleSchedulerListJobs(w, r)
	case http.MethodPost:
		s.handleSchedulerAddJob(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSchedulerJobRoutes routes /api/scheduler/jobs/:id requests
func (s *Server) handleSchedulerJobRoutes(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/run") {
		s.handleSchedulerRunJob(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleSchedulerGetJob(w, r)
	case http.MethodPatch:
		s.handleSchedulerUpdateJob(w, r)
	case http.MethodDelete:
		s.handleSchedulerRemoveJob(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSchedulerListJobs(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not available")
		return
	}

	jobs := s.scheduler.ListJobs()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

func (s *Server) handleSchedulerGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/scheduler/jobs/")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID required")
		return
	}

	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not available")
		return
	}

	job, err := s.scheduler.GetJob(jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleSchedulerRunJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/scheduler/jobs/")
	jobID = strings.TrimSuffix(jobID, "/run")

	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not available")
		return
	}

	if err := s.scheduler.RunJobNow(r.Context(), jobID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "job triggered",
		"job_id":  jobID,
	})
}

// handleSchedulerUpdateJob toggles a job's enabled flag
func (s *Server) handleSchedulerUpdateJob(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/scheduler/jobs/")

	var update struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not available")
		return
	}

	job, err := s.scheduler.GetJob(jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	if update.Enabled != nil {
		job.Enabled = *update.Enabled
		if err := s.scheduler.UpdateJob(job); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "job updated",
		"job":     job,
	})
}

func (s *Server) handleSchedulerAddJob(w http.ResponseWriter, r *http.Request) {
	var job scheduler.Job
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not available")
		return
	}

	if err := s.scheduler.AddJob(&job); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "job added",
		"job":     job,
	})
}

func (s *Server) handleSchedulerRemoveJob(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimPrefix(r.URL.Path, "/api/scheduler/jobs/")

	if s.scheduler == nil {
		writeError(w, http.StatusServiceUnavailable, "scheduler not available")
		return
	}

	if err := s.scheduler.RemoveJob(jobID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "job removed",
		"job_id":  jobID,
	})
}
