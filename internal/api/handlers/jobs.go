package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/flipwatch/internal/scheduler"
	"github.com/wonny/flipwatch/pkg/logger"
)

// JobController is the part of the scheduler exposed over HTTP
type JobController interface {
	GetJobStats() map[string]scheduler.JobStats
	GetJobHistory(jobName string) ([]scheduler.JobResult, error)
	RunJob(jobName string) error
}

// JobsHandler exposes scheduler state
type JobsHandler struct {
	jobs   JobController
	logger *logger.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(jobs JobController, log *logger.Logger) *JobsHandler {
	return &JobsHandler{
		jobs:   jobs,
		logger: log,
	}
}

// GetJobs returns statistics of every scheduled job
// GET /api/jobs
func (h *JobsHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.jobs.GetJobStats())
}

// GetJobHistory returns the recent results of one job
// GET /api/jobs/{name}
func (h *JobsHandler) GetJobHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	history, err := h.jobs.GetJobHistory(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// RunJob triggers a job immediately
// POST /api/jobs/{name}/run
func (h *JobsHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.jobs.RunJob(name); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.logger.WithField("job", name).Info("Job triggered via API")
	respondJSON(w, http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "triggered",
	})
}
