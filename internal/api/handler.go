package api

import (
	"webinar-counter-backend/internal/job"
	"webinar-counter-backend/internal/report"
	"webinar-counter-backend/internal/timeline"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	pipeline  *job.Pipeline
	settings  *timeline.Store
	reports   *report.Writer
	maxUpload int64
}

// NewHandler creates a new API handler.
func NewHandler(pipeline *job.Pipeline, settings *timeline.Store, reports *report.Writer, maxUpload int64) *Handler {
	return &Handler{
		pipeline:  pipeline,
		settings:  settings,
		reports:   reports,
		maxUpload: maxUpload,
	}
}
