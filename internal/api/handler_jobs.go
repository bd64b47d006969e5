package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"webinar-counter-backend/internal/job"
	"webinar-counter-backend/internal/tabular"
)

// pollInterval bounds how long the event stream waits for a new log line
// before looping. The subscriber times out locally; the producer is never
// affected.
const pollInterval = 500 * time.Millisecond

// SubmitJob handles POST /api/jobs: one CSV upload becomes one counting job.
func (h *Handler) SubmitJob(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file part"})
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	table, err := tabular.ReadCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := h.pipeline.Submit(table)
	c.JSON(http.StatusAccepted, gin.H{"job_id": id})
}

// StreamEvents handles GET /api/jobs/:id/events as Server-Sent Events. The
// stream ends once the job's log channel closes, which happens right after
// the DONE or FAILED sentinel.
func (h *Handler) StreamEvents(c *gin.Context) {
	ch, err := h.pipeline.Subscribe(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such job"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case line, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("message", line)
			return true
		case <-clientGone:
			return false
		case <-time.After(pollInterval):
			// Nothing yet; keep the stream open.
			return true
		}
	})
}

// GetResult handles GET /api/jobs/:id/result.
func (h *Handler) GetResult(c *gin.Context) {
	res, err := h.pipeline.Result(c.Param("id"))
	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no result"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// DownloadReport handles GET /api/reports/:name for generated CSV artifacts.
func (h *Handler) DownloadReport(c *gin.Context) {
	name := c.Param("name")
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report name"})
		return
	}

	path := h.reports.Path(name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	c.FileAttachment(path, name)
}
