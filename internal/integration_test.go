package internal

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"webinar-counter-backend/internal/api"
	"webinar-counter-backend/internal/job"
	"webinar-counter-backend/internal/metrics"
	"webinar-counter-backend/internal/report"
	"webinar-counter-backend/internal/timeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := timeline.NewStore(timeline.Config{
		Points: []string{"09:00", "10:00", "13:00"},
	})
	writer, err := report.NewWriter(t.TempDir(), "Report")
	require.NoError(t, err)

	pipeline := job.New(job.Options{
		Store:    store,
		Writer:   writer,
		Metrics:  metrics.New(prometheus.NewRegistry()),
		Location: time.UTC,
		Workers:  2,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	pipeline.Start(ctx)

	handler := api.NewHandler(pipeline, store, writer, 25*1024*1024)
	router := api.NewRouter(handler, rate.Limit(1000), 1000)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func uploadCSV(t *testing.T, server *httptest.Server, csvContent string) (string, int) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "attendees.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvContent))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(server.URL+"/api/jobs", mw.FormDataContentType(), body)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out struct {
		JobID string `json:"job_id"`
	}
	if resp.StatusCode == http.StatusAccepted {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return out.JobID, resp.StatusCode
}

// streamLines reads the SSE stream until the server closes it and returns the
// data payloads.
func streamLines(t *testing.T, server *httptest.Server, jobID string) []string {
	t.Helper()

	resp, err := http.Get(server.URL + "/api/jobs/" + jobID + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			lines = append(lines, strings.TrimPrefix(line, "data:"))
		}
	}
	return lines
}

func TestCountingJobLifecycle(t *testing.T) {
	server := newTestServer(t)

	jobID, status := uploadCSV(t, server,
		"Email,Join Time,Leave Time\n"+
			"a@x.com,01/04/2024 09:00,01/04/2024 12:00\n")
	require.Equal(t, http.StatusAccepted, status)
	require.NotEmpty(t, jobID)

	lines := streamLines(t, server, jobID)
	require.NotEmpty(t, lines)
	assert.Equal(t, "DONE", lines[len(lines)-1])

	resp, err := http.Get(server.URL + "/api/jobs/" + jobID + "/result")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Dates []string `json:"dates"`
		Rows  []struct {
			Time    string `json:"time"`
			Display string `json:"display"`
		} `json:"rows"`
		CSV string `json:"csv"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, []string{"2024-04-01"}, result.Dates)
	require.Len(t, result.Rows, 3)
	assert.Equal(t, "1", result.Rows[0].Display)
	assert.Equal(t, "1", result.Rows[1].Display)
	assert.Equal(t, "0", result.Rows[2].Display)

	// The generated artifact is downloadable.
	dl, err := http.Get(server.URL + "/api/reports/" + result.CSV)
	require.NoError(t, err)
	defer dl.Body.Close()
	assert.Equal(t, http.StatusOK, dl.StatusCode)
}

func TestFailedJobLifecycle(t *testing.T) {
	server := newTestServer(t)

	jobID, status := uploadCSV(t, server,
		"Email,Join Time\n"+
			"a@x.com,01/04/2024 09:00\n")
	require.Equal(t, http.StatusAccepted, status)

	lines := streamLines(t, server, jobID)
	require.NotEmpty(t, lines)
	assert.Equal(t, "FAILED", lines[len(lines)-1])

	resp, err := http.Get(server.URL + "/api/jobs/" + jobID + "/result")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUploadValidation(t *testing.T) {
	server := newTestServer(t)

	// Unknown job ids are 404 on both endpoints.
	resp, err := http.Get(server.URL + "/api/jobs/unknown/result")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(server.URL + "/api/jobs/unknown/events")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Non-CSV uploads are rejected.
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "attendees.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte("binary"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	post, err := http.Post(server.URL+"/api/jobs", mw.FormDataContentType(), body)
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusBadRequest, post.StatusCode)
}
