package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"webinar-counter-backend/internal/timeline"
)

func setupSettingsRouter(store *timeline.Store) *gin.Engine {
	r := gin.Default()
	handler := NewHandler(nil, store, nil, 0)
	r.GET("/api/settings", handler.GetSettings)
	r.PUT("/api/settings", handler.PutSettings)
	return r
}

func TestGetSettings(t *testing.T) {
	store := timeline.NewStore(timeline.Config{
		Points:      []string{"09:00"},
		Annotations: map[string]string{"09:00": "Start"},
	})
	router := setupSettingsRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/settings", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"timeline":["09:00"],"annotations":{"09:00":"Start"}}`, w.Body.String())
}

func TestPutSettingsSanitizes(t *testing.T) {
	store := timeline.NewStore(timeline.Config{})
	router := setupSettingsRouter(store)

	payload := `{"timeline":["10:00","25:61","09:00"],"annotations":{"10:00":"  Break  ","bad":"x"}}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/settings", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"timeline":["09:00","10:00"],"annotations":{"10:00":"Break"}}`, w.Body.String())
}

func TestPutSettingsRejectsMalformedBody(t *testing.T) {
	router := setupSettingsRouter(timeline.NewStore(timeline.Config{}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/settings", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
