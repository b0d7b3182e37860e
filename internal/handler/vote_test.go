package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicreports/internal/duplicate"
	"civicreports/internal/engine"
	"civicreports/internal/models"
	"civicreports/internal/repository"
)

func newTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	detector, err := duplicate.NewDetector(duplicate.DefaultConfig(), zap.NewNop())
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	eng := engine.New(store, store, store, store, detector, engine.DefaultConfig(), zap.NewNop())

	router := gin.New()
	voteHandler := NewVoteHandler(eng, zap.NewNop())
	router.POST("/api/reports/:id/votes", voteHandler.SubmitVote)

	return router, store
}

func TestSubmitVoteEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	store.PutReport(&models.Report{
		ID:               "r1",
		Category:         models.CategoryHeat,
		Description:      "calor intenso en la plaza",
		Severity:         models.SeverityMedium,
		ReportedAt:       time.Now(),
		ValidationStatus: models.StatusPending,
	})

	body := `{"validation_type": "confirm", "comment": "seen it"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports/r1/votes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Identifier", "session-abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", w.Code, w.Body.String())
	}

	var outcome engine.VoteOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !outcome.IsNewResponse || outcome.ConfirmedCount != 1 {
		t.Errorf("outcome = %+v, want new response with 1 confirmation", outcome)
	}
}

func TestSubmitVoteEndpointUnknownReport(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"validation_type": "confirm"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports/missing/votes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Identifier", "session-abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSubmitVoteEndpointBadPayload(t *testing.T) {
	router, store := newTestRouter(t)
	store.PutReport(&models.Report{
		ID:               "r1",
		Category:         models.CategoryHeat,
		Severity:         models.SeverityMedium,
		ReportedAt:       time.Now(),
		ValidationStatus: models.StatusPending,
	})

	// Severity vote without a new_severity value.
	body := `{"validation_type": "update_severity"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports/r1/votes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Identifier", "session-abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
