package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-checker/internal/shared/telemetry"
)

func TestErrorWritesStandardBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	telemetry.SetOutput(&logs)
	defer telemetry.SetOutput(os.Stdout)

	router := gin.New()
	router.POST("/api/v1/analyses", func(c *gin.Context) {
		c.Set("requestId", "req-1")
		c.Set("action", "ats_score")
		Error(c, http.StatusBadRequest, "missing_input", "Please upload a PDF file.", nil)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/analyses", nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "missing_input" || body.Error.Message != "Please upload a PDF file." {
		t.Fatalf("unexpected body %+v", body)
	}
	if strings.Contains(resp.Body.String(), "details") {
		t.Fatalf("expected empty details to be omitted")
	}
	if !strings.Contains(logs.String(), `"request_id":"req-1"`) || !strings.Contains(logs.String(), `"action":"ats_score"`) {
		t.Fatalf("expected error log with request id and action, got %s", logs.String())
	}
}
