package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/awareai/awareai/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testConfig returns a minimal config for testing (in-memory storage)
func testConfig() *config.Config {
	return &config.Config{
		Port:          "0",
		Env:           "development",
		LogLevel:      "error",
		RateLimitRPM:  10000,
		SeedTrainings: true,
	}
}

// newTestServer creates a server backed by in-memory stores
func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(testConfig())
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return s
}

// ---------------------------------------------------------------------------
// Health endpoint tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if resp["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", resp["status"])
	}
}

func TestLivenessEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/live", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
}

func TestReadinessEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/ready", nil)
	s.router.ServeHTTP(w, req)

	// Server hasn't called Run() so ready is false
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 (not ready), got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// Route registration tests
// ---------------------------------------------------------------------------

func TestCoreRoutesRegistered(t *testing.T) {
	s := newTestServer(t)

	routes := s.router.Routes()
	expected := []string{
		"GET:/health",
		"GET:/health/live",
		"GET:/health/ready",
		"GET:/metrics",
		"GET:/ws",
		"POST:/v1/users",
		"GET:/v1/users/:userId",
		"POST:/v1/events/track",
		"GET:/v1/events/stats/:campaignId",
		"GET:/v1/trainings",
		"POST:/v1/trainings/:trainingId/submit",
		"GET:/v1/badges",
		"POST:/v1/risk/:userId/calculate",
		"GET:/v1/risk/:userId",
		"GET:/v1/risk/:userId/history",
		"GET:/v1/advisor/:userId/analysis",
		"GET:/v1/advisor/:userId/recommendations",
		"POST:/v1/chat",
	}

	routeSet := make(map[string]bool)
	for _, route := range routes {
		routeSet[route.Method+":"+route.Path] = true
	}

	for _, e := range expected {
		if !routeSet[e] {
			t.Errorf("Core route %s not registered", e)
		}
	}
}

// ---------------------------------------------------------------------------
// End-to-end flow: register user, track event, calculate risk
// ---------------------------------------------------------------------------

func TestUserRegistrationFlow(t *testing.T) {
	s := newTestServer(t)

	body := `{"name":"Ada Lovelace","email":"ada@example.com","department":"Engineering"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.User.ID == "" {
		t.Fatal("Expected user id in registration response")
	}
	userID := resp.User.ID

	// Track a simulated click for the new user
	evt := `{"userId":"` + userID + `","campaignId":"cmp_000000000000000000000001","type":"clicked"}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/v1/events/track", strings.NewReader(evt))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for event, got %d: %s", w.Code, w.Body.String())
	}

	// Calculate risk: one click and no assigned trainings
	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/v1/risk/"+userID+"/calculate", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201 for risk calc, got %d: %s", w.Code, w.Body.String())
	}

	var riskResp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &riskResp); err != nil {
		t.Fatalf("Failed to parse risk response: %v", err)
	}
	if riskResp["riskScore"] == nil {
		t.Error("Expected riskScore in risk response")
	}

	// Latest score is now readable
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/v1/risk/"+userID, nil)
	s.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for current risk, got %d", w.Code)
	}
}

func TestSeededTrainingCatalog(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/trainings", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Trainings []map[string]interface{} `json:"trainings"`
		Count     int                      `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Count == 0 {
		t.Error("Expected seeded training modules, got empty catalog")
	}
}

func TestDefaultBadgePresent(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/badges", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "First Steps") {
		t.Error("Expected default badge in listing")
	}
}

func TestChatEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/chat", strings.NewReader(`{"message":"what is phishing?"}`))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["category"] != "phishing" {
		t.Errorf("Expected phishing category, got %v", resp["category"])
	}
}

// ---------------------------------------------------------------------------
// Malformed user ID rejection
// ---------------------------------------------------------------------------

func TestMalformedUserIDRejected(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/risk/not-an-id", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed id, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// 404 test
// ---------------------------------------------------------------------------

func TestNotFoundRoute(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/nonexistent", nil)
	s.router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}
