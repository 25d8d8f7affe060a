package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Test helpers ---

func newTestSetup(handler http.Handler) (*Handlers, func()) {
	ts := httptest.NewServer(handler)
	client := NewClient(Config{APIURL: ts.URL})
	return NewHandlers(client), ts.Close
}

func makeRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	if args == nil {
		args = map[string]any{}
	}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected at least one content block")
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

// ============================================================
// Client tests
// ============================================================

func TestClient_HTTPError_WithAPIMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":   "user_not_found",
			"message": "No user with that ID",
		})
	}))
	defer ts.Close()

	client := NewClient(Config{APIURL: ts.URL})
	_, err := client.GetRiskScore(context.Background(), "usr_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "No user with that ID")
}

func TestClient_HTTPError_NonJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream timeout"))
	}))
	defer ts.Close()

	client := NewClient(Config{APIURL: ts.URL})
	_, err := client.GetRiskScore(context.Background(), "usr_1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream timeout")
}

// ============================================================
// Handler tests
// ============================================================

func TestHandleAskAssistant(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"reply":    "Phishing emails try to trick you.",
			"category": "phishing",
			"matched":  true,
		})
	}))
	defer cleanup()

	result, err := h.HandleAskAssistant(context.Background(), makeRequest(map[string]any{
		"message": "what is phishing?",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Phishing emails")
	assert.Contains(t, text, "topic: phishing")
}

func TestHandleAskAssistant_BlankMessage(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("API should not be called for a blank message")
	}))
	defer cleanup()

	result, err := h.HandleAskAssistant(context.Background(), makeRequest(map[string]any{
		"message": "   ",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGetRiskScore(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/risk/usr_1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"riskScore": map[string]any{
				"score": 62, "level": "high",
				"factors": map[string]any{
					"clicks": 2, "submissions": 0, "reports": 1, "completionPct": 50.0,
				},
			},
		})
	}))
	defer cleanup()

	result, err := h.HandleGetRiskScore(context.Background(), makeRequest(map[string]any{
		"user_id": "usr_1",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "62/100 (high)")
	assert.Contains(t, text, "clicked:   2")
}

func TestHandleGetRiskScore_Recalculate(t *testing.T) {
	var calledPath string
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calledPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{
			"riskScore": map[string]any{"score": 30, "level": "medium"},
		})
	}))
	defer cleanup()

	_, err := h.HandleGetRiskScore(context.Background(), makeRequest(map[string]any{
		"user_id":     "usr_1",
		"recalculate": true,
	}))
	require.NoError(t, err)
	assert.Equal(t, "/v1/risk/usr_1/calculate", calledPath)
}

func TestHandleGetRiskScore_MissingUserID(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer cleanup()

	result, err := h.HandleGetRiskScore(context.Background(), makeRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGetRiskHistory(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/risk/usr_1/history", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"history": []map[string]any{
				{"score": 62, "level": "high", "calculatedAt": "2026-03-02T10:00:00Z"},
				{"score": 45, "level": "medium", "calculatedAt": "2026-03-01T10:00:00Z"},
			},
		})
	}))
	defer cleanup()

	result, err := h.HandleGetRiskHistory(context.Background(), makeRequest(map[string]any{
		"user_id": "usr_1",
		"limit":   5,
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "2 records")
	assert.Contains(t, text, "62/100 (high)")
	assert.Contains(t, text, "45/100 (medium)")
}

func TestHandleAnalyzeBehavior(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/advisor/usr_1/analysis", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"analysis": map[string]any{
				"score": 62, "level": "high",
				"counts": map[string]any{
					"clicked": 2, "opened": 4, "submitted": 0, "reported": 0,
					"completionPct": 50.0,
				},
				"flags": []map[string]any{
					{"message": "Clicked 2 simulated phishing link(s) recently", "severity": "medium"},
				},
				"positiveFlags": []map[string]any{},
				"narrative":     "Security awareness is developing.",
			},
		})
	}))
	defer cleanup()

	result, err := h.HandleAnalyzeBehavior(context.Background(), makeRequest(map[string]any{
		"user_id": "usr_1",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "62/100 (high)")
	assert.Contains(t, text, "[medium] Clicked 2")
	assert.Contains(t, text, "developing")
}

func TestHandleAnalyzeBehavior_NoScoreYet(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"analysis": map[string]any{
				"score": nil, "level": "unknown",
				"counts":    map[string]any{},
				"narrative": "n",
			},
		})
	}))
	defer cleanup()

	result, err := h.HandleAnalyzeBehavior(context.Background(), makeRequest(map[string]any{
		"user_id": "usr_1",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "not calculated yet")
}

func TestHandleGetRecommendations(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/advisor/usr_1/recommendations", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"recommendations": []map[string]any{
				{"category": "phishing", "reason": "Links were clicked.", "priority": "high"},
				{"category": "mfa", "reason": "MFA stops takeovers.", "priority": "medium"},
			},
		})
	}))
	defer cleanup()

	result, err := h.HandleGetRecommendations(context.Background(), makeRequest(map[string]any{
		"user_id": "usr_1",
	}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "[high] phishing")
	assert.Contains(t, text, "[medium] mfa")
}

func TestHandleListTrainings(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/trainings", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"trainings": []map[string]any{
				{"id": "trn_1", "title": "Phishing Fundamentals", "category": "phishing",
					"durationMinutes": 15, "passingScore": 70},
			},
		})
	}))
	defer cleanup()

	result, err := h.HandleListTrainings(context.Background(), makeRequest(nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Phishing Fundamentals")
	assert.Contains(t, text, "pass at 70%")
}

func TestHandleListTrainings_ScopedToUser(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/trainings/user/usr_1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"trainings": []map[string]any{
				{"id": "trn_1", "title": "Phishing Fundamentals", "state": "attempted-passed"},
			},
		})
	}))
	defer cleanup()

	result, err := h.HandleListTrainings(context.Background(), makeRequest(map[string]any{
		"user_id": "usr_1",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "attempted-passed")
}

func TestHandlerErrorsSurfaceAPIMessage(t *testing.T) {
	h, cleanup := newTestSetup(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": "user_not_found", "message": "No user with that ID",
		})
	}))
	defer cleanup()

	result, err := h.HandleGetRecommendations(context.Background(), makeRequest(map[string]any{
		"user_id": "usr_missing",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No user with that ID")
}
