package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *Client
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *Client) *Handlers {
	return &Handlers{client: client}
}

// HandleAskAssistant forwards a question to the chat responder.
func (h *Handlers) HandleAskAssistant(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message := req.GetString("message", "")
	if strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("message is required"), nil
	}

	raw, err := h.client.Chat(ctx, message)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to ask assistant: %v", err)), nil
	}

	var resp struct {
		Reply    string `json:"reply"`
		Category string `json:"category"`
		Matched  bool   `json:"matched"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse reply: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(resp.Reply)
	if resp.Matched {
		fmt.Fprintf(&sb, "\n\n(topic: %s)", resp.Category)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleGetRiskScore returns a user's current score, optionally after
// a fresh calculation.
func (h *Handlers) HandleGetRiskScore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	var raw json.RawMessage
	var err error
	if req.GetBool("recalculate", false) {
		raw, err = h.client.CalculateRisk(ctx, userID)
	} else {
		raw, err = h.client.GetRiskScore(ctx, userID)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get risk score: %v", err)), nil
	}

	text, err := formatRiskScore(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse risk score: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// HandleGetRiskHistory returns a user's score history.
func (h *Handlers) HandleGetRiskHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	limit := req.GetInt("limit", 10)

	raw, err := h.client.GetRiskHistory(ctx, userID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get history: %v", err)), nil
	}

	text, err := formatHistory(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse history: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// HandleAnalyzeBehavior returns a user's behavioral analysis.
func (h *Handlers) HandleAnalyzeBehavior(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	raw, err := h.client.AnalyzeBehavior(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to analyze behavior: %v", err)), nil
	}

	text, err := formatAnalysis(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse analysis: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// HandleGetRecommendations returns a user's recommendation list.
func (h *Handlers) HandleGetRecommendations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	raw, err := h.client.GetRecommendations(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get recommendations: %v", err)), nil
	}

	text, err := formatRecommendations(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse recommendations: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// HandleListTrainings lists the training catalog.
func (h *Handlers) HandleListTrainings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")

	raw, err := h.client.ListTrainings(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list trainings: %v", err)), nil
	}

	text, err := formatTrainings(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse trainings: %v", err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// --- Formatting helpers ---

type scoreRecord struct {
	Score   int    `json:"score"`
	Level   string `json:"level"`
	Factors struct {
		Clicks             int      `json:"clicks"`
		Submissions        int      `json:"submissions"`
		Reports            int      `json:"reports"`
		CompletionPct      float64  `json:"completionPct"`
		AvgMinutesToReport *float64 `json:"avgMinutesToReport"`
	} `json:"factors"`
	CalculatedAt string `json:"calculatedAt"`
}

func formatRiskScore(raw json.RawMessage) (string, error) {
	var resp struct {
		RiskScore scoreRecord `json:"riskScore"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	r := resp.RiskScore

	var sb strings.Builder
	fmt.Fprintf(&sb, "Risk score: %d/100 (%s)\n\n", r.Score, r.Level)
	sb.WriteString("Factors (last 30 days):\n")
	fmt.Fprintf(&sb, "  Phishing links clicked:   %d\n", r.Factors.Clicks)
	fmt.Fprintf(&sb, "  Credentials submitted:    %d\n", r.Factors.Submissions)
	fmt.Fprintf(&sb, "  Simulations reported:     %d\n", r.Factors.Reports)
	fmt.Fprintf(&sb, "  Training completion:      %.0f%%\n", r.Factors.CompletionPct)
	if r.Factors.AvgMinutesToReport != nil {
		fmt.Fprintf(&sb, "  Avg minutes to report:    %.1f\n", *r.Factors.AvgMinutesToReport)
	}
	if r.CalculatedAt != "" {
		fmt.Fprintf(&sb, "\nCalculated at: %s", r.CalculatedAt)
	}
	return sb.String(), nil
}

func formatHistory(raw json.RawMessage) (string, error) {
	var resp struct {
		History []scoreRecord `json:"history"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	if len(resp.History) == 0 {
		return "No score history for this user yet.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Score history (%d records, newest first):\n\n", len(resp.History))
	for i, r := range resp.History {
		fmt.Fprintf(&sb, "%d. %d/100 (%s) at %s\n", i+1, r.Score, r.Level, r.CalculatedAt)
	}
	return sb.String(), nil
}

func formatAnalysis(raw json.RawMessage) (string, error) {
	var resp struct {
		Analysis struct {
			Score  *int   `json:"score"`
			Level  string `json:"level"`
			Counts struct {
				Clicked       int     `json:"clicked"`
				Opened        int     `json:"opened"`
				Submitted     int     `json:"submitted"`
				Reported      int     `json:"reported"`
				CompletionPct float64 `json:"completionPct"`
			} `json:"counts"`
			Flags []struct {
				Message  string `json:"message"`
				Severity string `json:"severity"`
			} `json:"flags"`
			PositiveFlags []struct {
				Message string `json:"message"`
			} `json:"positiveFlags"`
			Narrative string `json:"narrative"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	a := resp.Analysis

	var sb strings.Builder
	if a.Score != nil {
		fmt.Fprintf(&sb, "Current score: %d/100 (%s)\n\n", *a.Score, a.Level)
	} else {
		sb.WriteString("Current score: not calculated yet\n\n")
	}
	fmt.Fprintf(&sb, "Recent activity: %d opened, %d clicked, %d submitted, %d reported\n",
		a.Counts.Opened, a.Counts.Clicked, a.Counts.Submitted, a.Counts.Reported)
	fmt.Fprintf(&sb, "Training completion: %.0f%%\n", a.Counts.CompletionPct)

	if len(a.Flags) > 0 {
		sb.WriteString("\nConcerns:\n")
		for _, f := range a.Flags {
			fmt.Fprintf(&sb, "  [%s] %s\n", f.Severity, f.Message)
		}
	}
	if len(a.PositiveFlags) > 0 {
		sb.WriteString("\nStrengths:\n")
		for _, f := range a.PositiveFlags {
			fmt.Fprintf(&sb, "  + %s\n", f.Message)
		}
	}
	fmt.Fprintf(&sb, "\n%s", a.Narrative)
	return sb.String(), nil
}

func formatRecommendations(raw json.RawMessage) (string, error) {
	var resp struct {
		Recommendations []struct {
			Category string `json:"category"`
			Reason   string `json:"reason"`
			Priority string `json:"priority"`
		} `json:"recommendations"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	if len(resp.Recommendations) == 0 {
		return "No recommendations for this user.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Recommendations (%d, highest priority first):\n\n", len(resp.Recommendations))
	for i, r := range resp.Recommendations {
		fmt.Fprintf(&sb, "%d. [%s] %s\n   %s\n", i+1, r.Priority, r.Category, r.Reason)
	}
	return sb.String(), nil
}

func formatTrainings(raw json.RawMessage) (string, error) {
	var resp struct {
		Trainings []struct {
			ID              string `json:"id"`
			Title           string `json:"title"`
			Category        string `json:"category"`
			DurationMinutes int    `json:"durationMinutes"`
			PassingScore    int    `json:"passingScore"`
			State           string `json:"state"`
		} `json:"trainings"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	if len(resp.Trainings) == 0 {
		return "No training modules found.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Training modules (%d):\n\n", len(resp.Trainings))
	for i, t := range resp.Trainings {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, t.Title, t.ID)
		fmt.Fprintf(&sb, "   Category: %s | %d min | pass at %d%%\n", t.Category, t.DurationMinutes, t.PassingScore)
		if t.State != "" {
			fmt.Fprintf(&sb, "   State: %s\n", t.State)
		}
		if i < len(resp.Trainings)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}
