package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer creates a configured MCP server with all platform tools registered.
func NewMCPServer(cfg Config) *server.MCPServer {
	s := server.NewMCPServer("awareai", "1.0.0")
	client := NewClient(cfg)
	h := NewHandlers(client)

	s.AddTool(ToolAskAssistant, h.HandleAskAssistant)
	s.AddTool(ToolGetRiskScore, h.HandleGetRiskScore)
	s.AddTool(ToolGetRiskHistory, h.HandleGetRiskHistory)
	s.AddTool(ToolAnalyzeBehavior, h.HandleAnalyzeBehavior)
	s.AddTool(ToolGetRecommendations, h.HandleGetRecommendations)
	s.AddTool(ToolListTrainings, h.HandleListTrainings)

	return s
}
