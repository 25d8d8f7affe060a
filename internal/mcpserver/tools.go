package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the security awareness MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolAskAssistant = mcp.NewTool("ask_security_assistant",
	mcp.WithDescription(
		"Ask the security awareness assistant a question. "+
			"Covers phishing, passwords, MFA, ransomware, social engineering, GDPR, "+
			"VPN use, malware, risk scores, incident reporting, training, and zero trust."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("The question or message to the assistant")),
)

var ToolGetRiskScore = mcp.NewTool("get_risk_score",
	mcp.WithDescription(
		"Get a user's current security risk score (0-100, lower is safer) "+
			"with its level and the factor breakdown behind it. "+
			"Optionally trigger a fresh calculation first."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user's ID (e.g. 'usr_...')")),
	mcp.WithBoolean("recalculate",
		mcp.Description("Recompute the score from current data before returning it")),
)

var ToolGetRiskHistory = mcp.NewTool("get_risk_history",
	mcp.WithDescription(
		"Get a user's risk score history, newest first. "+
			"Useful to see whether behavior is improving or deteriorating over time."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user's ID")),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of records to return (default 10, max 50)")),
)

var ToolAnalyzeBehavior = mcp.NewTool("analyze_behavior",
	mcp.WithDescription(
		"Analyze a user's recent security behavior: phishing-simulation interaction "+
			"counts, negative and positive behavioral flags, and a narrative summary."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user's ID")),
)

var ToolGetRecommendations = mcp.NewTool("get_recommendations",
	mcp.WithDescription(
		"Get prioritized security-training recommendations for a user, "+
			"derived from their phishing-simulation history, training state and risk score."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user's ID")),
)

var ToolListTrainings = mcp.NewTool("list_trainings",
	mcp.WithDescription(
		"List available security training modules. "+
			"Pass a user ID to see that user's assigned modules with their completion state."),
	mcp.WithString("user_id",
		mcp.Description("Optional user ID to scope the list to one user's assignments")),
)
