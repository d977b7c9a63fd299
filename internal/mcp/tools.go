package mcp

import "github.com/mark3labs/mcp-go/mcp"

// classifyFilenameTool defines the classify_filename MCP tool.
var classifyFilenameTool = mcp.NewTool("classify_filename",
	mcp.WithDescription("Classify a planning document filename into year, police station, category, stage and preview type."),
	mcp.WithString("filename",
		mcp.Required(),
		mcp.Description("File name, e.g. \"Adgaon Deployment Plan 2024.pdf\""),
	),
)

// searchManifestTool defines the search_manifest MCP tool.
var searchManifestTool = mcp.NewTool("search_manifest",
	mcp.WithDescription("Search the indexed document manifest. All filters are optional and combine with AND."),
	mcp.WithString("query",
		mcp.Description("Case-insensitive text matched against filename and relative path"),
	),
	mcp.WithString("police_station",
		mcp.Description("Police station name, e.g. Panchavati"),
	),
	mcp.WithString("category",
		mcp.Description("Document category, e.g. Deployment Plan"),
	),
	mcp.WithString("stage",
		mcp.Description("Planning stage tag"),
		mcp.Enum("STAGE_1", "STAGE_2", "STAGE_3", "STAGE_4", "STAGE_5", "STAGE_6", "STAGE_7"),
	),
	mcp.WithNumber("year",
		mcp.Description("Event year (2015-2025)"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 20)"),
	),
)

// getMetricsTool defines the get_metrics MCP tool.
var getMetricsTool = mcp.NewTool("get_metrics",
	mcp.WithDescription("Get document counts by year, police station, category and stage."),
)

// exportKMLTool defines the export_kml MCP tool.
var exportKMLTool = mcp.NewTool("export_kml",
	mcp.WithDescription("Export event units, ghats, routes and zones as a KML document for Google Earth."),
	mcp.WithString("group_by",
		mcp.Description("Folder layout: one folder per layer (city) or per police station (ps)"),
		mcp.Enum("city", "ps"),
	),
	mcp.WithString("include",
		mcp.Description("Comma-separated layers to include: units, routes, ghats, zones (default all)"),
	),
)

// askCopilotTool defines the ask_copilot MCP tool.
var askCopilotTool = mcp.NewTool("ask_copilot",
	mcp.WithDescription("Ask the bandobast copilot a question about risk, routes or zones. Returns the answer and any map action."),
	mcp.WithString("message",
		mcp.Required(),
		mcp.Description("Question for the copilot"),
	),
	mcp.WithString("session_id",
		mcp.Description("Continue an existing conversation"),
	),
)
