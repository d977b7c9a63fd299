package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aibandobast/bandobast/internal/classifier"
	"github.com/aibandobast/bandobast/internal/copilot"
	"github.com/aibandobast/bandobast/internal/geo"
	"github.com/aibandobast/bandobast/internal/kml"
	"github.com/aibandobast/bandobast/internal/manifest"
)

// handleClassifyFilename runs the filename classifier.
func (s *Server) handleClassifyFilename(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := request.RequireString("filename")
	if err != nil || strings.TrimSpace(filename) == "" {
		return mcp.NewToolResultError("missing required parameter: filename"), nil
	}

	c := classifier.Classify(filename)
	out := struct {
		classifier.Classification
		Tags []string `json:"tags"`
	}{c, classifier.Tags(c)}

	return jsonResult(out)
}

// handleSearchManifest filters the in-memory manifest index.
func (s *Server) handleSearchManifest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Index == nil {
		return mcp.NewToolResultError("manifest is not loaded. Run `bandobast manifest build` first."), nil
	}

	limit := request.GetInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}
	q := manifest.Query{
		Text:          request.GetString("query", ""),
		PoliceStation: request.GetString("police_station", ""),
		Category:      request.GetString("category", ""),
		Stage:         request.GetString("stage", ""),
		Year:          request.GetInt("year", 0),
	}
	matches := s.deps.Index.Filter(q)
	if len(matches) == 0 {
		return mcp.NewToolResultText("No documents matched. The manifest may be empty; run `bandobast manifest build` to index the inbox."), nil
	}

	return mcp.NewToolResultText(formatRecords(matches, limit)), nil
}

// handleGetMetrics returns the manifest metrics as JSON.
func (s *Server) handleGetMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Index == nil {
		return mcp.NewToolResultError("manifest is not loaded. Run `bandobast manifest build` first."), nil
	}
	return jsonResult(s.deps.Index.Metrics())
}

// handleExportKML renders the geo collections as KML.
func (s *Server) handleExportKML(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Geo == nil {
		return mcp.NewToolResultError("geo store is not configured"), nil
	}

	grouping, err := kml.ParseGrouping(request.GetString("group_by", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	inc := geo.ParseInclude(request.GetString("include", ""))

	collections, err := s.deps.Geo.LoadCollections(ctx, inc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading geo data failed: %v", err)), nil
	}
	doc, err := kml.Render(collections, kml.Options{
		Grouping:     grouping,
		Include:      inc,
		DocumentName: s.deps.DocumentName,
		Logger:       s.deps.Logger,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rendering KML failed: %v", err)), nil
	}

	return mcp.NewToolResultText(string(doc.Data)), nil
}

// handleAskCopilot forwards a question to the rule-based copilot.
func (s *Server) handleAskCopilot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Copilot == nil {
		return mcp.NewToolResultError("copilot is not configured"), nil
	}
	message, err := request.RequireString("message")
	if err != nil || strings.TrimSpace(message) == "" {
		return mcp.NewToolResultError("missing required parameter: message"), nil
	}

	reply, err := s.deps.Copilot.Ask(ctx, request.GetString("session_id", ""), "mcp", message)
	if errors.Is(err, copilot.ErrSessionNotFound) {
		return mcp.NewToolResultError("unknown session_id"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("copilot failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(reply.Text)
	if reply.MapAction != nil {
		action, err := json.Marshal(reply.MapAction)
		if err != nil {
			return nil, err
		}
		sb.WriteString("\n\nMap action: ")
		sb.Write(action)
	}
	if reply.SessionID != "" {
		sb.WriteString("\nSession: ")
		sb.WriteString(reply.SessionID)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// formatRecords renders manifest records for agent consumption.
func formatRecords(records []manifest.Record, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d document(s)", len(records))
	if len(records) > limit {
		fmt.Fprintf(&sb, ", showing %d", limit)
		records = records[:limit]
	}
	sb.WriteString(":\n")

	for i, r := range records {
		fmt.Fprintf(&sb, "\n--- Result %d ---\n", i+1)
		fmt.Fprintf(&sb, "File: %s\n", r.RelativePath)
		fmt.Fprintf(&sb, "ID: %s\n", r.FileID)
		fmt.Fprintf(&sb, "Year: %d\n", r.Year)
		fmt.Fprintf(&sb, "Police station: %s\n", r.PoliceStation)
		fmt.Fprintf(&sb, "Category: %s\n", r.Category)
		fmt.Fprintf(&sb, "Stage: %s\n", r.StageTag)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(r.Tags, ", "))
		}
	}
	return sb.String()
}
