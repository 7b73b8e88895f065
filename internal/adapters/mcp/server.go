package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/weekly-issue/internal/core/ports"
)

const (
	serverName    = "weekly-issue"
	serverVersion = "1.0.0"
)

type Server struct {
	runner ports.PipelineRunner
	reader ports.IssueReader
	mcp    *server.MCPServer
}

func NewServer(runner ports.PipelineRunner, reader ports.IssueReader) *Server {
	s := &Server{
		runner: runner,
		reader: reader,
		mcp:    server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(true)),
	}

	s.mcp.AddTool(mcp.NewTool("run_issue_pipeline",
		mcp.WithDescription("Collect, filter, deduplicate, classify and summarize news for Korean game companies. Returns the run stats and results."),
		mcp.WithArray("companies",
			mcp.Description("Company names to collect. Omit to use every tracked company."),
			mcp.WithStringItems(),
		),
	), s.runPipeline)

	if reader != nil {
		s.mcp.AddTool(mcp.NewTool("recent_issues",
			mcp.WithDescription("List stored issues created within the last N days."),
			mcp.WithNumber("days", mcp.Description("Look-back window in days (1-90, default 7).")),
		), s.recentIssues)
	}
	return s
}

func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) runPipeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	companies, err := stringSlice(req.GetArguments()["companies"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	run := s.runner.Run(ctx, companies)
	payload, err := json.Marshal(run)
	if err != nil {
		return nil, fmt.Errorf("marshal pipeline run: %w", err)
	}
	if !run.Succeeded() {
		return mcp.NewToolResultError(string(payload)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) recentIssues(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := 0
	if raw, ok := req.GetArguments()["days"].(float64); ok {
		days = int(raw)
	}
	issues, err := s.reader.Recent(ctx, days)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	payload, err := json.Marshal(issues)
	if err != nil {
		return nil, fmt.Errorf("marshal issues: %w", err)
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func stringSlice(raw any) ([]string, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("companies must be an array of strings")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("companies must be an array of strings")
		}
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}
