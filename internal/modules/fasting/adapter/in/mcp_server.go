package in

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	fastingdto "fasttrack/internal/modules/fasting/dto"
	fastingin "fasttrack/internal/modules/fasting/port/in"
	insightsdto "fasttrack/internal/modules/insights/dto"
	insightsin "fasttrack/internal/modules/insights/port/in"
)

type StartFastArgs struct {
	Protocol string `json:"protocol,omitempty"`
}

type ListFastsArgs struct {
	Range  string `json:"range,omitempty"`
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type AddManualFastArgs struct {
	Protocol    string   `json:"protocol,omitempty"`
	Start       string   `json:"start"`
	Completed   bool     `json:"completed,omitempty"`
	ActualHours *float64 `json:"actual_hours,omitempty"`
	Duration    string   `json:"duration,omitempty"`
}

type DeleteFastArgs struct {
	ID string `json:"id"`
}

type FastView struct {
	ID            string   `json:"id"`
	Protocol      string   `json:"protocol"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time,omitempty"`
	TargetHours   float64  `json:"target_hours"`
	ActualHours   *float64 `json:"actual_hours,omitempty"`
	Completed     bool     `json:"completed"`
	ManuallyAdded bool     `json:"manually_added"`
}

type StatusView struct {
	State            string    `json:"state"`
	Protocol         string    `json:"protocol"`
	Active           *FastView `json:"active,omitempty"`
	ElapsedMinutes   int       `json:"elapsed_minutes"`
	RemainingMinutes int       `json:"remaining_minutes"`
	Percent          float64   `json:"percent"`
	SignedIn         bool      `json:"signed_in"`
}

type MCPServer struct {
	fasting  fastingin.Usecase
	insights insightsin.Usecase
}

func NewMCPServer(fasting fastingin.Usecase, insights insightsin.Usecase) *MCPServer {
	return &MCPServer{fasting: fasting, insights: insights}
}

// Server registers every tool on a fresh MCP server.
func (m *MCPServer) Server() *server.MCPServer {
	s := server.NewMCPServer("FastTrack", "1.0.0")

	s.AddTool(mcp.NewTool("fasting_status",
		mcp.WithDescription("Report whether a fast is running, with elapsed and remaining time"),
	), m.Status)

	s.AddTool(mcp.NewTool("start_fast",
		mcp.WithDescription("Start a fast now"),
		mcp.WithString("protocol",
			mcp.Description("Fasting protocol: 16:8, 18:6 or 20:4 (default: current selection)")),
	), m.StartFast)

	s.AddTool(mcp.NewTool("stop_fast",
		mcp.WithDescription("Stop the running fast early and record it"),
	), m.StopFast)

	s.AddTool(mcp.NewTool("list_fasts",
		mcp.WithDescription("List recorded fasts, newest first"),
		mcp.WithString("range",
			mcp.Description("week, month or all (default: all)")),
		mcp.WithString("status",
			mcp.Description("completed, incomplete or all (default: all)")),
		mcp.WithNumber("limit",
			mcp.Description("Max fasts to return (default: 20)")),
	), m.ListFasts)

	s.AddTool(mcp.NewTool("add_manual_fast",
		mcp.WithDescription("Record a past fast"),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("When the fast started, e.g. '2025-01-08 20:00' or 'yesterday 8pm'")),
		mcp.WithString("protocol",
			mcp.Description("Fasting protocol (default: 16:8)")),
		mcp.WithBoolean("completed",
			mcp.Description("Whether the target was reached")),
		mcp.WithNumber("actual_hours",
			mcp.Description("Hours fasted")),
		mcp.WithString("duration",
			mcp.Description("Hours fasted as HH:MM, used when actual_hours is absent")),
	), m.AddManualFast)

	s.AddTool(mcp.NewTool("delete_fast",
		mcp.WithDescription("Delete a recorded fast by id"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Fast id from list_fasts")),
	), m.DeleteFast)

	s.AddTool(mcp.NewTool("fasting_stats",
		mcp.WithDescription("Summary statistics: totals, completion rate, average duration and streak"),
	), m.Stats)

	return s
}

func (m *MCPServer) Serve() error {
	return server.ServeStdio(m.Server())
}

func (m *MCPServer) Status(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := m.fasting.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
	}
	view := StatusView{
		State:            st.State,
		Protocol:         st.Protocol,
		ElapsedMinutes:   int(st.Progress.Elapsed / time.Minute),
		RemainingMinutes: int(st.Progress.Remaining / time.Minute),
		Percent:          st.Progress.Percent,
		SignedIn:         st.Identified,
	}
	if st.Active != nil {
		v := fastView(*st.Active)
		view.Active = &v
	}
	return jsonResult(view)
}

func (m *MCPServer) StartFast(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args StartFastArgs
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.Protocol != "" {
		if err := m.fasting.SelectProtocol(ctx, args.Protocol); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("select protocol failed: %v", err)), nil
		}
	}
	out, err := m.fasting.Start(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("start failed: %v", err)), nil
	}
	return jsonResult(fastView(out))
}

func (m *MCPServer) StopFast(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := m.fasting.Stop(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stop failed: %v", err)), nil
	}
	return jsonResult(fastView(out.Session))
}

func (m *MCPServer) ListFasts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ListFastsArgs
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	records, err := m.insights.History(ctx, insightsdto.HistoryInput{Range: args.Range, Status: args.Status})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return jsonResult(map[string]any{"fasts": records})
}

func (m *MCPServer) AddManualFast(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args AddManualFastArgs
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := m.fasting.AddManual(ctx, fastingdto.ManualInput{
		Protocol:    args.Protocol,
		StartText:   args.Start,
		Completed:   args.Completed,
		ActualHours: args.ActualHours,
		Duration:    args.Duration,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("add failed: %v", err)), nil
	}
	return jsonResult(fastView(out))
}

func (m *MCPServer) DeleteFast(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args DeleteFastArgs
	if err := bindArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := m.fasting.Delete(ctx, args.ID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted %s", args.ID)), nil
}

func (m *MCPServer) Stats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := m.insights.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	return jsonResult(st)
}

func bindArgs(request mcp.CallToolRequest, target any) error {
	raw, err := json.Marshal(request.Params.Arguments)
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	if string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func fastView(s fastingdto.SessionOutput) FastView {
	v := FastView{
		ID:            s.ID,
		Protocol:      s.Protocol,
		StartTime:     s.StartTime.Format(time.RFC3339),
		TargetHours:   s.TargetHours,
		ActualHours:   s.ActualHours,
		Completed:     s.Completed,
		ManuallyAdded: s.ManuallyAdded,
	}
	if s.EndTime != nil {
		v.EndTime = s.EndTime.Format(time.RFC3339)
	}
	return v
}
