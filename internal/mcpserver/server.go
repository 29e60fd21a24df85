// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes roster tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ontrack/internal/roster"
	"github.com/starford/ontrack/internal/track"
)

// TrackRulesURI identifies the track rules resource.
const TrackRulesURI = "ontrack://track-rules"

// Server wraps the MCP server with roster tools.
type Server struct {
	mcp *server.MCPServer
	svc *roster.Service
}

// New creates a new MCP server with all roster tools registered.
func New(svc *roster.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"ontrack",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_student",
		mcp.WithDescription("Get one student with on-track status, off-track reasons, and notes."),
		mcp.WithString("username", mcp.Required(), mcp.Description("Student username")),
	), s.getStudent)

	s.mcp.AddTool(mcp.NewTool("search_students",
		mcp.WithDescription("Find students by username, name, or cohort code."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchStudents)

	s.mcp.AddTool(mcp.NewTool("aggregate_students",
		mcp.WithDescription("Summarize the roster under a season/year/status filter: totals, "+
			"percentages of the whole roster, and off-track reason counts. "+
			"Read the rules via get_track_rules or the "+TrackRulesURI+" resource."),
		mcp.WithString("season", mcp.Description("Winter, Spring, Summer, Fall, or All (default)")),
		mcp.WithString("year", mcp.Description("Four-digit year or All (default)")),
		mcp.WithString("status", mcp.Description("On Track, Off Track, or All (default)")),
	), s.aggregateStudents)

	s.mcp.AddTool(mcp.NewTool("cohort_trend",
		mcp.WithDescription("Per-cohort on/off-track counts with floored percentages."),
		mcp.WithString("sort", mcp.Description("startDate (default), onTrack, offTrack, percentOnTrack, percentOffTrack")),
		mcp.WithString("order", mcp.Description("asc (default) or desc; applies to startDate only")),
	), s.cohortTrend)

	s.mcp.AddTool(mcp.NewTool("list_cohorts",
		mcp.WithDescription("List distinct cohort codes with season, year, and student count."),
	), s.listCohorts)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Attach a note to a student. Notes are kept in memory for the life of the server."),
		mcp.WithString("username", mcp.Required(), mcp.Description("Student username")),
		mcp.WithString("comment", mcp.Required(), mcp.Description("Note text")),
		mcp.WithString("commenter", mcp.Description("Author name (default User)")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("get_track_rules",
		mcp.WithDescription("Returns the on-track rules and aggregation semantics."),
	), s.getTrackRules)

	s.mcp.AddResource(
		mcp.NewResource(TrackRulesURI, "Track Rules",
			mcp.WithResourceDescription("On-track criteria, off-track reasons, and aggregation semantics."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readTrackRulesResource,
	)

	return s
}

// Serve runs the stdio transport over in and out until ctx is cancelled or
// in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getStudent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := req.RequireString("username")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.svc.Student(ctx, username)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

func (s *Server) searchStudents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText("no students found"), nil
	}
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf("%s\t%s\t%s", r.Username, r.FullName, r.CohortCode)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

// aggregateResult drops the per-student records from the summary.
type aggregateResult struct {
	Filter          track.Filter        `json:"filter"`
	TotalStudents   int                 `json:"totalStudents"`
	TotalOnTrack    int                 `json:"totalOnTrack"`
	TotalOffTrack   int                 `json:"totalOffTrack"`
	PercentOnTrack  float64             `json:"percentOnTrack"`
	PercentOffTrack float64             `json:"percentOffTrack"`
	Reasons         []track.ReasonCount `json:"reasons"`
	Usernames       []string            `json:"usernames"`
}

func (s *Server) aggregateStudents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f := track.Filter{
		Season: req.GetString("season", track.All),
		Year:   req.GetString("year", track.All),
		Status: req.GetString("status", track.All),
	}
	sum, err := s.svc.Students(ctx, f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	names := make([]string, len(sum.FilteredStudents))
	for i, st := range sum.FilteredStudents {
		names[i] = st.Username
	}
	return jsonResult(aggregateResult{
		Filter:          sum.Filter,
		TotalStudents:   sum.TotalStudents,
		TotalOnTrack:    sum.TotalOnTrack,
		TotalOffTrack:   sum.TotalOffTrack,
		PercentOnTrack:  sum.PercentOnTrack,
		PercentOffTrack: sum.PercentOffTrack,
		Reasons:         sum.Reasons,
		Usernames:       names,
	})
}

type trendRow struct {
	track.CohortAggregate
	PercentOnTrack  int `json:"percentOnTrack"`
	PercentOffTrack int `json:"percentOffTrack"`
}

func (s *Server) cohortTrend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := track.ParseSortKey(req.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	asc, err := track.ParseOrder(req.GetString("order", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rows, err := s.svc.Trend(ctx, key, asc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]trendRow, len(rows))
	for i, r := range rows {
		out[i] = trendRow{CohortAggregate: r, PercentOnTrack: r.PercentOnTrack(), PercentOffTrack: r.PercentOffTrack()}
	}
	return jsonResult(out)
}

func (s *Server) listCohorts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cohorts, err := s.svc.Cohorts(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(cohorts)
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	username, err := req.RequireString("username")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	comment, err := req.RequireString("comment")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.AddNote(ctx, username, req.GetString("commenter", ""), comment)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added note %s to %s", note.ID, username)), nil
}

func (s *Server) getTrackRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TrackRules(s.svc.Classifier().MinCodewarsScore)), nil
}

func (s *Server) readTrackRulesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TrackRulesURI,
			MIMEType: "text/markdown",
			Text:     TrackRules(s.svc.Classifier().MinCodewarsScore),
		},
	}, nil
}
