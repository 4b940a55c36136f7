package mcpadapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/scadenze/internal/core/domain"
	"github.com/kirillkom/scadenze/internal/core/ports"
	"github.com/kirillkom/scadenze/internal/core/usecase"
)

const (
	serverName    = "scadenze"
	serverVersion = "1.0.0"
)

// Server exposes the vault and its derived views as MCP tools.
type Server struct {
	vault    ports.DocumentVault
	insights ports.InsightsService
}

func NewServer(vault ports.DocumentVault, insights ports.InsightsService) *Server {
	return &Server{vault: vault, insights: insights}
}

func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List stored documents, newest first."),
		mcp.WithString("category", mcp.Description("Only documents classified under this category id, e.g. identity or health.")),
	), s.listDocuments)

	srv.AddTool(mcp.NewTool("upcoming_deadlines",
		mcp.WithDescription("Deadlines, appointments and expiries inside the forward window, soonest first."),
		mcp.WithString("as_of", mcp.Description("Reference day as YYYY-MM-DD; defaults to today.")),
		mcp.WithNumber("window_days", mcp.Description("Forward horizon in days; defaults to the configured window.")),
	), s.upcomingDeadlines)

	srv.AddTool(mcp.NewTool("pending_actions",
		mcp.WithDescription("Action items and open timeline steps across all documents."),
	), s.faqTool("pending-actions"))

	srv.AddTool(mcp.NewTool("urgent_items",
		mcp.WithDescription("Timeline steps marked urgent."),
	), s.faqTool("urgent-items"))

	srv.AddTool(mcp.NewTool("document_summaries",
		mcp.WithDescription("One summary line per analyzed document."),
	), s.faqTool("doc-summaries"))

	srv.AddTool(mcp.NewTool("categories",
		mcp.WithDescription("Documents grouped by administrative category."),
	), s.categories)

	srv.AddTool(mcp.NewTool("faq",
		mcp.WithDescription("Answer a canned question by id, or list the questions when no id is given."),
		mcp.WithString("id", mcp.Description("Question id, e.g. permesso-status.")),
		mcp.WithString("topic", mcp.Description("Filter the question list by topic."),
			mcp.Enum(string(domain.TopicDocuments), string(domain.TopicDeadlines), string(domain.TopicProcess), string(domain.TopicGeneral))),
	), s.faq)

	return srv
}

// Serve speaks MCP over stdin/stdout until ctx is cancelled or stdin closes.
func (s *Server) Serve(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	stdio := server.NewStdioServer(s.MCPServer())
	stdio.SetErrorLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))

	if err := stdio.Listen(ctx, stdin, stdout); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve mcp stdio: %w", err)
	}
	return nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.vault.List(ctx)
	if err != nil {
		return toolError("list_documents", err), nil
	}

	category := strings.TrimSpace(req.GetString("category", ""))
	lines := make([]string, 0, len(docs))
	for _, doc := range docs {
		cat := usecase.Classify(doc)
		if category != "" && string(cat) != category {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s [%s] added %s (id %s)",
			doc.Name, cat.Label(), doc.CreatedAt.Format(time.DateOnly), doc.ID))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("No documents stored yet."), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) upcomingDeadlines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	asOf, err := s.asOf(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	windowDays := req.GetInt("window_days", 0)

	deadlines, err := s.insights.Deadlines(ctx, asOf, windowDays)
	if err != nil {
		return toolError("upcoming_deadlines", err), nil
	}
	if len(deadlines) == 0 {
		return mcp.NewToolResultText("No upcoming deadlines."), nil
	}

	lines := make([]string, 0, len(deadlines))
	for _, dl := range deadlines {
		lines = append(lines, fmt.Sprintf("- %s (%s, in %d days, %s): %s from %s",
			dl.ISODate, dl.Kind, dl.DaysUntil, dl.Urgency, dl.Label, dl.DocumentName))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) categories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groups, err := s.insights.Categories(ctx)
	if err != nil {
		return toolError("categories", err), nil
	}
	if len(groups) == 0 {
		return mcp.NewToolResultText("No documents stored yet."), nil
	}

	lines := make([]string, 0, len(groups))
	for _, group := range groups {
		names := make([]string, 0, len(group.Documents))
		for _, doc := range group.Documents {
			names = append(names, doc.Name)
		}
		lines = append(lines, fmt.Sprintf("%s (%d): %s", group.Label, len(group.Documents), strings.Join(names, ", ")))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) faq(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		items := s.insights.FAQ(req.GetString("topic", ""))
		lines := make([]string, 0, len(items))
		for _, item := range items {
			lines = append(lines, fmt.Sprintf("- %s: %s", item.ID, item.Question))
		}
		return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
	}
	return s.faqTool(id)(ctx, req)
}

func (s *Server) faqTool(id string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		asOf, err := s.asOf(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		answer, err := s.insights.Answer(ctx, id, asOf)
		if err != nil {
			return toolError(id, err), nil
		}
		return mcp.NewToolResultText(answer.Answer), nil
	}
}

func (s *Server) asOf(req mcp.CallToolRequest) (time.Time, error) {
	now := s.insights.Now()
	raw := strings.TrimSpace(req.GetString("as_of", ""))
	if raw == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("as_of must be YYYY-MM-DD")
	}
	return t, nil
}

// toolError reports failures in-band so the client model can read them.
func toolError(tool string, err error) *mcp.CallToolResult {
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		slog.Error("mcp_tool_failed", "tool", tool, "error", err)
	}
	return mcp.NewToolResultError(err.Error())
}
