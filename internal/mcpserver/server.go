// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Koyomi tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mizutama/koyomi/internal/models"
	"github.com/mizutama/koyomi/internal/notify"
	"github.com/mizutama/koyomi/internal/registry"
)

// Server wraps the MCP server with Koyomi tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *registry.Service
	notifier *notify.Notifier
}

// New creates a new MCP server with all Koyomi tools registered.
func New(svc *registry.Service, notifier *notify.Notifier) *Server {
	s := &Server{svc: svc, notifier: notifier}

	s.mcp = server.NewMCPServer(
		"Koyomi",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_characters",
		mcp.WithDescription("List registered characters, optionally filtered by source category. "+
			"Returns the projected rows with birthday markers plus the category index."),
		mcp.WithString("filter", mcp.Description("Source category to filter by (empty or 'all' for everyone)")),
	), s.listCharacters)

	s.mcp.AddTool(mcp.NewTool("upsert_character",
		mcp.WithDescription("Register a character, or update one when id is given. "+
			"Birthday is month and day only, e.g. 07-07 or 7-7 (the year is never stored). "+
			"On update an empty image keeps the stored one."),
		mcp.WithString("id", mcp.Description("Character id to update (empty to create)")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Character name")),
		mcp.WithString("birthday", mcp.Required(), mcp.Description("Birthday as MM-DD")),
		mcp.WithString("source", mcp.Description("Work the character is from; doubles as the category")),
		mcp.WithString("message", mcp.Description("Greeting this character sends on the owner's birthday")),
	), s.upsertCharacter)

	s.mcp.AddTool(mcp.NewTool("delete_character",
		mcp.WithDescription("Delete a character by id. Deleting an unknown id is not an error."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Character id")),
	), s.deleteCharacter)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the distinct source categories across all characters."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("set_owner_birthday",
		mcp.WithDescription("Set the owner's own birthday (MM-DD). On that day every "+
			"registered character sends the owner a greeting."),
		mcp.WithString("birthday", mcp.Required(), mcp.Description("Birthday as MM-DD")),
	), s.setOwnerBirthday)

	s.mcp.AddTool(mcp.NewTool("check_birthdays",
		mcp.WithDescription("Run the birthday check for today and report how many "+
			"character birthdays and owner greetings were emitted."),
	), s.checkBirthdays)

	// Resource: bulk import format contract.
	s.mcp.AddResource(
		mcp.NewResource("koyomi://csv-format", "CSV Import Format",
			mcp.WithResourceDescription("Canonical CSV column layout for bulk character import."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCSVFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listCharacters(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state := models.DefaultViewState()
	if f, err := req.RequireString("filter"); err == nil && f != "" {
		state.Filter = f
	}
	result, err := s.svc.View(ctx, state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) upsertCharacter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	birthday, err := req.RequireString("birthday")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := registry.CharacterInput{Name: name, Birthday: birthday}
	if v, err := req.RequireString("source"); err == nil {
		in.Source = v
	}
	if v, err := req.RequireString("message"); err == nil {
		in.UserBirthdayMessage = v
	}

	var ch *models.Character
	if id, idErr := req.RequireString("id"); idErr == nil && id != "" {
		ch, err = s.svc.UpdateCharacter(ctx, id, in)
	} else {
		ch, err = s.svc.AddCharacter(ctx, in)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(ch, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteCharacter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteCharacter(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats, err := s.svc.Categories(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(cats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) setOwnerBirthday(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	birthday, err := req.RequireString("birthday")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	key, err := s.svc.SaveOwnerBirthday(ctx, birthday)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("owner birthday set to %s", key)), nil
}

func (s *Server) checkBirthdays(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.notifier.Check(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readCSVFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "koyomi://csv-format",
			MIMEType: "text/markdown",
			Text:     CSVFormatContract,
		},
	}, nil
}
