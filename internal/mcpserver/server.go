// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the blog admin operations for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/blog"
)

// Server wraps the MCP server with blog tools.
type Server struct {
	mcp *server.MCPServer
	svc *blog.Service
}

// New creates a new MCP server with all blog tools registered.
func New(svc *blog.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List all blog posts, drafts included, with id, title, category, date, and status."),
		mcp.WithString("category", mcp.Description("Optional category key to filter by")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a post's full Markdown document, front-matter included."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Post id (slug), e.g. hello-world")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("save_post",
		mcp.WithDescription("Create or update a blog post from a Markdown document. "+
			"Content MUST follow the canonical post format (front-matter with title, "+
			"category, and date). Read the contract first via the get_post_contract "+
			"tool or the ansuz://post-format resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown document following the post format contract")),
		mcp.WithString("id", mcp.Description("Optional id override; derived from the title when empty")),
	), s.savePost)

	s.mcp.AddTool(mcp.NewTool("delete_post",
		mcp.WithDescription("Delete a blog post and its published copy."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Post id to delete")),
	), s.deletePost)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List all categories with their keys, names, descriptions, and colors."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("add_category",
		mcp.WithDescription("Register a new category. The key is derived from the name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Display name, e.g. Trip Reports")),
	), s.addCategory)

	s.mcp.AddTool(mcp.NewTool("rebuild_index",
		mcp.WithDescription("Regenerate and persist blog-index.json from the current post set."),
	), s.rebuildIndex)

	s.mcp.AddTool(mcp.NewTool("get_post_contract",
		mcp.WithDescription("Returns the canonical post format contract. "+
			"Call this before creating or updating posts to ensure correct structure."),
	), s.getPostContract)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Upload an image asset from a URL or data URI and get back a Markdown image tag."),
		mcp.WithString("url", mcp.Required(), mcp.Description("HTTP(S) URL or data: URI of the asset")),
		mcp.WithString("dir", mcp.Description("Target directory, e.g. images-hello-world (default images)")),
		mcp.WithString("filename", mcp.Description("Optional filename; derived from the URL when empty")),
	), s.uploadAsset)

	// Resource: post format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://post-format", "Post Format Contract",
			mcp.WithResourceDescription("Canonical Markdown post format that all posts must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
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

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := ""
	if v, err := req.RequireString("category"); err == nil {
		filter = v
	}

	type item struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Category string `json:"category"`
		Date     string `json:"date"`
		Status   string `json:"status"`
	}
	var items []item
	for _, p := range s.svc.Posts(ctx) {
		if filter != "" && p.Category != filter {
			continue
		}
		items = append(items, item{
			ID:       p.ID,
			Title:    p.Title,
			Category: p.Category,
			Date:     p.Date,
			Status:   string(p.Status),
		})
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetPost(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(p.Encode()), nil
}

func (s *Server) savePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id := ""
	if v, err := req.RequireString("id"); err == nil {
		id = v
	}

	p, warnings, err := s.svc.SavePost(ctx, content, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg := fmt.Sprintf("saved: %s (%s, %s)", p.ID, p.Category, p.Status)
	if len(warnings) > 0 {
		var reasons []string
		for _, w := range warnings {
			reasons = append(reasons, w.Reason)
		}
		msg += "\nwarnings: " + strings.Join(reasons, "; ")
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) deletePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeletePost(ctx, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) listCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.Categories(ctx), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) addCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	key, entry, err := s.svc.AddCategory(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s (%s, %s)", key, entry.Name, entry.Color)), nil
}

func (s *Server) rebuildIndex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ix, warnings, err := s.svc.RebuildIndex(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	msg := fmt.Sprintf("index rebuilt: %d posts, %d categories", len(ix.Posts), len(ix.Categories))
	for _, w := range warnings {
		msg += fmt.Sprintf("\nwarning: %s: %s", w.PostID, w.Reason)
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) getPostContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://post-format",
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
