// Package mcptools exposes extraction and rendering as MCP tools.
package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMCPServer creates an MCP server with the autodocs tools registered.
func NewMCPServer(svc *DocsService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "autodocs",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "extract_module",
		Description: "Extract the structure of one source file (JavaScript, TypeScript, Python or Go): functions, types, imports and exports, with line spans and normalized types.",
	}, svc.ExtractModule)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_documentation",
		Description: "Generate documentation for one source file and return it as Markdown, HTML or JSON. Missing prose is filled with placeholders.",
	}, svc.RenderDocumentation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_grammars",
		Description: "List the supported grammars with their file extensions, extraction strategy and unknown-type sentinel.",
	}, svc.ListGrammars)

	return server
}

// RunMCPServer serves the tools over streamable HTTP on addr until ctx is
// done.
func RunMCPServer(ctx context.Context, svc *DocsService, addr string) error {
	server := NewMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
