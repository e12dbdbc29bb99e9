package mcptools

import (
	"github.com/dusk-indust/autodocs/internal/docs"
	"github.com/dusk-indust/autodocs/internal/model"
)

// --- MCP Tool Input Types ---
// The MCP Go SDK derives each tool's JSON schema from these struct tags.

// ExtractModuleInput is the input for the extract_module MCP tool.
type ExtractModuleInput struct {
	Path    string `json:"path" jsonschema:"path of the source file; its extension selects the grammar"`
	Content string `json:"content,omitempty" jsonschema:"source text; when omitted the file at path is read"`
	Strict  bool   `json:"strict,omitempty" jsonschema:"report ambiguous Python/Go input as a grammar error"`
}

// ExtractModuleOutput is the result of the extract_module MCP tool.
type ExtractModuleOutput struct {
	Module model.Module      `json:"module"`
	Stats  model.ModuleStats `json:"stats"`
}

// RenderDocumentationInput is the input for the render_documentation MCP tool.
type RenderDocumentationInput struct {
	Path    string `json:"path" jsonschema:"path of the source file"`
	Content string `json:"content,omitempty" jsonschema:"source text; when omitted the file at path is read"`
	Format  string `json:"format,omitempty" jsonschema:"output format: markdown, html or json (default: markdown)"`
}

// RenderDocumentationOutput is the result of the render_documentation MCP tool.
type RenderDocumentationOutput struct {
	Artifact         string             `json:"artifact"`
	Format           string             `json:"format"`
	Content          string             `json:"content"`
	ProseUnavailable bool               `json:"proseUnavailable"`
	Documentation    docs.Documentation `json:"documentation"`
}

// ListGrammarsInput is the input for the list_grammars MCP tool.
type ListGrammarsInput struct{}

// GrammarInfo describes one supported grammar.
type GrammarInfo struct {
	Name        string   `json:"name"`
	Strategy    string   `json:"strategy"`
	Extensions  []string `json:"extensions"`
	UnknownType string   `json:"unknownType"`
}

// ListGrammarsOutput is the result of the list_grammars MCP tool.
type ListGrammarsOutput struct {
	Grammars []GrammarInfo `json:"grammars"`
}
