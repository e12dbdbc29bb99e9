// Package prose defines the contract with the external service that writes
// natural-language documentation for an extracted Module.
package prose

import (
	"context"
	"fmt"

	"github.com/dusk-indust/autodocs/internal/model"
)

// Service generates prose for one normalized Module. A nil response with a
// nil error is treated as an empty response.
type Service interface {
	Generate(ctx context.Context, m model.Module) (*Response, error)
}

// ServiceFunc adapts a function to the Service interface.
type ServiceFunc func(ctx context.Context, m model.Module) (*Response, error)

// Generate calls f.
func (f ServiceFunc) Generate(ctx context.Context, m model.Module) (*Response, error) {
	return f(ctx, m)
}

// Response is the prose returned for one Module. Every field may be empty;
// per-symbol maps are keyed by symbol name.
type Response struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Functions   map[string]SymbolProse `json:"functions,omitempty"`
	Types       map[string]TypeProse   `json:"types,omitempty"`
	Exports     map[string]string      `json:"exports,omitempty"`
	Usage       string                 `json:"usage"`
	Notes       string                 `json:"notes"`
}

// SymbolProse describes one function or method.
type SymbolProse struct {
	Description string            `json:"description"`
	Params      map[string]string `json:"params,omitempty"`
	Returns     string            `json:"returns"`
	Example     string            `json:"example,omitempty"`
}

// TypeProse describes one type and its methods.
type TypeProse struct {
	Description string                 `json:"description"`
	Example     string                 `json:"example,omitempty"`
	Methods     map[string]SymbolProse `json:"methods,omitempty"`
}

// ServiceError reports a failed prose request for one file. It never
// aborts a batch: the file is rendered with placeholder prose instead.
type ServiceError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("prose: %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying transport or RPC error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Offline is the Service used when no endpoint is configured. It returns
// an empty Response so every section renders its placeholder.
type Offline struct{}

// Generate returns an empty Response.
func (Offline) Generate(ctx context.Context, m model.Module) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ServiceError{Path: m.Path, Err: err}
	}
	return &Response{}, nil
}
