package render

import (
	"fmt"
	"strings"
)

// TemplateError reports an HTML template that lacks required slots.
type TemplateError struct {
	Missing []string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template: missing required slots %s", strings.Join(e.Missing, ", "))
}

// OutputFormatError reports a requested format no renderer implements.
type OutputFormatError struct {
	Format string
}

func (e *OutputFormatError) Error() string {
	return fmt.Sprintf("unknown output format %q (supported: markdown, html, json)", e.Format)
}
