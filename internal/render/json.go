package render

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/dusk-indust/autodocs/internal/docs"
	"github.com/dusk-indust/autodocs/internal/model"
)

// CombinedName is the name of the combined JSON artifact.
const CombinedName = "documentation.json"

// JSON renders documentation as indented JSON. A per-file artifact decodes
// back into an identical docs.Documentation.
type JSON struct{}

var (
	_ Renderer = (*JSON)(nil)
	_ Combiner = (*JSON)(nil)
)

// NewJSON returns a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

func (j *JSON) Format() Format    { return FormatJSON }
func (j *JSON) Extension() string { return ".json" }

// IndexEntry is one row of the JSON index.
type IndexEntry struct {
	Path        string        `json:"path"`
	Artifact    string        `json:"artifact"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Grammar     model.Grammar `json:"grammar"`
	Functions   int           `json:"functions"`
	Types       int           `json:"types"`
	Exports     int           `json:"exports"`
}

// Index is the JSON index artifact.
type Index struct {
	Files []IndexEntry `json:"files"`
}

// Combined is the combined artifact: every file's documentation keyed by
// base file name, plus aggregate counts.
type Combined struct {
	Files   map[string]docs.Documentation `json:"files"`
	Summary Summary                       `json:"summary"`
}

// Summary aggregates the files held in a Combined artifact.
type Summary struct {
	Files     int             `json:"files"`
	Functions int             `json:"functions"`
	Types     int             `json:"types"`
	Exports   int             `json:"exports"`
	Grammars  []model.Grammar `json:"grammars"`
}

// RenderFile encodes doc.
func (j *JSON) RenderFile(doc docs.Documentation) (Artifact, error) {
	data, err := marshal(doc)
	if err != nil {
		return Artifact{}, fmt.Errorf("render %s: %w", doc.Path, err)
	}
	return Artifact{Name: ArtifactName(doc.Path, j.Extension()), Content: data}, nil
}

// RenderIndex encodes one IndexEntry per doc, in the order given.
func (j *JSON) RenderIndex(all []docs.Documentation) (Artifact, error) {
	idx := Index{Files: make([]IndexEntry, 0, len(all))}
	for _, doc := range all {
		stats := doc.Stats()
		idx.Files = append(idx.Files, IndexEntry{
			Path:        doc.Path,
			Artifact:    ArtifactName(doc.Path, j.Extension()),
			Title:       doc.Title,
			Description: doc.Description,
			Grammar:     doc.Grammar,
			Functions:   stats.Functions,
			Types:       stats.Types,
			Exports:     stats.Exports,
		})
	}
	data, err := marshal(idx)
	if err != nil {
		return Artifact{}, fmt.Errorf("render index: %w", err)
	}
	return Artifact{Name: IndexName(j.Extension()), Content: data}, nil
}

// RenderCombined keys every doc by its base file name. When two files share
// a base name the later one in all replaces the earlier.
func (j *JSON) RenderCombined(all []docs.Documentation) (Artifact, error) {
	c := Combined{
		Files:   make(map[string]docs.Documentation, len(all)),
		Summary: Summary{Grammars: []model.Grammar{}},
	}
	for _, doc := range all {
		c.Files[filepath.Base(doc.Path)] = doc
	}

	seen := make(map[model.Grammar]bool)
	for _, doc := range c.Files {
		stats := doc.Stats()
		c.Summary.Functions += stats.Functions
		c.Summary.Types += stats.Types
		c.Summary.Exports += stats.Exports
		if !seen[doc.Grammar] {
			seen[doc.Grammar] = true
			c.Summary.Grammars = append(c.Summary.Grammars, doc.Grammar)
		}
	}
	c.Summary.Files = len(c.Files)
	sort.Slice(c.Summary.Grammars, func(a, b int) bool { return c.Summary.Grammars[a] < c.Summary.Grammars[b] })

	data, err := marshal(c)
	if err != nil {
		return Artifact{}, fmt.Errorf("render combined: %w", err)
	}
	return Artifact{Name: CombinedName, Content: data}, nil
}

func marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
