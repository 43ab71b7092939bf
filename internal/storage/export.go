package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rigforge/rigforge/internal/graph"
)

// Artifact is the persisted graph artifact envelope. Each artifact file
// carries a version tag, the build date, and one kind of payload.
type Artifact struct {
	Version   string          `json:"version"`
	UpdatedAt string          `json:"updated_at"`
	Data      json.RawMessage `json:"data"`
}

// artifactEdge is one edge row in a compatibility artifact.
type artifactEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Rule   string `json:"rule,omitempty"`
}

// artifactScoredEdge is one edge row in a synergy/suitability artifact.
type artifactScoredEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Score  float64 `json:"score"`
}

// Artifact file names written under the export directory.
const (
	ArtifactComponents    = "components.json"
	ArtifactCompatibility = "compatibility_edges.json"
	ArtifactSynergy       = "synergy_edges.json"
	ArtifactAttributes    = "attribute_edges.json"
)

// WriteArtifacts exports the graph as the four JSON artifact files:
// component nodes, compatibility edges, synergy/suitability edges, and
// attribute-mapping edges.
func WriteArtifacts(dir string, g *graph.Graph, version string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	components := make([]*graph.Node, 0, g.CountByKind(graph.NodeComponent))
	for _, idx := range g.NodesByKind(graph.NodeComponent) {
		components = append(components, g.Node(idx))
	}

	var compat []artifactEdge
	var scored []artifactScoredEdge
	var attrs []artifactEdge

	for _, e := range g.Edges() {
		src := g.Node(e.Source).ID
		dst := g.Node(e.Target).ID

		switch e.Kind {
		case graph.EdgeCompatibleWith:
			compat = append(compat, artifactEdge{
				Source: src, Target: dst, Type: string(e.Kind), Rule: e.Rule,
			})
		case graph.EdgeSynergyWith, graph.EdgeSuitableFor:
			scored = append(scored, artifactScoredEdge{
				Source: src, Target: dst, Type: string(e.Kind), Score: e.Weight,
			})
		case graph.EdgeBelongsTo, graph.EdgeHasAttribute:
			attrs = append(attrs, artifactEdge{
				Source: src, Target: dst, Type: string(e.Kind),
			})
		}
	}

	files := []struct {
		name string
		data any
	}{
		{ArtifactComponents, components},
		{ArtifactCompatibility, compat},
		{ArtifactSynergy, scored},
		{ArtifactAttributes, attrs},
	}

	updatedAt := time.Now().UTC().Format("2006-01-02")
	for _, f := range files {
		if err := writeArtifact(filepath.Join(dir, f.name), version, updatedAt, f.data); err != nil {
			return err
		}
	}

	return nil
}

func writeArtifact(path, version, updatedAt string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling artifact data: %w", err)
	}

	artifact := Artifact{
		Version:   version,
		UpdatedAt: updatedAt,
		Data:      payload,
	}

	out, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling artifact: %w", err)
	}

	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadArtifact reads one artifact file and returns its envelope.
func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parsing artifact: %w", err)
	}
	return &artifact, nil
}
