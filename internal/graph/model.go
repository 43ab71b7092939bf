// Package graph provides the component compatibility graph data model for
// Rigforge.
//
// It defines the typed node and edge kinds that represent catalog entities
// (components, categories, attributes, purposes) and the relations between
// them (compatibility, synergy, suitability, attribute membership).
package graph

import (
	"encoding/json"

	"github.com/rigforge/rigforge/internal/catalog"
	"github.com/rigforge/rigforge/internal/specs"
)

// NodeKind represents the type of a graph node.
type NodeKind string

const (
	NodeComponent NodeKind = "component"
	NodeCategory  NodeKind = "category"
	NodeAttribute NodeKind = "attribute"
	NodePurpose   NodeKind = "purpose"
)

// EdgeKind represents the type of a directed edge between graph nodes.
type EdgeKind string

const (
	EdgeBelongsTo      EdgeKind = "belongs_to"
	EdgeHasAttribute   EdgeKind = "has_attribute"
	EdgeCompatibleWith EdgeKind = "compatible_with"
	EdgeSynergyWith    EdgeKind = "synergy_with"
	EdgeSuitableFor    EdgeKind = "suitable_for"
)

// NodeIndex addresses a node in the graph's flat node arena. Edges store
// indexes rather than ID strings so the hot filtering loops never touch a
// hash map.
type NodeIndex = int32

// InvalidNode is returned by lookups that find nothing.
const InvalidNode NodeIndex = -1

// Node represents a node in the component graph.
type Node struct {
	// ID is the globally unique identifier.
	// Components use the catalog part ID; other kinds use a
	// {kind}:{name} scheme (see CategoryID and friends).
	ID string

	// Kind is the node type.
	Kind NodeKind

	// Name is the display name.
	Name string

	// Category is the normalized component category.
	// Every component node has exactly one; empty for other kinds.
	Category catalog.Category

	// Price in integer currency units (component nodes).
	Price int

	// Tier is the performance tier (component nodes).
	Tier catalog.Tier

	// Spec is the tagged per-category spec variant, nil when the
	// category carries none.
	Spec specs.Spec

	// Raw is the uppercased raw text the spec was extracted from.
	Raw string
}

// Edge represents a directed edge in the component graph.
type Edge struct {
	// Source and Target are node arena indexes.
	Source NodeIndex
	Target NodeIndex

	// Kind is the edge type.
	Kind EdgeKind

	// Weight defaults to 1.0; synergy and suitability edges may carry
	// a softer score.
	Weight float64

	// Rule tags which compatibility rule produced the edge, if any.
	Rule string
}

// CategoryID returns the node ID for a category node.
func CategoryID(cat catalog.Category) string {
	return "category:" + string(cat)
}

// AttributeID returns the node ID for a deduplicated (key, value)
// attribute node.
func AttributeID(key, value string) string {
	return "attr:" + key + ":" + value
}

// PurposeID returns the node ID for a purpose node.
func PurposeID(id string) string {
	return "purpose:" + id
}

// nodeJSON is the persisted wire shape of a Node. The spec variant is
// flattened to its normalized fields; Category drives the decode back into
// the right tagged type.
type nodeJSON struct {
	ID       string            `json:"id"`
	Kind     NodeKind          `json:"kind"`
	Name     string            `json:"name"`
	Category catalog.Category  `json:"category,omitempty"`
	Price    int               `json:"price,omitempty"`
	Tier     string            `json:"tier,omitempty"`
	Specs    map[string]string `json:"specs,omitempty"`
	Raw      string            `json:"raw,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (n Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		ID:       n.ID,
		Kind:     n.Kind,
		Name:     n.Name,
		Category: n.Category,
		Price:    n.Price,
		Raw:      n.Raw,
	}
	if n.Tier != catalog.TierUnknown {
		out.Tier = n.Tier.String()
	}
	if n.Spec != nil {
		out.Specs = n.Spec.Fields()
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	var in nodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*n = Node{
		ID:       in.ID,
		Kind:     in.Kind,
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		Tier:     catalog.ParseTier(in.Tier),
		Spec:     specs.FromFields(in.Category, in.Specs),
		Raw:      in.Raw,
	}
	return nil
}
