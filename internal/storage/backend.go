// Package storage provides the persisted graph store for Rigforge.
//
// It defines the Backend interface satisfied by the BadgerDB and in-memory
// implementations, along with the shared result types.
package storage

import (
	"context"

	"github.com/rigforge/rigforge/internal/graph"
)

// SearchResult represents a part search hit.
type SearchResult struct {
	// NodeID is the ID of the matching node.
	NodeID string

	// Score is the relevance score (higher is better).
	Score float64

	// Name is the display name of the node.
	Name string

	// Category is the component category.
	Category string

	// Price in integer currency units.
	Price int
}

// RelatedPart is a graph neighbor reached over one edge.
type RelatedPart struct {
	// Node is the neighbor node.
	Node *graph.Node

	// Rule tags the compatibility rule that produced the edge, if any.
	Rule string

	// Weight is the edge weight or synergy score.
	Weight float64
}

// NodeEmbedding represents a feature vector for a node.
type NodeEmbedding struct {
	// NodeID is the ID of the node.
	NodeID string

	// Embedding is the feature vector.
	Embedding []float32
}

// Backend defines the interface for storage implementations.
//
// Implementations must be thread-safe and support concurrent access.
type Backend interface {
	// Lifecycle methods

	// Initialize opens or creates the storage backend at the given path.
	// If readOnly is true, the backend is opened in read-only mode.
	Initialize(path string, readOnly bool) error

	// Close releases all resources held by the backend.
	Close() error

	// Bulk operations

	// BulkLoad replaces the entire store with the contents of the graph.
	BulkLoad(ctx context.Context, g *graph.Graph) error

	// Node operations

	// GetNode returns a single node by ID, or nil if not found.
	GetNode(ctx context.Context, nodeID string) (*graph.Node, error)

	// GetNodesByCategory returns all component nodes in a category.
	GetNodesByCategory(ctx context.Context, category string) []*graph.Node

	// Graph traversal

	// GetRelated returns the neighbors of a node over edges of one kind.
	GetRelated(ctx context.Context, nodeID string, kind graph.EdgeKind) ([]RelatedPart, error)

	// Search

	// FTSSearch performs full-text search over part names and raw text.
	FTSSearch(ctx context.Context, query string, limit int) ([]SearchResult, error)

	// VectorSearch finds nodes closest to the given feature vector.
	VectorSearch(ctx context.Context, vector []float32, limit int) ([]SearchResult, error)

	// Embeddings

	// StoreEmbeddings persists node feature vectors.
	StoreEmbeddings(ctx context.Context, embeddings []NodeEmbedding) error

	// LoadEmbeddings returns all persisted feature vectors by node ID.
	LoadEmbeddings(ctx context.Context) (map[string][]float32, error)

	// Stats

	// NodeCount returns the number of stored nodes.
	NodeCount() int

	// EdgeCount returns the number of stored edges.
	EdgeCount() int
}
