package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/rigforge/rigforge/internal/graph"
)

// Key prefixes for different data types
const (
	prefixNode      = "n:"   // node data, n:nodeID
	prefixEdge      = "e:"   // edge data, e:sourceID:kind:seq
	prefixEmbedding = "emb:" // feature vector data, emb:nodeID
)

// storedEdge is the persisted shape of a graph edge. Endpoints are node
// IDs; arena indexes are not stable across loads.
type storedEdge struct {
	Source string         `json:"source"`
	Target string         `json:"target"`
	Kind   graph.EdgeKind `json:"kind"`
	Weight float64        `json:"weight"`
	Rule   string         `json:"rule,omitempty"`
}

// BadgerBackend is a BadgerDB-backed storage implementation.
type BadgerBackend struct {
	db          *badger.DB
	initialized bool
	mu          sync.RWMutex
	nodeCount   int
	edgeCount   int
	fts         *FTSIndex
}

// NewBadgerBackend creates a new BadgerDB backend.
func NewBadgerBackend() *BadgerBackend {
	return &BadgerBackend{}
}

// Initialize opens or creates the BadgerDB database at the given path.
func (b *BadgerBackend) Initialize(path string, readOnly bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := badger.DefaultOptions(path).
		WithNumCompactors(2).
		WithNumMemtables(5).
		WithLoggingLevel(badger.ERROR) // Suppress INFO/WARNING logs

	if readOnly {
		opts = opts.WithReadOnly(true)
	}

	var err error
	b.db, err = badger.Open(opts)
	if err != nil {
		return fmt.Errorf("opening badger DB: %w", err)
	}

	b.initialized = true
	b.fts = NewFTSIndex(b.db)
	b.recountFromDB()

	return nil
}

// recountFromDB rebuilds the node and edge counts from the database.
func (b *BadgerBackend) recountFromDB() {
	b.nodeCount = 0
	b.edgeCount = 0

	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefixNode)
	it := txn.NewIterator(opts)
	for it.Rewind(); it.Valid(); it.Next() {
		b.nodeCount++
	}
	it.Close()

	opts.Prefix = []byte(prefixEdge)
	it = txn.NewIterator(opts)
	for it.Rewind(); it.Valid(); it.Next() {
		b.edgeCount++
	}
	it.Close()
}

// Close releases all resources held by the backend.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}

	err := b.db.Close()
	b.db = nil
	b.initialized = false
	return err
}

// BulkLoad replaces the entire store with the contents of the graph.
func (b *BadgerBackend) BulkLoad(ctx context.Context, g *graph.Graph) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.db.DropAll(); err != nil {
		return fmt.Errorf("clearing store: %w", err)
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	b.nodeCount = 0
	b.edgeCount = 0

	for i := 0; i < g.NodeCount(); i++ {
		node := g.Node(graph.NodeIndex(i))
		data, err := json.Marshal(node)
		if err != nil {
			return fmt.Errorf("marshaling node %s: %w", node.ID, err)
		}
		if err := wb.Set([]byte(prefixNode+node.ID), data); err != nil {
			return fmt.Errorf("writing node %s: %w", node.ID, err)
		}
		b.nodeCount++
	}

	seqPerSource := make(map[string]int)
	for _, e := range g.Edges() {
		src := g.Node(e.Source)
		dst := g.Node(e.Target)
		stored := storedEdge{
			Source: src.ID,
			Target: dst.ID,
			Kind:   e.Kind,
			Weight: e.Weight,
			Rule:   e.Rule,
		}
		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("marshaling edge: %w", err)
		}

		seq := seqPerSource[src.ID]
		seqPerSource[src.ID] = seq + 1
		key := fmt.Sprintf("%s%s:%s:%06d", prefixEdge, src.ID, e.Kind, seq)
		if err := wb.Set([]byte(key), data); err != nil {
			return fmt.Errorf("writing edge: %w", err)
		}
		b.edgeCount++
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flushing bulk load: %w", err)
	}

	// Index component nodes for search after the batch lands.
	for _, idx := range g.NodesByKind(graph.NodeComponent) {
		if err := b.fts.IndexNode(g.Node(idx)); err != nil {
			return fmt.Errorf("indexing node for FTS: %w", err)
		}
	}

	return nil
}

// GetNode returns a single node by ID, or nil if not found.
func (b *BadgerBackend) GetNode(ctx context.Context, nodeID string) (*graph.Node, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.getNode(nodeID)
}

func (b *BadgerBackend) getNode(nodeID string) (*graph.Node, error) {
	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get([]byte(prefixNode + nodeID))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading node %s: %w", nodeID, err)
	}

	var node graph.Node
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &node)
	}); err != nil {
		return nil, fmt.Errorf("decoding node %s: %w", nodeID, err)
	}
	return &node, nil
}

// GetNodesByCategory returns all component nodes in a category.
func (b *BadgerBackend) GetNodesByCategory(ctx context.Context, category string) []*graph.Node {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []*graph.Node

	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixNode)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		var node graph.Node
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &node)
		}); err != nil {
			continue
		}
		if node.Kind == graph.NodeComponent && string(node.Category) == category {
			n := node
			result = append(result, &n)
		}
	}

	return result
}

// GetRelated returns the neighbors of a node over edges of one kind.
func (b *BadgerBackend) GetRelated(ctx context.Context, nodeID string, kind graph.EdgeKind) ([]RelatedPart, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	prefix := fmt.Sprintf("%s%s:%s:", prefixEdge, nodeID, kind)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	var related []RelatedPart
	for it.Rewind(); it.Valid(); it.Next() {
		var stored storedEdge
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		}); err != nil {
			continue
		}

		node, err := b.getNode(stored.Target)
		if err != nil || node == nil {
			continue
		}
		related = append(related, RelatedPart{
			Node:   node,
			Rule:   stored.Rule,
			Weight: stored.Weight,
		})
	}

	return related, nil
}

// FTSSearch performs full-text search over part names and raw text.
func (b *BadgerBackend) FTSSearch(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.fts == nil {
		return []SearchResult{}, nil
	}
	return b.fts.Search(query, limit)
}

// VectorSearch finds nodes closest to the given feature vector.
func (b *BadgerBackend) VectorSearch(ctx context.Context, vector []float32, limit int) ([]SearchResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	embeddings, err := b.loadEmbeddings()
	if err != nil {
		return nil, err
	}

	var results []SearchResult
	for nodeID, emb := range embeddings {
		sim := cosineSimilarity(vector, emb)
		if sim <= 0 {
			continue
		}

		node, err := b.getNode(nodeID)
		if err != nil || node == nil {
			continue
		}
		results = append(results, SearchResult{
			NodeID:   nodeID,
			Score:    float64(sim),
			Name:     node.Name,
			Category: string(node.Category),
			Price:    node.Price,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// StoreEmbeddings persists node feature vectors.
func (b *BadgerBackend) StoreEmbeddings(ctx context.Context, embeddings []NodeEmbedding) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, emb := range embeddings {
		data, err := json.Marshal(emb.Embedding)
		if err != nil {
			return fmt.Errorf("marshaling embedding: %w", err)
		}
		if err := wb.Set([]byte(prefixEmbedding+emb.NodeID), data); err != nil {
			return fmt.Errorf("writing embedding: %w", err)
		}
	}

	return wb.Flush()
}

// LoadEmbeddings returns all persisted feature vectors by node ID.
func (b *BadgerBackend) LoadEmbeddings(ctx context.Context) (map[string][]float32, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.loadEmbeddings()
}

func (b *BadgerBackend) loadEmbeddings() (map[string][]float32, error) {
	result := make(map[string][]float32)

	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixEmbedding)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		nodeID := strings.TrimPrefix(string(item.Key()), prefixEmbedding)

		var emb []float32
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &emb)
		}); err != nil {
			continue
		}
		result[nodeID] = emb
	}

	return result, nil
}

// NodeCount returns the number of stored nodes.
func (b *BadgerBackend) NodeCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.nodeCount
}

// EdgeCount returns the number of stored edges.
func (b *BadgerBackend) EdgeCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.edgeCount
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / float32(math.Sqrt(float64(normA))*math.Sqrt(float64(normB)))
}
