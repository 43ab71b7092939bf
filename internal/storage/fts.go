package storage

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/rigforge/rigforge/internal/graph"
)

// Key prefixes for FTS
const (
	prefixFTSToken = "fts:t:" // fts:t:token:nodeID -> frequency
	prefixFTSMeta  = "fts:m:" // fts:m:nodeID -> serialized metadata
)

// FTSIndex is a simple inverted index over part names and raw spec text.
type FTSIndex struct {
	db *badger.DB
}

// NewFTSIndex creates a new FTS index using the given BadgerDB instance.
func NewFTSIndex(db *badger.DB) *FTSIndex {
	return &FTSIndex{db: db}
}

// tokenize splits text into searchable tokens.
// Handles model-number patterns: separators, letter/digit boundaries.
func tokenize(text string) []string {
	if text == "" {
		return []string{""}
	}

	tokens := make(map[string]bool)

	// Add full text as lowercase token
	tokens[strings.ToLower(text)] = true

	// Split on common separators (_, ., -, space)
	parts := regexp.MustCompile(`[_\.\-\s]+`).Split(text, -1)
	for _, part := range parts {
		if len(part) > 0 {
			tokens[strings.ToLower(part)] = true
		}
	}

	// Split on number boundaries: "RTX4070" -> "RTX", "4070"
	numSplit := regexp.MustCompile(`([a-zA-Z])(\d)`).ReplaceAllString(text, "$1 $2")
	numSplit = regexp.MustCompile(`(\d)([a-zA-Z])`).ReplaceAllString(numSplit, "$1 $2")
	for _, part := range strings.Fields(numSplit) {
		if len(part) > 0 {
			tokens[strings.ToLower(part)] = true
		}
	}

	// Remove empty tokens
	result := make([]string, 0, len(tokens))
	for token := range tokens {
		if token != "" {
			result = append(result, token)
		}
	}

	return result
}

// IndexNode adds or updates a component node in the FTS index.
func (f *FTSIndex) IndexNode(node *graph.Node) error {
	if f.db == nil {
		return nil // Index not initialized
	}

	txn := f.db.NewTransaction(true)
	defer txn.Discard()

	// Delete old tokens for this node (for updates)
	if err := f.deleteNodeTokens(txn, node.ID); err != nil {
		return err
	}

	// Tokenize searchable fields (name, category, raw spec text)
	text := node.Name + " " + string(node.Category) + " " + node.Raw
	tokens := tokenize(text)

	// Count token frequencies
	tokenFreq := make(map[string]int)
	for _, token := range tokens {
		tokenFreq[token]++
	}

	// Store token frequencies
	for token, freq := range tokenFreq {
		key := fmt.Sprintf("%s%s:%s", prefixFTSToken, token, node.ID)
		if err := txn.Set([]byte(key), []byte(strconv.Itoa(freq))); err != nil {
			return fmt.Errorf("setting token index: %w", err)
		}
	}

	// Store metadata for search results
	meta := map[string]any{
		"id":       node.ID,
		"name":     node.Name,
		"category": string(node.Category),
		"price":    node.Price,
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	metaKey := fmt.Sprintf("%s%s", prefixFTSMeta, node.ID)
	if err := txn.Set([]byte(metaKey), metaJSON); err != nil {
		return fmt.Errorf("setting metadata: %w", err)
	}

	return txn.Commit()
}

// deleteNodeTokens removes all token indexes for a node.
func (f *FTSIndex) deleteNodeTokens(txn *badger.Txn, nodeID string) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixFTSToken)
	it := txn.NewIterator(opts)
	defer it.Close()

	var keysToDelete [][]byte
	searchSuffix := ":" + nodeID

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		key := string(item.Key())
		if strings.HasSuffix(key, searchSuffix) {
			keysToDelete = append(keysToDelete, item.KeyCopy(nil))
		}
	}

	for _, key := range keysToDelete {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}

	return nil
}

// Search performs full-text search with simple TF scoring.
func (f *FTSIndex) Search(query string, limit int) ([]SearchResult, error) {
	if f.db == nil {
		return []SearchResult{}, nil
	}

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return []SearchResult{}, nil
	}

	nodeScores := make(map[string]float64)

	txn := f.db.NewTransaction(false)
	defer txn.Discard()

	for _, token := range queryTokens {
		prefix := fmt.Sprintf("%s%s:", prefixFTSToken, token)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			// Extract nodeID from key: fts:t:token:nodeID
			nodeID := strings.TrimPrefix(key, prefix)

			var freq int
			_ = item.Value(func(val []byte) error {
				freq, _ = strconv.Atoi(string(val))
				return nil
			})

			nodeScores[nodeID] += float64(freq)
		}
		it.Close()
	}

	var results []SearchResult
	for nodeID, score := range nodeScores {
		if score <= 0 {
			continue
		}

		metaItem, err := txn.Get([]byte(fmt.Sprintf("%s%s", prefixFTSMeta, nodeID)))
		if err != nil {
			continue // Node metadata not found
		}

		var meta map[string]any
		_ = metaItem.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})

		results = append(results, SearchResult{
			NodeID:   nodeID,
			Score:    score,
			Name:     getString(meta, "name"),
			Category: getString(meta, "category"),
			Price:    getInt(meta, "price"),
		})
	}

	// Sort by score descending, then price ascending for stable output
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Price < results[j].Price
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// getString safely extracts a string from a map.
func getString(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// getInt safely extracts an int from a map decoded from JSON.
func getInt(m map[string]any, key string) int {
	if v, ok := m[key]; ok {
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return 0
}
