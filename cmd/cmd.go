// Package cmd provides CLI command implementations for Rigforge.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/embeddings"
	"github.com/rigforge/rigforge/internal/graph"
	"github.com/rigforge/rigforge/internal/ingestion"
	"github.com/rigforge/rigforge/internal/session"
	"github.com/rigforge/rigforge/internal/storage"
	"github.com/rigforge/rigforge/mcp"
)

// Version is set at build time via ldflags.
var Version = "dev"

// rigDirName is the per-catalog data directory created by build.
const rigDirName = ".rigforge"

// BuildCmd builds the compatibility graph from a parts catalog.
type BuildCmd struct {
	Catalog      string `arg:"" optional:"" default:"." help:"Path to catalog directory"`
	Config       string `help:"Path to YAML config overriding rule constants"`
	Artifacts    string `help:"Also export JSON artifacts to this directory"`
	NoEmbeddings bool   `help:"Skip feature vector generation"`
}

// Run executes the build command.
func (c *BuildCmd) Run() error {
	ctx := context.Background()
	catalogPath, err := filepath.Abs(c.Catalog)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	info, err := os.Stat(catalogPath)
	if err != nil {
		return fmt.Errorf("accessing %s: %w", catalogPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", catalogPath)
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	color.Green("Building graph from %s", catalogPath)

	rigDir := filepath.Join(catalogPath, rigDirName)
	if err := os.MkdirAll(rigDir, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", rigDirName, err)
	}

	dbPath := filepath.Join(rigDir, "badger")
	store := storage.NewBadgerBackend()
	if err := store.Initialize(dbPath, false); err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	progress := func(phase string, pct float64) {
		fmt.Printf("\r\033[K%s (%.0f%%)", phase, pct*100)
	}

	g, result, err := ingestion.RunPipeline(
		ctx,
		catalogPath,
		store,
		cfg,
		progress,
		!c.NoEmbeddings,
	)
	if err != nil {
		return fmt.Errorf("running pipeline: %w", err)
	}

	fmt.Println() // Newline after progress

	meta := map[string]any{
		"version":  Version,
		"name":     filepath.Base(catalogPath),
		"path":     catalogPath,
		"stats":    result,
		"built_at": time.Now().UTC().Format(time.RFC3339),
	}

	metaPath := filepath.Join(rigDir, "meta.json")
	metaJSON, _ := json.MarshalIndent(meta, "", "  ")
	if err := os.WriteFile(metaPath, metaJSON, 0o644); err != nil {
		return fmt.Errorf("writing meta.json: %w", err)
	}

	if c.Artifacts != "" {
		if err := storage.WriteArtifacts(c.Artifacts, g, Version); err != nil {
			return fmt.Errorf("exporting artifacts: %w", err)
		}
		fmt.Printf("Artifacts written to %s\n", c.Artifacts)
	}

	color.Green("\n✓ Build complete")
	fmt.Printf("  Parts:               %d\n", result.Parts)
	fmt.Printf("  Components:          %d\n", result.Components)
	fmt.Printf("  Compatibility edges: %d\n", result.CompatEdges)
	fmt.Printf("  Synergy edges:       %d\n", result.SynergyEdges)
	fmt.Printf("  Suitability edges:   %d\n", result.SuitabilityEdges)
	fmt.Printf("  Duration:            %.2fs\n", result.DurationSecs)

	return nil
}

// QueryCmd searches the part graph.
type QueryCmd struct {
	Query string `arg:"" help:"Search query"`
	Limit int    `short:"n" default:"20" help:"Maximum results"`
}

// Run executes the query command.
func (c *QueryCmd) Run() error {
	ctx := context.Background()
	store, err := loadStorage(true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Seed the vector leg of the hybrid search with the stored vector of
	// the best text match, ranking "more parts like this" into the fusion.
	var queryVector []float32
	if seed, err := store.FTSSearch(ctx, c.Query, 1); err == nil && len(seed) > 0 {
		if vectors, err := store.LoadEmbeddings(ctx); err == nil {
			queryVector = vectors[seed[0].NodeID]
		}
	}

	results, err := storage.HybridSearch(ctx, store, c.Query, queryVector, c.Limit, 60)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found")
		return nil
	}

	for i, r := range results {
		fmt.Printf("\n%d. %s (%s)\n", i+1, r.Name, r.Category)
		fmt.Printf("   Price: %d\n", r.Price)
		fmt.Printf("   Score: %.4f\n", r.Score)
	}

	return nil
}

// CompatCmd shows everything known to be compatible with a part.
type CompatCmd struct {
	Part string `arg:"" help:"Part name or ID to inspect"`
}

// Run executes the compat command.
func (c *CompatCmd) Run() error {
	if c.Part == "" {
		return fmt.Errorf("part name required. Usage: rigforge compat <part>")
	}

	store, err := loadStorage(true)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	nodeID, err := findPartByName(store, c.Part)
	if err != nil {
		return err
	}
	if nodeID == "" {
		fmt.Printf("Part '%s' not found in the graph.\n", c.Part)
		return nil
	}

	node, err := store.GetNode(ctx, nodeID)
	if err != nil {
		return err
	}
	if node == nil {
		fmt.Printf("Part '%s' not found.\n", c.Part)
		return nil
	}

	fmt.Printf("## Compatibility for: **%s** (%s)\n\n", node.Name, node.Category)
	fmt.Printf("**Price:** %d\n", node.Price)
	if node.Spec != nil {
		for _, kv := range sortedFields(node.Spec.Fields()) {
			fmt.Printf("**%s:** %s\n", kv[0], kv[1])
		}
	}
	fmt.Println()

	compatible, err := store.GetRelated(ctx, nodeID, graph.EdgeCompatibleWith)
	if err != nil {
		return err
	}
	if len(compatible) > 0 {
		byRule := make(map[string][]storage.RelatedPart)
		for _, rel := range compatible {
			byRule[rel.Rule] = append(byRule[rel.Rule], rel)
		}
		rules := make([]string, 0, len(byRule))
		for rule := range byRule {
			rules = append(rules, rule)
		}
		sort.Strings(rules)

		for _, rule := range rules {
			rels := byRule[rule]
			fmt.Printf("### %s (%d)\n", rule, len(rels))
			for _, rel := range rels {
				fmt.Printf("- %s (%s, %d)\n", rel.Node.Name, rel.Node.Category, rel.Node.Price)
			}
			fmt.Println()
		}
	} else {
		fmt.Println("### Compatible parts")
		fmt.Println("None")
		fmt.Println()
	}

	synergy, err := store.GetRelated(ctx, nodeID, graph.EdgeSynergyWith)
	if err != nil {
		return err
	}
	if len(synergy) > 0 {
		fmt.Printf("### Synergy (%d)\n", len(synergy))
		for _, rel := range synergy {
			fmt.Printf("- %s (score %.1f)\n", rel.Node.Name, rel.Weight)
		}
		fmt.Println()
	}

	suitable, err := store.GetRelated(ctx, nodeID, graph.EdgeSuitableFor)
	if err != nil {
		return err
	}
	if len(suitable) > 0 {
		fmt.Printf("### Suitable for (%d)\n", len(suitable))
		for _, rel := range suitable {
			fmt.Printf("- %s\n", rel.Node.Name)
		}
		fmt.Println()
	}

	return nil
}

// RecommendCmd runs a full eight-step selection and prints the build.
type RecommendCmd struct {
	Budget  int    `required:"" help:"Total budget in currency units"`
	Purpose string `default:"general" help:"Build purpose (gaming|workstation|general)"`
	Catalog string `default:"." help:"Path to catalog directory"`
	Config  string `help:"Path to YAML config overriding rule constants"`
	TopK    int    `default:"5" help:"Candidates considered per step"`
}

// Run executes the recommend command.
func (c *RecommendCmd) Run() error {
	ctx := context.Background()
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	g, _, err := ingestion.RunPipeline(ctx, c.Catalog, nil, cfg, nil, false)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	engine := session.NewEngine(g, embeddings.NewCosineScorer(g), cfg)
	s, err := engine.StartSession(c.Budget, session.ParsePurpose(c.Purpose))
	if err != nil {
		return err
	}

	fmt.Printf("## Recommended build (budget %d, purpose %s)\n\n", c.Budget, s.Purpose)

	for step := 1; step <= session.TotalSteps; step++ {
		candidates, err := engine.GetStepCandidates(s.ID, step, c.TopK)
		if err != nil {
			return err
		}
		if candidates.RelaxationNeeded {
			color.Yellow("Step %d (%s): no candidate fits the constraints", step, candidates.Category)
			fmt.Printf("  Remaining budget: %d, step budget: %d\n",
				candidates.Context.RemainingBudget, candidates.Context.StepBudget)
			fmt.Println("  Increase the budget or relax the purpose and retry.")
			break
		}

		pick := candidates.Items[0]
		if err := engine.SelectComponent(s.ID, step, pick.ComponentID); err != nil {
			return err
		}
		fmt.Printf("%d. %-12s %s (%d, score %.3f)\n",
			step, candidates.Category, pick.Name, pick.Price, pick.Score)
	}

	summary, err := engine.GetSummary(s.ID)
	if err != nil {
		return err
	}

	fmt.Printf("\nTotal:     %d\n", summary.TotalPrice)
	fmt.Printf("Remaining: %d\n", summary.RemainingBudget)
	fmt.Printf("Status:    %s\n", summary.Status)

	return nil
}

// ExportCmd exports the graph as versioned JSON artifacts.
type ExportCmd struct {
	Catalog string `arg:"" optional:"" default:"." help:"Path to catalog directory"`
	Out     string `short:"o" default:"artifacts" help:"Output directory"`
	Config  string `help:"Path to YAML config overriding rule constants"`
}

// Run executes the export command.
func (c *ExportCmd) Run() error {
	ctx := context.Background()
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	g, _, err := ingestion.RunPipeline(ctx, c.Catalog, nil, cfg, nil, false)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	if err := storage.WriteArtifacts(c.Out, g, Version); err != nil {
		return err
	}

	color.Green("✓ Artifacts written to %s", c.Out)
	return nil
}

// WatchCmd rebuilds the graph whenever the catalog changes.
type WatchCmd struct {
	Catalog string `arg:"" optional:"" default:"." help:"Path to catalog directory"`
	Config  string `help:"Path to YAML config overriding rule constants"`
}

// Run executes the watch command.
func (c *WatchCmd) Run() error {
	catalogPath, err := filepath.Abs(c.Catalog)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}

	store, err := loadStorageAt(catalogPath, false)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle Ctrl+C
	go func() {
		<-osSignalChannel()
		fmt.Println("\nStopping watch mode...")
		cancel()
	}()

	err = ingestion.WatchCatalog(ctx, catalogPath, store, cfg)
	if err != nil && err != context.Canceled {
		return fmt.Errorf("watch error: %w", err)
	}

	fmt.Println("Watch mode stopped.")
	return nil
}

// MCPCmd starts the MCP server.
type MCPCmd struct {
	Catalog string `default:"." help:"Path to catalog directory"`
	Config  string `help:"Path to YAML config overriding rule constants"`
}

// Run executes the mcp command.
func (c *MCPCmd) Run() error {
	return runServer(c.Catalog, c.Config, false)
}

// ServeCmd starts the MCP server with optional watch mode.
type ServeCmd struct {
	Catalog string `default:"." help:"Path to catalog directory"`
	Config  string `help:"Path to YAML config overriding rule constants"`
	Watch   bool   `short:"w" help:"Enable catalog watching"`
}

// Run executes the serve command.
func (c *ServeCmd) Run() error {
	return runServer(c.Catalog, c.Config, c.Watch)
}

func runServer(catalog, configPath string, watch bool) error {
	ctx := context.Background()
	catalogPath, err := filepath.Abs(catalog)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The session engine works off the in-memory graph; the persisted
	// store serves search and traversal.
	g, _, err := ingestion.RunPipeline(ctx, catalogPath, nil, cfg, nil, false)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}
	engine := session.NewEngine(g, embeddings.NewCosineScorer(g), cfg)

	store, err := loadStorageAt(catalogPath, !watch)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	server := mcp.NewServer(store, engine)

	if watch {
		fmt.Fprintln(os.Stderr, "Starting MCP server with watch mode...")

		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		go func() {
			err := ingestion.WatchCatalog(watchCtx, catalogPath, store, cfg)
			if err != nil && err != context.Canceled {
				fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
			}
		}()

		fmt.Fprintln(os.Stderr, "Catalog watching enabled")
	} else {
		fmt.Fprintln(os.Stderr, "Starting MCP server...")
	}

	return server.Run(ctx, os.Stdin, os.Stdout)
}

// SetupCmd configures MCP for various AI clients.
type SetupCmd struct {
	Claude   bool   `help:"Configure for Claude Code"`
	Cursor   bool   `help:"Configure for Cursor"`
	Local    bool   `help:"Create project-local configuration"`
	Global   bool   `help:"Create global configuration"`
	FilePath string `help:"Custom file path for configuration"`
}

// Run executes the setup command.
func (c *SetupCmd) Run() error {
	// No client specified: print the config to stdout.
	if !c.Claude && !c.Cursor {
		jsonBytes, err := json.MarshalIndent(generateServerConfig(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	if !c.Local && !c.Global {
		c.Local = true
	}

	if c.Claude {
		if err := c.setupClient("claude", ".claude", "settings.json"); err != nil {
			return err
		}
	}
	if c.Cursor {
		if err := c.setupClient("cursor", ".cursor", "mcp.json"); err != nil {
			return err
		}
	}
	return nil
}

func (c *SetupCmd) setupClient(client, configDir, fileName string) error {
	cfg := generateServerConfig()

	if c.Global {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv("HOME")
		}
		globalPath := filepath.Join(homeDir, configDir, fileName)
		if err := writeClientConfig(globalPath, cfg); err != nil {
			return err
		}
		color.Green("✓ Created global %s MCP config at %s", client, globalPath)
	}

	if c.Local {
		localPath := filepath.Join(".", configDir, fileName)
		if c.FilePath != "" {
			localPath = filepath.Join(c.FilePath, fileName)
		}
		if err := writeClientConfig(localPath, cfg); err != nil {
			return err
		}
		color.Green("✓ Created local %s MCP config at %s", client, localPath)
	}

	return nil
}

func generateServerConfig() map[string]any {
	return map[string]any{
		"mcpServers": map[string]any{
			"rigforge": map[string]any{
				"command": "rigforge",
				"args":    []string{"serve", "--watch"},
			},
		},
	}
}

func writeClientConfig(configPath string, cfg map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	content, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	content = append(content, '\n')

	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ListCmd lists built catalogs under the current directory.
type ListCmd struct{}

// Run executes the list command.
func (c *ListCmd) Run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	// The current directory plus one level of children.
	candidates := []string{cwd}
	if entries, err := os.ReadDir(cwd); err == nil {
		for _, entry := range entries {
			if entry.IsDir() && entry.Name() != rigDirName {
				candidates = append(candidates, filepath.Join(cwd, entry.Name()))
			}
		}
	}

	found := 0
	for _, dir := range candidates {
		metaPath := filepath.Join(dir, rigDirName, "meta.json")
		metaBytes, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta map[string]any
		if err := json.Unmarshal(metaBytes, &meta); err != nil {
			continue
		}

		if found == 0 {
			fmt.Println("Built catalogs:")
		}
		found++

		fmt.Printf("\n  %s\n", filepath.Base(dir))
		if path, ok := meta["path"].(string); ok {
			fmt.Printf("    Path: %s\n", path)
		}
		if stats, ok := meta["stats"].(map[string]any); ok {
			if parts, ok := stats["parts"].(float64); ok {
				fmt.Printf("    Parts: %.0f\n", parts)
			}
			if edges, ok := stats["compat_edges"].(float64); ok {
				fmt.Printf("    Compatibility edges: %.0f\n", edges)
			}
		}
		if builtAt, ok := meta["built_at"].(string); ok {
			fmt.Printf("    Built: %s\n", builtAt)
		}
	}

	if found == 0 {
		fmt.Println("No built catalogs found")
	}
	return nil
}

// StatusCmd shows graph status for the current catalog.
type StatusCmd struct{}

// Run executes the status command.
func (c *StatusCmd) Run() error {
	catalogPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	metaPath := filepath.Join(catalogPath, rigDirName, "meta.json")
	metaBytes, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no graph found at %s. Run 'rigforge build' first", catalogPath)
		}
		return fmt.Errorf("reading meta.json: %w", err)
	}

	var meta map[string]any
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return fmt.Errorf("parsing meta.json: %w", err)
	}

	fmt.Printf("Graph status for %s\n", catalogPath)
	if version, ok := meta["version"].(string); ok {
		fmt.Printf("  Version:             %s\n", version)
	}
	if builtAt, ok := meta["built_at"].(string); ok {
		fmt.Printf("  Last built:          %s\n", builtAt)
	}
	if stats, ok := meta["stats"].(map[string]any); ok {
		if parts, ok := stats["parts"].(float64); ok {
			fmt.Printf("  Parts:               %.0f\n", parts)
		}
		if components, ok := stats["components"].(float64); ok {
			fmt.Printf("  Components:          %.0f\n", components)
		}
		if edges, ok := stats["compat_edges"].(float64); ok {
			fmt.Printf("  Compatibility edges: %.0f\n", edges)
		}
		if edges, ok := stats["synergy_edges"].(float64); ok {
			fmt.Printf("  Synergy edges:       %.0f\n", edges)
		}
	}

	return nil
}

// CleanCmd deletes the built graph for the current catalog.
type CleanCmd struct {
	Force bool `short:"f" help:"Skip confirmation"`
}

// Run executes the clean command.
func (c *CleanCmd) Run() error {
	catalogPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	rigDir := filepath.Join(catalogPath, rigDirName)
	if _, err := os.Stat(rigDir); os.IsNotExist(err) {
		return fmt.Errorf("no graph found at %s. Nothing to clean", catalogPath)
	}

	if !c.Force {
		fmt.Printf("Delete graph at %s? [y/N] ", rigDir)
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := os.RemoveAll(rigDir); err != nil {
		return fmt.Errorf("deleting graph: %w", err)
	}

	color.Green("Deleted %s", rigDir)
	return nil
}

// Helper functions

// osSignalChannel returns a channel that receives OS signals for graceful shutdown.
func osSignalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

func loadStorage(readOnly bool) (*storage.BadgerBackend, error) {
	catalogPath, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return loadStorageAt(catalogPath, readOnly)
}

func loadStorageAt(catalogPath string, readOnly bool) (*storage.BadgerBackend, error) {
	dbPath := filepath.Join(catalogPath, rigDirName, "badger")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("no graph found at %s. Run 'rigforge build' first", catalogPath)
	}

	store := storage.NewBadgerBackend()
	if err := store.Initialize(dbPath, readOnly); err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	return store, nil
}

// findPartByName resolves a loose part reference to a node ID: direct ID
// lookup first, then full-text search with an exact-name preference.
func findPartByName(store *storage.BadgerBackend, name string) (string, error) {
	ctx := context.Background()

	if node, err := store.GetNode(ctx, name); err == nil && node != nil {
		return node.ID, nil
	}

	results, err := store.FTSSearch(ctx, name, 10)
	if err != nil {
		return "", err
	}

	for _, result := range results {
		if result.Name == name {
			return result.NodeID, nil
		}
	}

	if len(results) > 0 {
		return results[0].NodeID, nil
	}

	return "", nil
}

// sortedFields flattens a field map into sorted key/value pairs.
func sortedFields(fields map[string]string) [][2]string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, fields[k]})
	}
	return out
}

// CLI is the root Kong command structure.
type CLI struct {
	Version kong.VersionFlag `help:"Show version information"`
	Verbose bool             `short:"v" help:"Enable verbose output"`
	Quiet   bool             `short:"q" help:"Suppress non-essential output"`

	// Commands
	Build     BuildCmd     `cmd:"" help:"Build the compatibility graph from a parts catalog"`
	Query     QueryCmd     `cmd:"" help:"Search the part graph"`
	Compat    CompatCmd    `cmd:"" help:"Show parts compatible with a part"`
	Recommend RecommendCmd `cmd:"" help:"Run a full budgeted build recommendation"`
	Export    ExportCmd    `cmd:"" help:"Export the graph as JSON artifacts"`
	Watch     WatchCmd     `cmd:"" help:"Rebuild the graph on catalog changes"`
	Setup     SetupCmd     `cmd:"" help:"Configure MCP for Claude Code / Cursor"`
	MCP       MCPCmd       `cmd:"" help:"Start MCP server (stdio transport)"`
	Serve     ServeCmd     `cmd:"" help:"Start MCP server with optional watch mode"`
	List      ListCmd      `cmd:"" help:"List built catalogs"`
	Status    StatusCmd    `cmd:"" help:"Show graph status for the current catalog"`
	Clean     CleanCmd     `cmd:"" help:"Delete the built graph for the current catalog"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string) error {
	kongCtx := kong.Parse(c,
		kong.Name("rigforge"),
		kong.Description("Graph-powered PC part compatibility and build recommendation engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	return kongCtx.Run()
}
