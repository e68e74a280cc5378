// Package main is the shiori CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/hyperjump/shiori/internal/assistant"
	"github.com/hyperjump/shiori/internal/classify"
	"github.com/hyperjump/shiori/internal/cli"
	"github.com/hyperjump/shiori/internal/config"
	"github.com/hyperjump/shiori/internal/models"
	"github.com/hyperjump/shiori/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "./shiori.yaml"

// loadConfig loads config from path. When path is the default and no such file
// exists, defaults are used with the current directory as base.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("working directory: %w", err)
			}
			return config.Default(cwd), nil
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config path: %w", err)
	}
	return config.Load(abs)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command, args := os.Args[1], os.Args[2:]
	switch normalizeCommand(command) {
	case "add-paper":
		runAddPaper(args)
	case "search-paper":
		runSearchPaper(args)
	case "index-images":
		runIndexImages(args)
	case "search-image":
		runSearchImage(args)
	case "remove-paper":
		runRemovePaper(args)
	case "list-papers":
		runListPapers(args)
	case "init":
		runInit(args)
	case "status":
		runStatus(args)
	case "version", "--version", "-v":
		fmt.Printf("shiori version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// normalizeCommand accepts both add-paper and add_paper spellings.
func normalizeCommand(command string) string {
	if strings.HasPrefix(command, "-") {
		return command
	}
	return strings.ReplaceAll(strings.ToLower(command), "_", "-")
}

// commonFlags are shared by every subcommand that opens the stores.
type commonFlags struct {
	configPath *string
	debug      *bool
	format     *string
}

func newFlagSet(name string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return fs, &commonFlags{
		configPath: fs.String("config", defaultConfigPath, "config file path"),
		debug:      fs.Bool("debug", false, "enable debug logging"),
		format:     fs.String("format", "text", "output format: text, compact, or json"),
	}
}

// session is an open assistant plus everything needed to report results.
type session struct {
	ctx       context.Context
	assistant *assistant.Assistant
	logger    *zap.Logger
	format    cli.OutputFormat
	cleanup   func()
}

func openSession(flags *commonFlags) *session {
	format, err := cli.ParseOutputFormat(*flags.format)
	if err != nil {
		fail("%v", err)
	}
	cfg, err := loadConfig(*flags.configPath)
	if err != nil {
		fail("Failed to load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.Debug || *flags.debug)
	if err != nil {
		fail("Failed to create logger: %v", err)
	}
	a, err := assistant.New(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		fail("Failed to initialize: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return &session{
		ctx:       ctx,
		assistant: a,
		logger:    logger,
		format:    format,
		cleanup: func() {
			stop()
			if err := a.Close(); err != nil {
				logger.Warn("close failed", zap.Error(err))
			}
			_ = logger.Sync()
		},
	}
}

// fail prints to stderr and exits non-zero.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// argsReorder moves flags (and their values) ahead of the positional arguments so
// that flag.Parse() sees them. Go's flag package stops at the first non-flag
// argument, so "shiori search-paper gans -limit 5" would otherwise leave -limit
// unparsed. Positionals keep their order; everything after "--" is positional.
func argsReorder(fs *flag.FlagSet, args []string) []string {
	flags := make([]string, 0, len(args))
	var positionals []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positionals = append(positionals, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := fs.Lookup(name); f != nil && !isBoolFlag(f) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	if len(positionals) == 0 {
		return flags
	}
	return append(append(flags, "--"), positionals...)
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// buildQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runAddPaper(args []string) {
	fs, common := newFlagSet("add-paper")
	topics := fs.String("topics", "", "comma-separated candidate topics (default from config, e.g. CV,NLP,RL)")
	noMove := fs.Bool("no-move", false, "classify only; leave the file where it is")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: shiori add-paper [flags] <path> [path...]\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(fs, args))
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	topicList := classify.ParseTopics(*topics)
	for _, t := range topicList {
		if err := classify.ValidateTopic(t); err != nil {
			fail("%v", err)
		}
	}

	s := openSession(common)
	defer s.cleanup()
	failed := 0
	for _, path := range fs.Args() {
		res, err := s.assistant.AddPaper(s.ctx, path, topicList, !*noMove)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to add %s: %v\n", path, err)
			failed++
			continue
		}
		if err := cli.WriteAddPaper(os.Stdout, res, s.format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			failed++
		}
	}
	if failed > 0 {
		s.cleanup()
		os.Exit(1)
	}
}

func runSearchPaper(args []string) {
	fs, common := newFlagSet("search-paper")
	limit := fs.Int("limit", 0, "number of results (default from config, 3)")
	mode := fs.String("mode", string(models.ModeSemantic), "search mode: semantic, keyword, or hybrid")
	fuzzy := fs.Bool("fuzzy", false, "enable typo-tolerant keyword matching")
	minScore := fs.Float64("min-score", 0, "drop results scoring below this value")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: shiori search-paper [flags] <query>\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), `
Examples:
  shiori search-paper transformer attention
  shiori search-paper --mode hybrid --limit 5 "graph neural networks"
  shiori search-paper --mode keyword --fuzzy segmentaton
`)
	}
	_ = fs.Parse(argsReorder(fs, args))
	query := buildQuery(fs.Args())
	if query == "" {
		fs.Usage()
		os.Exit(1)
	}

	s := openSession(common)
	defer s.cleanup()
	resp, err := s.assistant.SearchPapers(s.ctx, &models.SearchQuery{
		Query:    query,
		Limit:    *limit,
		Mode:     models.SearchMode(strings.ToLower(*mode)),
		MinScore: *minScore,
		Fuzzy:    *fuzzy,
	})
	if err != nil {
		s.cleanup()
		fail("Search failed: %v", err)
	}
	if err := cli.WriteSearchResults(os.Stdout, resp, s.format); err != nil {
		s.cleanup()
		fail("Output failed: %v", err)
	}
}

func runIndexImages(args []string) {
	fs, common := newFlagSet("index-images")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: shiori index-images [flags] [folder]\n\nfolder defaults to images.folder from the config.\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(fs, args))
	if fs.NArg() > 1 {
		fs.Usage()
		os.Exit(1)
	}

	s := openSession(common)
	defer s.cleanup()
	report, err := s.assistant.IndexImages(s.ctx, fs.Arg(0))
	if err != nil {
		s.cleanup()
		fail("Indexing images failed: %v", err)
	}
	if err := cli.WriteImageReport(os.Stdout, report, s.format); err != nil {
		s.cleanup()
		fail("Output failed: %v", err)
	}
}

func runSearchImage(args []string) {
	fs, common := newFlagSet("search-image")
	limit := fs.Int("limit", 0, "number of results (default from config, 3)")
	reindex := fs.Bool("reindex", false, "index the configured image folder before searching")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: shiori search-image [flags] <query>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(fs, args))
	query := buildQuery(fs.Args())
	if query == "" {
		fs.Usage()
		os.Exit(1)
	}

	s := openSession(common)
	defer s.cleanup()
	resp, err := s.assistant.SearchImages(s.ctx, &models.SearchQuery{Query: query, Limit: *limit}, *reindex)
	if err != nil {
		s.cleanup()
		fail("Search failed: %v", err)
	}
	if err := cli.WriteSearchResults(os.Stdout, resp, s.format); err != nil {
		s.cleanup()
		fail("Output failed: %v", err)
	}
}

func runRemovePaper(args []string) {
	fs, common := newFlagSet("remove-paper")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: shiori remove-paper [flags] <id>\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(fs, args))
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	s := openSession(common)
	defer s.cleanup()
	if err := s.assistant.RemovePaper(s.ctx, fs.Arg(0)); err != nil {
		s.cleanup()
		fail("Remove failed: %v", err)
	}
	fmt.Printf("Removed paper %s from the index\n", fs.Arg(0))
}

func runListPapers(args []string) {
	fs, common := newFlagSet("list-papers")
	limit := fs.Int("limit", 0, "maximum papers to list (0 lists all)")
	offset := fs.Int("offset", 0, "papers to skip")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: shiori list-papers [flags]\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(argsReorder(fs, args))

	s := openSession(common)
	defer s.cleanup()
	papers, err := s.assistant.ListPapers(s.ctx, *offset, *limit)
	if err != nil {
		s.cleanup()
		fail("List failed: %v", err)
	}
	if err := cli.WritePaperList(os.Stdout, papers, s.format); err != nil {
		s.cleanup()
		fail("Output failed: %v", err)
	}
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file to write")
	force := fs.Bool("force", false, "overwrite an existing config file")
	_ = fs.Parse(argsReorder(fs, args))
	if err := writeDefaultConfig(*configPath, *force); err != nil {
		fail("Init failed: %v", err)
	}
	fmt.Printf("Wrote default configuration to %s\n", *configPath)
}

// writeDefaultConfig saves the built-in defaults to path. Paths stay relative to
// the config file's directory.
func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return config.Save(path, cfg)
}

func runStatus(args []string) {
	fs, common := newFlagSet("status")
	_ = fs.Parse(args)

	s := openSession(common)
	defer s.cleanup()
	status, err := s.assistant.Status(s.ctx)
	if err != nil {
		s.cleanup()
		fail("Status failed: %v", err)
	}
	if err := cli.WriteStatus(os.Stdout, status, s.format); err != nil {
		s.cleanup()
		fail("Output failed: %v", err)
	}
}

func printUsage() {
	fmt.Println(`shiori - local assistant for research papers and images

Usage:
  shiori add-paper [flags] <path>...     Index a paper, classify it and move it into its topic folder
  shiori search-paper [flags] <query>    Search indexed papers
  shiori index-images [flags] [folder]   Index every image in a folder
  shiori search-image [flags] <query>    Find images matching a text description
  shiori remove-paper [flags] <id>       Remove a paper from the index
  shiori list-papers [flags]             List indexed papers with their ids
  shiori init [--config path] [--force]  Write a default shiori.yaml
  shiori status [flags]                  Show index counts and storage settings
  shiori version                         Show version
  shiori help                            Show this help

Commands also accept underscores (add_paper, search_paper, index_images, search_image).

Common Flags:
  --config string    Config file path (default: ./shiori.yaml; built-in defaults when missing)
  --debug            Enable debug logging
  --format string    Output format: text, compact, or json (default: text)

add-paper Flags:
  --topics string    Comma-separated candidate topics (default from config: CV,NLP,RL)
  --no-move          Classify only; do not move the file

search-paper Flags:
  --limit int        Number of results (default: 3)
  --mode string      semantic, keyword, or hybrid (default: semantic)
  --fuzzy            Typo-tolerant keyword matching
  --min-score float  Drop results below this score

list-papers Flags:
  --limit int        Maximum papers to list (default: all)
  --offset int       Papers to skip

search-image Flags:
  --limit int        Number of results (default: 3)
  --reindex          Index the configured image folder first

Examples:
  shiori add-paper ./papers/attention.pdf --topics CV,NLP,RL
  shiori search-paper "transformer architecture"
  shiori index-images ./images
  shiori search-image "a dog on a beach"`)
}
