package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/iamrichardD/mcp-server-pinescript/internal/config"
	"github.com/iamrichardD/mcp-server-pinescript/internal/docs"
	"github.com/iamrichardD/mcp-server-pinescript/internal/mcp"
	"github.com/iamrichardD/mcp-server-pinescript/internal/parser"
	"github.com/iamrichardD/mcp-server-pinescript/internal/rules"
	"github.com/iamrichardD/mcp-server-pinescript/internal/scanner"
	"github.com/iamrichardD/mcp-server-pinescript/internal/types"
	"github.com/iamrichardD/mcp-server-pinescript/internal/validation"
	"github.com/iamrichardD/mcp-server-pinescript/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	rootFlag := c.String("root")
	if rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		rootFlag = absRoot
	}

	cfg, err := config.LoadWithRoot(rootFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if rootFlag != "" {
		cfg.Project.Root = rootFlag
	}
	if workers := c.Int("workers"); workers > 0 {
		cfg.Review.ParallelWorkers = workers
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	app := &cli.App{
		Name:                   "pinelint",
		Usage:                  "Pine Script documentation and code review for AI assistants",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include 'strategies/**/*.pine')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/legacy/**')",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Parallel review workers (0 = auto)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:    "review",
				Aliases: []string{"rv"},
				Usage:   "Validate Pine Script files or directories",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "severity",
						Aliases: []string{"s"},
						Usage:   "Only report violations of this severity (error, warning, suggestion)",
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Show scan metrics per file",
					},
				},
				Action: reviewCommand,
			},
			{
				Name:      "check",
				Usage:     "Parse-only syntax check of a single file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: checkCommand,
			},
			{
				Name:      "docs",
				Aliases:   []string{"d"},
				Usage:     "Search the Pine Script language reference",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "namespace",
						Aliases: []string{"n"},
						Usage:   "List every function in a namespace instead of searching",
					},
					&cli.IntFlag{
						Name:    "max-results",
						Aliases: []string{"m"},
						Usage:   "Max number of results",
						Value:   config.DefaultSearchResults,
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: docsCommand,
			},
			{
				Name:    "mcp",
				Aliases: []string{"serve"},
				Usage:   "Start MCP (Model Context Protocol) server with stdio transport",
				Action:  mcpCommand,
			},
			{
				Name:  "version",
				Usage: "Show detailed version and build information",
				Action: func(c *cli.Context) error {
					fmt.Println(version.FullInfo())
					fmt.Printf("Build ID: %s\n", version.BuildID())
					fmt.Printf("Pine Script version: %d\n", version.PineVersion)
					return nil
				},
			},
		},
		// Running with no command starts the MCP server, so an MCP client
		// can point straight at the binary.
		Action: mcpCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func reviewCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	filter := types.Severity(c.String("severity"))
	if f := c.String("severity"); f != "" && f != "all" && !filter.Valid() {
		return fmt.Errorf("invalid severity %q (use error, warning, or suggestion)", f)
	}
	if c.String("severity") == "all" {
		filter = ""
	}

	targets := c.Args().Slice()
	if len(targets) == 0 {
		targets = []string{cfg.Project.Root}
	}

	vctx, err := validation.NewContext(cfg.Cache)
	if err != nil {
		return err
	}

	sc := scanner.New(cfg.Include, cfg.Exclude, cfg.Review.MaxFileSize, cfg.Review.MaxFileCount)
	var files []scanner.File
	for _, target := range targets {
		found, err := sc.Scan(target)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No Pine Script files found under %s\n", strings.Join(targets, ", "))
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	reviews, err := vctx.ReviewFiles(ctx, sc, files, cfg.Review.ParallelWorkers, filter)
	if err != nil {
		return err
	}
	total := validation.CombineSummaries(reviews)

	if c.Bool("json") {
		out := struct {
			Paths   []string                `json:"paths"`
			Files   []validation.FileReview `json:"files"`
			Summary types.Summary           `json:"summary"`
		}{targets, reviews, total}
		if err := writeJSON(out); err != nil {
			return err
		}
	} else {
		printReviews(reviews, c.Bool("verbose"))
		fmt.Printf("\n%d files reviewed in %v: %d errors, %d warnings, %d suggestions\n",
			len(reviews), time.Since(start).Round(time.Millisecond),
			total.Errors, total.Warnings, total.Suggestions)
	}

	if total.Errors > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func printReviews(reviews []validation.FileReview, verbose bool) {
	for _, r := range reviews {
		if r.Error != "" {
			fmt.Printf("%s: %s\n", r.Path, r.Error)
			continue
		}
		for _, pe := range r.Result.ParseErrors {
			fmt.Printf("%s:%d:%d: parse: %s\n", r.Path, pe.Line, pe.Column, pe.Message)
		}
		for _, v := range r.Result.Violations {
			fmt.Printf("%s:%d:%d: %s: %s [%s]\n",
				r.Path, v.Line, v.Column, v.Severity, v.Message, v.Rule)
		}
		if verbose {
			m := r.Result.Metrics
			fmt.Printf("%s: %d lines, %d tokens, %d calls, %.1fms\n",
				r.Path, m.LinesScanned, m.TokensScanned, m.FunctionsFound, m.ValidationTimeMs)
		}
	}
}

func checkCommand(c *cli.Context) error {
	if !c.Args().Present() {
		return fmt.Errorf("usage: pinelint check <file>")
	}
	path := c.Args().First()
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	in := rules.NewInput(string(source))
	statements := parser.CallStatements(in.Lines)
	if c.Bool("json") {
		return writeJSON(struct {
			Valid       bool                   `json:"valid"`
			ParseErrors []types.ParseError     `json:"parse_errors"`
			Statements  []parser.CallStatement `json:"statements"`
		}{len(in.Errors) == 0, in.Errors, statements})
	}

	for _, pe := range in.Errors {
		fmt.Printf("%s:%d:%d: %s\n", path, pe.Line, pe.Column, pe.Message)
	}
	if len(in.Errors) > 0 {
		return cli.Exit("", 1)
	}
	fmt.Printf("%s: syntax OK (%d lines, %d statements, %d function calls)\n",
		path, len(in.Lines), len(statements), len(in.Calls))
	return nil
}

func docsCommand(c *cli.Context) error {
	namespace := c.String("namespace")
	if !c.Args().Present() && namespace == "" {
		return fmt.Errorf("usage: pinelint docs <query> (or --namespace <ns>)")
	}

	ix, err := docs.Load()
	if err != nil {
		return err
	}

	var entries []*docs.Entry
	if namespace != "" {
		entries = ix.Namespace(namespace)
		if len(entries) == 0 {
			return fmt.Errorf("no functions found in namespace %q", namespace)
		}
	} else {
		query := c.Args().First()
		results := ix.Search(query, c.Int("max-results"))
		if len(results) == 0 {
			if suggestion, ok := ix.Suggest(query); ok {
				return fmt.Errorf("no results for %q, did you mean %q?", query, suggestion)
			}
			return fmt.Errorf("no results for %q", query)
		}
		for _, r := range results {
			entries = append(entries, r.Entry)
		}
	}

	if c.Bool("json") {
		return writeJSON(entries)
	}
	for _, e := range entries {
		fmt.Println(e.Signature)
		if e.Description != "" {
			fmt.Printf("    %s\n", e.Description)
		}
		for _, p := range e.Parameters {
			req := ""
			if p.Required {
				req = " (required)"
			}
			fmt.Printf("    %s: %s%s\n", p.Name, p.Type, req)
		}
		fmt.Println()
	}
	return nil
}

func mcpCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	select {
	case err := <-errChan:
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if serr := server.Shutdown(shutdownCtx); err == nil {
			err = serr
		}
		return err
	case <-sigChan:
		cancel()

		shutdownTimer := time.NewTimer(2 * time.Second)
		defer shutdownTimer.Stop()

		select {
		case err := <-errChan:
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if serr := server.Shutdown(shutdownCtx); err == nil {
				err = serr
			}
			return err
		case <-shutdownTimer.C:
			// Force the stdio transport loop to unblock.
			os.Stdin.Close()
			return nil
		}
	}
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
