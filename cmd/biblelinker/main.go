package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/stronganchortech/bible-linker/internal/config"
	"github.com/stronganchortech/bible-linker/internal/logging"
	"github.com/stronganchortech/bible-linker/internal/pipeline"
	"github.com/stronganchortech/bible-linker/internal/reference"
	"github.com/stronganchortech/bible-linker/internal/sites"
	"github.com/stronganchortech/bible-linker/internal/storage"
	"github.com/stronganchortech/bible-linker/internal/transform"
)

type Globals struct {
	Config       string `help:"Config JSON supplying the version and site" type:"path" env:"BIBLELINKER_CONFIG_FILE"`
	BibleVersion string `help:"Bible version used in links, e.g. NIV or ESV" short:"b" env:"BIBLELINKER_VERSION"`
	Site         string `help:"Link site (biblegateway, biblia)" short:"s" env:"BIBLELINKER_SITE"`
	LogLevel     string `help:"Log level (debug, info, warn, error)" default:"warn"`
	LogFormat    string `help:"Log format" enum:"text,json" default:"text"`
}

// linking resolves the rewrite settings: defaults, then the config file,
// then flags and environment.
func (g *Globals) linking() (transform.Config, error) {
	cfg := config.Default()
	if g.Config != "" {
		loaded, err := config.Load(g.Config)
		if err != nil {
			return transform.Config{}, err
		}
		cfg = loaded
	}
	if g.BibleVersion != "" {
		cfg.Version = g.BibleVersion
	}
	if g.Site != "" {
		cfg.Site = g.Site
	}
	return cfg.Linking(), nil
}

type RewriteCmd struct {
	File    string `arg:"" optional:"" help:"HTML file to rewrite; stdin when omitted"`
	Output  string `short:"o" type:"path" help:"Write to this file instead of stdout"`
	Charset string `help:"Input charset; detected when omitted. Output is always UTF-8"`
}

func (c *RewriteCmd) Run(g *Globals, logger *slog.Logger) error {
	cfg, err := g.linking()
	if err != nil {
		return err
	}
	cfg.Charset = c.Charset

	src, err := readSource(c.File)
	if err != nil {
		return err
	}
	res, err := transform.NewRewriter(logger).Rewrite(string(src), cfg)
	if err != nil {
		return err
	}
	logger.Info("rewrote document", "links", res.Links, "changed", res.Changed)

	if c.Output == "" {
		_, err = io.WriteString(os.Stdout, res.HTML)
		return err
	}
	return os.WriteFile(c.Output, []byte(res.HTML), 0o644)
}

type BatchCmd struct {
	In      string `required:"" type:"existingdir" help:"Directory of HTML files to rewrite"`
	Out     string `required:"" type:"path" help:"Output directory"`
	Force   bool   `help:"Rewrite files even when the cache says they are current"`
	Workers int    `help:"Parallel workers; one per CPU when zero"`
	Charset string `help:"Input charset; detected per file when omitted"`
}

func (c *BatchCmd) Run(g *Globals, logger *slog.Logger) error {
	cfg, err := g.linking()
	if err != nil {
		return err
	}
	cfg.Charset = c.Charset

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &pipeline.Runner{
		Rewriter:    transform.NewRewriter(logger),
		Storage:     storage.NewFSStorage(c.Out),
		Config:      cfg,
		Workers:     c.Workers,
		Logger:      logger,
		FailuresDir: c.Out,
		Force:       c.Force,
	}
	runErr := runner.Run(ctx, c.In)

	s := runner.Status()
	fmt.Printf("%d files, %d unchanged, %d failed, %d links\n", s.Total, s.Skipped, s.Errors, s.Links)
	if s.Errors > 0 {
		fmt.Printf("failures logged to %s\n", s.FailuresPath)
	}
	return runErr
}

type URLCmd struct {
	Ref string `arg:"" help:"Reference such as \"Jn 3:16\" or \"1 Cor 13\""`
}

func (c *URLCmd) Run(g *Globals) error {
	cfg, err := g.linking()
	if err != nil {
		return err
	}
	m, err := reference.Parse(c.Ref)
	if err != nil {
		return fmt.Errorf("%q: %w", c.Ref, err)
	}
	canon := reference.Canonicalize(m)
	fmt.Printf("%s\t%s\n", canon.Display, sites.URL(canon.Display, cfg.Version, cfg.Site))
	return nil
}

type RefsCmd struct {
	File string `arg:"" optional:"" help:"HTML file to scan; stdin when omitted"`
	JSON bool   `help:"Print the references as a JSON array"`
}

// Run lists the references that rewrite would link, in document order.
func (c *RefsCmd) Run(g *Globals, logger *slog.Logger) error {
	cfg, err := g.linking()
	if err != nil {
		return err
	}
	src, err := readSource(c.File)
	if err != nil {
		return err
	}
	res, err := transform.NewRewriter(logger).Rewrite(string(src), cfg)
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		refs := make([]string, 0, len(res.References))
		for _, ref := range res.References {
			refs = append(refs, ref.Display)
		}
		return enc.Encode(refs)
	}
	for _, ref := range res.References {
		fmt.Println(ref.Display)
	}
	return nil
}

type CLI struct {
	Globals

	Rewrite RewriteCmd `cmd:"" help:"Link the Bible references in one HTML document"`
	Batch   BatchCmd   `cmd:"" help:"Link the Bible references in a directory of HTML files"`
	URL     URLCmd     `cmd:"" name:"url" help:"Print the canonical form and link of a reference"`
	Refs    RefsCmd    `cmd:"" help:"List the references found in an HTML document"`
}

func readSource(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	var cli CLI
	kongCtx := kong.Parse(
		&cli,
		kong.Name("biblelinker"),
		kong.Description("Link Bible references in HTML to an online Bible"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.UsageOnError(),
	)

	logger := logging.BuildLogger(cli.LogLevel, cli.LogFormat)
	if err := kongCtx.Run(&cli.Globals, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
