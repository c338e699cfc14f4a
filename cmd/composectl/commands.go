package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"

	"github.com/lissto-dev/composer/pkg/cache"
	"github.com/lissto-dev/composer/pkg/compose"
	"github.com/lissto-dev/composer/pkg/graph"
	"github.com/lissto-dev/composer/pkg/kompose"
	"github.com/lissto-dev/composer/pkg/layout"
	"github.com/lissto-dev/composer/pkg/logging"
	"github.com/lissto-dev/composer/pkg/serializer"
)

var (
	errorFmt   = color.New(color.FgRed).SprintfFunc()
	warningFmt = color.New(color.FgYellow).SprintfFunc()
	headerFmt  = color.New(color.FgGreen, color.Underline).SprintfFunc()
)

// readInput reads path, or the app's stdin when path is empty or "-"
func readInput(c *cli.Context, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(c.App.Reader)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("couldn't read %s: %w", path, err)
	}
	return data, nil
}

func writeOutput(c *cli.Context, path, text string) error {
	if path == "" {
		_, err := io.WriteString(c.App.Writer, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("couldn't write %s: %w", path, err)
	}
	return nil
}

func readGraph(c *cli.Context, path string) (*graph.Graph, error) {
	data, err := readInput(c, path)
	if err != nil {
		return nil, err
	}
	g := graph.New("")
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("couldn't decode graph: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func generateAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	g, err := readGraph(c, c.Args().First())
	if err != nil {
		return err
	}

	target := c.String("compose-version")
	if target == "" {
		target = g.Version
	}
	if target == "" {
		target = cfg.Compose.DefaultVersion
	}
	text, err := serializer.NewComposeSerializer().Serialize(g, target)
	if err != nil {
		return err
	}
	return writeOutput(c, c.String("output"), text)
}

func importAction(c *cli.Context) error {
	data, err := readInput(c, c.Args().First())
	if err != nil {
		return err
	}

	var prior layout.Prior
	if path := c.String("layout"); path != "" {
		previous, err := readGraph(c, path)
		if err != nil {
			return fmt.Errorf("couldn't load layout: %w", err)
		}
		prior = layout.PriorFromGraph(previous)
	}

	g, err := compose.Parse(string(data), prior)
	if err != nil {
		return err
	}
	if c.Bool("lint") {
		printLint(c, compose.Lint(c.Context, string(data)))
	}

	out, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("couldn't encode graph: %w", err)
	}
	return writeOutput(c, c.String("output"), string(out)+"\n")
}

func lintAction(c *cli.Context) error {
	data, err := readInput(c, c.Args().First())
	if err != nil {
		return err
	}
	result := compose.Lint(c.Context, string(data))
	printLint(c, result)
	if !result.Valid {
		return fmt.Errorf("compose document is invalid")
	}
	fmt.Fprintf(c.App.Writer, "valid: %d services, %d volumes, %d networks\n",
		len(result.Services), len(result.Volumes), len(result.Networks))
	return nil
}

func printLint(c *cli.Context, result *compose.LintResult) {
	for _, msg := range result.Errors {
		fmt.Fprintln(c.App.ErrWriter, errorFmt("error: %s", msg))
	}
	for _, msg := range result.Warnings {
		fmt.Fprintln(c.App.ErrWriter, warningFmt("warning: %s", msg))
	}
}

func kubernetesAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one input file is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	backend := cfg.Kompose.Backend
	if b := c.String("backend"); b != "" {
		backend = b
	}
	var opts []kompose.Option
	if cfg.Kompose.AccessMode != "" {
		opts = append(opts, kompose.WithPVCAccessMode(corev1.PersistentVolumeAccessMode(cfg.Kompose.AccessMode)))
	}
	converter, err := kompose.NewConverter(backend, cfg.Kompose.Binary, cfg.Kompose.Namespace, opts...)
	if err != nil {
		return err
	}

	poolCfg := kompose.PoolConfig{Workers: int64(cfg.Kompose.Workers), Timeout: cfg.Kompose.Timeout}
	if cfg.Kompose.CacheFile != "" && cfg.Kompose.CacheEnabled() {
		conversionCache := cache.NewConversionCache(cfg.Kompose.CacheFile)
		defer func() {
			if err := conversionCache.Close(); err != nil {
				logging.L().Warn("failed to close conversion cache", zap.Error(err))
			}
		}()
		poolCfg.Cache = conversionCache
		poolCfg.CacheTTL = cfg.Kompose.CacheTTL
	}
	pool := kompose.NewPool(converter, poolCfg)
	adapter := kompose.NewAdapter(pool)

	paths := c.Args().Slice()
	documents := make([]string, len(paths))
	for i, path := range paths {
		if documents[i], err = render(c, adapter, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	results := pool.ConvertAll(c.Context, documents)

	var failed []string
	for i, result := range results {
		if len(paths) > 1 {
			fmt.Fprintln(c.App.Writer, headerFmt("# %s", paths[i]))
		}
		if result.Manifest != "" {
			fmt.Fprint(c.App.Writer, result.Manifest)
		}
		if result.Err != nil {
			failed = append(failed, paths[i])
			fmt.Fprintln(c.App.ErrWriter, errorFmt("%s: %s", paths[i], result.Error))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("conversion failed for %s", strings.Join(failed, ", "))
	}
	return nil
}

func render(c *cli.Context, adapter *kompose.Adapter, path string) (string, error) {
	if c.Bool("graph") {
		g, err := readGraph(c, path)
		if err != nil {
			return "", err
		}
		return adapter.Render(g, "")
	}
	data, err := readInput(c, path)
	if err != nil {
		return "", err
	}
	return adapter.RenderDocument(string(data))
}
