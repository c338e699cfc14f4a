package main

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/lissto-dev/composer/pkg/config"
	"github.com/lissto-dev/composer/pkg/logging"
)

// Set via -ldflags at build time
var version = "dev"

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "composectl",
		Version:   version,
		Usage:     "Converts between canvas graphs, compose documents and Kubernetes manifests",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path of the composer configuration file",
				EnvVars: []string{"COMPOSER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"COMPOSER_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			return logging.InitLogger(c.String("log-level"), "console")
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Aliases:   []string{"gen"},
				Usage:     "Renders a canvas graph (JSON) as a compose document",
				ArgsUsage: "[graph.json]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "compose-version",
						Usage: "Compose version to render, overriding the graph's own",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the document to this file instead of stdout",
					},
				},
				Action: generateAction,
			},
			{
				Name:      "import",
				Usage:     "Rebuilds a canvas graph (JSON) from a compose document",
				ArgsUsage: "[docker-compose.yaml]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "layout",
						Usage: "Previously imported graph whose node positions are reused",
					},
					&cli.BoolFlag{
						Name:  "lint",
						Usage: "Also report compose-go loader errors and warnings",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the graph to this file instead of stdout",
					},
				},
				Action: importAction,
			},
			{
				Name:      "kubernetes",
				Aliases:   []string{"k8s"},
				Usage:     "Converts compose documents (or graphs with --graph) to Kubernetes manifests",
				ArgsUsage: "file...",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "graph",
						Usage: "Treat inputs as canvas graph JSON instead of compose YAML",
					},
					&cli.StringFlag{
						Name:  "backend",
						Usage: "Converter backend (cli or library), overriding the configuration",
					},
				},
				Action: kubernetesAction,
			},
			{
				Name:      "lint",
				Usage:     "Checks a compose document with the compose-go loader",
				ArgsUsage: "[docker-compose.yaml]",
				Action:    lintAction,
			},
		},
		Suggest: true,
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.LoadConfig(c.String("config"))
}
