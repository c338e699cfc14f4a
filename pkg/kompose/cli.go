package kompose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lissto-dev/composer/pkg/logging"
)

// CLIConverter runs the kompose binary against a compose file in a scratch directory
type CLIConverter struct {
	binary    string
	runner    Runner
	opts      options
	processor *documentProcessor
}

// NewCLIConverter builds a converter for binary ("kompose" when empty). A nil runner
// executes the real binary.
func NewCLIConverter(binary string, runner Runner, opts ...Option) *CLIConverter {
	if binary == "" {
		binary = "kompose"
	}
	if runner == nil {
		runner = NewRealRunner()
	}
	o := buildOptions(opts)
	return &CLIConverter{
		binary:    binary,
		runner:    runner,
		opts:      o,
		processor: newDocumentProcessor(o),
	}
}

func (c *CLIConverter) Name() string {
	return "cli"
}

// Convert blocks until the subprocess exits. Callers bound it through ctx.
func (c *CLIConverter) Convert(ctx context.Context, composeYAML string) Result {
	var result Result

	err := withScratchDir(c.opts.scratchRoot, func(dir string) error {
		path := filepath.Join(dir, composeFileName)
		if err := os.WriteFile(path, []byte(composeYAML), 0o600); err != nil {
			return fmt.Errorf("failed to write compose file: %w", err)
		}

		binary, err := c.runner.LookPath(c.binary)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConverterUnavailable, err)
		}

		args := []string{"--suppress-warnings", "--file", path, "convert"}
		logging.L().Debug("running converter",
			zap.String("binary", binary),
			zap.Strings("args", args))

		_, stderr, runErr := c.runner.Run(ctx, dir, binary, args...)
		result.Error = SanitizeStderr(string(stderr))

		manifest, documents, err := collectManifests(dir, composeFileName, c.processor)
		result.Manifest = manifest
		result.Documents = documents

		if runErr != nil {
			return fmt.Errorf("%w: %v", ErrConverterFailed, runErr)
		}
		return err
	})

	if err != nil {
		result.Err = err
		if result.Error == "" {
			result.Error = userMessage(err)
		}
	}
	return result
}
