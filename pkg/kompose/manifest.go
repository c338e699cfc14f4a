package kompose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"

	"github.com/lissto-dev/composer/pkg/logging"
	"github.com/lissto-dev/composer/pkg/postprocessor"
)

// Result is the outcome of a Kubernetes conversion. Error carries the user-facing converter
// diagnostics and may be set alongside a partial Manifest.
type Result struct {
	Manifest  string `json:"code"`
	Error     string `json:"error"`
	Documents int    `json:"-"`
	Err       error  `json:"-"`
}

// Converter turns compose YAML into Kubernetes manifests
type Converter interface {
	Name() string
	Convert(ctx context.Context, composeYAML string) Result
}

type options struct {
	scratchRoot string
	accessMode  corev1.PersistentVolumeAccessMode
}

// Option configures a converter backend
type Option func(*options)

// WithScratchRoot creates scratch directories under root instead of os.TempDir
func WithScratchRoot(root string) Option {
	return func(o *options) { o.scratchRoot = root }
}

// WithPVCAccessMode forces mode on every generated PersistentVolumeClaim
func WithPVCAccessMode(mode corev1.PersistentVolumeAccessMode) Option {
	return func(o *options) { o.accessMode = mode }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// documentProcessor cleans converter output documents before they are re-encoded
type documentProcessor struct {
	annotations *postprocessor.AnnotationStripper
	accessModes *postprocessor.PVCAccessModeNormalizer
}

func newDocumentProcessor(o options) *documentProcessor {
	p := &documentProcessor{annotations: postprocessor.NewAnnotationStripper()}
	if o.accessMode != "" {
		p.accessModes = postprocessor.NewPVCAccessModeNormalizer(o.accessMode)
	}
	return p
}

func (p *documentProcessor) process(doc *yaml.Node) {
	p.annotations.StripDocument(doc)
	if p.accessModes != nil {
		p.accessModes.NormalizeDocument(doc)
	}
}

var colorRemnant = regexp.MustCompile(`\[[0-9;]*m`)

// SanitizeStderr turns converter stderr into a single line: the first and last
// whitespace-delimited tokens (log level and trailing framing) are dropped and color
// escapes are removed.
func SanitizeStderr(stderr string) string {
	fields := strings.Fields(stderr)
	if len(fields) < 3 {
		return ""
	}
	parts := make([]string, 0, len(fields)-2)
	for _, field := range fields[1 : len(fields)-1] {
		field = colorRemnant.ReplaceAllString(stripansi.Strip(field), "")
		if field != "" {
			parts = append(parts, field)
		}
	}
	return strings.Join(parts, " ")
}

// collectManifests reads every file the converter wrote into dir except skip, in name
// order, cleans each document and joins them with a blank line. Files that do not parse
// are skipped.
func collectManifests(dir, skip string, p *documentProcessor) (string, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read scratch directory: %w", err)
	}

	var docs []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == skip {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			logging.L().Warn("failed to read converter output",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		texts, err := cleanDocuments(content, p)
		if err != nil {
			logging.L().Warn("skipping unparseable converter output",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		docs = append(docs, texts...)
	}

	logging.L().Debug("collected converter output",
		zap.String("dir", dir),
		zap.Int("documents", len(docs)))

	return strings.Join(docs, "\n"), len(docs), nil
}

func cleanDocuments(content []byte, p *documentProcessor) ([]string, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	var out []string
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if len(doc.Content) == 0 {
			continue
		}
		p.process(&doc)

		var buf bytes.Buffer
		buf.WriteString("---\n")
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		out = append(out, buf.String())
	}
	return out, nil
}
