package kompose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kubernetes/kompose/pkg/kobject"
	"github.com/kubernetes/kompose/pkg/loader"
	"github.com/kubernetes/kompose/pkg/transformer/kubernetes"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"

	"github.com/lissto-dev/composer/pkg/logging"
	"github.com/lissto-dev/composer/pkg/postprocessor"
)

// LibraryConverter converts in process with the kompose library. Its output goes through
// the same scratch directory and cleanup as the CLI backend so both produce the same text.
type LibraryConverter struct {
	namespace   string
	opts        options
	processor   *documentProcessor
	annotations *postprocessor.AnnotationStripper
	accessModes *postprocessor.PVCAccessModeNormalizer
}

// NewLibraryConverter builds an in-process converter. PVC access modes default to
// ReadWriteOnce.
func NewLibraryConverter(namespace string, opts ...Option) *LibraryConverter {
	o := buildOptions(opts)
	return &LibraryConverter{
		namespace:   namespace,
		opts:        o,
		processor:   newDocumentProcessor(options{}),
		annotations: postprocessor.NewAnnotationStripper(),
		accessModes: postprocessor.NewPVCAccessModeNormalizer(o.accessMode),
	}
}

func (c *LibraryConverter) Name() string {
	return "library"
}

// ConvertToObjects transforms a compose file to Kubernetes objects
func (c *LibraryConverter) ConvertToObjects(composePath string) ([]runtime.Object, error) {
	komposeLoader, err := loader.GetLoader("compose")
	if err != nil {
		return nil, fmt.Errorf("failed to get kompose loader: %w", err)
	}
	komposeObject, err := komposeLoader.LoadFile([]string{composePath}, []string{}, false)
	if err != nil {
		return nil, fmt.Errorf("kompose loader failed: %w", err)
	}

	opt := kobject.ConvertOptions{
		Provider:              "kubernetes",
		CreateD:               true,
		Replicas:              1,
		GenerateYaml:          true,
		Volumes:               "persistentVolumeClaim",
		WithKomposeAnnotation: false,
		Namespace:             c.namespace,
	}

	transformer := kubernetes.Kubernetes{Opt: opt}
	objects, err := transformer.Transform(komposeObject, opt)
	if err != nil {
		return nil, fmt.Errorf("kompose transformation failed: %w", err)
	}

	logging.L().Debug("kompose transformation complete",
		zap.Int("object_count", len(objects)),
		zap.String("namespace", c.namespace))

	return objects, nil
}

func (c *LibraryConverter) Convert(ctx context.Context, composeYAML string) Result {
	var result Result

	err := withScratchDir(c.opts.scratchRoot, func(dir string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, composeFileName)
		if err := os.WriteFile(path, []byte(composeYAML), 0o600); err != nil {
			return fmt.Errorf("failed to write compose file: %w", err)
		}

		objects, err := c.ConvertToObjects(path)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConverterFailed, err)
		}
		objects = c.accessModes.NormalizeAccessModes(objects)
		objects = c.annotations.StripAnnotations(objects)

		if err := writeObjects(dir, objects); err != nil {
			return err
		}

		manifest, documents, err := collectManifests(dir, composeFileName, c.processor)
		result.Manifest = manifest
		result.Documents = documents
		return err
	})

	if err != nil {
		result.Err = err
		result.Error = userMessage(err)
	}
	return result
}

// writeObjects writes one file per object, named the way the kompose CLI names them
func writeObjects(dir string, objects []runtime.Object) error {
	seen := make(map[string]int)
	for i, obj := range objects {
		data, err := yaml.Marshal(obj)
		if err != nil {
			return fmt.Errorf("failed to marshal object: %w", err)
		}

		name := fmt.Sprintf("object-%d", i)
		if accessor, err := meta.Accessor(obj); err == nil && accessor.GetName() != "" {
			name = accessor.GetName()
		}
		if kind := obj.GetObjectKind().GroupVersionKind().Kind; kind != "" {
			name += "-" + strings.ToLower(kind)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}

		if err := os.WriteFile(filepath.Join(dir, name+".yaml"), data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}
