package postprocessor

import (
	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// PVCAccessModeNormalizer forces a single access mode on every PersistentVolumeClaim.
// The converter derives ReadOnlyMany from ":ro" mounts, which most single-node clusters
// cannot bind.
type PVCAccessModeNormalizer struct {
	mode corev1.PersistentVolumeAccessMode
}

// NewPVCAccessModeNormalizer builds a normalizer for mode; an empty mode means ReadWriteOnce
func NewPVCAccessModeNormalizer(mode corev1.PersistentVolumeAccessMode) *PVCAccessModeNormalizer {
	if mode == "" {
		mode = corev1.ReadWriteOnce
	}
	return &PVCAccessModeNormalizer{mode: mode}
}

func (p *PVCAccessModeNormalizer) Mode() corev1.PersistentVolumeAccessMode {
	return p.mode
}

// NormalizeAccessModes rewrites the access modes of converted PVC objects
func (p *PVCAccessModeNormalizer) NormalizeAccessModes(objects []runtime.Object) []runtime.Object {
	for i, obj := range objects {
		if pvc, ok := obj.(*corev1.PersistentVolumeClaim); ok {
			pvc.Spec.AccessModes = []corev1.PersistentVolumeAccessMode{p.mode}
			objects[i] = pvc
		}
	}
	return objects
}

// NormalizeDocument rewrites spec.accessModes of a decoded PersistentVolumeClaim document.
// Other kinds are left untouched. It reports whether the document was changed.
func (p *PVCAccessModeNormalizer) NormalizeDocument(doc *yaml.Node) bool {
	root := documentRoot(doc)
	if root == nil {
		return false
	}
	kind := child(root, "kind")
	if kind == nil || kind.Value != "PersistentVolumeClaim" {
		return false
	}
	spec := child(root, "spec")
	if spec == nil || spec.Kind != yaml.MappingNode {
		return false
	}

	modes := &yaml.Node{
		Kind: yaml.SequenceNode,
		Tag:  "!!seq",
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(p.mode)},
		},
	}
	for i := 0; i+1 < len(spec.Content); i += 2 {
		if spec.Content[i].Value == "accessModes" {
			spec.Content[i+1] = modes
			return true
		}
	}
	spec.Content = append(spec.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "accessModes"},
		modes,
	)
	return true
}
