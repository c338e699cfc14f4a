package postprocessor

import (
	"gopkg.in/yaml.v3"
	appsv1 "k8s.io/api/apps/v1"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/apimachinery/pkg/runtime"
)

// AnnotationStripper removes the annotations the converter injects into every resource
// (kompose command line, version) from metadata and from pod template metadata.
type AnnotationStripper struct{}

func NewAnnotationStripper() *AnnotationStripper {
	return &AnnotationStripper{}
}

// StripDocument deletes metadata.annotations and spec.template.metadata.annotations from a
// decoded manifest document. It reports whether anything was removed. Documents that are
// not mappings are left alone.
func (a *AnnotationStripper) StripDocument(doc *yaml.Node) bool {
	root := documentRoot(doc)
	if root == nil {
		return false
	}

	removed := deleteKey(child(root, "metadata"), "annotations")
	if deleteKey(child(child(child(root, "spec"), "template"), "metadata"), "annotations") {
		removed = true
	}
	return removed
}

// StripAnnotations clears object and pod template annotations on converted objects
func (a *AnnotationStripper) StripAnnotations(objects []runtime.Object) []runtime.Object {
	for i, obj := range objects {
		if accessor, err := meta.Accessor(obj); err == nil {
			accessor.SetAnnotations(nil)
		}

		switch resource := obj.(type) {
		case *appsv1.Deployment:
			resource.Spec.Template.Annotations = nil
		case *appsv1.StatefulSet:
			resource.Spec.Template.Annotations = nil
		case *appsv1.DaemonSet:
			resource.Spec.Template.Annotations = nil
		case *batchv1.Job:
			resource.Spec.Template.Annotations = nil
		case *corev1.ReplicationController:
			if resource.Spec.Template != nil {
				resource.Spec.Template.Annotations = nil
			}
		}
		objects[i] = obj
	}
	return objects
}

func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc == nil {
		return nil
	}
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	return doc
}

// child returns the mapping value stored under key, or nil
func child(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func deleteKey(m *yaml.Node, key string) bool {
	if m == nil || m.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return true
		}
	}
	return false
}
