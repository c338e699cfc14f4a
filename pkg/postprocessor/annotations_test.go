package postprocessor_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/lissto-dev/composer/pkg/postprocessor"
)

func decode(text string) *yaml.Node {
	var doc yaml.Node
	Expect(yaml.Unmarshal([]byte(text), &doc)).To(Succeed())
	return &doc
}

func encode(doc *yaml.Node) string {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	Expect(enc.Encode(doc)).To(Succeed())
	Expect(enc.Close()).To(Succeed())
	return buf.String()
}

var _ = Describe("AnnotationStripper", func() {
	var stripper *postprocessor.AnnotationStripper

	BeforeEach(func() {
		stripper = postprocessor.NewAnnotationStripper()
	})

	Describe("StripDocument", func() {
		It("should remove metadata and pod template annotations", func() {
			doc := decode(`apiVersion: apps/v1
kind: Deployment
metadata:
  annotations:
    kompose.cmd: kompose convert
  labels:
    io.kompose.service: web
  name: web
spec:
  template:
    metadata:
      annotations:
        kompose.version: 1.37.0
      labels:
        io.kompose.service: web
`)
			Expect(stripper.StripDocument(doc)).To(BeTrue())
			Expect(encode(doc)).To(Equal(`apiVersion: apps/v1
kind: Deployment
metadata:
  labels:
    io.kompose.service: web
  name: web
spec:
  template:
    metadata:
      labels:
        io.kompose.service: web
`))
		})

		It("should leave documents without annotations alone", func() {
			doc := decode("apiVersion: v1\nkind: Service\nmetadata:\n  name: web\n")
			Expect(stripper.StripDocument(doc)).To(BeFalse())
			Expect(encode(doc)).To(Equal("apiVersion: v1\nkind: Service\nmetadata:\n  name: web\n"))
		})

		It("should ignore documents that are not mappings", func() {
			Expect(stripper.StripDocument(decode("- a\n- b\n"))).To(BeFalse())
			Expect(stripper.StripDocument(decode("metadata: plain\n"))).To(BeFalse())
			Expect(stripper.StripDocument(nil)).To(BeFalse())
		})
	})

	Describe("StripAnnotations", func() {
		It("should clear object and template annotations", func() {
			deployment := &appsv1.Deployment{
				ObjectMeta: metav1.ObjectMeta{
					Name:        "web",
					Annotations: map[string]string{"kompose.cmd": "kompose convert"},
				},
				Spec: appsv1.DeploymentSpec{
					Template: corev1.PodTemplateSpec{
						ObjectMeta: metav1.ObjectMeta{
							Annotations: map[string]string{"kompose.version": "1.37.0"},
							Labels:      map[string]string{"io.kompose.service": "web"},
						},
					},
				},
			}
			service := &corev1.Service{
				ObjectMeta: metav1.ObjectMeta{
					Name:        "web",
					Annotations: map[string]string{"kompose.cmd": "kompose convert"},
				},
			}

			objects := stripper.StripAnnotations([]runtime.Object{deployment, service})

			Expect(objects).To(HaveLen(2))
			Expect(deployment.Annotations).To(BeEmpty())
			Expect(deployment.Spec.Template.Annotations).To(BeEmpty())
			Expect(deployment.Spec.Template.Labels).To(HaveKeyWithValue("io.kompose.service", "web"))
			Expect(service.Annotations).To(BeEmpty())
		})
	})
})
