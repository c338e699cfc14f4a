package kompose_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lissto-dev/composer/pkg/kompose"
)

var _ = Describe("NewConverter", func() {
	It("should default to the CLI backend", func() {
		converter, err := kompose.NewConverter("", "", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(converter.Name()).To(Equal("cli"))
	})

	It("should build the library backend", func() {
		converter, err := kompose.NewConverter(kompose.BackendLibrary, "", "demo")
		Expect(err).NotTo(HaveOccurred())
		Expect(converter.Name()).To(Equal("library"))
	})

	It("should reject unknown backends", func() {
		_, err := kompose.NewConverter("helm", "", "")
		Expect(err).To(MatchError(ContainSubstring(`unknown kompose backend "helm"`)))
	})
})
