package compose_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lissto-dev/composer/pkg/compose"
)

var _ = Describe("Lint", func() {
	It("should accept a valid document and list its names", func() {
		result := compose.Lint(context.Background(), `
services:
  web:
    image: nginx:latest
    ports:
      - "80:80"
    networks:
      - backend
  db:
    image: postgres:13
    volumes:
      - db-data:/var/lib/postgresql/data
    networks:
      - backend

volumes:
  db-data:

networks:
  backend:
`)
		Expect(result.Valid).To(BeTrue())
		Expect(result.Errors).To(BeEmpty())
		Expect(result.Services).To(Equal([]string{"db", "web"}))
		Expect(result.Volumes).To(Equal([]string{"db-data"}))
		Expect(result.Networks).To(ContainElement("backend"))
	})

	It("should report loader errors", func() {
		result := compose.Lint(context.Background(), `
services:
  web:
    image: nginx
    volumes:
      - missing:/data
`)
		Expect(result.Valid).To(BeFalse())
		Expect(result.Errors).To(HaveLen(1))
		Expect(result.Errors[0]).To(ContainSubstring("missing"))
	})

	It("should capture loader warnings", func() {
		result := compose.Lint(context.Background(), `
version: "3.8"
services:
  web:
    image: nginx
`)
		Expect(result.Valid).To(BeTrue())
		Expect(result.Warnings).ToNot(BeEmpty())
	})
})
