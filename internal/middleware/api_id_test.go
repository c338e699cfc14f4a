package middleware_test

import (
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lissto-dev/composer/internal/middleware"
)

var _ = Describe("Header middleware", func() {
	serve := func(mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
		e := echo.New()
		e.Use(mw...)
		e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		return rec
	}

	It("should set the instance and version headers", func() {
		rec := serve(middleware.InstanceIDMiddleware("abc"), middleware.VersionMiddleware("1.2.3"))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get(middleware.InstanceIDHeader)).To(Equal("abc"))
		Expect(rec.Header().Get(middleware.VersionHeader)).To(Equal("1.2.3"))
	})

	It("should skip empty values", func() {
		rec := serve(middleware.VersionMiddleware(""))
		Expect(rec.Header().Values(middleware.VersionHeader)).To(BeEmpty())
	})

	It("should log requests without changing the response", func() {
		rec := serve(middleware.LoggerMiddleware(), middleware.RecoverMiddleware())
		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})
