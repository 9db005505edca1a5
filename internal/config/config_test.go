package config_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/ticket-dataset/internal/config"
)

var _ = Describe("Load", func() {
	It("reads pipeline settings and client credentials", func() {
		GinkgoT().Setenv("PIPELINE_SOURCES", "kaggle_1=a.csv, synthetic=b.csv,")
		GinkgoT().Setenv("PIPELINE_WORKERS", "4")
		GinkgoT().Setenv("PIPELINE_EXPORT_XLSX", "true")
		GinkgoT().Setenv("AUTH_CLIENTS", "etl:operator:$2a$10$abc,dash:viewer:$2a$10$def")
		GinkgoT().Setenv("REDIS_CATEGORY_CACHE_TTL_SECONDS", "60")

		cfg, err := config.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Pipeline.Sources).To(Equal([]string{"kaggle_1=a.csv", "synthetic=b.csv"}))
		Expect(cfg.Pipeline.Workers).To(Equal(4))
		Expect(cfg.Pipeline.ExportXLSX).To(BeTrue())
		Expect(cfg.Auth.Clients).To(Equal([]config.ClientCredential{
			{ID: "etl", Role: "operator", SecretHash: "$2a$10$abc"},
			{ID: "dash", Role: "viewer", SecretHash: "$2a$10$def"},
		}))
		Expect(cfg.Redis.CategoryCacheTTL()).To(Equal(time.Minute))
	})

	It("rejects malformed client entries", func() {
		GinkgoT().Setenv("AUTH_CLIENTS", "etl:operator")
		_, err := config.Load()
		Expect(err).To(MatchError(ContainSubstring("AUTH_CLIENTS")))
	})

	It("falls back to defaults on bad numbers", func() {
		GinkgoT().Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "soon")
		GinkgoT().Setenv("AUTH_CLIENTS", "")
		cfg, err := config.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.App.RequestTimeout()).To(Equal(120 * time.Second))
		Expect(cfg.App.Addr()).To(HaveSuffix(":" + cfg.App.Port))
	})

	It("keeps run reports for a week by default", func() {
		GinkgoT().Setenv("REDIS_RUN_RETENTION_HOURS", "")
		cfg, err := config.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Redis.RunRetention()).To(Equal(168 * time.Hour))
	})
})
