package service

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dataset/internal/categorize"
	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/observability"
)

var _ = Describe("ClassificationService", func() {
	const text = "Cannot login, forgot password, outlook also broken"

	It("scores without a cache", func() {
		svc := NewClassificationService(categorize.Default(), nil, nil, zap.NewNop())
		Expect(svc.Classify(context.Background(), text).Category).To(Equal(domain.CategoryMAIL))
	})

	It("stores misses and serves hits from the cache", func() {
		cache := &memoryCache{}
		svc := NewClassificationService(categorize.Default(), cache, observability.NewMetrics(), zap.NewNop())

		first := svc.Classify(context.Background(), text)
		Expect(cache.sets).To(Equal(1))

		cache.entries[text] = categorize.Result{Category: domain.CategoryPOL}
		Expect(svc.Classify(context.Background(), text).Category).To(Equal(domain.CategoryPOL))
		Expect(cache.sets).To(Equal(1))
		Expect(first.Category).To(Equal(domain.CategoryMAIL))
	})

	It("counts cached answers as categorized", func() {
		cache := &memoryCache{}
		metrics := observability.NewMetrics()
		svc := NewClassificationService(categorize.Default(), cache, metrics, zap.NewNop())

		svc.Classify(context.Background(), text)
		cache.entries[text] = categorize.Result{Category: domain.CategoryPOL}
		svc.Classify(context.Background(), text)

		expected := `
# HELP ticket_dataset_categorize_tickets_total Tickets categorized, by assigned category.
# TYPE ticket_dataset_categorize_tickets_total counter
ticket_dataset_categorize_tickets_total{category="MAIL"} 1
ticket_dataset_categorize_tickets_total{category="POL"} 1
`
		Expect(testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected),
			"ticket_dataset_categorize_tickets_total")).To(Succeed())
	})

	It("falls back to scoring when the cache fails", func() {
		cache := &memoryCache{getErr: errors.New("connection refused")}
		svc := NewClassificationService(categorize.Default(), cache, nil, zap.NewNop())
		Expect(svc.Classify(context.Background(), "").Category).To(Equal(domain.CategorySRV))
	})
})
