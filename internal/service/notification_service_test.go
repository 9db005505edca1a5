package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dataset/internal/config"
	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/events"
	"github.com/spec-kit/ticket-dataset/internal/worker"
)

var _ = Describe("NotificationService", func() {
	var (
		received chan map[string]any
		status   int
		server   *httptest.Server
	)

	BeforeEach(func() {
		received = make(chan map[string]any, 4)
		status = http.StatusNoContent
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var decoded map[string]any
			_ = json.Unmarshal(body, &decoded)
			received <- decoded
			w.WriteHeader(status)
		}))
		DeferCleanup(server.Close)
	})

	publish := func(cfg config.NotificationConfig, e events.Event) error {
		dispatcher := events.NewInMemoryDispatcher()
		worker.StartNotificationWorker(NewNotificationService(dispatcher, zap.NewNop(), cfg))
		return dispatcher.Publish(context.Background(), e)
	}

	It("posts completed runs to the webhook", func() {
		cfg := config.NotificationConfig{WebhookURL: server.URL, WebhookTimeoutSeconds: 2}
		err := publish(cfg, events.Event{
			Type:    events.EventRunCompleted,
			RunID:   "run-9",
			Payload: events.RunCompletedPayload{Report: domain.RunReport{ID: "run-9", Total: 3}},
		})
		Expect(err).NotTo(HaveOccurred())

		var body map[string]any
		Eventually(received).Should(Receive(&body))
		Expect(body).To(HaveKeyWithValue("type", "run_completed"))
		Expect(body).To(HaveKeyWithValue("run_id", "run-9"))
	})

	It("does not post started runs", func() {
		cfg := config.NotificationConfig{WebhookURL: server.URL}
		Expect(publish(cfg, events.Event{Type: events.EventRunStarted, RunID: "r"})).To(Succeed())
		Consistently(received, "100ms").ShouldNot(Receive())
	})

	It("surfaces rejected deliveries", func() {
		status = http.StatusInternalServerError
		cfg := config.NotificationConfig{WebhookURL: server.URL, WebhookTimeoutSeconds: 2}
		err := publish(cfg, events.Event{Type: events.EventRunFailed, RunID: "r", Payload: events.RunFailedPayload{Stage: "repair"}})
		Expect(err).To(MatchError(ContainSubstring("status 500")))
	})

	It("skips delivery without a webhook", func() {
		Expect(publish(config.NotificationConfig{}, events.Event{Type: events.EventRunFailed})).To(Succeed())
	})
})
