package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apihttp "github.com/spec-kit/ticket-dataset/internal/api/http"
	"github.com/spec-kit/ticket-dataset/internal/api/http/handlers"
	"github.com/spec-kit/ticket-dataset/internal/auth"
	"github.com/spec-kit/ticket-dataset/internal/categorize"
	"github.com/spec-kit/ticket-dataset/internal/config"
	"github.com/spec-kit/ticket-dataset/internal/export"
	"github.com/spec-kit/ticket-dataset/internal/normalize"
	"github.com/spec-kit/ticket-dataset/internal/observability"
	"github.com/spec-kit/ticket-dataset/internal/service"
	"github.com/spec-kit/ticket-dataset/internal/worker"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

var _ = Describe("API", func() {
	var (
		app      *fiber.App
		pipeline *service.PipelineService
	)

	BeforeEach(func() {
		logger := zap.NewNop()
		metrics := observability.NewMetrics()
		pool := worker.NewPool(2)
		engine := categorize.Default()
		tokens := auth.NewTokenManager("test-secret", time.Minute)

		viewerHash, err := auth.HashSecret("viewer-pw", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		operatorHash, err := auth.HashSecret("operator-pw", bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		authService, err := service.NewAuthService([]config.ClientCredential{
			{ID: "dash", Role: "viewer", SecretHash: viewerHash},
			{ID: "etl", Role: "operator", SecretHash: operatorHash},
		}, tokens)
		Expect(err).NotTo(HaveOccurred())

		repairService := service.NewRepairService(pool, nil, metrics)
		dir := GinkgoT().TempDir()
		pipeline = service.NewPipelineService(service.PipelineOptions{
			Sources: []normalize.Source{{Name: "missing", Path: filepath.Join(dir, "missing.csv"), Kind: normalize.SourceSynthetic}},
			Layout:  export.Layout{OutDir: filepath.Join(dir, "out"), LogsDir: filepath.Join(dir, "logs")},
		}, service.PipelineDependencies{
			Engine:  engine,
			Repair:  repairService,
			Pool:    pool,
			Metrics: metrics,
		}, logger)

		app = fiber.New(fiber.Config{ErrorHandler: apihttp.ErrorHandler})
		apihttp.RegisterMiddlewares(app, logger, metrics, time.Second)
		apihttp.RegisterRoutes(app, apihttp.RouteConfig{
			Health:         handlers.NewHealthHandler("ticket-dataset", "test", map[string]handlers.Pinger{}),
			Auth:           handlers.NewAuthHandler(authService),
			Categorize:     handlers.NewCategorizeHandler(service.NewClassificationService(engine, nil, metrics, logger)),
			Repair:         handlers.NewRepairHandler(repairService),
			Runs:           handlers.NewRunsHandler(pipeline),
			Tickets:        handlers.NewTicketsHandler(nil),
			AuthMiddleware: auth.NewAuthMiddleware(tokens),
			Metrics:        metrics,
		})
	})

	do := func(method, path, token string, body any) (int, envelope) {
		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		}
		req, err := http.NewRequest(method, path, reader)
		Expect(err).NotTo(HaveOccurred())
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()

		var env envelope
		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		if len(raw) > 0 {
			Expect(json.Unmarshal(raw, &env)).To(Succeed())
		}
		return resp.StatusCode, env
	}

	login := func(id, secret string) string {
		status, env := do(http.MethodPost, "/auth/token", "", map[string]string{"client_id": id, "client_secret": secret})
		Expect(status).To(Equal(http.StatusOK))
		var token struct {
			Token     string `json:"token"`
			TokenType string `json:"token_type"`
			Role      string `json:"role"`
		}
		Expect(json.Unmarshal(env.Data, &token)).To(Succeed())
		Expect(token.TokenType).To(Equal("Bearer"))
		return token.Token
	}

	It("answers probes without credentials", func() {
		status, _ := do(http.MethodGet, "/health/live", "", nil)
		Expect(status).To(Equal(http.StatusOK))
		status, _ = do(http.MethodGet, "/health/ready", "", nil)
		Expect(status).To(Equal(http.StatusOK))
	})

	It("reports unknown routes in the error envelope", func() {
		status, env := do(http.MethodGet, "/nope", "", nil)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(env.Error.Code).To(Equal("NOT_FOUND"))
	})

	It("rejects wrong client secrets", func() {
		status, env := do(http.MethodPost, "/auth/token", "", map[string]string{"client_id": "dash", "client_secret": "nope"})
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(env.Error.Code).To(Equal("UNAUTHORIZED"))
	})

	It("requires a token on /v1", func() {
		status, _ := do(http.MethodPost, "/v1/categorize", "", map[string]string{"text": "vpn"})
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	It("categorizes text for viewers", func() {
		token := login("dash", "viewer-pw")
		status, env := do(http.MethodPost, "/v1/categorize", token, map[string]string{"text": "Outlook no sincroniza el correo"})
		Expect(status).To(Equal(http.StatusOK))

		var res struct {
			Category string             `json:"category"`
			Scores   map[string]float64 `json:"scores"`
			Adjusted bool               `json:"adjusted_by_rules"`
		}
		Expect(json.Unmarshal(env.Data, &res)).To(Succeed())
		Expect(res.Category).To(Equal("MAIL"))
		Expect(res.Scores).To(HaveLen(8))
		Expect(res.Adjusted).To(BeTrue())
	})

	It("validates categorize payloads", func() {
		token := login("dash", "viewer-pw")
		status, env := do(http.MethodPost, "/v1/categorize", token, map[string]string{})
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(env.Error.Code).To(Equal("VALIDATION_FAILED"))
	})

	It("keeps repair for operators", func() {
		token := login("dash", "viewer-pw")
		status, env := do(http.MethodPost, "/v1/repair", token, map[string]any{"tickets": []any{}})
		Expect(status).To(Equal(http.StatusForbidden))
		Expect(env.Error.Code).To(Equal("FORBIDDEN"))
	})

	It("repairs a batch and returns the change log", func() {
		token := login("etl", "operator-pw")
		status, env := do(http.MethodPost, "/v1/repair", token, map[string]any{
			"tickets": []map[string]string{{
				"id_ticket":      "synt_1",
				"fecha_creacion": "2024-01-10 09:00",
				"first_reply_at": "2024-01-10 10:00",
				"estado":         "Cerrado",
				"categoria":      "MAIL",
			}},
		})
		Expect(status).To(Equal(http.StatusOK))

		var res struct {
			ProcessingTime string `json:"processing_time"`
			Tickets        []struct {
				ClosedAt string `json:"fecha_cierre"`
				Category string `json:"categoria"`
			} `json:"tickets"`
			Changes []struct {
				TicketID   string `json:"ticket_id"`
				Rule       string `json:"rule"`
				CloseAfter string `json:"close_after"`
			} `json:"changes"`
		}
		Expect(json.Unmarshal(env.Data, &res)).To(Succeed())
		Expect(res.ProcessingTime).NotTo(BeEmpty())
		Expect(res.Tickets).To(HaveLen(1))
		Expect(res.Tickets[0].ClosedAt).To(Equal("2024-01-10 10:00"))
		Expect(res.Tickets[0].Category).To(Equal("MAIL"))
		Expect(res.Changes).To(HaveLen(1))
		Expect(res.Changes[0].TicketID).To(Equal("synt_1"))
		Expect(res.Changes[0].Rule).To(Equal("closed_without_close_imputed"))
		Expect(res.Changes[0].CloseAfter).To(Equal("2024-01-10 10:00"))
	})

	It("rejects empty repair batches", func() {
		token := login("etl", "operator-pw")
		status, _ := do(http.MethodPost, "/v1/repair", token, map[string]any{"tickets": []any{}})
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	It("reports missing stores as unavailable", func() {
		token := login("dash", "viewer-pw")
		status, env := do(http.MethodGet, "/v1/runs/latest", token, nil)
		Expect(status).To(Equal(http.StatusServiceUnavailable))
		Expect(env.Error.Code).To(Equal("UNAVAILABLE"))

		status, _ = do(http.MethodGet, "/v1/tickets/synt_1/changes", token, nil)
		Expect(status).To(Equal(http.StatusServiceUnavailable))

		status, _ = do(http.MethodGet, "/v1/tickets/synt_1", token, nil)
		Expect(status).To(Equal(http.StatusServiceUnavailable))
	})

	It("starts runs in the background", func() {
		token := login("etl", "operator-pw")
		status, env := do(http.MethodPost, "/v1/runs", token, nil)
		Expect(status).To(Equal(http.StatusAccepted))

		var report struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		Expect(json.Unmarshal(env.Data, &report)).To(Succeed())
		Expect(report.ID).NotTo(BeEmpty())
		Expect(report.Status).To(Equal("running"))

		pipeline.Wait()
		Expect(pipeline.Running()).To(BeFalse())
	})

	It("serves prometheus metrics", func() {
		do(http.MethodGet, "/health/live", "", nil)

		req, err := http.NewRequest(http.MethodGet, "/metrics", nil)
		Expect(err).NotTo(HaveOccurred())
		resp, err := app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		raw, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(raw)).To(ContainSubstring("ticket_dataset_http_requests_total"))
	})
})
