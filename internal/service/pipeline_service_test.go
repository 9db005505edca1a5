package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-dataset/internal/categorize"
	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/events"
	"github.com/spec-kit/ticket-dataset/internal/export"
	"github.com/spec-kit/ticket-dataset/internal/normalize"
	"github.com/spec-kit/ticket-dataset/internal/observability"
	"github.com/spec-kit/ticket-dataset/internal/worker"
	"github.com/spec-kit/ticket-dataset/pkg/util/errorutil"
)

const syntheticCSV = "id_ticket;canal;fecha_creacion;first_reply_at;fecha_cierre;estado;prioridad;resumen;descripcion\n" +
	"1;EMAIL;2024-01-10 09:00;2024-01-10 10:00;;Cerrado;Alta;Outlook no sincroniza;buzón lleno\n" +
	"2;PORTAL_INTERNO;2024-01-11 09:00;;2024-01-12 09:00;Abierto;Baja;VPN caída;sin red en la oficina\n" +
	"3;PORTAL_SOPORTE;2024-01-12 09:00;2024-01-12 12:00;2024-01-12 11:00;Resuelto;Media;Monitor parpadea;pantalla negra\n"

const kaggleCSV = "Ticket ID,Ticket Channel,Date,Status,Priority,Subject,Description\n" +
	"7,Email,2024-02-01 08:00,Closed,High,Forgot password,cannot login\n"

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type capturedEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *capturedEvents) handle(_ context.Context, e events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *capturedEvents) types() []events.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.EventType, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

var _ = Describe("PipelineService", func() {
	var (
		dir      string
		layout   export.Layout
		sink     *recordingSink
		tickets  *memoryTickets
		runs     *memoryRuns
		captured *capturedEvents
		sources  []normalize.Source
		svc      *PipelineService
	)

	build := func(sinks ...ChangeLogSink) *PipelineService {
		pool := worker.NewPool(3)
		metrics := observability.NewMetrics()
		repairSvc := NewRepairService(pool, nil, metrics)
		repairSvc.clock = func() time.Time { return fixedNow }

		dispatcher := events.NewInMemoryDispatcher()
		for _, t := range []events.EventType{events.EventRunStarted, events.EventRunCompleted, events.EventRunFailed} {
			dispatcher.Subscribe(t, captured.handle)
		}

		s := NewPipelineService(
			PipelineOptions{Sources: sources, Layout: layout, Workbook: true, Persist: true},
			PipelineDependencies{
				Engine:     categorize.Default(),
				Repair:     repairSvc,
				Pool:       pool,
				Sinks:      sinks,
				Tickets:    tickets,
				Runs:       runs,
				Dispatcher: dispatcher,
				Metrics:    metrics,
			},
			zap.NewNop(),
		)
		s.clock = func() time.Time { return fixedNow }
		s.newID = func() string { return "run-1" }
		return s
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "synt.csv"), []byte(syntheticCSV), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, "k1.csv"), []byte(kaggleCSV), 0o644)).To(Succeed())
		layout = export.Layout{OutDir: filepath.Join(dir, "out"), LogsDir: filepath.Join(dir, "logs")}
		sources = []normalize.Source{
			{Name: "synthetic", Path: filepath.Join(dir, "synt.csv"), Kind: normalize.SourceSynthetic},
			{Name: "kaggle_1", Path: filepath.Join(dir, "k1.csv"), Kind: normalize.SourceKaggle1},
		}
		sink = &recordingSink{name: "memory"}
		tickets = &memoryTickets{}
		runs = &memoryRuns{}
		captured = &capturedEvents{}
		svc = build(sink)
	})

	It("normalizes, categorizes, repairs and exports every source", func() {
		report, err := svc.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(report.ID).To(Equal("run-1"))
		Expect(report.Status).To(Equal(domain.RunStatusCompleted))
		Expect(report.ProcessingTime).To(Equal("2024-06-01 12:00"))
		Expect(report.Total).To(Equal(4))
		Expect(report.ByChannel).To(Equal(map[domain.Channel]int{
			domain.ChannelEmail:          2,
			domain.ChannelInternalPortal: 1,
			domain.ChannelSupportPortal:  1,
		}))
		Expect(report.ByCategory).To(Equal(map[domain.Category]int{
			domain.CategoryMAIL: 1,
			domain.CategoryNET:  1,
			domain.CategoryHW:   1,
			domain.CategoryACC:  1,
		}))
		Expect(report.DictionaryImpact["synthetic"]).To(Equal(domain.SourceImpact{
			Rows: 3, RowsWithNeg: 3, RowsAdjustedByRules: 2,
		}))
		Expect(report.DictionaryImpact["kaggle_1"]).To(Equal(domain.SourceImpact{Rows: 1}))

		Expect(sink.runs).To(Equal([]string{"run-1"}))
		Expect(sink.entries).To(Equal([]domain.ChangeLogEntry{
			{TicketID: "synt_1", Rule: domain.RuleClosedWithoutCloseImputed, CloseAfter: "2024-01-10 10:00"},
			{TicketID: "synt_2", Rule: domain.RuleOpenWithCloseCleared, CloseBefore: "2024-01-12 09:00"},
			{TicketID: "synt_3", Rule: domain.RuleCloseBeforeFirstFixedToMax, CloseBefore: "2024-01-12 11:00", CloseAfter: "2024-01-12 12:00"},
			{TicketID: "kaggle1_7", Rule: domain.RuleClosedWithoutCloseImputed, CloseAfter: "2024-02-01 08:00"},
		}))
		Expect(report.ChangesByRule).To(Equal(map[domain.RepairRule]int{
			domain.RuleClosedWithoutCloseImputed:  2,
			domain.RuleOpenWithCloseCleared:       1,
			domain.RuleCloseBeforeFirstFixedToMax: 1,
		}))

		Expect(tickets.lastRun).To(Equal("run-1"))
		Expect(tickets.byID).To(HaveLen(4))
		Expect(tickets.byID["synt_2"].ClosedAt).To(BeEmpty())
		Expect(tickets.byID["kaggle1_7"].Category).To(Equal(domain.CategoryACC))

		for _, path := range []string{report.Outputs.Dataset, report.Outputs.Report, report.Outputs.Workbook} {
			Expect(path).To(BeAnExistingFile())
		}
		for _, path := range report.Outputs.ByChannel {
			Expect(path).To(BeAnExistingFile())
		}

		written, err := normalize.LoadDataset(report.Outputs.Dataset)
		Expect(err).NotTo(HaveOccurred())
		Expect(written).To(HaveLen(4))
		Expect(written[2].ClosedAt).To(Equal("2024-01-12 12:00"))

		Expect(runs.history).To(Equal([]domain.RunStatus{domain.RunStatusCompleted}))
		latest, err := svc.LatestRun(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(latest.Total).To(Equal(4))

		Expect(captured.types()).To(Equal([]events.EventType{events.EventRunStarted, events.EventRunCompleted}))
	})

	It("produces a dataset that a second repair leaves unchanged", func() {
		report, err := svc.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		written, err := normalize.LoadDataset(report.Outputs.Dataset)
		Expect(err).NotTo(HaveOccurred())
		_, changes, _, err := svc.deps.Repair.RepairBatch(context.Background(), written)
		Expect(err).NotTo(HaveOccurred())
		Expect(changes).To(BeEmpty())
	})

	It("fails the run when a sink rejects the change log", func() {
		svc = build(&recordingSink{name: "broken", err: errors.New("disk full")})

		report, err := svc.Run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("disk full")))
		Expect(report.Status).To(Equal(domain.RunStatusFailed))
		Expect(report.Error).To(ContainSubstring("deliver"))
		Expect(filepath.Join(layout.OutDir, export.DatasetFile)).NotTo(BeAnExistingFile())
		Expect(tickets.byID).To(BeEmpty())

		Expect(captured.types()).To(Equal([]events.EventType{events.EventRunStarted, events.EventRunFailed}))
		payload, ok := captured.events[1].Payload.(events.RunFailedPayload)
		Expect(ok).To(BeTrue())
		Expect(payload.Stage).To(Equal("deliver"))
	})

	It("fails on an unreadable source", func() {
		sources = append(sources, normalize.Source{Name: "missing", Path: filepath.Join(dir, "nope.csv")})
		svc = build(sink)

		report, err := svc.Run(context.Background())
		Expect(err).To(HaveOccurred())
		Expect(report.Error).To(HavePrefix("normalize: source missing"))
		Expect(sink.entries).To(BeEmpty())
	})

	It("stops on a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report, err := svc.Run(ctx)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(report.Status).To(Equal(domain.RunStatusFailed))
	})

	It("runs one pipeline at a time", func() {
		blocking := &recordingSink{name: "slow", block: make(chan struct{})}
		svc = build(blocking)

		started, err := svc.Start(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(started.Status).To(Equal(domain.RunStatusRunning))
		Expect(svc.Running()).To(BeTrue())

		_, err = svc.Run(context.Background())
		Expect(errors.Is(err, ErrRunInProgress)).To(BeTrue())
		_, err = svc.Start(context.Background())
		Expect(errorutil.ToDomainError(err).Code).To(Equal("CONFLICT"))

		close(blocking.block)
		svc.Wait()
		Expect(svc.Running()).To(BeFalse())
		Expect(runs.history).To(Equal([]domain.RunStatus{domain.RunStatusRunning, domain.RunStatusCompleted}))
	})

	It("maps run lookups to API errors", func() {
		_, err := svc.GetRun(context.Background(), "unknown")
		Expect(errorutil.ToDomainError(err).Code).To(Equal("NOT_FOUND"))

		_, err = svc.LatestRun(context.Background())
		Expect(errorutil.ToDomainError(err).Code).To(Equal("NOT_FOUND"))

		svc.deps.Runs = nil
		_, err = svc.GetRun(context.Background(), "run-1")
		Expect(errorutil.ToDomainError(err).Code).To(Equal("UNAVAILABLE"))
	})
})
