package repair_test

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/ticket-dataset/internal/domain"
	"github.com/spec-kit/ticket-dataset/internal/repair"
	"github.com/spec-kit/ticket-dataset/internal/timestamp"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func ticket(status domain.TicketStatus, created, first, closed string) domain.Ticket {
	return domain.Ticket{
		ID:           "T-1",
		Status:       status,
		CreatedAt:    created,
		FirstReplyAt: first,
		ClosedAt:     closed,
	}
}

func entry(rule domain.RepairRule, before, after string) domain.ChangeLogEntry {
	return domain.ChangeLogEntry{TicketID: "T-1", Rule: rule, CloseBefore: before, CloseAfter: after}
}

var _ = Describe("Repairer", func() {
	var r *repair.Repairer

	BeforeEach(func() {
		r = repair.New(now)
	})

	DescribeTable("single ticket passes",
		func(in domain.Ticket, wantClose string, want []domain.ChangeLogEntry) {
			out, changes := r.Repair(in)
			Expect(out.ClosedAt).To(Equal(wantClose))
			if len(want) == 0 {
				Expect(changes).To(BeEmpty())
			} else {
				Expect(changes).To(Equal(want))
			}
		},
		Entry("imputes a missing close on a resolved ticket",
			ticket(domain.TicketStatusResolved, "2024-01-01 09:00", "2024-01-01 10:00", ""),
			"2024-01-01 10:00",
			[]domain.ChangeLogEntry{entry(domain.RuleClosedWithoutCloseImputed, "", "2024-01-01 10:00")}),
		Entry("clears the close of an open ticket",
			ticket(domain.TicketStatusOpen, "", "", "2024-01-05 08:00"),
			"",
			[]domain.ChangeLogEntry{entry(domain.RuleOpenWithCloseCleared, "2024-01-05 08:00", "")}),
		Entry("clears a close before creation then imputes it again",
			ticket(domain.TicketStatusClosed, "2024-01-02 10:00", "2024-01-02 09:00", "2024-01-02 08:30"),
			"2024-01-02 10:00",
			[]domain.ChangeLogEntry{
				entry(domain.RuleCloseBeforeCreationCleared, "2024-01-02 08:30", ""),
				entry(domain.RuleClosedWithoutCloseImputed, "", "2024-01-02 10:00"),
			}),
		Entry("clears a future close and recovers it from the first reply",
			ticket(domain.TicketStatusResolved, "2024-05-01 09:00", "2024-05-02 09:00", "2030-01-01 00:00"),
			"2024-05-02 09:00",
			[]domain.ChangeLogEntry{
				entry(domain.RuleFutureCloseCleared, "2030-01-01 00:00", ""),
				entry(domain.RuleClosedWithoutCloseImputed, "", "2024-05-02 09:00"),
			}),
		Entry("clears a future close on an open ticket once",
			ticket(domain.TicketStatusInProgress, "2024-05-01 09:00", "", "2030-01-01 00:00"),
			"",
			[]domain.ChangeLogEntry{entry(domain.RuleFutureCloseCleared, "2030-01-01 00:00", "")}),
		Entry("moves a closed ticket's early close to the first reply",
			ticket(domain.TicketStatusClosed, "2024-01-01 09:00", "2024-01-01 11:00", "2024-01-01 10:00"),
			"2024-01-01 11:00",
			[]domain.ChangeLogEntry{entry(domain.RuleCloseBeforeFirstFixedToMax, "2024-01-01 10:00", "2024-01-01 11:00")}),
		Entry("moves an early close to the first reply without a creation date",
			ticket(domain.TicketStatusResolved, "", "2024-01-01 11:00", "2024-01-01 10:00"),
			"2024-01-01 11:00",
			[]domain.ChangeLogEntry{entry(domain.RuleCloseBeforeFirstFixedToMax, "2024-01-01 10:00", "2024-01-01 11:00")}),
		Entry("clears an early close when the first reply lies in the future",
			ticket(domain.TicketStatusResolved, "", "2031-01-01 11:00", "2024-01-01 10:00"),
			"",
			[]domain.ChangeLogEntry{entry(domain.RuleCloseBeforeFirstNoCandidate, "2024-01-01 10:00", "")}),
		Entry("clears an early close on a ticket in an unknown state",
			ticket(domain.TicketStatus("Pendiente"), "2024-01-01 09:00", "2024-01-01 11:00", "2024-01-01 10:00"),
			"",
			[]domain.ChangeLogEntry{entry(domain.RuleCloseBeforeFirstOpenState, "2024-01-01 10:00", "")}),
		Entry("leaves a coherent closed ticket alone",
			ticket(domain.TicketStatusClosed, "2024-01-01 09:00", "2024-01-01 10:00", "2024-01-01 12:00"),
			"2024-01-01 12:00",
			nil),
		Entry("leaves a closed ticket without any date alone",
			ticket(domain.TicketStatusClosed, "", "", ""),
			"",
			nil),
		Entry("does not impute a close in the future",
			ticket(domain.TicketStatusResolved, "2031-01-01 09:00", "", ""),
			"",
			nil),
		Entry("rewrites a readable close in the canonical layout without logging",
			ticket(domain.TicketStatusClosed, "2024-01-01 09:00", "", "2024-01-01 12:00:30"),
			"2024-01-01 12:00",
			nil),
		Entry("treats an unreadable close as absent",
			ticket(domain.TicketStatusResolved, "2024-01-01 09:00", "", "n/a"),
			"2024-01-01 09:00",
			[]domain.ChangeLogEntry{entry(domain.RuleClosedWithoutCloseImputed, "", "2024-01-01 09:00")}),
	)

	It("does not modify the input batch", func() {
		in := []domain.Ticket{ticket(domain.TicketStatusOpen, "", "", "2024-01-05 08:00")}
		out, changes := r.RepairAll(in)
		Expect(in[0].ClosedAt).To(Equal("2024-01-05 08:00"))
		Expect(out[0].ClosedAt).To(BeEmpty())
		Expect(changes).To(HaveLen(1))
	})

	It("keeps the change log in ticket order", func() {
		a := ticket(domain.TicketStatusOpen, "", "", "2024-01-05 08:00")
		a.ID = "A"
		b := ticket(domain.TicketStatusClosed, "2024-01-02 10:00", "2024-01-02 09:00", "2024-01-02 08:30")
		b.ID = "B"
		_, changes := r.RepairAll([]domain.Ticket{a, b})
		ids := make([]string, 0, len(changes))
		for _, c := range changes {
			ids = append(ids, c.TicketID)
		}
		Expect(ids).To(Equal([]string{"A", "B", "B"}))
	})

	Describe("over every combination of status and timestamps", func() {
		statuses := []domain.TicketStatus{
			domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusResolved,
			domain.TicketStatusClosed, domain.TicketStatusReopened,
		}
		stamps := []string{
			"", "garbage", "2024-01-01 08:00", "2024-01-01 09:00", "2024-01-01 10:00",
			"2024-01-01 11:00", "01/01/2024 09:30", "2024-06-01 12:00", "2030-12-31 23:59",
		}

		var batch []domain.Ticket
		for _, st := range statuses {
			for _, c := range stamps {
				for _, f := range stamps {
					for _, cl := range stamps {
						t := ticket(st, c, f, cl)
						t.ID = fmt.Sprintf("%s|%s|%s|%s", st, c, f, cl)
						batch = append(batch, t)
					}
				}
			}
		}

		It("produces coherent close timestamps", func() {
			out, _ := r.RepairAll(batch)
			for _, t := range out {
				closed := timestamp.ParseValue(t.ClosedAt)
				if t.Status.IsOpen() {
					Expect(closed.Valid).To(BeFalse(), t.ID)
				}
				if !closed.Valid {
					continue
				}
				Expect(closed.Time.After(now)).To(BeFalse(), t.ID)
				Expect(closed.Before(timestamp.ParseValue(t.CreatedAt))).To(BeFalse(), t.ID)
				Expect(closed.Before(timestamp.ParseValue(t.FirstReplyAt))).To(BeFalse(), t.ID)
			}
		})

		It("is idempotent", func() {
			once, _ := r.RepairAll(batch)
			twice, changes := r.RepairAll(once)
			Expect(changes).To(BeEmpty())
			Expect(twice).To(Equal(once))
		})

		It("logs exactly the transitions it applies", func() {
			out, changes := r.RepairAll(batch)
			byID := map[string][]domain.ChangeLogEntry{}
			for _, c := range changes {
				Expect(c.CloseBefore).NotTo(Equal(c.CloseAfter))
				byID[c.TicketID] = append(byID[c.TicketID], c)
			}
			for i, t := range out {
				entries := byID[t.ID]
				if len(entries) == 0 {
					continue
				}
				Expect(entries[0].CloseBefore).To(Equal(timestamp.ParseValue(batch[i].ClosedAt).String()))
				for j := 1; j < len(entries); j++ {
					Expect(entries[j].CloseBefore).To(Equal(entries[j-1].CloseAfter))
				}
				Expect(entries[len(entries)-1].CloseAfter).To(Equal(t.ClosedAt))
			}
		})
	})
})
