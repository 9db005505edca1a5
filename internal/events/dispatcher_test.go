package events_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/ticket-dataset/internal/events"
)

var _ = Describe("in-memory dispatcher", func() {
	It("delivers to every subscriber of the type, in order", func() {
		d := events.NewInMemoryDispatcher()
		var seen []string
		d.Subscribe(events.EventRunCompleted, func(_ context.Context, e events.Event) error {
			seen = append(seen, "a:"+e.RunID)
			return errors.New("a failed")
		})
		d.Subscribe(events.EventRunCompleted, func(_ context.Context, e events.Event) error {
			seen = append(seen, "b:"+e.RunID)
			return nil
		})
		d.Subscribe(events.EventRunFailed, func(context.Context, events.Event) error {
			seen = append(seen, "failed")
			return nil
		})

		err := d.Publish(context.Background(), events.Event{Type: events.EventRunCompleted, RunID: "r1"})
		Expect(err).To(MatchError("a failed"))
		Expect(seen).To(Equal([]string{"a:r1", "b:r1"}))
	})

	It("ignores events nobody listens to", func() {
		d := events.NewInMemoryDispatcher()
		Expect(d.Publish(context.Background(), events.Event{Type: events.EventRunStarted})).To(Succeed())
	})
})
