package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/bywater/internal/store"
)

const (
	tickInterval        = 60 * time.Second
	appointmentLeadTime = time.Hour
	taskDigestHour      = 8
)

// Scheduler periodically checks for appointment reminders and due tasks
// and pushes notifications to every subscription. Sent reminders are
// deduplicated in memory; the server runs as a single process so a
// restart at worst repeats a reminder once.
type Scheduler struct {
	service      *Service
	push         *store.PushStore
	appointments *store.AppointmentStore
	tasks        *store.TaskStore
	logger       *slog.Logger

	mu     sync.Mutex
	sent   map[string]time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(svc *Service, pushStore *store.PushStore, appointmentStore *store.AppointmentStore, taskStore *store.TaskStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		service:      svc,
		push:         pushStore,
		appointments: appointmentStore,
		tasks:        taskStore,
		logger:       logger,
		sent:         make(map[string]time.Time),
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(time.Now().UTC())
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

func (s *Scheduler) tick(now time.Time) {
	s.checkAppointments(now)
	s.checkTasks(now)
	s.pruneSent(now)
}

func (s *Scheduler) checkAppointments(now time.Time) {
	upcoming, err := s.appointments.ListBetween(now, now.Add(appointmentLeadTime))
	if err != nil {
		s.logger.Error("list upcoming appointments", "error", err)
		return
	}

	for _, a := range upcoming {
		ref := fmt.Sprintf("appointment-%d", a.ID)
		if !s.markSent(ref, now) {
			continue
		}

		minutes := int(a.Date.Sub(now).Minutes())
		body := fmt.Sprintf("%s starts in %d minutes", a.Title, minutes)
		if a.PatientName != "" {
			body = fmt.Sprintf("%s for %s starts in %d minutes", a.Title, a.PatientName, minutes)
		}

		s.sendToAll(Payload{
			Title: "Appointment Reminder",
			Body:  body,
			URL:   "/appointments",
			Tag:   ref,
		})
	}
}

func (s *Scheduler) checkTasks(now time.Time) {
	if now.Hour() != taskDigestHour || now.Minute() != 0 {
		return
	}

	ref := "task-digest-" + now.Format("2006-01-02")
	if !s.markSent(ref, now) {
		return
	}

	dayEnd := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	due, err := s.tasks.ListDueBetween(now.Truncate(24*time.Hour), dayEnd)
	if err != nil {
		s.logger.Error("list due tasks", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}

	body := fmt.Sprintf("You have %d tasks due today", len(due))
	if len(due) == 1 {
		body = fmt.Sprintf("Task due today: %s", due[0].Title)
	}

	s.sendToAll(Payload{
		Title: "Task Reminders",
		Body:  body,
		URL:   "/tasks",
		Tag:   "task-digest",
	})
}

// sendToAll pushes a payload to every subscription, dropping the ones the
// push service reports as gone.
func (s *Scheduler) sendToAll(payload Payload) {
	subs, err := s.push.List()
	if err != nil {
		s.logger.Error("list push subscriptions", "error", err)
		return
	}

	for i := range subs {
		if err := s.service.Send(&subs[i], payload); err != nil {
			if errors.Is(err, ErrExpired) {
				if err := s.push.DeleteByEndpoint(subs[i].Endpoint); err != nil {
					s.logger.Error("delete expired subscription", "error", err)
				}
				continue
			}
			s.logger.Error("send push", "endpoint", subs[i].Endpoint, "error", err)
		}
	}
}

// markSent records ref as sent and reports whether it was new.
func (s *Scheduler) markSent(ref string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sent[ref]; ok {
		return false
	}
	s.sent[ref] = now
	return true
}

func (s *Scheduler) pruneSent(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ref, at := range s.sent {
		if now.Sub(at) > 48*time.Hour {
			delete(s.sent, ref)
		}
	}
}
