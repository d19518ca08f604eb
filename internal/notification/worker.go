package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"

	"agua24-backend/internal/model"
	"agua24-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation of Sender using the webpush
// library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// EventKind identifies what a queued notification job is about.
type EventKind string

const (
	EventReportApproved EventKind = "report_approved"
	EventVisitReminder  EventKind = "visit_reminder"
)

// Event is one unit of work for the pool.
type Event struct {
	Kind     EventKind
	ReportID uuid.UUID
	VisitID  uuid.UUID
}

// WorkerPool manages a pool of workers delivering push notifications to a
// machine's subscribers.
type WorkerPool struct {
	size    int
	jobs    chan Event
	store   store.Store
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, st store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Event, size*4),
		store:   st,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case ev := <-wp.jobs:
			wp.process(ctx, ev)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// ReportApproved queues a push for an approved report. Enqueueing never
// blocks the caller; a full queue drops the event with a log line.
func (wp *WorkerPool) ReportApproved(reportID uuid.UUID) {
	wp.dispatch(Event{Kind: EventReportApproved, ReportID: reportID})
}

// VisitReminder queues a push reminding subscribers of an upcoming visit.
func (wp *WorkerPool) VisitReminder(visitID uuid.UUID) {
	wp.dispatch(Event{Kind: EventVisitReminder, VisitID: visitID})
}

func (wp *WorkerPool) dispatch(ev Event) {
	select {
	case wp.jobs <- ev:
	default:
		log.Printf("notification queue full, dropping %s event", ev.Kind)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Event {
	return wp.jobs
}

func (wp *WorkerPool) process(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventReportApproved:
		wp.notifyReportApproved(ctx, ev.ReportID)
	case EventVisitReminder:
		wp.notifyVisitReminder(ctx, ev.VisitID)
	}
}

func (wp *WorkerPool) notifyReportApproved(ctx context.Context, reportID uuid.UUID) {
	r, err := wp.store.GetReportByID(ctx, reportID)
	if err != nil {
		log.Printf("error fetching report %s for notification: %v", reportID, err)
		return
	}
	if !r.EffectiveVisibility() {
		return
	}
	msg := fmt.Sprintf("💧 Agua/24: nuevo reporte de mantenimiento aprobado para la máquina %s", wp.machineLabel(ctx, r.MachineID))
	wp.broadcast(ctx, r.MachineID, msg)
}

func (wp *WorkerPool) notifyVisitReminder(ctx context.Context, visitID uuid.UUID) {
	v, err := wp.store.GetVisitByID(ctx, visitID)
	if err != nil {
		log.Printf("error fetching visit %s for reminder: %v", visitID, err)
		return
	}
	msg := fmt.Sprintf("🔧 Agua/24: visita de mantenimiento programada para la máquina %s el %s",
		wp.machineLabel(ctx, v.MachineID), v.Date.Format("02/01/2006"))
	wp.broadcast(ctx, v.MachineID, msg)
}

func (wp *WorkerPool) machineLabel(ctx context.Context, machineID string) string {
	m, err := wp.store.GetMachineByID(ctx, machineID)
	if err != nil || m.Location == "" {
		return machineID
	}
	return fmt.Sprintf("%s (%s)", m.ID, m.Location)
}

func (wp *WorkerPool) broadcast(ctx context.Context, machineID, message string) {
	if wp.webpush == nil {
		return
	}
	subscriptions, err := wp.store.SubscriptionsForMachine(ctx, machineID)
	if err != nil {
		log.Printf("error fetching subscriptions for machine %s: %v", machineID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}
	log.Printf("sending %d notifications for machine %s", len(subscriptions), machineID)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("subscription for endpoint %s is expired, deleting", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
