package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"seat-occupancy-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans seat-vacancy notifications out to the browsers watching
// those seats.
type WorkerPool struct {
	size    int
	jobs    chan string
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
	log     logrus.FieldLogger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options, log logrus.FieldLogger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan string, size*16),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		log:     log.WithField("component", "notification"),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log := wp.log.WithField("worker", id)
	log.Debug("worker started")
	for {
		select {
		case seatID := <-wp.jobs:
			wp.sendNotificationsForSeat(ctx, seatID)
		case <-ctx.Done():
			log.Debug("worker shutting down")
			return
		}
	}
}

// SeatVacated queues notifications for a seat that just became free. It
// never blocks the caller: when the queue is full the event is dropped.
func (wp *WorkerPool) SeatVacated(seatID string) {
	select {
	case wp.jobs <- seatID:
	default:
		wp.log.WithField("seat", seatID).Warn("notification queue full, dropping vacancy event")
	}
}

// SetSender replaces the push transport.
func (wp *WorkerPool) SetSender(sender NotificationSender) {
	wp.sender = sender
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan string {
	return wp.jobs
}

func (wp *WorkerPool) sendNotificationsForSeat(ctx context.Context, seatID string) {
	log := wp.log.WithField("seat", seatID)

	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_seat_mapping ssm ON ssm.push_subscription_endpoint = push_subscriptions.endpoint").
		Joins("JOIN seats ON seats.id = ssm.seat_id").
		Where("seats.seat_id = ?", seatID).
		Find(&subscriptions).Error
	if err != nil {
		log.WithError(err).Error("failed to fetch subscriptions")
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.WithField("count", len(subscriptions)).Info("sending vacancy notifications")

	message := fmt.Sprintf("Seat %s is now available", seatID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.log.WithError(err).WithField("endpoint", sub.Endpoint).Warn("failed to send notification")
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		wp.log.WithField("endpoint", sub.Endpoint).Info("subscription expired, deleting")
		if err := wp.db.WithContext(ctx).Select("Seats").Delete(&sub).Error; err != nil {
			wp.log.WithError(err).WithField("endpoint", sub.Endpoint).Error("failed to delete expired subscription")
		}
	}
}
