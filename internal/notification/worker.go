package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"smartbuy-backend/internal/model"
	"smartbuy-backend/internal/store"
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

// AssistanceRequest is a shopper asking staff for help at a location.
type AssistanceRequest struct {
	Section     string    `json:"section"`
	Rack        string    `json:"rackId,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Message is the human-readable notification body.
func (r AssistanceRequest) Message() string {
	if r.Rack != "" {
		return fmt.Sprintf("Shopper needs assistance in %s at rack %s", r.Section, r.Rack)
	}
	return fmt.Sprintf("Shopper needs assistance in %s", r.Section)
}

type pushPayload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  AssistanceRequest `json:"data"`
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan AssistanceRequest
	store   store.Store
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan AssistanceRequest, size), // Buffered channel
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{}, // Use the real sender by default
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case req := <-wp.jobs:
			log.Printf("Worker %d processing assistance request for %s", id, req.Section)
			wp.notifyStaff(ctx, req)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch sends a job to the worker pool. It blocks while the buffer is full
// unless ctx is done first.
func (wp *WorkerPool) Dispatch(ctx context.Context, req AssistanceRequest) error {
	select {
	case wp.jobs <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan AssistanceRequest {
	return wp.jobs
}

// notifyStaff sends the request to every staff subscription.
func (wp *WorkerPool) notifyStaff(ctx context.Context, req AssistanceRequest) {
	subscriptions, err := wp.store.StaffSubscriptions(ctx)
	if err != nil {
		log.Printf("Error fetching staff subscriptions: %v", err)
		return
	}

	if len(subscriptions) == 0 {
		log.Printf("No staff subscribed; assistance request for %s dropped", req.Section)
		return
	}

	payload, err := json.Marshal(pushPayload{
		Title: "Assistance requested",
		Body:  req.Message(),
		Data:  req,
	})
	if err != nil {
		log.Printf("Error encoding assistance payload: %v", err)
		return
	}

	log.Printf("Sending %d assistance notifications for %s", len(subscriptions), req.Section)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	// Manually construct the webpush.Subscription object
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := deleteSubscription(ctx, wp.store.DB(), sub); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}

func deleteSubscription(ctx context.Context, db *gorm.DB, sub model.PushSubscription) error {
	return db.WithContext(ctx).Delete(&sub).Error
}
