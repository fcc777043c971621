package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"

	"github.com/pocketpilot/backend/internal/config"
	"github.com/pocketpilot/backend/internal/engine"
	"github.com/pocketpilot/backend/internal/logger"
	"github.com/pocketpilot/backend/internal/model"
)

var (
	ErrVAPIDNotConfigured = errors.New("VAPID keys not configured")
	ErrNoSubscriptions    = errors.New("no push subscriptions found")
)

// PushRepositoryInterface defines the contract for push subscription storage.
type PushRepositoryInterface interface {
	CreateSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, userID uuid.UUID, endpoint string) error
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

// BillListerInterface is the slice of bill storage the reminder scan needs.
type BillListerInterface interface {
	ListActive(ctx context.Context) ([]model.Bill, error)
}

// ReminderService sends web-push reminders for bills entering their urgent
// window or going overdue. Reminders are derived from live bill state at each
// scan, so a bill that is paid or deleted simply stops matching.
type ReminderService struct {
	bills  BillListerInterface
	push   PushRepositoryInterface
	config *config.Config
	clock  Clock
}

func NewReminderService(bills BillListerInterface, push PushRepositoryInterface, cfg *config.Config, clock Clock) *ReminderService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReminderService{bills: bills, push: push, config: cfg, clock: clock}
}

// IsConfigured returns true if VAPID keys are configured.
func (s *ReminderService) IsConfigured() bool {
	return s.config.VAPIDPublicKey != "" && s.config.VAPIDPrivateKey != ""
}

// GetVAPIDPublicKey returns the public VAPID key for clients.
func (s *ReminderService) GetVAPIDPublicKey() (string, error) {
	if !s.IsConfigured() {
		return "", ErrVAPIDNotConfigured
	}
	return s.config.VAPIDPublicKey, nil
}

// Subscribe creates or updates a push subscription for a device.
func (s *ReminderService) Subscribe(ctx context.Context, userID uuid.UUID, endpoint, p256dh, auth string) (*model.PushSubscription, error) {
	if !s.IsConfigured() {
		return nil, ErrVAPIDNotConfigured
	}

	sub := &model.PushSubscription{
		ID:       uuid.New(),
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	}

	if err := s.push.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("saving push subscription: %w", err)
	}

	return sub, nil
}

// Unsubscribe removes a push subscription.
func (s *ReminderService) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return s.push.DeleteSubscription(ctx, userID, endpoint)
}

// CancelReminder satisfies the bill service's cancellation hook. The scan
// reads live bill state, so a paid or deleted bill needs no bookkeeping here.
func (s *ReminderService) CancelReminder(ctx context.Context, billID uuid.UUID) {
	logger.FromContext(ctx).Debug("reminder no longer applicable", "bill_id", billID.String())
}

// NotificationPayload is the web-push message body.
type NotificationPayload struct {
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Tag   string                 `json:"tag,omitempty"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// SendDueReminders scans all active bills and notifies owners of bills that
// are urgent or overdue today. Returns the number of reminders sent.
func (s *ReminderService) SendDueReminders(ctx context.Context) (int, error) {
	if !s.IsConfigured() {
		return 0, ErrVAPIDNotConfigured
	}

	bills, err := s.bills.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing active bills: %w", err)
	}

	now := s.clock.Now()
	log := logger.FromContext(ctx)
	subsByUser := make(map[uuid.UUID][]model.PushSubscription)
	sent := 0

	for _, bill := range bills {
		status := engine.Classify(bill, now)
		if status != model.StatusUrgent && status != model.StatusOverdue {
			continue
		}

		subs, ok := subsByUser[bill.UserID]
		if !ok {
			subs, err = s.push.GetByUserID(ctx, bill.UserID)
			if err != nil {
				log.Error("loading push subscriptions", "user_id", bill.UserID.String(), "error", err)
				continue
			}
			subsByUser[bill.UserID] = subs
		}
		if len(subs) == 0 {
			continue
		}

		if err := s.sendToSubscriptions(ctx, subs, reminderPayload(bill, now)); err != nil {
			log.Error("sending bill reminder", "bill_id", bill.ID.String(), "error", err)
			continue
		}
		sent++
	}

	return sent, nil
}

func reminderPayload(bill model.Bill, now time.Time) *NotificationPayload {
	days := engine.DaysUntilDue(bill, now)

	var body string
	switch {
	case days < 0:
		body = fmt.Sprintf("%s was due %d days ago", bill.Amount.StringFixed(2), -days)
	case days == 0:
		body = fmt.Sprintf("%s is due today", bill.Amount.StringFixed(2))
	case days == 1:
		body = fmt.Sprintf("%s is due tomorrow", bill.Amount.StringFixed(2))
	default:
		body = fmt.Sprintf("%s is due in %d days", bill.Amount.StringFixed(2), days)
	}

	return &NotificationPayload{
		Title: "Upcoming bill: " + bill.Name,
		Body:  body,
		Tag:   "bill-" + bill.ID.String(),
		Data: map[string]interface{}{
			"type":   "bill_reminder",
			"billId": bill.ID.String(),
			"url":    "/bills",
		},
	}
}

func (s *ReminderService) sendToSubscriptions(ctx context.Context, subs []model.PushSubscription, payload *NotificationPayload) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	for _, sub := range subs {
		wpSub := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}

		resp, err := webpush.SendNotification(payloadBytes, wpSub, &webpush.Options{
			Subscriber:      s.config.VAPIDSubject,
			VAPIDPublicKey:  s.config.VAPIDPublicKey,
			VAPIDPrivateKey: s.config.VAPIDPrivateKey,
			TTL:             86400,
		})
		if err != nil {
			continue
		}
		resp.Body.Close()

		// Expired or revoked subscriptions get cleaned up as we go.
		if resp.StatusCode == 404 || resp.StatusCode == 410 {
			_ = s.push.DeleteByEndpoint(ctx, sub.Endpoint)
		}
	}

	return nil
}
