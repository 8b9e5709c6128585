package notification

import (
	"context"
	"database/sql"
	"log"
	"time"

	"kpark/internal/db"
)

// LogStore records every delivery attempt.
type LogStore interface {
	Insert(ctx context.Context, n *db.Notification) error
}

const (
	statusSent    = "sent"
	statusFailed  = "failed"
	statusSkipped = "skipped"

	maxAttempts  = 3
	retryBackoff = time.Second
)

// Queue is a bounded, asynchronous notification dispatcher. Callers enqueue
// and return; workers deliver with retries and always write a log row.
// Delivery failures never propagate to the business operation that queued
// the message.
type Queue struct {
	jobs    chan Message
	workers int
	store   LogStore
	sms     SMSSender
	email   EmailSender
}

func NewQueue(size, workers int, store LogStore, sms SMSSender, email EmailSender) *Queue {
	if workers < 1 {
		workers = 1
	}
	return &Queue{
		jobs:    make(chan Message, size),
		workers: workers,
		store:   store,
		sms:     sms,
		email:   email,
	}
}

// Start launches the worker goroutines. They drain until ctx is cancelled.
func (q *Queue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		go q.worker(ctx, i)
	}
}

// Enqueue submits a message without blocking. When the queue is full the
// message is dropped and logged; the caller's operation already succeeded.
func (q *Queue) Enqueue(m Message) bool {
	select {
	case q.jobs <- m:
		return true
	default:
		log.Printf("Notification queue full, dropping %s to %s", m.Type, m.Recipient.Phone)
		return false
	}
}

func (q *Queue) worker(ctx context.Context, id int) {
	for {
		select {
		case m := <-q.jobs:
			q.deliver(ctx, m)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

func (q *Queue) deliver(ctx context.Context, m Message) {
	status := statusSkipped
	var sid string

	if q.sms != nil {
		status = statusFailed
		backoff := retryBackoff
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			var err error
			sid, err = q.sms.Send(m.Recipient.Phone, m.Body)
			if err == nil {
				status = statusSent
				break
			}
			log.Printf("SMS attempt %d/%d [%s] to %s failed: %v",
				attempt, maxAttempts, m.Type, m.Recipient.Phone, err)
			if attempt < maxAttempts {
				select {
				case <-time.After(backoff):
				case <-ctx.Done():
					attempt = maxAttempts
				}
				backoff *= 2
			}
		}
	} else {
		log.Printf("SMS skipped [%s] to %s: sender not configured", m.Type, m.Recipient.Phone)
	}

	if q.email != nil && m.Recipient.Email != "" {
		if err := q.email.Send(m.Recipient.Email, m.Recipient.Name, Subject(m.Body), m.Body); err != nil {
			log.Printf("Email [%s] to %s failed: %v", m.Type, m.Recipient.Email, err)
		}
	}

	entry := &db.Notification{
		UserID:    m.Recipient.UserID,
		Phone:     m.Recipient.Phone,
		Type:      m.Type,
		Message:   m.Body,
		Status:    status,
		Reference: m.Reference,
		TwilioSID: sql.NullString{String: sid, Valid: sid != ""},
	}
	if err := q.store.Insert(ctx, entry); err != nil {
		log.Printf("Notification log write failed: %v", err)
	}
}
