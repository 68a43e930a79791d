// Package events publishes domain events to NATS. Publishing is fire and
// forget: failures are logged and never reach the request.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	SubjectVoteApplied      = "subreddits.votes.applied"
	SubjectPostCreated      = "subreddits.posts.created"
	SubjectCommentCreated   = "subreddits.comments.created"
	SubjectSubredditCreated = "subreddits.subreddits.created"
)

// Event is the envelope sent on every subject.
type Event struct {
	EventID    string         `json:"event_id"`
	Subject    string         `json:"subject"`
	UserID     string         `json:"user_id,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Publisher is safe to use as a nil pointer, which disables publishing.
type Publisher struct {
	nc  *nats.Conn
	log *zap.Logger
}

// Connect dials url. An empty url returns a nil Publisher.
func Connect(url string, log *zap.Logger) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	nc, err := nats.Connect(url,
		nats.Name("subreddits-api"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", url, err)
	}
	return New(nc, log), nil
}

func New(nc *nats.Conn, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{nc: nc, log: log}
}

func (p *Publisher) Publish(subject, userID string, props map[string]any) {
	if p == nil || p.nc == nil {
		return
	}
	data, err := json.Marshal(Event{
		EventID:    uuid.NewString(),
		Subject:    subject,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Properties: props,
	})
	if err != nil {
		p.log.Warn("events: marshal failed", zap.String("subject", subject), zap.Error(err))
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.log.Warn("events: publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.log.Warn("events: drain failed", zap.Error(err))
	}
}
