package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// Job types carried by reload messages.
const (
	JobTypeDatasetReload = "dataset.reload"
	JobTypeHealthCheck   = "health_check"
)

// ErrUnknownJobType is returned for messages with an unrecognized job type.
// Such messages are acked so they are not redelivered.
var ErrUnknownJobType = errors.New("unknown job type")

// PubSubHandler receives dataset reload requests from Pub/Sub.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	reloadJob        *ReloadJob
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	ReloadJob        *ReloadJob
	Logger           zerolog.Logger
}

// ReloadMessage is the message published after the store table changes.
type ReloadMessage struct {
	JobType   string `json:"job_type"`
	Source    string `json:"source,omitempty"`
	CheckOnly bool   `json:"check_only,omitempty"`
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)

	// Reloads replace the whole dataset; one at a time is enough.
	subscriber.ReceiveSettings.MaxOutstandingMessages = 1
	subscriber.ReceiveSettings.MaxExtension = 5 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		reloadJob:        cfg.ReloadJob,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages. It blocks until ctx is cancelled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting dataset reload listener")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logger := h.logger.With().
			Str("message_id", msg.ID).
			Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
			Logger()

		if ack := Dispatch(ctx, h.reloadJob, msg.Data, logger); ack {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// Dispatch runs the job described by data and reports whether the message
// should be acked. Malformed messages are nacked; unknown job types are acked.
func Dispatch(ctx context.Context, job *ReloadJob, data []byte, logger zerolog.Logger) bool {
	start := time.Now()

	var msg ReloadMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Error().Err(err).Msg("failed to parse message")
		return false
	}

	var (
		result *ReloadResult
		err    error
	)
	switch {
	case msg.JobType == JobTypeHealthCheck, msg.JobType == JobTypeDatasetReload && msg.CheckOnly:
		result, err = job.Check(ctx)
	case msg.JobType == JobTypeDatasetReload:
		result, err = job.Run(ctx)
	default:
		logger.Warn().Str("job_type", msg.JobType).Err(ErrUnknownJobType).Msg("ignoring message")
		return true
	}

	if err != nil {
		logger.Error().Err(err).Str("job_type", msg.JobType).Msg("job failed")
		return false
	}

	logger.Info().
		Str("job_type", msg.JobType).
		Str("source", msg.Source).
		Bool("check_only", result.CheckOnly).
		Int("points", result.Points).
		Dur("duration", time.Since(start)).
		Msg("job completed successfully")
	return true
}
