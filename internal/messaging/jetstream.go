package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/vinylfunders/vf-presale-engine/internal/adapter"
	"github.com/vinylfunders/vf-presale-engine/internal/logger"
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type jetStreamPublisher struct {
	nc   adapter.NatsConn
	js   adapter.JetStream
	json adapter.JSON
}

// NewJetStreamPublisher creates a new NATS JetStream publisher
func NewJetStreamPublisher(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	// The stream itself is provisioned by ops; subjects published here must
	// fall under its presales.> filter
	logger.Info("Connected to NATS JetStream",
		zap.String("url", cfg.URL),
		zap.String("stream", cfg.StreamName),
	)

	return &jetStreamPublisher{
		nc:   nc,
		js:   js,
		json: jsonAdapter,
	}, nil
}

// PublishCampaignEvent publishes a threshold transition event to NATS JetStream
func (p *jetStreamPublisher) PublishCampaignEvent(ctx context.Context, event *CampaignEvent) error {
	logger.Debug("Publishing campaign event", zap.Any("event", event))

	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Format: presales.campaign.{event_type}
	subject := fmt.Sprintf("presales.campaign.%s", event.EventType)

	// The ULID event id doubles as the Nats-Msg-Id so the stream dedupes
	// a republish after reconnect
	var opts []jetstream.PublishOpt
	if event.EventID != "" {
		opts = append(opts, jetstream.WithMsgID(event.EventID))
	}

	if _, err := p.js.Publish(ctx, subject, data, opts...); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close closes the NATS connection
func (p *jetStreamPublisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
