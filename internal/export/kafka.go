// Package export streams committed snapshots to downstream dashboard
// consumers. Publishing is fire-and-forget: a full channel drops the
// snapshot rather than ever blocking the commit path.
package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"kilntwin/internal/config"
	"kilntwin/internal/model"
)

type KafkaPublisher struct {
	writer *kafka.Writer
	ch     chan map[string]model.SensorReading
	logger *slog.Logger
}

// StartKafka returns nil when export is disabled.
func StartKafka(ctx context.Context, cfg config.ExportConfig, logger *slog.Logger) *KafkaPublisher {
	if !cfg.Enabled {
		if logger != nil {
			logger.Info("kafka export disabled")
		}
		return nil
	}
	if logger != nil {
		logger.Info("kafka export enabled", "brokers", cfg.Brokers, "topic", cfg.Topic)
	}
	p := &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 200 * time.Millisecond,
		},
		ch:     make(chan map[string]model.SensorReading, cfg.ChannelBuffer),
		logger: logger,
	}
	go func() {
		defer p.writer.Close()
		for {
			select {
			case snap := <-p.ch:
				data, err := json.Marshal(snap)
				if err != nil {
					continue
				}
				if err := p.writer.WriteMessages(ctx, kafka.Message{Value: data}); err != nil {
					if ctx.Err() != nil {
						return
					}
					if p.logger != nil {
						p.logger.Warn("kafka write error", "err", err)
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return p
}

// Publish hands a snapshot to the writer goroutine without blocking.
func (p *KafkaPublisher) Publish(snapshot map[string]model.SensorReading) {
	select {
	case p.ch <- snapshot:
	default:
		if p.logger != nil {
			p.logger.Warn("export channel full, dropping snapshot")
		}
	}
}
