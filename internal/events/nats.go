package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const drainTimeout = 10 * time.Second

// NATSPublisher publishes events as NATS core messages keyed by event type
type NATSPublisher struct {
	nc     *nats.Conn
	closed chan struct{}
}

// ConnectNATS dials the NATS servers with reconnect handling
func ConnectNATS(servers string) (*NATSPublisher, error) {
	closed := make(chan struct{})
	opts := []nats.Option{
		nats.Name("tournament-arena"),
		nats.DrainTimeout(drainTimeout),
		nats.ClosedHandler(func(nc *nats.Conn) {
			close(closed)
		}),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(servers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("servers", servers).Info("Connected to NATS")
	return &NATSPublisher{nc: nc, closed: closed}, nil
}

// Publish sends the event on the subject named by its type
func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := event.Encode()
	if err != nil {
		return err
	}

	if err := p.nc.Publish(event.Type, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

// Close drains pending messages and blocks until the connection is closed
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		log.WithError(err).Warn("NATS drain failed")
		p.nc.Close()
	}

	select {
	case <-p.closed:
	case <-time.After(drainTimeout + time.Second):
		log.Warn("NATS drain did not finish, closing")
		p.nc.Close()
	}
}
