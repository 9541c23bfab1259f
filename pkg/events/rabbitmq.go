package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/stuimpact/stuimpactweb2/pkg/logger"
)

const (
	publishTimeout = 5 * time.Second
	reconnectDelay = 5 * time.Second
)

var errClosed = errors.New("rabbitmq publisher closed")

// RabbitMQPublisher publishes JSON envelopes to a durable topic exchange and
// reconnects in the background when the broker drops the connection.
type RabbitMQPublisher struct {
	url      string
	exchange string
	log      zerolog.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	done    chan struct{}
}

func NewRabbitMQPublisher(url, exchange string) (*RabbitMQPublisher, error) {
	p := &RabbitMQPublisher{
		url:      url,
		exchange: exchange,
		log:      logger.Component("events"),
		done:     make(chan struct{}),
	}
	conn, ch, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.conn, p.channel = conn, ch
	p.supervise(conn, ch)

	p.log.Info().Str("exchange", exchange).Msg("rabbitmq publisher ready")
	return p, nil
}

func (p *RabbitMQPublisher) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	return conn, ch, nil
}

// Publish marshals payload inside an Envelope and sends it persistently.
func (p *RabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(Envelope{Type: routingKey, OccurredAt: time.Now().UTC(), Data: payload})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.RLock()
	ch := p.channel
	p.mu.RUnlock()
	if ch == nil {
		return errClosed
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	err = ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
		MessageId:    uuid.NewString(),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	p.log.Debug().Str("routing_key", routingKey).Int("body_size", len(body)).Msg("event published")
	return nil
}

// supervise registers close notifications before handing them to watch so a
// failure right after dial is not missed.
func (p *RabbitMQPublisher) supervise(conn *amqp.Connection, ch *amqp.Channel) {
	connClosed := conn.NotifyClose(make(chan *amqp.Error, 1))
	chClosed := ch.NotifyClose(make(chan *amqp.Error, 1))
	go p.watch(conn, connClosed, chClosed)
}

// watch waits for the connection or its channel to fail and then redials.
// A channel exception leaves the connection open, so the connection is
// dropped too and both are rebuilt.
func (p *RabbitMQPublisher) watch(conn *amqp.Connection, connClosed, chClosed <-chan *amqp.Error) {
	select {
	case <-p.done:
		return
	case amqpErr := <-connClosed:
		if amqpErr == nil {
			return
		}
		p.log.Error().Err(amqpErr).Msg("rabbitmq connection lost, reconnecting")
	case amqpErr := <-chClosed:
		if amqpErr == nil {
			return
		}
		p.log.Error().Err(amqpErr).Msg("rabbitmq channel closed, reconnecting")
		if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			p.log.Warn().Err(err).Msg("close rabbitmq connection")
		}
	}

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-p.done:
				return
			case <-time.After(reconnectDelay):
			}
		}
		conn, ch, err := p.dial()
		if err != nil {
			p.log.Error().Err(err).Msg("rabbitmq reconnect failed")
			continue
		}
		p.supervise(conn, ch)
		if !p.install(conn, ch) {
			ch.Close()
			conn.Close()
			return
		}
		p.log.Info().Msg("rabbitmq reconnected")
		return
	}
}

// install swaps in a fresh connection unless Close already ran.
func (p *RabbitMQPublisher) install(conn *amqp.Connection, ch *amqp.Channel) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
		return false
	default:
	}
	p.conn, p.channel = conn, ch
	return true
}

// HealthCheck reports whether the connection and its channel are usable.
func (p *RabbitMQPublisher) HealthCheck(context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	if p.channel == nil || p.channel.IsClosed() {
		return errors.New("rabbitmq channel is closed")
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	select {
	case <-p.done:
		return nil
	default:
		close(p.done)
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.log.Warn().Err(err).Msg("close rabbitmq channel")
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
		p.conn = nil
	}
	return nil
}
