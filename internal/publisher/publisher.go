package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"github.com/nugget/timesource/internal/config"
)

const keepAliveSec = 30

// Publisher maintains a live broker session and publishes one Unix
// timestamp message per interval while connected. Create with [New]
// and drive with [Publisher.Run].
type Publisher struct {
	cfg      *config.Config
	clientID string
	logger   *slog.Logger
	clock    Clock
	dial     dialFunc

	interval       time.Duration
	connectTimeout time.Duration
	cooldown       time.Duration

	state stateCell

	mu   sync.Mutex
	sess session
}

// New creates a Publisher but does not connect. Call [Publisher.Run]
// to begin the connection and publish loop.
func New(cfg *config.Config, clientID string, logger *slog.Logger) *Publisher {
	p := &Publisher{
		cfg:            cfg,
		clientID:       clientID,
		logger:         logger,
		clock:          systemClock{},
		interval:       cfg.Publish.Interval(),
		connectTimeout: cfg.Publish.ConnectTimeout(),
		cooldown:       cfg.Publish.RetryCooldown(),
	}
	p.dial = p.pahoDial
	return p
}

// State returns the current connection state.
func (p *Publisher) State() State {
	return p.state.Load()
}

// Run connects to the broker and publishes a tick every interval until
// ctx is cancelled. Inability to establish the initial connection is
// fatal and returned to the caller; every later failure is logged and
// retried. On cancellation the session is released gracefully and Run
// returns nil.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("starting time publisher",
		"broker", p.cfg.Broker.Address(),
		"topic", p.timeTopic(),
		"interval", p.interval.String(),
	)

	if err := p.connect(ctx); err != nil {
		return fmt.Errorf("initial broker connection: %w", err)
	}
	defer p.shutdown()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if p.state.Load() == StateConnected {
			if err := p.publishTick(ctx); err != nil {
				switch {
				case errors.Is(err, ErrNotConnected):
					p.logger.Warn("not connected to broker, skipping publish")
				default:
					p.logger.Error("publish failed", "error", err)
				}
			}
		} else {
			p.logger.Warn("connection lost, attempting to reconnect")
			if err := p.connect(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				p.logger.Error("reconnect failed, waiting before retry",
					"error", err,
					"cooldown", p.cooldown.String(),
				)
				if !sleepCtx(ctx, p.cooldown) {
					return nil
				}
				continue // retry immediately, no interval sleep this cycle
			}
		}

		if !sleepCtx(ctx, p.interval) {
			return nil
		}
	}
}

// connect dials the broker and performs the MQTT connect handshake,
// bounded by the configured connect timeout. On success the session is
// installed, state moves to Connected, and a retained "online" birth
// message is published to the availability topic.
func (p *Publisher) connect(ctx context.Context) error {
	p.state.Store(StateConnecting)

	sess, err := p.dial(ctx)
	if err != nil {
		p.state.Store(StateDisconnected)
		return fmt.Errorf("dial %s: %w", p.cfg.Broker.Address(), err)
	}

	connCtx, cancel := context.WithTimeout(ctx, p.connectTimeout)
	defer cancel()

	connack, err := sess.Connect(connCtx, p.connectPacket())
	if connack != nil && connack.ReasonCode != 0 {
		p.state.Store(StateDisconnected)
		return &ConnectRefusedError{Code: connack.ReasonCode}
	}
	if err != nil {
		p.state.Store(StateDisconnected)
		if errors.Is(connCtx.Err(), context.DeadlineExceeded) {
			return ErrConnectTimeout
		}
		return fmt.Errorf("connect: %w", err)
	}

	p.mu.Lock()
	p.sess = sess
	p.mu.Unlock()
	p.state.Store(StateConnected)

	p.logger.Info("connected to broker",
		"broker", p.cfg.Broker.Address(),
		"client_id", p.clientID,
	)
	p.publishAvailability(ctx, sess, "online")
	return nil
}

// connectPacket builds the MQTT CONNECT packet, including the will
// message that flips the availability topic to "offline" if the
// process dies without a graceful disconnect.
func (p *Publisher) connectPacket() *paho.Connect {
	packet := &paho.Connect{
		ClientID:   p.clientID,
		KeepAlive:  keepAliveSec,
		CleanStart: true,
		WillMessage: &paho.WillMessage{
			Topic:   p.availabilityTopic(),
			Payload: []byte("offline"),
			QoS:     1,
			Retain:  true,
		},
	}
	if p.cfg.Broker.Username != "" {
		packet.Username = p.cfg.Broker.Username
		packet.UsernameFlag = true
	}
	if p.cfg.Broker.Password != "" {
		packet.Password = []byte(p.cfg.Broker.Password)
		packet.PasswordFlag = true
	}
	return packet
}

// publishTick publishes the current wall-clock time, truncated to
// whole seconds, to the time topic with QoS 1. While disconnected it
// performs no network I/O and returns [ErrNotConnected].
func (p *Publisher) publishTick(ctx context.Context) error {
	if p.state.Load() != StateConnected {
		return ErrNotConnected
	}

	p.mu.Lock()
	sess := p.sess
	p.mu.Unlock()
	if sess == nil {
		return ErrNotConnected
	}

	unixTime := p.clock.Now().Unix()
	payload, err := json.Marshal(TickMessage{UnixTime: unixTime})
	if err != nil {
		return fmt.Errorf("marshal tick: %w", err)
	}

	resp, err := sess.Publish(ctx, &paho.Publish{
		Topic:   p.timeTopic(),
		Payload: payload,
		QoS:     1,
	})
	if resp != nil && resp.ReasonCode >= 0x80 {
		return &BrokerRejectedError{Code: resp.ReasonCode}
	}
	if err != nil {
		// The session is demonstrably broken; flip the state now
		// rather than waiting for paho's disconnect callback.
		p.state.Store(StateDisconnected)
		return fmt.Errorf("publish %s: %w", p.timeTopic(), err)
	}

	p.logger.Info("published unix time",
		"unix_time", unixTime,
		"human_time", time.Unix(unixTime, 0).Format("2006-01-02 15:04:05"),
	)
	return nil
}

// publishAvailability publishes a retained availability status
// ("online" or "offline"). Failures are logged, never fatal.
func (p *Publisher) publishAvailability(ctx context.Context, sess session, status string) {
	if _, err := sess.Publish(ctx, &paho.Publish{
		Topic:   p.availabilityTopic(),
		Payload: []byte(status),
		QoS:     1,
		Retain:  true,
	}); err != nil {
		p.logger.Warn("availability publish failed",
			"status", status, "error", err)
	} else {
		p.logger.Debug("availability published", "status", status)
	}
}

// onConnectionDown is invoked from paho's background I/O goroutines
// when the session drops. It only updates the shared state cell and
// logs; the run loop observes the flag at the top of its next cycle.
func (p *Publisher) onConnectionDown(cause string, reasonCode byte) {
	p.state.Store(StateDisconnected)
	p.logger.Warn("disconnected from broker",
		"cause", cause,
		"reason_code", reasonCode,
	)
}

// shutdown releases the session on run-loop exit: retained "offline"
// availability, then a graceful DISCONNECT. Runs at most once, from
// Run's defer.
func (p *Publisher) shutdown() {
	p.mu.Lock()
	sess := p.sess
	p.sess = nil
	p.mu.Unlock()
	if sess == nil {
		return
	}

	if p.state.Load() == StateConnected {
		// The run context is already cancelled by the time we get
		// here, so give the farewell messages their own deadline.
		offCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		p.publishAvailability(offCtx, sess, "offline")
		if err := sess.Disconnect(&paho.Disconnect{ReasonCode: 0}); err != nil {
			p.logger.Debug("disconnect failed", "error", err)
		}
	}

	p.state.Store(StateDisconnected)
	p.logger.Info("time publisher stopped")
}

// --- Topic helpers ---

func (p *Publisher) timeTopic() string {
	return p.cfg.Publish.TopicPrefix + "/time"
}

func (p *Publisher) availabilityTopic() string {
	return p.timeTopic() + "/availability"
}

// sleepCtx sleeps for d or until ctx is cancelled. Returns false if cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
