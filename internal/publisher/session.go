package publisher

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/eclipse/paho.golang/paho"
)

// session is the broker-facing subset of [paho.Client] the Publisher
// uses. Tests substitute a fake; production code always gets the real
// client from pahoDial.
type session interface {
	Connect(ctx context.Context, packet *paho.Connect) (*paho.Connack, error)
	Publish(ctx context.Context, packet *paho.Publish) (*paho.PublishResponse, error)
	Disconnect(packet *paho.Disconnect) error
}

// dialFunc opens a network connection to the broker and wraps it in a
// protocol session. The returned session has not yet sent CONNECT.
type dialFunc func(ctx context.Context) (session, error)

// pahoDial dials the broker over TCP (or TLS when configured) and
// constructs a paho v5 client around the connection. Paho owns the
// background I/O loop; its disconnect callbacks are wired to
// onConnectionDown, which only updates the shared state cell.
func (p *Publisher) pahoDial(ctx context.Context) (session, error) {
	addr := p.cfg.Broker.Address()
	dialer := net.Dialer{Timeout: p.connectTimeout}

	var conn net.Conn
	var err error
	if p.cfg.Broker.TLS {
		tlsDialer := tls.Dialer{
			NetDialer: &dialer,
			Config:    &tls.Config{MinVersion: tls.VersionTLS12},
		}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}

	return paho.NewClient(paho.ClientConfig{
		Conn:     conn,
		ClientID: p.clientID,
		OnServerDisconnect: func(d *paho.Disconnect) {
			p.onConnectionDown("server disconnect", d.ReasonCode)
		},
		OnClientError: func(err error) {
			p.logger.Debug("mqtt client error", "error", err)
			p.onConnectionDown("client error", 0)
		},
	}), nil
}
