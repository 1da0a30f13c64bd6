// Package grpc provides the gRPC transport for publishing evaluation
// results to a compliance server. It owns connection lifecycle and
// authentication metadata; callers build their service clients on top of
// Conn().
package grpc

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"

	"github.com/licomply/toolkit/pkg/errors"
	"github.com/licomply/toolkit/pkg/log"
)

// Config holds the transport configuration.
type Config struct {
	// Address of the compliance server (host:port)
	Address string `yaml:"address" json:"address"`

	// APIKey authenticates every call
	APIKey string `yaml:"api_key" json:"api_key"`

	// ClientID identifies this toolkit instance to the server
	ClientID string `yaml:"client_id" json:"client_id"`

	// UseTLS enables transport security
	UseTLS bool `yaml:"use_tls" json:"use_tls"`

	// InsecureSkipVerify disables certificate verification
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" json:"insecure_skip_verify"`

	// Keepalive settings
	KeepAliveTime    time.Duration `yaml:"keepalive_time" json:"keepalive_time"`
	KeepAliveTimeout time.Duration `yaml:"keepalive_timeout" json:"keepalive_timeout"`

	// Message size limits; evaluation results for large trees are big
	MaxRecvMsgSize int `yaml:"max_recv_msg_size" json:"max_recv_msg_size"`
	MaxSendMsgSize int `yaml:"max_send_msg_size" json:"max_send_msg_size"`
}

// DefaultConfig returns the default transport configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:          "localhost:9090",
		UseTLS:           true,
		KeepAliveTime:    30 * time.Second,
		KeepAliveTimeout: 10 * time.Second,
		MaxRecvMsgSize:   16 * 1024 * 1024,
		MaxSendMsgSize:   16 * 1024 * 1024,
	}
}

// Transport manages one client connection to the compliance server.
type Transport struct {
	mu     sync.RWMutex
	conn   *grpc.ClientConn
	config *Config
	logger log.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the transport's logger.
func WithLogger(logger log.Logger) Option {
	return func(t *Transport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTransport creates a transport; no connection is opened until Connect.
func NewTransport(cfg *Config, opts ...Option) *Transport {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	t := &Transport{config: cfg, logger: log.NopLogger{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Connect creates the client connection. Connecting twice is a no-op.
func (t *Transport) Connect() error {
	const op = "grpc.Connect"

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return nil
	}

	opts := []grpc.DialOption{
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(t.config.MaxRecvMsgSize),
			grpc.MaxCallSendMsgSize(t.config.MaxSendMsgSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                t.config.KeepAliveTime,
			Timeout:             t.config.KeepAliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithUnaryInterceptor(t.unaryAuthInterceptor()),
		grpc.WithStreamInterceptor(t.streamAuthInterceptor()),
	}

	if t.config.UseTLS {
		tlsConfig := &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: t.config.InsecureSkipVerify, //nolint:gosec // Intentional for dev environments
		}
		opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(t.config.Address, opts...)
	if err != nil {
		return errors.E(op, errors.KindNetwork, "create client", err)
	}
	t.conn = conn
	t.logger.Debug("transport ready for %s (tls: %v)", t.config.Address, t.config.UseTLS)
	return nil
}

// Close tears down the connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

// Conn returns the client connection, or a not-connected error before
// Connect has been called.
func (t *Transport) Conn() (*grpc.ClientConn, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.conn == nil {
		return nil, errors.ErrNotConnected
	}
	return t.conn, nil
}

// IsConnected reports whether Connect has been called successfully.
func (t *Transport) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.conn != nil
}

func (t *Transport) unaryAuthInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{},
		cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(t.withAuthMetadata(ctx), method, req, reply, cc, opts...)
	}
}

func (t *Transport) streamAuthInterceptor() grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn,
		method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		return streamer(t.withAuthMetadata(ctx), desc, cc, method, opts...)
	}
}

func (t *Transport) withAuthMetadata(ctx context.Context) context.Context {
	md := metadata.New(map[string]string{
		"authorization": "Bearer " + t.config.APIKey,
	})
	if t.config.ClientID != "" {
		md.Set("x-client-id", t.config.ClientID)
	}
	return metadata.NewOutgoingContext(ctx, md)
}
