package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/mattjoyce/catapult/internal/log"
)

const dialTimeout = 5 * time.Second

// Client submits tasks to a pueue-compatible daemon. Each submission opens
// a fresh connection, performs the secret handshake, delivers one Add
// message, and reads the daemon's reply.
type Client struct {
	opts   Options
	logger *slog.Logger
}

// NewClient creates a daemon client from options.
func NewClient(opts Options) *Client {
	return &Client{
		opts:   opts,
		logger: log.WithComponent("runner"),
	}
}

// addPayload mirrors the daemon's Add message body.
type addPayload struct {
	Command          string            `json:"command"`
	Path             string            `json:"path"`
	Envs             map[string]string `json:"envs"`
	Group            string            `json:"group"`
	EnqueueAt        *string           `json:"enqueue_at"`
	Dependencies     []int             `json:"dependencies"`
	Label            *string           `json:"label"`
	PrintTaskID      bool              `json:"print_task_id"`
	StartImmediately bool              `json:"start_immediately"`
	Stashed          bool              `json:"stashed"`
}

// Ping connects and performs the handshake without submitting anything.
// Used at startup to fail fast when the daemon is unreachable or the
// secret is wrong.
func (c *Client) Ping(ctx context.Context) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Submit delivers one rendered command to the daemon.
func (c *Client) Submit(ctx context.Context, sub Submission) error {
	conn, err := c.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	msg, err := json.Marshal(map[string]addPayload{
		"Add": {
			Command:      sub.Command,
			Path:         sub.Cwd,
			Envs:         map[string]string{},
			Group:        sub.Group,
			Dependencies: []int{},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal add message: %w", err)
	}
	if err := writeFrame(conn, msg); err != nil {
		return fmt.Errorf("send add message: %w", err)
	}

	reply, err := readFrame(conn)
	if err != nil {
		return fmt.Errorf("read daemon reply: %w", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(reply, &decoded); err != nil {
		return fmt.Errorf("parse daemon reply: %w", err)
	}
	if raw, ok := decoded["Failure"]; ok {
		var reason string
		_ = json.Unmarshal(raw, &reason)
		return fmt.Errorf("daemon rejected task: %s", reason)
	}

	c.logger.Debug("task submitted", "group", sub.Group)
	return nil
}

// connect dials the daemon and performs the secret handshake. The daemon
// answers a correct secret with a "hello" frame and drops the connection
// otherwise.
func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	network, addr, err := c.opts.address()
	if err != nil {
		return nil, err
	}

	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial runner daemon at %s: %w", addr, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	secret, err := c.opts.secret()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := writeFrame(conn, secret); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send daemon secret: %w", err)
	}

	hello, err := readFrame(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("daemon went away after connect, is the secret correct? %w", err)
	}
	if !bytes.Equal(hello, []byte("hello")) {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected daemon greeting")
	}

	return conn, nil
}
