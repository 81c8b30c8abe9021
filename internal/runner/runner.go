// Package runner submits rendered commands to the external task-runner
// daemon. The daemon owns process execution, output capture, and retries;
// this package only delivers one submission per request over the daemon's
// framed-socket protocol.
package runner

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Submission is one rendered command handed to the runner.
type Submission struct {
	// Command is the fully rendered command string, executed by the
	// runner through a shell.
	Command string
	// Cwd is the working directory for execution.
	Cwd string
	// Group is the runner group the task is queued into.
	Group string
}

// Submitter is the outbound interface the dispatcher depends on.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) error
}

// Options configures the daemon connection. Exactly one of Port or
// UnixSocket must be set.
type Options struct {
	// Port is a TCP port on localhost.
	Port string
	// UnixSocket is a filesystem socket path.
	UnixSocket string
	// Secret is the daemon's shared secret, presented during the connect
	// handshake.
	Secret string
	// SecretFile reads the secret from disk instead, the way the daemon
	// itself stores it.
	SecretFile string
}

// secret resolves the shared secret from Options.
func (o Options) secret() ([]byte, error) {
	if o.Secret != "" {
		return []byte(o.Secret), nil
	}
	if o.SecretFile != "" {
		data, err := os.ReadFile(o.SecretFile)
		if err != nil {
			return nil, fmt.Errorf("read runner secret file: %w", err)
		}
		return []byte(strings.TrimSpace(string(data))), nil
	}
	return nil, nil
}

// address returns the dial network and address for the configured target.
func (o Options) address() (network, addr string, err error) {
	switch {
	case o.UnixSocket != "":
		return "unix", o.UnixSocket, nil
	case o.Port != "":
		return "tcp", "127.0.0.1:" + o.Port, nil
	default:
		return "", "", fmt.Errorf("runner: either a port or a unix socket path must be configured")
	}
}
