package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattjoyce/catapult/internal/auth"
	"github.com/mattjoyce/catapult/internal/hook"
	"github.com/mattjoyce/catapult/internal/log"
	"github.com/mattjoyce/catapult/internal/runner"
	"github.com/mattjoyce/catapult/internal/template"
)

// Code is the terminal state of a dispatch attempt.
type Code int

const (
	CodeDispatched Code = iota
	CodeNotFound
	CodeUnauthorized
	CodeRenderFailed
	CodeRunnerError
)

func (c Code) String() string {
	switch c {
	case CodeDispatched:
		return "dispatched"
	case CodeNotFound:
		return "not_found"
	case CodeUnauthorized:
		return "unauthorized"
	case CodeRenderFailed:
		return "render_failed"
	case CodeRunnerError:
		return "runner_error"
	default:
		return "unknown"
	}
}

// Request carries everything the pipeline needs from one inbound call.
type Request struct {
	// HookName is the path segment naming the hook.
	HookName string
	// RawBody is the body exactly as received; MAC verification runs over
	// these bytes.
	RawBody []byte
	// SignatureHeader is the first-present signature header value.
	SignatureHeader string
	// AuthHeader is the Authorization header value.
	AuthHeader string
	// Parameters are the caller-supplied template parameters.
	Parameters map[string]string
}

// Outcome is the terminal result of one dispatch attempt. Message is safe
// to return to the caller; internal detail stays in the logs.
type Outcome struct {
	Code    Code
	Hook    string
	Message string
	// Command is the rendered command, set only on CodeDispatched.
	Command string
}

// Recorder persists dispatch attempts. The history store satisfies this;
// a nil recorder disables journaling.
type Recorder interface {
	Record(ctx context.Context, hook, outcome string, command, errText *string) (string, error)
}

// Dispatcher runs the per-request pipeline. It is safe for concurrent use:
// all fields are read-only after construction.
type Dispatcher struct {
	registry *hook.Registry
	authCfg  auth.Config
	runner   runner.Submitter
	recorder Recorder
	logger   *slog.Logger
}

// New creates a Dispatcher. recorder may be nil.
func New(registry *hook.Registry, authCfg auth.Config, submitter runner.Submitter, recorder Recorder) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		authCfg:  authCfg,
		runner:   submitter,
		recorder: recorder,
		logger:   log.WithComponent("dispatch"),
	}
}

// Dispatch runs one request through the pipeline and returns its terminal
// outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Outcome {
	hookLogger := d.logger.With("hook", req.HookName)

	h, ok := d.registry.Resolve(req.HookName)
	if !ok {
		hookLogger.Warn("unknown hook requested")
		return d.finish(ctx, Outcome{
			Code:    CodeNotFound,
			Hook:    req.HookName,
			Message: fmt.Sprintf("unknown hook %q", req.HookName),
		})
	}

	decision := auth.Authorize(d.authCfg, req.RawBody, req.SignatureHeader, req.AuthHeader)
	if !decision.Allowed {
		// Internal logs may say which mechanism failed; the outcome
		// message never does.
		hookLogger.Warn("request denied",
			"signature", decision.Signature.String(),
			"basic_auth", decision.BasicAuth.String(),
		)
		return d.finish(ctx, Outcome{
			Code:    CodeUnauthorized,
			Hook:    req.HookName,
			Message: "unauthorized",
		})
	}

	command, err := template.Render(h.Command, req.Parameters)
	if err != nil {
		var missing *template.MissingParamError
		msg := "failed to render command template"
		if errors.As(err, &missing) {
			msg = fmt.Sprintf("missing template parameter %q", missing.Param)
		}
		hookLogger.Warn("template render failed", "error", err)
		return d.finish(ctx, Outcome{
			Code:    CodeRenderFailed,
			Hook:    req.HookName,
			Message: msg,
		})
	}

	err = d.runner.Submit(ctx, runner.Submission{
		Command: command,
		Cwd:     h.Cwd,
		Group:   h.Group,
	})
	if err != nil {
		hookLogger.Error("runner submission failed", "error", err)
		return d.finish(ctx, Outcome{
			Code:    CodeRunnerError,
			Hook:    req.HookName,
			Message: "failed to submit task to runner",
		})
	}

	hookLogger.Info("command dispatched", "group", h.Group)
	return d.finish(ctx, Outcome{
		Code:    CodeDispatched,
		Hook:    req.HookName,
		Command: command,
		Message: "dispatched",
	})
}

// finish journals the outcome and returns it. Journaling is best effort:
// a history write failure is logged, never surfaced to the caller.
func (d *Dispatcher) finish(ctx context.Context, o Outcome) Outcome {
	if d.recorder == nil {
		return o
	}

	var command *string
	if o.Code == CodeDispatched {
		command = &o.Command
	}
	var errText *string
	if o.Code != CodeDispatched {
		errText = &o.Message
	}

	hookName := o.Hook
	if hookName == "" {
		hookName = "?"
	}
	if _, err := d.recorder.Record(ctx, hookName, o.Code.String(), command, errText); err != nil {
		d.logger.Error("failed to record dispatch history", "error", err)
	}
	return o
}
