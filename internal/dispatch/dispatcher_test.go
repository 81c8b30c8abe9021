package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mattjoyce/catapult/internal/auth"
	"github.com/mattjoyce/catapult/internal/hook"
	"github.com/mattjoyce/catapult/internal/runner"
)

// mockSubmitter captures submissions for inspection.
type mockSubmitter struct {
	submissions []runner.Submission
	err         error
}

func (m *mockSubmitter) Submit(ctx context.Context, sub runner.Submission) error {
	m.submissions = append(m.submissions, sub)
	return m.err
}

// mockRecorder captures history records.
type mockRecorder struct {
	hooks    []string
	outcomes []string
	commands []*string
	errTexts []*string
	err      error
}

func (m *mockRecorder) Record(ctx context.Context, hook, outcome string, command, errText *string) (string, error) {
	m.hooks = append(m.hooks, hook)
	m.outcomes = append(m.outcomes, outcome)
	m.commands = append(m.commands, command)
	m.errTexts = append(m.errTexts, errText)
	return "entry-id", m.err
}

func testRegistry(t *testing.T) *hook.Registry {
	t.Helper()
	reg, err := hook.NewRegistry([]hook.Hook{
		{Name: "ls", Command: "/bin/ls {{param1}} {{param2}}", Cwd: "/tmp", Group: "webhook"},
		{Name: "plain", Command: "/usr/bin/uptime", Cwd: "/", Group: "ops"},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return reg
}

func TestDispatchSuccess(t *testing.T) {
	sub := &mockSubmitter{}
	rec := &mockRecorder{}
	secret := "A secret string"
	body := []byte(`{"parameters": {"param1": "-al", "param2": "/tmp"}}`)

	d := New(testRegistry(t), auth.Config{Secret: secret}, sub, rec)
	out := d.Dispatch(context.Background(), Request{
		HookName:        "ls",
		RawBody:         body,
		SignatureHeader: auth.ComputeSignature(body, secret),
		Parameters:      map[string]string{"param1": "-al", "param2": "/tmp"},
	})

	if out.Code != CodeDispatched {
		t.Fatalf("Code = %v, want dispatched (message: %s)", out.Code, out.Message)
	}
	if out.Command != "/bin/ls -al /tmp" {
		t.Errorf("Command = %q, want /bin/ls -al /tmp", out.Command)
	}

	if len(sub.submissions) != 1 {
		t.Fatalf("submissions = %d, want 1", len(sub.submissions))
	}
	got := sub.submissions[0]
	if got.Command != "/bin/ls -al /tmp" {
		t.Errorf("submitted command = %q, want /bin/ls -al /tmp", got.Command)
	}
	if got.Cwd != "/tmp" {
		t.Errorf("submitted cwd = %q, want /tmp", got.Cwd)
	}
	if got.Group != "webhook" {
		t.Errorf("submitted group = %q, want webhook", got.Group)
	}

	if len(rec.outcomes) != 1 || rec.outcomes[0] != "dispatched" {
		t.Errorf("recorded outcomes = %v, want [dispatched]", rec.outcomes)
	}
	if rec.commands[0] == nil || *rec.commands[0] != "/bin/ls -al /tmp" {
		t.Errorf("recorded command = %v, want rendered command", rec.commands[0])
	}
}

func TestDispatchUnknownHook(t *testing.T) {
	sub := &mockSubmitter{}
	secret := "s"
	body := []byte("{}")

	d := New(testRegistry(t), auth.Config{Secret: secret}, sub, nil)
	// Valid auth does not rescue an unknown hook name.
	out := d.Dispatch(context.Background(), Request{
		HookName:        "missing",
		RawBody:         body,
		SignatureHeader: auth.ComputeSignature(body, secret),
	})

	if out.Code != CodeNotFound {
		t.Fatalf("Code = %v, want not_found", out.Code)
	}
	if len(sub.submissions) != 0 {
		t.Error("nothing should reach the runner for an unknown hook")
	}
}

func TestDispatchUnauthorized(t *testing.T) {
	sub := &mockSubmitter{}
	rec := &mockRecorder{}
	body := []byte("{}")

	d := New(testRegistry(t), auth.Config{Secret: "right"}, sub, rec)
	out := d.Dispatch(context.Background(), Request{
		HookName:        "plain",
		RawBody:         body,
		SignatureHeader: auth.ComputeSignature(body, "wrong"),
	})

	if out.Code != CodeUnauthorized {
		t.Fatalf("Code = %v, want unauthorized", out.Code)
	}
	// The message must not reveal which mechanism failed, nor echo any
	// credential material.
	if out.Message != "unauthorized" {
		t.Errorf("Message = %q, want generic unauthorized", out.Message)
	}
	if len(sub.submissions) != 0 {
		t.Error("nothing should reach the runner when denied")
	}
	if rec.errTexts[0] == nil || strings.Contains(*rec.errTexts[0], "sha1") {
		t.Errorf("recorded error %v must not contain signature material", rec.errTexts[0])
	}
}

func TestDispatchRenderFailed(t *testing.T) {
	sub := &mockSubmitter{}
	rec := &mockRecorder{}

	d := New(testRegistry(t), auth.Config{}, sub, rec)
	out := d.Dispatch(context.Background(), Request{
		HookName:   "ls",
		RawBody:    []byte("{}"),
		Parameters: map[string]string{"param1": "-al"},
	})

	if out.Code != CodeRenderFailed {
		t.Fatalf("Code = %v, want render_failed", out.Code)
	}
	// Naming the missing parameter leaks no secret and tells the caller
	// exactly what to fix.
	if !strings.Contains(out.Message, "param2") {
		t.Errorf("Message = %q, want it to name param2", out.Message)
	}
	if len(sub.submissions) != 0 {
		t.Error("nothing should reach the runner on render failure")
	}
	if rec.outcomes[0] != "render_failed" {
		t.Errorf("recorded outcome = %q, want render_failed", rec.outcomes[0])
	}
}

func TestDispatchRunnerError(t *testing.T) {
	sub := &mockSubmitter{err: errors.New("connection refused")}
	rec := &mockRecorder{}

	d := New(testRegistry(t), auth.Config{}, sub, rec)
	out := d.Dispatch(context.Background(), Request{
		HookName: "plain",
		RawBody:  []byte("{}"),
	})

	if out.Code != CodeRunnerError {
		t.Fatalf("Code = %v, want runner_error", out.Code)
	}
	if rec.outcomes[0] != "runner_error" {
		t.Errorf("recorded outcome = %q, want runner_error", rec.outcomes[0])
	}
}

func TestDispatchExtraParametersIgnored(t *testing.T) {
	sub := &mockSubmitter{}

	d := New(testRegistry(t), auth.Config{}, sub, nil)
	out := d.Dispatch(context.Background(), Request{
		HookName: "ls",
		RawBody:  []byte("{}"),
		Parameters: map[string]string{
			"param1": "-al", "param2": "/tmp", "param3": "ignored",
		},
	})

	if out.Code != CodeDispatched {
		t.Fatalf("Code = %v, want dispatched", out.Code)
	}
	if out.Command != "/bin/ls -al /tmp" {
		t.Errorf("Command = %q, want /bin/ls -al /tmp", out.Command)
	}
}

func TestDispatchRecorderFailureDoesNotChangeOutcome(t *testing.T) {
	sub := &mockSubmitter{}
	rec := &mockRecorder{err: errors.New("disk full")}

	d := New(testRegistry(t), auth.Config{}, sub, rec)
	out := d.Dispatch(context.Background(), Request{
		HookName: "plain",
		RawBody:  []byte("{}"),
	})

	if out.Code != CodeDispatched {
		t.Errorf("Code = %v, want dispatched despite recorder failure", out.Code)
	}
}

func TestCodeString(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{CodeDispatched, "dispatched"},
		{CodeNotFound, "not_found"},
		{CodeUnauthorized, "unauthorized"},
		{CodeRenderFailed, "render_failed"},
		{CodeRunnerError, "runner_error"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("Code(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}
