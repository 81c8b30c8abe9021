package auth

import "testing"

func TestAuthorize(t *testing.T) {
	body := []byte(`{"test": "A test body"}`)
	secret := "A secret string"
	sigHeader := ComputeSignature(body, secret)
	basicHeader := BasicAuthHeader("TestUser", "TestPassword")

	withSecret := Config{Secret: secret}
	withBasic := Config{BasicAuthUser: "TestUser", BasicAuthPassword: "TestPassword"}
	withBoth := Config{
		Secret:            secret,
		BasicAuthUser:     "TestUser",
		BasicAuthPassword: "TestPassword",
	}
	requireBoth := withBoth
	requireBoth.RequireBoth = true

	tests := []struct {
		name        string
		cfg         Config
		sigHeader   string
		authHeader  string
		wantAllowed bool
	}{
		{
			name:        "nothing configured allows everything",
			cfg:         Config{},
			wantAllowed: true,
		},
		{
			name:        "nothing configured ignores stray headers",
			cfg:         Config{},
			sigHeader:   "sha1=deadbeef",
			authHeader:  "Basic cm9mbDpyb2Zs",
			wantAllowed: true,
		},
		{
			name:        "valid signature",
			cfg:         withSecret,
			sigHeader:   sigHeader,
			wantAllowed: true,
		},
		{
			name:        "secret configured but no signature",
			cfg:         withSecret,
			wantAllowed: false,
		},
		{
			name:        "invalid signature",
			cfg:         withSecret,
			sigHeader:   "sha1=a68ccdf08e2767a8307c8cda67a77f4046cb9e17",
			wantAllowed: false,
		},
		{
			name:        "valid basic auth",
			cfg:         withBasic,
			authHeader:  basicHeader,
			wantAllowed: true,
		},
		{
			name:        "invalid basic auth",
			cfg:         withBasic,
			authHeader:  "Basic cm9mbDpyb2Zs",
			wantAllowed: false,
		},
		{
			name:        "either mechanism suffices - signature only",
			cfg:         withBoth,
			sigHeader:   sigHeader,
			wantAllowed: true,
		},
		{
			name:        "either mechanism suffices - basic auth only",
			cfg:         withBoth,
			authHeader:  basicHeader,
			wantAllowed: true,
		},
		{
			name:        "failed signature with passing basic auth still allows",
			cfg:         withBoth,
			sigHeader:   "sha1=a68ccdf08e2767a8307c8cda67a77f4046cb9e17",
			authHeader:  basicHeader,
			wantAllowed: true,
		},
		{
			name:        "both fail",
			cfg:         withBoth,
			sigHeader:   "sha1=a68ccdf08e2767a8307c8cda67a77f4046cb9e17",
			authHeader:  "Basic cm9mbDpyb2Zs",
			wantAllowed: false,
		},
		{
			name:        "require both - both provided",
			cfg:         requireBoth,
			sigHeader:   sigHeader,
			authHeader:  basicHeader,
			wantAllowed: true,
		},
		{
			name:        "require both - only signature",
			cfg:         requireBoth,
			sigHeader:   sigHeader,
			wantAllowed: false,
		},
		{
			name:        "require both - only basic auth",
			cfg:         requireBoth,
			authHeader:  basicHeader,
			wantAllowed: false,
		},
		{
			name:        "require both - failed signature with passing basic auth",
			cfg:         requireBoth,
			sigHeader:   "sha1=a68ccdf08e2767a8307c8cda67a77f4046cb9e17",
			authHeader:  basicHeader,
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.cfg, body, tt.sigHeader, tt.authHeader)
			if d.Allowed != tt.wantAllowed {
				t.Errorf("Authorize().Allowed = %v, want %v (sig=%v basic=%v)",
					d.Allowed, tt.wantAllowed, d.Signature, d.BasicAuth)
			}
		})
	}
}

func TestAuthorizeRequireBothWithSingleMechanism(t *testing.T) {
	// require_both with only a secret configured: the one configured
	// mechanism passing is enough, a skipped mechanism is not a failure.
	body := []byte("body")
	cfg := Config{Secret: "s", RequireBoth: true}

	d := Authorize(cfg, body, ComputeSignature(body, "s"), "")
	if !d.Allowed {
		t.Errorf("Authorize().Allowed = false, want true (sig=%v basic=%v)", d.Signature, d.BasicAuth)
	}

	d = Authorize(cfg, body, "", "")
	if d.Allowed {
		t.Error("Authorize().Allowed = true, want false with missing signature")
	}
}

func TestConfigEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"empty", Config{}, false},
		{"secret only", Config{Secret: "s"}, true},
		{"basic auth pair", Config{BasicAuthUser: "u", BasicAuthPassword: "p"}, true},
		{"user without password", Config{BasicAuthUser: "u"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
