package auth

// Config holds the process-wide authentication settings. It is loaded once
// at startup and applies uniformly to every hook; there is no per-hook
// override.
type Config struct {
	// Secret is the shared HMAC key. Empty disables signature verification.
	Secret string
	// BasicAuthUser and BasicAuthPassword enable basic-auth verification
	// when both are set.
	BasicAuthUser     string
	BasicAuthPassword string
	// RequireBoth demands that every configured mechanism passes. When
	// false, satisfying any one configured mechanism suffices.
	RequireBoth bool
}

// Enabled reports whether any authentication mechanism is configured.
// With nothing configured every request is implicitly authorized; that is
// the operator's call, not ours.
func (c Config) Enabled() bool {
	return c.Secret != "" || (c.BasicAuthUser != "" && c.BasicAuthPassword != "")
}

// Decision is the combined allow/deny outcome for one request. The
// per-mechanism results are kept for internal logging only; callers must
// not expose them to the requester.
type Decision struct {
	Allowed   bool
	Signature Result
	BasicAuth Result
}

// Authorize evaluates both mechanisms against a request and combines them
// per the configured requirement.
func Authorize(cfg Config, body []byte, signatureHeader, authHeader string) Decision {
	d := Decision{
		Signature: VerifySignature(body, signatureHeader, cfg.Secret),
		BasicAuth: VerifyBasicAuth(authHeader, cfg.BasicAuthUser, cfg.BasicAuthPassword),
	}

	// Nothing configured: open access.
	if d.Signature == ResultSkipped && d.BasicAuth == ResultSkipped {
		d.Allowed = true
		return d
	}

	if cfg.RequireBoth {
		d.Allowed = d.Signature != ResultFailed && d.BasicAuth != ResultFailed
		return d
	}

	d.Allowed = d.Signature == ResultPassed || d.BasicAuth == ResultPassed
	return d
}
