package config

import (
	"fmt"
	"strings"
)

// validate checks internal consistency of a loaded configuration.
func validate(cfg *Config) error {
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen must not be empty")
	}
	if cfg.Server.MaxBodySize <= 0 {
		return fmt.Errorf("server.max_body_size must be positive")
	}

	// TLS settings come as a pair or not at all.
	if (cfg.Server.SSLCertChain == "") != (cfg.Server.SSLPrivateKey == "") {
		return fmt.Errorf("server.ssl_cert_chain and server.ssl_private_key must both be set to enable TLS")
	}

	// Basic-auth credentials come as a pair or not at all.
	if (cfg.Auth.BasicAuthUser == "") != (cfg.Auth.BasicAuthPassword == "") {
		return fmt.Errorf("auth.basic_auth_user and auth.basic_auth_password must both be set")
	}

	// Requiring both mechanisms only makes sense when both are configured.
	if cfg.Auth.BasicAuthAndSecret {
		if cfg.Auth.Secret == "" {
			return fmt.Errorf("auth.basic_auth_and_secret requires auth.secret")
		}
		if cfg.Auth.BasicAuthUser == "" || cfg.Auth.BasicAuthPassword == "" {
			return fmt.Errorf("auth.basic_auth_and_secret requires basic auth credentials")
		}
	}

	if cfg.Runner.Port == "" && cfg.Runner.UnixSocket == "" {
		return fmt.Errorf("runner: either port or unix_socket must be set")
	}
	if cfg.Runner.Secret != "" && cfg.Runner.SecretFile != "" {
		return fmt.Errorf("runner: secret and secret_file are mutually exclusive")
	}

	seen := make(map[string]struct{}, len(cfg.Hooks))
	for i, h := range cfg.Hooks {
		if h.Name == "" {
			return fmt.Errorf("hooks[%d]: name must not be empty", i)
		}
		if strings.ContainsAny(h.Name, "/ ") {
			return fmt.Errorf("hooks[%d] (%s): name must not contain slashes or spaces", i, h.Name)
		}
		if h.Command == "" {
			return fmt.Errorf("hooks[%d] (%s): command must not be empty", i, h.Name)
		}
		if _, dup := seen[h.Name]; dup {
			return fmt.Errorf("hooks[%d]: duplicate hook name %q", i, h.Name)
		}
		seen[h.Name] = struct{}{}
	}

	return nil
}
