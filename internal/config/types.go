package config

import (
	"github.com/mattjoyce/catapult/internal/auth"
	"github.com/mattjoyce/catapult/internal/hook"
)

// Config represents the complete catapult configuration. It is loaded once
// at startup and treated as an immutable snapshot for the lifetime of the
// process; concurrent request handlers only ever read it.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Runner  RunnerConfig  `yaml:"runner"`
	History HistoryConfig `yaml:"history"`
	Hooks   []hook.Hook   `yaml:"hooks"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// ServerConfig defines the HTTP listener settings.
type ServerConfig struct {
	Listen string `yaml:"listen"`
	// SSLCertChain and SSLPrivateKey enable TLS when both are set.
	SSLCertChain  string `yaml:"ssl_cert_chain"`
	SSLPrivateKey string `yaml:"ssl_private_key"`
	// MaxBodySize caps request bodies in bytes.
	MaxBodySize int64 `yaml:"max_body_size"`
}

// AuthConfig defines request authentication. With neither the secret nor
// the basic-auth pair set, every request is accepted.
type AuthConfig struct {
	Secret            string `yaml:"secret"`
	BasicAuthUser     string `yaml:"basic_auth_user"`
	BasicAuthPassword string `yaml:"basic_auth_password"`
	// BasicAuthAndSecret requires both mechanisms to pass instead of
	// either one.
	BasicAuthAndSecret bool `yaml:"basic_auth_and_secret"`
}

// RunnerConfig defines how to reach the task-runner daemon. Exactly one of
// Port or UnixSocket must be set.
type RunnerConfig struct {
	Port       string `yaml:"port"`
	UnixSocket string `yaml:"unix_socket"`
	// Secret is the daemon's shared secret, sent during the connect
	// handshake. SecretFile reads it from disk instead, which is how the
	// runner daemon itself stores it.
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"`
}

// HistoryConfig defines dispatch history storage.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// DefaultMaxBodySize caps request bodies at 1 MB unless configured.
const DefaultMaxBodySize = 1048576

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
		Server: ServerConfig{
			Listen:      "127.0.0.1:8000",
			MaxBodySize: DefaultMaxBodySize,
		},
		Runner: RunnerConfig{
			Port: "6924",
		},
		History: HistoryConfig{
			Path: "./data/history.db",
		},
	}
}

// AuthPolicy converts the loaded auth settings into the policy package's
// config form.
func (c *Config) AuthPolicy() auth.Config {
	return auth.Config{
		Secret:            c.Auth.Secret,
		BasicAuthUser:     c.Auth.BasicAuthUser,
		BasicAuthPassword: c.Auth.BasicAuthPassword,
		RequireBoth:       c.Auth.BasicAuthAndSecret,
	}
}
