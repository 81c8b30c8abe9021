package webhook

// Config holds webhook server configuration.
type Config struct {
	Listen string
	// MaxBodySize caps request bodies in bytes.
	MaxBodySize int64
	// SSLCertChain and SSLPrivateKey enable TLS when both are set.
	SSLCertChain  string
	SSLPrivateKey string
	// BasicAuthConfigured controls whether 401 responses carry a
	// WWW-Authenticate challenge.
	BasicAuthConfigured bool
}

// payload is the accepted POST body shape.
type payload struct {
	Parameters map[string]string `json:"parameters"`
}

// TriggerResponse is the JSON response for successful triggers.
type TriggerResponse struct {
	Status string `json:"status"`
	Hook   string `json:"hook"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
}
