package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// Signature header names, first present wins. X-Hub-Signature is the name
// GitHub used for its HMAC-SHA1 webhook signatures and is kept for
// compatibility with providers that imitate it.
const (
	HeaderSignature    = "Signature"
	HeaderHubSignature = "X-Hub-Signature"
)

const signaturePrefix = "sha1="

// SignatureHeader extracts the signature value from a request header set.
// Returns the empty string if neither accepted header is present.
func SignatureHeader(h http.Header) string {
	if v := h.Get(HeaderSignature); v != "" {
		return v
	}
	return h.Get(HeaderHubSignature)
}

// VerifySignature checks an HMAC-SHA1 signature header of the form
// "sha1=<hex>" against the raw request body.
//
// The raw body bytes must be exactly as received on the wire; re-serializing
// a parsed payload would change whitespace or key order and break the MAC.
func VerifySignature(body []byte, header, secret string) Result {
	if secret == "" {
		return ResultSkipped
	}
	if header == "" {
		return ResultFailed
	}

	if !strings.HasPrefix(header, signaturePrefix) {
		return ResultFailed
	}
	presented, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return ResultFailed
	}

	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	if !constantTimeEqual(expected, presented) {
		return ResultFailed
	}
	return ResultPassed
}

// ComputeSignature returns the "sha1=<hex>" header value for a body and
// secret. Used by tests and by operators generating requests manually.
func ComputeSignature(body []byte, secret string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// constantTimeEqual compares two byte slices without leaking timing
// information. Both sides are folded through SHA-256 first so the compare
// always runs over fixed-length buffers; a length mismatch fails inside the
// constant-time compare rather than on an early length branch.
func constantTimeEqual(a, b []byte) bool {
	da := sha256.Sum256(a)
	db := sha256.Sum256(b)
	return subtle.ConstantTimeCompare(da[:], db[:]) == 1
}
