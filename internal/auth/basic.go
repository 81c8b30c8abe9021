package auth

import (
	"encoding/base64"
	"strings"
)

const basicPrefix = "Basic "

// VerifyBasicAuth checks an "Authorization: Basic <base64>" header against
// configured credentials. Both fields are compared in constant time, and the
// two comparisons are combined without short-circuiting so a correct
// username alone does not change response timing.
func VerifyBasicAuth(header, user, password string) Result {
	if user == "" || password == "" {
		return ResultSkipped
	}
	if header == "" {
		return ResultFailed
	}

	if !strings.HasPrefix(header, basicPrefix) {
		return ResultFailed
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, basicPrefix))
	if err != nil {
		return ResultFailed
	}

	presentedUser, presentedPass, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return ResultFailed
	}

	userOK := constantTimeEqual([]byte(presentedUser), []byte(user))
	passOK := constantTimeEqual([]byte(presentedPass), []byte(password))
	if userOK && passOK {
		return ResultPassed
	}
	return ResultFailed
}

// BasicAuthHeader encodes credentials into an Authorization header value.
func BasicAuthHeader(user, password string) string {
	return basicPrefix + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
}
