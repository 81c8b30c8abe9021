// Package webhook exposes the HTTP surface: one endpoint per configured
// hook at /{name}, accepting GET (no parameters) and POST (JSON body with
// a "parameters" object).
//
// The handler's only jobs are reading the raw body, extracting the
// relevant headers, and mapping the dispatcher's outcome to a status code:
//
//	dispatched    → 202 Accepted
//	not_found     → 404 Not Found
//	unauthorized  → 401 Unauthorized (generic body, no mechanism detail)
//	render_failed → 400 Bad Request (names the missing parameter)
//	runner_error  → 502 Bad Gateway
//
// The body is read before parsing and passed to the dispatcher byte for
// byte: the MAC is computed over the wire bytes, and re-serializing parsed
// JSON would change them.
package webhook
