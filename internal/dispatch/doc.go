// Package dispatch orchestrates the per-request pipeline: resolve the
// named hook, authorize the request, render the command template, and hand
// the result to the runner daemon.
//
// The pipeline is a straight line with terminal exits at every stage:
//
//	resolve   → not_found
//	authorize → unauthorized
//	render    → render_failed
//	submit    → runner_error
//	          → dispatched
//
// Error disclosure follows the request's trust level: an unauthorized
// outcome never reveals which mechanism failed (that would aid credential
// guessing), while a render failure names the missing parameter, which
// leaks nothing secret and is what the caller needs to fix the request.
//
// The dispatcher holds no per-request state and performs no retries;
// submission failures are surfaced to the caller and any retry policy
// belongs to the runner daemon.
package dispatch
