// Package middleware implements the dispatch engine shared by the HTTP and
// socket transports: an ordered list of layers composed into one onion-style
// call.
//
// Each layer receives a transport context, a request and a continuation.
// Code before next() runs outside-in in registration order, code after it
// runs inside-out on the way back. A layer that returns without calling next
// ends the chain. Errors are returned unchanged to the caller of Run; the
// engine never recovers or retries.
//
// Calling next more than once from a single invocation is not guarded and
// re-runs the rest of the chain.
package middleware
