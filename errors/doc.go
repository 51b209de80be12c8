// Package errors provides standardized error handling patterns for the Meticulous client.
//
// # Overview
//
// The errors package implements a three-class error classification system for
// a client that talks to a physical appliance over a flaky home network:
// Transient (temporary, retryable), Invalid (bad input or data, non-retryable),
// and Fatal (unrecoverable, stop processing).
//
// Classification lets the connection layer decide what to retry without
// hardcoded error string matching, and lets log-decoding callers treat a
// corrupt payload as data rather than as a reason to abort a batch scan.
//
// # Error Classification
//
//   - Transient: network timeouts, connection loss, failed requests (retry recommended)
//   - Invalid: disallowed actions, corrupt or unparseable payloads, absent history (do not retry)
//   - Fatal: invalid configuration, missing machine host (fix before running)
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Quick Start
//
// Use standard error variables for known conditions:
//
//	if session == nil {
//	    return errors.ErrNoConnection
//	}
//
// Wrap errors with component context:
//
//	if err := sess.dial(ctx); err != nil {
//	    return errors.WrapTransient(err, "stream", "Connect", "dial machine")
//	}
//
// Check classification for retry logic:
//
//	if errors.IsTransient(err) {
//	    // safe to retry with backoff
//	}
//	if errors.IsInvalid(err) {
//	    // corrupt shot log, skip the file
//	}
//
// # Error Wrapping Pattern
//
// All wrapped errors follow the format "component.method: action failed: %w":
//
//	stream.Connect: dial machine failed: dial tcp 10.0.0.4:8080: connect: connection refused
//	api.GetShotLog: decompress payload failed: decompression failed: invalid frame
//
// This gives every surfaced error an unambiguous origin without a stack trace.
//
// # Standard Error Variables
//
// Connection lifecycle: ErrNoConnection, ErrConnectionFailed, ErrConnectionLost,
// ErrConnectionTimeout, ErrAlreadyConnected, ErrMaxRetriesExceeded.
//
// Outbound commands: ErrInvalidAction (the action is outside the real-time
// allowlist; raised before any frame is emitted).
//
// Payload decoding: ErrDecompressionFailed (zstd frame present but corrupt),
// ErrParsingFailed (bytes are not valid JSON). Both classify as Invalid:
// retrying cannot repair the payload.
//
// History retrieval: ErrNoData (the machine has no recorded shots yet),
// ErrRequestFailed (transport-level failure, carries the HTTP status).
//
// # Integration with errors.As/Is
//
// ClassifiedError participates in standard unwrapping:
//
//	var ce *errors.ClassifiedError
//	if stderrors.As(err, &ce) {
//	    log.Printf("class=%s component=%s op=%s", ce.Class, ce.Component, ce.Operation)
//	}
//
//	if stderrors.Is(err, errors.ErrMaxRetriesExceeded) {
//	    // connect retry budget exhausted
//	}
package errors
