// Package retry provides simple exponential backoff retry logic for transient failures.
//
// # Overview
//
// This package offers a minimal retry mechanism with exponential backoff. In this
// client it backs exactly one operation: establishing the real-time session with
// the machine, where the delay schedule is part of the documented contract
// (500ms initial, doubling, capped at 4s).
//
// # Core Functions
//
//   - Do: Execute function with retry and exponential backoff
//   - DoWithResult: Execute function with retry, returns both result and error
//   - BackoffDelays: The planned sleep schedule for a Config, one entry per retry
//
// # Usage Examples
//
// Basic retry with defaults:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return dialMachine()
//	})
//
// Retry with result:
//
//	sess, err := retry.DoWithResult(ctx, cfg, func() (*session, error) {
//	    return openSession(addr)
//	})
//
// Custom configuration:
//
//	cfg := retry.Config{
//	    MaxAttempts:  5,
//	    InitialDelay: 500 * time.Millisecond,
//	    MaxDelay:     4 * time.Second,
//	    Multiplier:   2.0,
//	}
//	err := retry.Do(ctx, cfg, operation)
//
// Marking an error as not worth retrying (a bad machine address will not
// fix itself):
//
//	return retry.NonRetryable(fmt.Errorf("invalid host %q: %w", host, err))
//
// # Design Philosophy
//
// This package is intentionally minimal:
//
//   - No circuit breakers
//   - No metrics collection (instrument at the call site)
//   - No error classification (caller decides what to retry)
//   - Just exponential backoff, with jitter available but off by default
//     so the schedule stays predictable
//
// # Context Cancellation
//
// All retry operations respect context cancellation and stop immediately,
// whether cancellation arrives during the operation or during a backoff delay.
//
// # Thread Safety
//
// All functions are safe for concurrent use. The jitter mechanism uses a
// thread-safe random source to avoid contention.
package retry
