// Package api provides the REST surface of the Meticulous espresso
// machine: control actions, shot history retrieval, and update status.
//
// The package wraps the machine's HTTP endpoints with context
// propagation, classified errors, and optional Prometheus metrics. The
// real-time event channel is the stream package; the two share the same
// configuration and error taxonomy.
//
// # Basic Usage
//
// Creating a client and running a shot:
//
//	cfg := config.DefaultConfig()
//	cfg.Host = "meticulous.local"
//
//	client, err := api.New(cfg)
//	if err != nil {
//	    return err
//	}
//
//	ctx := context.Background()
//	resp, err := client.ExecuteAction(ctx, types.ActionStart)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Status)
//
// ExecuteAction accepts the full action vocabulary (start, stop,
// continue, reset, tare, preheat, calibration, scale_master_calibration).
// Unknown actions fail before any request is made.
//
// # Shot History
//
// The machine stores shot logs in date buckets. Listings and retrieval
// compose:
//
//	dates, err := client.ListHistoryDates(ctx)
//	files, err := client.ListShotFiles(ctx, "2024-01-02")
//	doc, err := client.GetShotLog(ctx, "2024-01-02", files[0].URL)
//
//	// Or fetch the newest recorded shot in one call:
//	doc, err := client.GetLastShotLog(ctx)
//
// GetLastShotLog relies on the machine's fixed-width date/time naming:
// descending lexical order over bucket and file names is newest-first.
// An empty machine yields errors.ErrNoData.
//
// The single-entry endpoints report "nothing recorded" as an explicit
// boolean rather than an error:
//
//	shot, ok, err := client.GetCurrentShot(ctx)
//	if err != nil {
//	    return err
//	}
//	if !ok {
//	    fmt.Println("no shot in progress")
//	}
//
// # Payload Encoding
//
// Shot logs arrive zstd-compressed or as plain JSON depending on machine
// firmware. Bodies starting with the zstd frame magic (0xFD2FB528,
// little-endian on the wire) are decompressed before parsing; everything
// else is parsed directly. Both paths produce the same decoded document.
//
// # Error Handling
//
// Failures carry a classification from the errors package. Standard
// sentinels (ErrNoData, ErrRequestFailed, ErrDecompressionFailed,
// ErrParsingFailed) stay reachable through the wrap chain:
//
//	import (
//	    stderrors "errors"
//
//	    "github.com/MeticulousHome/meticulous-go/errors"
//	)
//
//	doc, err := client.GetLastShotLog(ctx)
//	if err != nil {
//	    switch {
//	    case stderrors.Is(err, errors.ErrNoData):
//	        // Machine has no recorded shots
//	    case errors.IsTransient(err):
//	        // Network or machine-side failure, safe to retry
//	    case errors.IsInvalid(err):
//	        // Corrupt payload or rejected request, do not retry
//	    }
//	}
//
// Transport failures and 5xx statuses are transient. Decode failures
// (ErrDecompressionFailed, ErrParsingFailed) and 4xx statuses are
// invalid and never retried. Machine error envelopes ({"error": ...,
// "status": ...}) are folded into the error message.
//
// # Metrics
//
// Request counts, latencies, and actions sent are recorded when a
// metrics registry is attached:
//
//	registry := metric.NewMetricsRegistry()
//	client, err := api.New(cfg, api.WithMetrics(registry))
//
// Without the option the client records nothing.
package api
