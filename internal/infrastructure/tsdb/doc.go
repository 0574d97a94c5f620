// Package tsdb provides time-series telemetry storage for Lumenweave Core.
//
// It writes compile and transition-planning telemetry to InfluxDB v2 using
// the official client with non-blocking batched writes.
//
// # Purpose
//
// This package records:
//   - Compile telemetry (duration, segment counts, skipped steps, degraded mode)
//   - Transition planning telemetry (transition counts, feasibility warnings)
//   - Clamp events where fixture limits truncated a choreographed move
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    Enabled:       true,
//	    URL:           "http://localhost:8086",
//	    Token:         "...",
//	    Org:           "lumenweave",
//	    Bucket:        "telemetry",
//	    BatchSize:     100,
//	    FlushInterval: 10,
//	}
//
//	client, err := tsdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteCompileMetrics("summer-tour", "chorus-1", elapsed, 128, 0, false)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
//
// # Error Handling
//
// Write operations are non-blocking; batch errors are reported via the
// SetOnError callback. Connection and health check errors are returned
// directly.
package tsdb
