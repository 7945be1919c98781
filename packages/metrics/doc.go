// Package metrics aggregates query-resolution latencies into an HDR
// histogram so run reports can show how long the document under test took
// to settle.
package metrics
