// Package runner executes page-check spec files: it builds a scope per
// page (live URL or local file), turns each declarative check into a query
// and runs it through the synchronized assertion layer, collecting results
// and resolution-latency metrics.
package runner
