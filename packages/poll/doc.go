// Package poll implements the retry loop behind every domspec assertion.
//
// A document under test keeps changing after scripts run, so a single
// synchronous check is unreliable. The evaluator re-resolves the query
// against the scope's current state, returns as soon as the caller's
// decision function is satisfied, and otherwise retries with a bounded
// pause until the wait budget expires. The failure reported on timeout
// always comes from the last resolution performed, never a stale one.
package poll
