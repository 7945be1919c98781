// Package document provides the scopes assertions are evaluated against:
// a statically parsed tree, an arbitrary source function, and a live page
// refetched on every resolution with rate-limited polling.
package document
