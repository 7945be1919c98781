// Package assert binds queries, the count policy and the retry evaluator
// into the caller-facing assertion surface.
//
// Assert* methods block until the document satisfies the assertion or the
// wait budget expires, then return nil or *ExpectationNotMet carrying the
// last resolution's message. Has* methods wrap the same evaluation and
// return a boolean instead, converting exactly ExpectationNotMet to false;
// every other error propagates unchanged.
//
// Presence and absence share one evaluation path with the success condition
// inverted, so the retry loop is never duplicated. Match-assertions resolve
// the selector against the node's container and test membership, which is a
// different question from counting matches under the node.
package assert
