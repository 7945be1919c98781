// Package parser reads declarative page-check spec files.
//
// A spec file is YAML: a list of pages (by url or local file), each with
// checks naming a locator kind, a locator and optional count constraints,
// wait override and overlays. Files are validated against a JSON schema at
// load time, so unsupported keys fail before anything runs.
package parser
