// Package history stores run results in a local SQLite database and lets
// the CLI list past runs and query stored result documents by path.
package history
