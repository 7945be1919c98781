// Package config loads and merges domspec configuration: the process-wide
// default wait budget, polling interval, fetch limits and reporter
// selection. Config files are JSON and discovered by conventional names in
// the working directory; per-call and per-flag overrides always win.
package config
