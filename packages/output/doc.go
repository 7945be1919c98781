// Package output renders run results for humans (colored console) and
// machines (JSON).
package output
