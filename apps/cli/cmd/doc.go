// Package cmd implements the domspec command line interface.
package cmd
