// Package app wires the compiler together: it loads model definitions
// and constant data, drives the declaration-by-declaration compilation
// pass, and writes the resulting LP text. The CLI is a thin shell around
// this package, so tests can exercise whole runs in-process.
package app
