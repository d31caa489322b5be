// Package process provides shared process-level helpers for wheelsmith
// binaries: the standard fatal-error exit path used by main functions.
package process
