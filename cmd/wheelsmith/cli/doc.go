// Package cli provides the command-line framework for the wheelsmith CLI.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in cmd/wheelsmith/main.go
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// The root command sets both Run and Subcommands: a first argument that
// does not match a subcommand name falls through to Run, so the common
// invocation "wheelsmith /path/to/destination" works without naming the
// build subcommand.
package cli
