package main

import (
	"strings"
	"testing"
)

func TestRootTreeShape(t *testing.T) {
	command := root()
	if command.Name != "wheelsmith" {
		t.Errorf("root name = %q", command.Name)
	}
	if command.Run == nil {
		t.Error("root must accept a bare destination path")
	}

	names := make(map[string]bool)
	for _, sub := range command.Subcommands {
		names[sub.Name] = true
	}
	for _, want := range []string{"build", "clean", "doctor", "plan", "version"} {
		if !names[want] {
			t.Errorf("missing subcommand %q", want)
		}
	}
}

func TestRootBareDestinationRejectsMissingArg(t *testing.T) {
	// Dispatching with no arguments must not silently succeed: the
	// root has subcommands and no positional arg means no destination.
	err := root().Execute(nil)
	if err == nil {
		t.Fatal("expected error for bare invocation with no destination")
	}
}

func TestSubcommandSummariesPresent(t *testing.T) {
	for _, sub := range root().Subcommands {
		if strings.TrimSpace(sub.Summary) == "" {
			t.Errorf("subcommand %q has no summary", sub.Name)
		}
	}
}
