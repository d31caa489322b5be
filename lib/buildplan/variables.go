package buildplan

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// variablePattern matches ${NAME} references in strings. Only the
// braced form is recognized — bare $NAME is left for shell
// interpretation. Variable names must start with a letter or
// underscore and contain only letters, digits, and underscores.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ResolveVariables merges variable sources according to plan
// resolution order (lowest to highest priority):
//
//  1. Declared defaults from plan variable definitions
//  2. Environment lookup via the environ function
//
// Returns the merged variable map. Returns an error if any required
// variable (per its declaration) has no value from any source.
//
// The environ function is typically os.Getenv for production use, or
// a stub for testing. It is only consulted for variables that are
// declared in the plan — undeclared environment variables are not
// included in the result.
func ResolveVariables(declarations map[string]Variable, environ func(string) string) (map[string]string, error) {
	resolved := make(map[string]string, len(declarations))

	// Start with declared defaults (lowest priority).
	for name, declaration := range declarations {
		if declaration.Default != "" {
			resolved[name] = declaration.Default
		}
	}

	// Overlay environment values for declared variables. Only declared
	// variables are looked up — we don't pull in the entire process
	// environment.
	if environ != nil {
		for name := range declarations {
			if value := environ(name); value != "" {
				resolved[name] = value
			}
		}
	}

	// Check that all required variables have a value.
	var missing []string
	for name, declaration := range declarations {
		if declaration.Required {
			if _, exists := resolved[name]; !exists {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("required plan variables not set: %s", strings.Join(missing, ", "))
	}

	return resolved, nil
}

// Expand replaces ${NAME} references in input with values from the
// variables map. Only the ${NAME} form is recognized (braces required);
// bare $NAME is left for shell interpretation.
//
// Returns an error listing all referenced variables that have no value
// in the map. This ensures plans fail fast on unresolvable references
// rather than producing broken build commands.
func Expand(input string, variables map[string]string) (string, error) {
	var unresolved []string

	result := variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		// Extract the variable name from ${NAME}.
		name := match[2 : len(match)-1]
		if value, exists := variables[name]; exists {
			return value
		}
		unresolved = append(unresolved, name)
		return match
	})

	if len(unresolved) > 0 {
		return "", fmt.Errorf("unresolved plan variables: %s", strings.Join(unresolved, ", "))
	}

	return result, nil
}

// ExpandBuild returns a copy of the plan's build spec with ${NAME}
// references expanded. Env values are expanded first (against plan
// variables only), then merged into the variable map for expanding the
// command. This means the build command can reference build env
// entries with ${NAME}, and those values will already have their own
// ${REFERENCES} resolved.
//
// The plan and variables map are not modified.
func ExpandBuild(build BuildSpec, variables map[string]string) (BuildSpec, error) {
	var expandedEnv map[string]string
	if len(build.Env) > 0 {
		expandedEnv = make(map[string]string, len(build.Env))
		for name, value := range build.Env {
			expandedValue, err := Expand(value, variables)
			if err != nil {
				return BuildSpec{}, fmt.Errorf("build env[%s]: %w", name, err)
			}
			expandedEnv[name] = expandedValue
		}
	}

	// Merged map: plan variables as base, expanded build env on top.
	merged := make(map[string]string, len(variables)+len(expandedEnv))
	for name, value := range variables {
		merged[name] = value
	}
	for name, value := range expandedEnv {
		merged[name] = value
	}

	command, err := Expand(build.Command, merged)
	if err != nil {
		return BuildSpec{}, fmt.Errorf("build command: %w", err)
	}

	return BuildSpec{
		Command: command,
		Env:     expandedEnv,
		Timeout: build.Timeout,
	}, nil
}
