// Package doctor provides the shared checklist infrastructure for
// readiness checks: the [Result] type with pass/fail/warn/skip statuses,
// human-readable checklist printing, and JSON output for scripted use.
//
// The doctor command in cmd/wheelsmith/doctor builds its checks on top
// of this package; the build pipeline's validate step reuses the same
// probes directly.
package doctor
