// Package persistence defines the client interface this router uses to read
// and write externally-managed per-device factors (e.g. a device's
// sens_mult) and app-wide preferences, plus a file-backed reference
// implementation. The core never owns the canonical copy of this state: it
// consumes it as get(id, field) -> T? / set(id, field, value), exactly as
// spec.md §6 describes, and treats any collaborator satisfying Store as
// interchangeable.
package persistence
