// Package logging configures slog handlers shared by the capsgen CLI.
//
// Two output formats are supported: a human-oriented console format
// (timestamp, level, component, message, key=value pairs) and JSON with
// normalized ts/level/msg keys. Helpers attach standardized field names
// so participant and session identifiers render consistently across
// packages.
package logging
