// Package ledger persists generation run history in a local SQLite
// database. Each run records its invocation parameters and outcome, plus a
// per-image row for every processed participant/session, so past runs can
// be inspected with `capsgen runs`.
package ledger
