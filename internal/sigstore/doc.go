// Package sigstore persists frame signatures in SQLite so repeated runs over
// the same files skip decoding.
//
// Rows are keyed by path, file size, modification time and timestamp; editing
// or replacing a file makes its old rows unreachable. A lock file beside the
// database keeps a single process writing at a time.
package sigstore
