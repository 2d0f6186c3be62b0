//go:build !sqlite_vec || !cgo

package store

import (
	_ "modernc.org/sqlite"
)

// driverName selects the pure-Go sqlite driver. Cosine ranking happens in Go
// over JSON-encoded embeddings; no extension is required.
const driverName = "sqlite"
