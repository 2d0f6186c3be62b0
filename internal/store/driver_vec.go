//go:build sqlite_vec && cgo

package store

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

// driverName selects the cgo sqlite driver with the sqlite-vec extension
// auto-loaded, for accelerated vector search on large corpora.
const driverName = "sqlite3"

func init() {
	vec.Auto()
}
