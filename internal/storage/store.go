package storage

import "io"

// Store keeps named blobs such as parsed-bank snapshots.
type Store interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	URL(key string) (string, error)
}
