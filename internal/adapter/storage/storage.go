// Package storage provides the key-value persistence adapters behind
// [port.KeyValue]: an in-memory double, a file-per-key directory and a
// redis backend. Namespace key ownership is the caller's concern; the
// adapters treat keys and values as opaque.
package storage
