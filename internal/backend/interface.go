package backend

import (
	"context"

	"ricavi/internal/store"
)

// Backend is the full persistence surface used by the application
type Backend interface {
	store.RawStore
	store.PeriodLister
}

// CleanupFunc releases backend resources
type CleanupFunc func() error

// PingFunc reports whether the backend is ready to serve
type PingFunc func(ctx context.Context) error

// BackendResult contains the backend instance and optional hooks
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
	Ping    PingFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory backend snapshot file, empty for a purely in-memory store
	DataFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
