package ports

import "context"

// Storage keys of the per-client state.
const (
	KeySession   = "session"
	KeyTasks     = "mk_tasks"
	KeyAdminTeam = "adminTeam"
)

// ClientStorage is the durable per-client blob store, the server-side
// counterpart of browser local storage.
type ClientStorage interface {
	// Load returns the blob stored under key, or nil when nothing is stored.
	Load(ctx context.Context, clientID, key string) ([]byte, error)
	// Save atomically replaces the blob stored under key.
	Save(ctx context.Context, clientID, key string, blob []byte) error
	// Clear atomically removes every key of the client.
	Clear(ctx context.Context, clientID string) error
	// Ping checks the underlying store is reachable.
	Ping(ctx context.Context) error
}
