package store

import "context"

// Registry is the durable card/app pairing store. A missing backing store
// behaves as an empty registry on every read. Implementations must serialize
// mutations so a reader never observes a partially rewritten store.
type Registry interface {
	IsRegistered(ctx context.Context, appName string) (bool, error)
	Append(ctx context.Context, cardID, appName string) error
	RemoveByAppName(ctx context.Context, appName string) (bool, error)
	FindCardFor(ctx context.Context, appName string) (string, bool, error)
	IsCardRegistered(ctx context.Context, cardID string) (bool, error)
	LoadAllAppNames(ctx context.Context) ([]string, error)
	Close() error
}
