package repositories

import "context"

// Repository aggregates the session store's repositories.
type Repository interface {
	User() UserRepository

	Session() SessionRepository
	Result() ResultRepository
	Progress() ProgressRepository

	// Read-only aggregates for the admin roster
	Roster() RosterRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
