package health

import "context"

// DBPinger checks session store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// VaultChecker checks vault API reachability.
type VaultChecker interface {
	HealthCheck(ctx context.Context) error
}
