package engine

import (
	"context"

	"travisconnect/internal/params"
)

// SubscriptionStatus holds the data attached to a subscription status check
type SubscriptionStatus struct {
	Data map[string]any `json:"data"`
}

// Put stores a value under key
func (s *SubscriptionStatus) Put(key string, value any) {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = value
}

// BuildService is implemented by build tool plugins exposed to the host
type BuildService interface {
	// Key returns the plugin key, e.g. service:build:travis
	Key() string

	// CheckStatus reports whether the node described by the parameters is reachable
	CheckStatus(ctx context.Context, p params.Parameters) (bool, error)

	// CheckSubscriptionStatus resolves the subscribed job and returns it as status data
	CheckSubscriptionStatus(ctx context.Context, p params.Parameters) (*SubscriptionStatus, error)

	// Validate resolves the job declared in the parameters
	Validate(ctx context.Context, p params.Parameters) (Job, error)

	// Search returns the jobs of a node matching the criteria
	Search(ctx context.Context, p params.Parameters, view, criteria string) ([]Job, error)

	// Launch restarts the last build of the job declared in the parameters
	Launch(ctx context.Context, p params.Parameters, subscription int) error
}
