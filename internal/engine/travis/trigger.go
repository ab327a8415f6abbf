package travis

import (
	"context"
	"errors"
	"net/url"

	"travisconnect/internal/engine"
	"travisconnect/internal/logger"
	"travisconnect/internal/params"
)

// errNeverBuilt is the cause reported for a job without any build to restart
var errNeverBuilt = errors.New("job has never been built")

// Build restarts the last build of the job bound to a subscription
func (p *Plugin) Build(ctx context.Context, subscription int) error {
	prm, err := p.source.SubscriptionParameters(ctx, subscription)
	if err != nil {
		return &engine.BuildLaunchError{Subscription: subscription, Err: err}
	}
	return p.Launch(ctx, prm, subscription)
}

// Launch resolves the job declared in the parameters and restarts its last
// build. Every failure is reported as a BuildLaunchError naming the subscription.
// At most one restart request is sent.
func (p *Plugin) Launch(ctx context.Context, prm params.Parameters, subscription int) error {
	job, err := p.Validate(ctx, prm)
	if err != nil {
		logger.Warn("Cannot resolve the job to build", "subscription", subscription, "error", err)
		return &engine.BuildLaunchError{Subscription: subscription, Err: err}
	}

	if !job.HasBuilt() {
		logger.Warn("Job has no build to restart", "subscription", subscription, "job", job.ID)
		return &engine.BuildLaunchError{Subscription: subscription, Err: errNeverBuilt}
	}

	resp := p.client.Post(ctx, prm, "/builds/"+url.PathEscape(*job.LastBuildID)+"/restart")
	if resp.Absent() {
		logger.Error("Travis build restart failed", "subscription", subscription, "job", job.ID,
			"build", *job.LastBuildID, "outcome", resp.Kind.String(), "status", resp.StatusCode)
		return &engine.BuildLaunchError{Subscription: subscription, Err: resp.Error()}
	}

	logger.Info("Travis build restarted", "subscription", subscription, "job", job.ID, "build", *job.LastBuildID)
	return nil
}
