package travis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"travisconnect/internal/engine"
	"travisconnect/internal/logger"
	"travisconnect/internal/params"
)

// Plugin key and the parameters it reads
const (
	Key                  = "service:build:travis"
	ParameterUser        = Key + ":user"
	ParameterToken       = Key + ":api-token"
	ParameterJob         = Key + ":job"
	ParameterTemplateJob = Key + ":template-job"
	ParameterURL         = Key + ":url-api"
)

// Validation rules reported to the host
const (
	RuleJob     = "travis-job"
	RuleNotNull = "NotNull"
)

// searchLimit caps the number of jobs returned by a search
const searchLimit = 10

// NodeParameters lists the parameters a node may declare
var NodeParameters = []string{ParameterURL, ParameterToken, ParameterUser, ParameterTemplateJob}

// ParameterSource loads the parameters the host stored for nodes and subscriptions
type ParameterSource interface {
	NodeParameters(ctx context.Context, node string) (params.Parameters, error)
	SubscriptionParameters(ctx context.Context, subscription int) (params.Parameters, error)
}

// Plugin implements engine.BuildService for Travis CI
type Plugin struct {
	client *Client
	source ParameterSource
}

var _ engine.BuildService = (*Plugin)(nil)

// NewPlugin creates a new Travis plugin
func NewPlugin(client *Client, source ParameterSource) *Plugin {
	return &Plugin{
		client: client,
		source: source,
	}
}

// Key returns the plugin key
func (p *Plugin) Key() string {
	return Key
}

// CheckStatus reports whether the Travis instance answers with its configuration
func (p *Plugin) CheckStatus(ctx context.Context, prm params.Parameters) (bool, error) {
	if err := requireConnection(prm); err != nil {
		return false, err
	}
	return !p.client.Get(ctx, prm, "config").Absent(), nil
}

// CheckSubscriptionStatus resolves the subscribed job and exposes it as status data
func (p *Plugin) CheckSubscriptionStatus(ctx context.Context, prm params.Parameters) (*engine.SubscriptionStatus, error) {
	job, err := p.Validate(ctx, prm)
	if err != nil {
		return nil, err
	}
	status := &engine.SubscriptionStatus{}
	status.Put("job", job)
	return status, nil
}

// Link validates the job of a freshly created subscription
func (p *Plugin) Link(ctx context.Context, subscription int) error {
	prm, err := p.source.SubscriptionParameters(ctx, subscription)
	if err != nil {
		return err
	}
	_, err = p.Validate(ctx, prm)
	return err
}

// FindByID resolves a job of a node by its identifier
func (p *Plugin) FindByID(ctx context.Context, node, id string) (engine.Job, error) {
	prm, err := p.source.NodeParameters(ctx, node)
	if err != nil {
		return engine.Job{}, err
	}
	return p.Validate(ctx, prm.With(ParameterJob, id))
}

// FindAllByName searches the jobs of a node whose name or description match the criteria
func (p *Plugin) FindAllByName(ctx context.Context, node, criteria string) ([]engine.Job, error) {
	prm, err := p.source.NodeParameters(ctx, node)
	if err != nil {
		return nil, err
	}
	return p.Search(ctx, prm, "", criteria)
}

// Validate resolves the job declared in the parameters. A job unknown to
// Travis yields a ValidationError on the job parameter.
func (p *Plugin) Validate(ctx context.Context, prm params.Parameters) (engine.Job, error) {
	job, err := prm.Required(ParameterJob)
	if err != nil {
		return engine.Job{}, &engine.ValidationError{Parameter: ParameterJob, Rule: RuleNotNull}
	}
	if err := requireConnection(prm); err != nil {
		return engine.Job{}, err
	}

	resp := p.client.Get(ctx, prm, "/repos/"+url.PathEscape(job))
	if resp.Absent() {
		logger.Info("Travis job not resolved", "job", job, "outcome", resp.Kind.String(), "status", resp.StatusCode)
		return engine.Job{}, &engine.ValidationError{Parameter: ParameterJob, Rule: RuleJob, Value: job}
	}

	var payload struct {
		Repo json.RawMessage `json:"repo"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return engine.Job{}, &engine.ParseError{Err: err}
	}
	if len(payload.Repo) == 0 || string(payload.Repo) == "null" {
		return engine.Job{}, &engine.ParseError{Field: "repo"}
	}
	return toJob(payload.Repo)
}

// Search returns up to ten jobs matching the criteria, ordered by name.
// An absent response yields no jobs rather than an error.
func (p *Plugin) Search(ctx context.Context, prm params.Parameters, view, criteria string) ([]engine.Job, error) {
	resource := fmt.Sprintf("%srepos?search=%s&orderBy=name&limit=%d",
		strings.TrimSpace(view), url.QueryEscape(criteria), searchLimit)

	resp := p.client.Get(ctx, prm, resource)
	if resp.Absent() {
		logger.Debug("Travis search returned nothing", "criteria", criteria, "outcome", resp.Kind.String())
		return []engine.Job{}, nil
	}

	var payload struct {
		Repos *[]json.RawMessage `json:"repos"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, &engine.ParseError{Err: err}
	}
	if payload.Repos == nil {
		return nil, &engine.ParseError{Field: "repos"}
	}

	jobs := make([]engine.Job, 0, len(*payload.Repos))
	for i, raw := range *payload.Repos {
		job, err := toJob(raw)
		if err != nil {
			return nil, fmt.Errorf("repos[%d]: %w", i, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// requireConnection checks the node parameters every remote call needs
func requireConnection(prm params.Parameters) error {
	for _, key := range []string{ParameterURL, ParameterToken} {
		if _, err := prm.Required(key); err != nil {
			return &engine.ValidationError{Parameter: key, Rule: RuleNotNull}
		}
	}
	return nil
}
