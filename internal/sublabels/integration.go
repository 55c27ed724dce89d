package sublabels

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/app-sre/ocm-label-reconciler/pkg/api"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm/search"
	"github.com/app-sre/ocm-label-reconciler/pkg/logger"
	"github.com/app-sre/ocm-label-reconciler/pkg/services"
)

// IntegrationName identifies this integration in logs and metrics
const IntegrationName = "ocm-subscription-labels"

// Integration syncs declaratively configured labels onto OCM subscriptions
// and organizations. Desired state comes from the YAML config alone, current
// state from the label store, and the write set is the three-way diff of the
// two restricted to the managed prefixes.
type Integration struct {
	config  *Config
	clients map[string]ocm.Client
}

// NewIntegration builds the integration. clients maps environment names to
// the OCM client reaching that environment; every environment in the config
// must have one.
func NewIntegration(config *Config, clients map[string]ocm.Client) *Integration {
	return &Integration{config: config, clients: clients}
}

// DesiredState derives the desired labels from the configuration. No network
// calls: refs carry no label container href, and organizations declared by
// external id keep that external id as identity until resolved.
func (i *Integration) DesiredState() *api.LabelState {
	return desiredStateFor(i.config.Spec.Environments)
}

func desiredStateFor(envs []EnvironmentSpec) *api.LabelState {
	desired := api.NewLabelState()
	for _, env := range envs {
		for _, org := range env.Organizations {
			if len(org.Labels) > 0 {
				desired.Set(api.OrgRef{
					OrgID:  org.refID(),
					Name:   org.Name,
					OCMEnv: env.Name,
				}, org.Labels)
			}
			for _, cluster := range org.Clusters {
				desired.Set(api.ClusterRef{
					ClusterID: cluster.ClusterID,
					OrgID:     org.refID(),
					Name:      cluster.Name,
					OCMEnv:    env.Name,
				}, cluster.Labels)
			}
		}
	}
	return desired
}

// DesiredStateHash is the canonical hash of the desired state, stable across
// config reorderings
func (i *Integration) DesiredStateHash() string {
	return i.DesiredState().Hash()
}

// resolveOrganizations returns the configured environments with every
// organization declared by external id resolved to its OCM id. Lookups go
// through the environment's client, which caches them.
func (i *Integration) resolveOrganizations() ([]EnvironmentSpec, error) {
	envs := make([]EnvironmentSpec, 0, len(i.config.Spec.Environments))
	for _, env := range i.config.Spec.Environments {
		client, ok := i.clients[env.Name]
		if !ok {
			return nil, fmt.Errorf("no OCM client configured for environment '%s'", env.Name)
		}
		orgs := make([]OrganizationSpec, 0, len(env.Organizations))
		for _, org := range env.Organizations {
			if org.ID == "" {
				orgID, err := client.GetOrganizationIDFromExternalID(org.ExternalID)
				if err != nil {
					return nil, pkgerrors.Wrapf(err,
						"error resolving organization external id '%s' in environment '%s'", org.ExternalID, env.Name)
				}
				org.ID = orgID
			}
			orgs = append(orgs, org)
		}
		env.Organizations = orgs
		envs = append(envs, env)
	}
	return envs, nil
}

// CurrentState discovers the labels currently held in OCM for the configured
// organizations, querying the environments in parallel
func (i *Integration) CurrentState() (map[string]*api.LabelState, error) {
	envs, err := i.resolveOrganizations()
	if err != nil {
		return nil, err
	}
	return i.currentStates(envs)
}

func (i *Integration) currentStates(envs []EnvironmentSpec) (map[string]*api.LabelState, error) {
	envNames := make([]string, 0, len(envs))
	envsByName := map[string]EnvironmentSpec{}
	for _, env := range envs {
		envNames = append(envNames, env.Name)
		envsByName[env.Name] = env
	}
	return services.FetchCurrentStates(envNames, i.config.FetchPoolSize, func(envName string) (*api.LabelState, error) {
		return i.fetchEnvironmentState(envsByName[envName])
	})
}

func (i *Integration) fetchEnvironmentState(env EnvironmentSpec) (*api.LabelState, error) {
	client, ok := i.clients[env.Name]
	if !ok {
		return nil, fmt.Errorf("no OCM client configured for environment '%s'", env.Name)
	}

	state := api.NewLabelState()
	orgIDs := make([]string, 0, len(env.Organizations))
	for _, org := range env.Organizations {
		orgIDs = append(orgIDs, org.ID)
	}
	if len(orgIDs) == 0 {
		// an unconstrained organization filter would match every label in
		// the environment
		return state, nil
	}

	organizationLabels, err := services.NewLabelService(client).GetOrganizationLabels(
		search.NewFilter().IsIn("organization_id", orgIDs))
	if err != nil {
		return nil, err
	}
	orgLabels := map[string]api.LabelValues{}
	for _, label := range organizationLabels {
		if orgLabels[label.OrganizationID] == nil {
			orgLabels[label.OrganizationID] = api.LabelValues{}
		}
		orgLabels[label.OrganizationID][label.Key] = label.Value
	}
	for _, org := range env.Organizations {
		state.Set(api.OrgRef{
			OrgID:              org.ID,
			Name:               org.Name,
			OCMEnv:             env.Name,
			LabelContainerHref: ocm.OrganizationLabelContainerHref(org.ID),
		}, orgLabels[org.ID])
	}

	clusters, err := services.NewClusterService(client).GetClustersForSubscriptions(
		search.NewFilter().IsIn("organization_id", orgIDs), search.NewFilter())
	if err != nil {
		return nil, err
	}
	for _, cluster := range clusters {
		labels := api.LabelValues{}
		for _, label := range cluster.SubscriptionLabels.Labels() {
			labels[label.Data().Key] = label.Data().Value
		}
		state.Set(api.ClusterRef{
			ClusterID:          cluster.ID,
			OrgID:              cluster.OrganizationID,
			Name:               cluster.Name,
			OCMEnv:             env.Name,
			LabelContainerHref: cluster.SubscriptionLabelContainerHref(),
		}, labels)
	}
	return state, nil
}

// Run performs one reconciliation pass over every configured environment.
// Organizations declared by external id are resolved first so that desired
// and current refs share the same identity.
func (i *Integration) Run(dryRun bool) error {
	envs, err := i.resolveOrganizations()
	if err != nil {
		return err
	}

	desired := desiredStateFor(envs)
	logger.Logger.V(5).Infof("[%s] desired state hash %s", IntegrationName, desired.Hash())

	currentStates, err := i.currentStates(envs)
	if err != nil {
		return err
	}

	for _, env := range envs {
		current, ok := currentStates[env.Name]
		if !ok {
			continue
		}
		reconciler := services.NewLabelReconciler(i.clients[env.Name], IntegrationName, env.ManagedLabelPrefixes)
		if err := reconciler.Reconcile(dryRun, current, desired); err != nil {
			return err
		}
	}
	return nil
}
