package rhidp

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
const IntegrationName = "cluster-auth-rhidp"

// Integration keeps the `sso.` auth labels of OCM subscriptions in line with
// the declared RHIDP configuration of their clusters. It only ever writes
// subscription labels; organization labels are out of its reach.
type Integration struct {
	config  *Config
	clients map[string]ocm.Client
}

func NewIntegration(config *Config, clients map[string]ocm.Client) *Integration {
	return &Integration{config: config, clients: clients}
}

// DesiredState derives the auth labels of every configured cluster.
// Organizations declared by external id keep that external id as identity
// until resolved.
func (i *Integration) DesiredState() *api.LabelState {
	return i.desiredStateFor(i.config.Spec.Environments)
}

func (i *Integration) desiredStateFor(envs []EnvironmentSpec) *api.LabelState {
	desired := api.NewLabelState()
	for _, env := range envs {
		for _, org := range env.Organizations {
			for _, cluster := range org.Clusters {
				desired.Set(api.ClusterRef{
					ClusterID: cluster.ClusterID,
					OrgID:     org.refID(),
					Name:      cluster.Name,
					OCMEnv:    env.Name,
				}, AuthLabels(cluster.Auth, i.config.Spec.DefaultIssuerURL))
			}
		}
	}
	return desired
}

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

// CurrentState discovers the clusters of the configured organizations and
// their subscription labels, querying the environments in parallel
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
		return state, nil
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

	desired := i.desiredStateFor(envs)
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
		reconciler := services.NewLabelReconciler(i.clients[env.Name], IntegrationName, []string{LabelPrefix})
		if err := reconciler.Reconcile(dryRun, current, desired); err != nil {
			return err
		}
	}
	return nil
}
