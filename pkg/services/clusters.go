package services

import (
	amsv1 "github.com/openshift-online/ocm-sdk-go/accountsmgmt/v1"
	clustersmgmtv1 "github.com/openshift-online/ocm-sdk-go/clustersmgmt/v1"

	"github.com/app-sre/ocm-label-reconciler/pkg/api"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm/search"
	"github.com/app-sre/ocm-label-reconciler/pkg/logger"
)

// subscriptionIDChunkSize bounds the number of subscription ids in a single
// clusters search, keeping the rendered query below the remote length limit
const subscriptionIDChunkSize = 100

// ClusterReadyForAppInterface is the fixed eligibility filter: only managed,
// ready OSD and ROSA clusters are ever considered.
func ClusterReadyForAppInterface() search.Filter {
	return search.NewFilter().
		Eq("managed", "true").
		Eq("state", string(api.ClusterStateReady)).
		IsIn("product.id", []string{"osd", "rosa"})
}

// ClusterService assembles read-only cluster snapshots from subscriptions,
// organization labels and the clusters_mgmt clusters collection
type ClusterService interface {
	// DiscoverClustersByLabels finds the clusters whose subscriptions or
	// organizations carry labels matching the filter
	DiscoverClustersByLabels(labelFilter search.Filter) ([]*api.Cluster, error)
	// GetClustersForSubscriptions fetches the clusters belonging to the
	// active managed subscriptions matching subscriptionFilter, further
	// restricted by clusterFilter
	GetClustersForSubscriptions(subscriptionFilter search.Filter, clusterFilter search.Filter) ([]*api.Cluster, error)
}

var _ ClusterService = &clusterService{}

type clusterService struct {
	client ocm.Client
}

func NewClusterService(client ocm.Client) ClusterService {
	return &clusterService{client: client}
}

func (s *clusterService) DiscoverClustersByLabels(labelFilter search.Filter) ([]*api.Cluster, error) {
	labels, err := s.client.GetLabels(labelFilter)
	if err != nil {
		return nil, err
	}

	subscriptionIDs := map[string]bool{}
	organizationIDs := map[string]bool{}
	for _, label := range labels {
		switch label.Type() {
		case api.SubscriptionLabelType:
			subscriptionIDs[label.OwnerID()] = true
		case api.OrganizationLabelType:
			organizationIDs[label.OwnerID()] = true
		}
	}
	if len(subscriptionIDs) == 0 && len(organizationIDs) == 0 {
		return nil, nil
	}

	subscriptionFilter := search.Or(
		search.NewFilter().IsIn("id", setKeys(subscriptionIDs)),
		search.NewFilter().IsIn("organization_id", setKeys(organizationIDs)),
	)
	return s.GetClustersForSubscriptions(subscriptionFilter, search.NewFilter())
}

func (s *clusterService) GetClustersForSubscriptions(subscriptionFilter search.Filter, clusterFilter search.Filter) ([]*api.Cluster, error) {
	subscriptions, err := s.client.GetSubscriptions(subscriptionFilter.And(
		search.NewFilter().Eq("managed", "true").Eq("status", "Active")))
	if err != nil {
		return nil, err
	}
	if len(subscriptions) == 0 {
		// nothing to look up, don't touch the clusters endpoint
		return nil, nil
	}

	subscriptionsByID := map[string]*amsv1.Subscription{}
	organizationIDs := map[string]bool{}
	for _, subscription := range subscriptions {
		subscriptionsByID[subscription.ID()] = subscription
		if orgID := subscription.OrganizationID(); orgID != "" {
			organizationIDs[orgID] = true
		}
	}

	organizationLabels, err := NewLabelService(s.client).GetOrganizationLabels(
		search.NewFilter().IsIn("organization_id", setKeys(organizationIDs)))
	if err != nil {
		return nil, err
	}
	labelsByOrganization := map[string][]api.Label{}
	for _, label := range organizationLabels {
		labelsByOrganization[label.OrganizationID] = append(labelsByOrganization[label.OrganizationID], label)
	}

	// the subscription id set can exceed the remote query length limit
	chunks, err := clusterFilter.
		And(ClusterReadyForAppInterface()).
		IsIn("subscription.id", setKeys(subscriptionsByID)).
		ChunkBy("subscription.id", subscriptionIDChunkSize, true)
	if err != nil {
		return nil, err
	}

	var clusters []*api.Cluster
	for _, chunk := range chunks {
		sdkClusters, err := s.client.GetClusters(chunk)
		if err != nil {
			return nil, err
		}
		for _, sdkCluster := range sdkClusters {
			subscription, ok := subscriptionsByID[sdkCluster.Subscription().ID()]
			if !ok {
				logger.Logger.V(5).Infof(
					"cluster '%s' references subscription '%s' outside the search scope, skipping",
					sdkCluster.Name(), sdkCluster.Subscription().ID())
				continue
			}
			clusters = append(clusters, assembleCluster(sdkCluster, subscription,
				labelsByOrganization[subscription.OrganizationID()]))
		}
	}
	return clusters, nil
}

// assembleCluster joins a clusters_mgmt cluster with its subscription's
// labels and capabilities and its organization's labels
func assembleCluster(sdkCluster *clustersmgmtv1.Cluster, subscription *amsv1.Subscription, organizationLabels []api.Label) *api.Cluster {
	capabilities := map[string]api.Capability{}
	for _, capability := range subscription.Capabilities() {
		capabilities[capability.Name()] = api.Capability{
			Name:      capability.Name(),
			Value:     capability.Value(),
			Inherited: capability.Inherited(),
		}
	}

	subscriptionLabels := make([]api.Label, 0, len(subscription.Labels()))
	for _, label := range subscription.Labels() {
		subscriptionLabels = append(subscriptionLabels, api.SubscriptionLabel{
			LabelData: api.LabelData{
				ID:        label.ID(),
				Href:      label.HREF(),
				Key:       label.Key(),
				Value:     label.Value(),
				Internal:  label.Internal(),
				CreatedAt: label.CreatedAt(),
				UpdatedAt: label.UpdatedAt(),
			},
			SubscriptionID: subscription.ID(),
		})
	}

	return &api.Cluster{
		ID:                 sdkCluster.ID(),
		ExternalID:         sdkCluster.ExternalID(),
		Name:               sdkCluster.Name(),
		DisplayName:        subscription.DisplayName(),
		SubscriptionID:     subscription.ID(),
		SubscriptionHref:   subscription.HREF(),
		OrganizationID:     subscription.OrganizationID(),
		Region:             sdkCluster.Region().ID(),
		APIURL:             sdkCluster.API().URL(),
		ConsoleURL:         sdkCluster.Console().URL(),
		ProductID:          sdkCluster.Product().ID(),
		State:              api.ClusterState(sdkCluster.State()),
		Capabilities:       capabilities,
		SubscriptionLabels: api.NewLabelContainer(subscriptionLabels...),
		OrganizationLabels: api.NewLabelContainer(organizationLabels...),
	}
}

func setKeys[V any](set map[string]V) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return keys
}
