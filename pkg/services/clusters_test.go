package services

import (
	"fmt"
	"testing"

	"github.com/onsi/gomega"
	amsv1 "github.com/openshift-online/ocm-sdk-go/accountsmgmt/v1"
	clustersmgmtv1 "github.com/openshift-online/ocm-sdk-go/clustersmgmt/v1"

	"github.com/app-sre/ocm-label-reconciler/pkg/api"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm/search"
)

func buildTestSubscription(t *testing.T, id string, orgID string) *amsv1.Subscription {
	subscription, err := amsv1.NewSubscription().
		ID(id).
		HREF("/api/accounts_mgmt/v1/subscriptions/" + id).
		OrganizationID(orgID).
		DisplayName("display-" + id).
		Labels(
			amsv1.NewLabel().Key("sre.tier").Value("gold"),
		).
		Capabilities(
			amsv1.NewCapability().Name("capability.cluster.manage_cluster_admin").Value("true").Inherited(true),
		).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return subscription
}

func buildTestCluster(t *testing.T, id string, subscriptionID string) *clustersmgmtv1.Cluster {
	cluster, err := clustersmgmtv1.NewCluster().
		ID(id).
		ExternalID("external-" + id).
		Name("name-" + id).
		State(clustersmgmtv1.ClusterStateReady).
		API(clustersmgmtv1.NewClusterAPI().URL("https://api." + id + ".example.com:6443")).
		Console(clustersmgmtv1.NewClusterConsole().URL("https://console." + id + ".example.com")).
		Product(clustersmgmtv1.NewProduct().ID("osd")).
		Region(clustersmgmtv1.NewCloudRegion().ID("us-east-1")).
		Subscription(clustersmgmtv1.NewSubscription().ID(subscriptionID)).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return cluster
}

func TestClusterService_GetClustersForSubscriptions(t *testing.T) {
	g := gomega.NewWithT(t)

	client := &ocm.ClientMock{
		GetSubscriptionsFunc: func(filter search.Filter) ([]*amsv1.Subscription, error) {
			return []*amsv1.Subscription{buildTestSubscription(t, "sub-1", "org-1")}, nil
		},
		GetLabelsFunc: func(filter search.Filter) ([]api.Label, error) {
			return []api.Label{api.OrganizationLabel{
				LabelData:      api.LabelData{Key: "sre.escalation", Value: "team-a"},
				OrganizationID: "org-1",
			}}, nil
		},
		GetClustersFunc: func(filter search.Filter) ([]*clustersmgmtv1.Cluster, error) {
			return []*clustersmgmtv1.Cluster{buildTestCluster(t, "cluster-1", "sub-1")}, nil
		},
	}

	clusters, err := NewClusterService(client).GetClustersForSubscriptions(
		search.NewFilter().Eq("organization_id", "org-1"), search.NewFilter())
	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(clusters).To(gomega.HaveLen(1))

	cluster := clusters[0]
	g.Expect(cluster.ID).To(gomega.Equal("cluster-1"))
	g.Expect(cluster.ExternalID).To(gomega.Equal("external-cluster-1"))
	g.Expect(cluster.Name).To(gomega.Equal("name-cluster-1"))
	g.Expect(cluster.DisplayName).To(gomega.Equal("display-sub-1"))
	g.Expect(cluster.SubscriptionID).To(gomega.Equal("sub-1"))
	g.Expect(cluster.OrganizationID).To(gomega.Equal("org-1"))
	g.Expect(cluster.State).To(gomega.Equal(api.ClusterStateReady))
	g.Expect(cluster.ProductID).To(gomega.Equal("osd"))
	g.Expect(cluster.Region).To(gomega.Equal("us-east-1"))
	g.Expect(cluster.APIURL).To(gomega.Equal("https://api.cluster-1.example.com:6443"))
	g.Expect(cluster.ConsoleURL).To(gomega.Equal("https://console.cluster-1.example.com"))
	g.Expect(cluster.SubscriptionLabelContainerHref()).To(gomega.Equal("/api/accounts_mgmt/v1/subscriptions/sub-1/labels"))

	g.Expect(cluster.Capabilities).To(gomega.HaveKey("capability.cluster.manage_cluster_admin"))
	g.Expect(cluster.SubscriptionLabels.GetLabelValue("sre.tier")).To(gomega.Equal("gold"))
	// inherited from the organization, no subscription override
	label, ok := cluster.GetLabel("sre.escalation")
	g.Expect(ok).To(gomega.BeTrue())
	g.Expect(label.Data().Value).To(gomega.Equal("team-a"))

	// subscriptions are further constrained to active managed ones
	subscriptionQuery, err := client.GetSubscriptionsCalls()[0].Filter.Render()
	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(subscriptionQuery).To(gomega.ContainSubstring("managed='true'"))
	g.Expect(subscriptionQuery).To(gomega.ContainSubstring("status='Active'"))

	// the clusters query carries the fixed eligibility conditions
	clusterQuery, err := client.GetClustersCalls()[0].Filter.Render()
	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(clusterQuery).To(gomega.ContainSubstring("state='ready'"))
	g.Expect(clusterQuery).To(gomega.ContainSubstring("product.id in ('osd','rosa')"))
	g.Expect(clusterQuery).To(gomega.ContainSubstring("subscription.id='sub-1'"))
}

func TestClusterService_GetClustersForSubscriptions_NoSubscriptions(t *testing.T) {
	g := gomega.NewWithT(t)

	client := &ocm.ClientMock{}
	clusters, err := NewClusterService(client).GetClustersForSubscriptions(
		search.NewFilter().Eq("organization_id", "org-1"), search.NewFilter())

	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(clusters).To(gomega.BeEmpty())
	// no subscriptions found, the clusters and labels endpoints are never hit
	g.Expect(client.GetClustersCalls()).To(gomega.BeEmpty())
	g.Expect(client.GetLabelsCalls()).To(gomega.BeEmpty())
}

func TestClusterService_GetClustersForSubscriptions_ChunksSubscriptionIDs(t *testing.T) {
	g := gomega.NewWithT(t)

	subscriptions := make([]*amsv1.Subscription, 0, 150)
	for i := 0; i < 150; i++ {
		subscriptions = append(subscriptions, buildTestSubscription(t, fmt.Sprintf("sub-%03d", i), "org-1"))
	}

	client := &ocm.ClientMock{
		GetSubscriptionsFunc: func(filter search.Filter) ([]*amsv1.Subscription, error) {
			return subscriptions, nil
		},
	}

	clusters, err := NewClusterService(client).GetClustersForSubscriptions(
		search.NewFilter(), search.NewFilter())
	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(clusters).To(gomega.BeEmpty())
	g.Expect(client.GetClustersCalls()).To(gomega.HaveLen(2))
}

func TestClusterService_GetClustersForSubscriptions_SkipsOutOfScopeClusters(t *testing.T) {
	g := gomega.NewWithT(t)

	client := &ocm.ClientMock{
		GetSubscriptionsFunc: func(filter search.Filter) ([]*amsv1.Subscription, error) {
			return []*amsv1.Subscription{buildTestSubscription(t, "sub-1", "org-1")}, nil
		},
		GetClustersFunc: func(filter search.Filter) ([]*clustersmgmtv1.Cluster, error) {
			return []*clustersmgmtv1.Cluster{
				buildTestCluster(t, "cluster-1", "sub-1"),
				buildTestCluster(t, "cluster-2", "sub-other"),
			}, nil
		},
	}

	clusters, err := NewClusterService(client).GetClustersForSubscriptions(
		search.NewFilter(), search.NewFilter())
	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(clusters).To(gomega.HaveLen(1))
	g.Expect(clusters[0].ID).To(gomega.Equal("cluster-1"))
}

func TestClusterService_DiscoverClustersByLabels(t *testing.T) {
	g := gomega.NewWithT(t)

	client := &ocm.ClientMock{
		GetLabelsFunc: func(filter search.Filter) ([]api.Label, error) {
			query, err := filter.Render()
			if err != nil {
				return nil, err
			}
			if query == "key='sre.tier'" {
				// the discovery query itself
				return []api.Label{
					api.SubscriptionLabel{
						LabelData:      api.LabelData{Key: "sre.tier", Value: "gold"},
						SubscriptionID: "sub-1",
					},
					api.OrganizationLabel{
						LabelData:      api.LabelData{Key: "sre.tier", Value: "silver"},
						OrganizationID: "org-2",
					},
				}, nil
			}
			return nil, nil
		},
		GetSubscriptionsFunc: func(filter search.Filter) ([]*amsv1.Subscription, error) {
			return []*amsv1.Subscription{buildTestSubscription(t, "sub-1", "org-1")}, nil
		},
		GetClustersFunc: func(filter search.Filter) ([]*clustersmgmtv1.Cluster, error) {
			return []*clustersmgmtv1.Cluster{buildTestCluster(t, "cluster-1", "sub-1")}, nil
		},
	}

	clusters, err := NewClusterService(client).DiscoverClustersByLabels(
		search.NewFilter().Eq("key", "sre.tier"))
	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(clusters).To(gomega.HaveLen(1))

	// both label owners feed the subscription discovery query
	subscriptionQuery, err := client.GetSubscriptionsCalls()[0].Filter.Render()
	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(subscriptionQuery).To(gomega.ContainSubstring("id='sub-1'"))
	g.Expect(subscriptionQuery).To(gomega.ContainSubstring("organization_id='org-2'"))
}

func TestClusterService_DiscoverClustersByLabels_NoMatches(t *testing.T) {
	g := gomega.NewWithT(t)

	client := &ocm.ClientMock{}
	clusters, err := NewClusterService(client).DiscoverClustersByLabels(
		search.NewFilter().Eq("key", "sre.tier"))
	g.Expect(err).ToNot(gomega.HaveOccurred())
	g.Expect(clusters).To(gomega.BeEmpty())
	g.Expect(client.GetSubscriptionsCalls()).To(gomega.BeEmpty())
}
