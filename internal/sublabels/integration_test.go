package sublabels

import (
	"testing"

	"github.com/onsi/gomega"
	amsv1 "github.com/openshift-online/ocm-sdk-go/accountsmgmt/v1"
	clustersmgmtv1 "github.com/openshift-online/ocm-sdk-go/clustersmgmt/v1"

	"github.com/app-sre/ocm-label-reconciler/pkg/api"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm/search"
)

func testConfig() *Config {
	config := NewConfig()
	config.FetchPoolSize = 1
	config.Spec = Spec{
		Environments: []EnvironmentSpec{
			{
				Name:                 "production",
				ManagedLabelPrefixes: []string{"sre."},
				Organizations: []OrganizationSpec{
					{
						ID:     "org-1",
						Name:   "acme",
						Labels: map[string]string{"sre.tier": "gold"},
						Clusters: []ClusterSpec{
							{
								ClusterID: "cluster-id-1",
								Name:      "prod-cluster",
								Labels:    map[string]string{"sre.escalation": "team-a"},
							},
						},
					},
				},
			},
		},
	}
	return config
}

func testOCMClient(t *testing.T) *ocm.ClientMock {
	return &ocm.ClientMock{
		GetLabelsFunc: func(filter search.Filter) ([]api.Label, error) {
			return []api.Label{
				api.OrganizationLabel{
					LabelData:      api.LabelData{Key: "sre.tier", Value: "silver"},
					OrganizationID: "org-1",
				},
				api.OrganizationLabel{
					LabelData:      api.LabelData{Key: "sre.stray", Value: "x"},
					OrganizationID: "org-1",
				},
			}, nil
		},
		GetSubscriptionsFunc: func(filter search.Filter) ([]*amsv1.Subscription, error) {
			subscription, err := amsv1.NewSubscription().
				ID("sub-1").
				HREF("/api/accounts_mgmt/v1/subscriptions/sub-1").
				OrganizationID("org-1").
				DisplayName("prod-cluster").
				Labels(amsv1.NewLabel().Key("sre.escalation").Value("old")).
				Build()
			if err != nil {
				t.Fatal(err)
			}
			return []*amsv1.Subscription{subscription}, nil
		},
		GetClustersFunc: func(filter search.Filter) ([]*clustersmgmtv1.Cluster, error) {
			cluster, err := clustersmgmtv1.NewCluster().
				ID("cluster-id-1").
				Name("prod-cluster").
				State(clustersmgmtv1.ClusterStateReady).
				Subscription(clustersmgmtv1.NewSubscription().ID("sub-1")).
				Build()
			if err != nil {
				t.Fatal(err)
			}
			return []*clustersmgmtv1.Cluster{cluster}, nil
		},
	}
}

func TestIntegration_DesiredState(t *testing.T) {
	g := gomega.NewWithT(t)

	integration := NewIntegration(testConfig(), nil)
	desired := integration.DesiredState()

	orgLabels, ok := desired.Get(api.OrgRef{OrgID: "org-1", OCMEnv: "production"})
	g.Expect(ok).To(gomega.BeTrue())
	g.Expect(orgLabels).To(gomega.Equal(api.LabelValues{"sre.tier": "gold"}))

	clusterLabels, ok := desired.Get(api.ClusterRef{ClusterID: "cluster-id-1", OrgID: "org-1", OCMEnv: "production"})
	g.Expect(ok).To(gomega.BeTrue())
	g.Expect(clusterLabels).To(gomega.Equal(api.LabelValues{"sre.escalation": "team-a"}))
}

func TestIntegration_DesiredStateHash_StableAcrossOrdering(t *testing.T) {
	g := gomega.NewWithT(t)

	config := testConfig()
	config.Spec.Environments[0].Organizations = append(config.Spec.Environments[0].Organizations,
		OrganizationSpec{ID: "org-2", Labels: map[string]string{"sre.tier": "bronze"}})

	reordered := testConfig()
	reordered.Spec.Environments[0].Organizations = append(
		[]OrganizationSpec{{ID: "org-2", Labels: map[string]string{"sre.tier": "bronze"}}},
		reordered.Spec.Environments[0].Organizations...)

	g.Expect(NewIntegration(config, nil).DesiredStateHash()).
		To(gomega.Equal(NewIntegration(reordered, nil).DesiredStateHash()))
}

func TestIntegration_Run(t *testing.T) {
	g := gomega.NewWithT(t)

	client := testOCMClient(t)
	integration := NewIntegration(testConfig(), map[string]ocm.Client{"production": client})

	g.Expect(integration.Run(false)).To(gomega.Succeed())

	// the organization tier label moves from silver to gold, the cluster
	// escalation label from old to team-a
	updateCalls := client.UpdateLabelCalls()
	g.Expect(updateCalls).To(gomega.HaveLen(2))
	updatesByKey := map[string]string{}
	hrefsByKey := map[string]string{}
	for _, call := range updateCalls {
		updatesByKey[call.Key] = call.Value
		hrefsByKey[call.Key] = call.Href
	}
	g.Expect(updatesByKey).To(gomega.Equal(map[string]string{
		"sre.tier":       "gold",
		"sre.escalation": "team-a",
	}))
	g.Expect(hrefsByKey["sre.tier"]).To(gomega.Equal("/api/accounts_mgmt/v1/organizations/org-1/labels"))
	g.Expect(hrefsByKey["sre.escalation"]).To(gomega.Equal("/api/accounts_mgmt/v1/subscriptions/sub-1/labels"))

	// the stray managed organization label is removed
	deleteCalls := client.DeleteLabelCalls()
	g.Expect(deleteCalls).To(gomega.HaveLen(1))
	g.Expect(deleteCalls[0].Key).To(gomega.Equal("sre.stray"))

	g.Expect(client.AddLabelCalls()).To(gomega.BeEmpty())
}

func TestIntegration_Run_ResolvesOrganizationExternalID(t *testing.T) {
	g := gomega.NewWithT(t)

	config := testConfig()
	config.Spec.Environments[0].Organizations[0].ID = ""
	config.Spec.Environments[0].Organizations[0].ExternalID = "ext-org-1"

	client := testOCMClient(t)
	client.GetOrganizationIDFromExternalIDFunc = func(externalID string) (string, error) {
		return "org-1", nil
	}
	integration := NewIntegration(config, map[string]ocm.Client{"production": client})

	g.Expect(integration.Run(false)).To(gomega.Succeed())

	resolveCalls := client.GetOrganizationIDFromExternalIDCalls()
	g.Expect(resolveCalls).To(gomega.HaveLen(1))
	g.Expect(resolveCalls[0].ExternalID).To(gomega.Equal("ext-org-1"))

	// the resolved organization id addresses the same label containers as a
	// directly declared one
	updateCalls := client.UpdateLabelCalls()
	g.Expect(updateCalls).To(gomega.HaveLen(2))
	hrefs := []string{updateCalls[0].Href, updateCalls[1].Href}
	g.Expect(hrefs).To(gomega.ContainElement("/api/accounts_mgmt/v1/organizations/org-1/labels"))
	g.Expect(hrefs).To(gomega.ContainElement("/api/accounts_mgmt/v1/subscriptions/sub-1/labels"))
}

func TestIntegration_Run_DryRun(t *testing.T) {
	g := gomega.NewWithT(t)

	client := testOCMClient(t)
	integration := NewIntegration(testConfig(), map[string]ocm.Client{"production": client})

	g.Expect(integration.Run(true)).To(gomega.Succeed())
	g.Expect(client.AddLabelCalls()).To(gomega.BeEmpty())
	g.Expect(client.UpdateLabelCalls()).To(gomega.BeEmpty())
	g.Expect(client.DeleteLabelCalls()).To(gomega.BeEmpty())
}

func TestSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Spec)
		wantErr string
	}{
		{
			name:   "valid spec",
			mutate: func(s *Spec) {},
		},
		{
			name: "duplicate environment",
			mutate: func(s *Spec) {
				s.Environments = append(s.Environments, s.Environments[0])
			},
			wantErr: "duplicate environment",
		},
		{
			name: "organization declared by external id",
			mutate: func(s *Spec) {
				s.Environments[0].Organizations[0].ID = ""
				s.Environments[0].Organizations[0].ExternalID = "ext-org-1"
			},
		},
		{
			name: "organization without id or external id",
			mutate: func(s *Spec) {
				s.Environments[0].Organizations[0].ID = ""
			},
			wantErr: "without id or external_id",
		},
		{
			name: "organization with both id and external id",
			mutate: func(s *Spec) {
				s.Environments[0].Organizations[0].ExternalID = "ext-org-1"
			},
			wantErr: "declares both id and external_id",
		},
		{
			name: "cluster without cluster id",
			mutate: func(s *Spec) {
				s.Environments[0].Organizations[0].Clusters[0].ClusterID = ""
			},
			wantErr: "without cluster id",
		},
		{
			name: "label outside managed prefixes",
			mutate: func(s *Spec) {
				s.Environments[0].Organizations[0].Labels["other.key"] = "v"
			},
			wantErr: "outside the managed prefixes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gomega.NewWithT(t)
			spec := testConfig().Spec
			tt.mutate(&spec)
			err := spec.Validate()
			if tt.wantErr == "" {
				g.Expect(err).ToNot(gomega.HaveOccurred())
			} else {
				g.Expect(err).To(gomega.HaveOccurred())
				g.Expect(err.Error()).To(gomega.ContainSubstring(tt.wantErr))
			}
		})
	}
}
