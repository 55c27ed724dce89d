package api

import (
	"testing"

	"github.com/onsi/gomega"
)

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantType  LabelType
		wantOwner string
		wantErr   bool
	}{
		{
			name: "subscription label",
			raw: `{
				"id": "lbl-1",
				"href": "/api/accounts_mgmt/v1/subscriptions/sub-1/labels/env",
				"key": "env",
				"value": "production",
				"internal": false,
				"type": "Subscription",
				"subscription_id": "sub-1"
			}`,
			wantType:  SubscriptionLabelType,
			wantOwner: "sub-1",
		},
		{
			name: "organization label",
			raw: `{
				"id": "lbl-2",
				"key": "tier",
				"value": "standard",
				"type": "Organization",
				"organization_id": "org-1"
			}`,
			wantType:  OrganizationLabelType,
			wantOwner: "org-1",
		},
		{
			name: "account label",
			raw: `{
				"id": "lbl-3",
				"key": "beta",
				"value": "true",
				"type": "Account",
				"account_id": "acc-1"
			}`,
			wantType:  AccountLabelType,
			wantOwner: "acc-1",
		},
		{
			name:    "unknown type fails",
			raw:     `{"id": "lbl-4", "key": "k", "value": "v", "type": "Galaxy"}`,
			wantErr: true,
		},
		{
			name:    "malformed json fails",
			raw:     `{"key": `,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := gomega.NewWithT(t)
			label, err := ParseLabel([]byte(tt.raw))
			if tt.wantErr {
				g.Expect(err).To(gomega.HaveOccurred())
				return
			}
			g.Expect(err).ToNot(gomega.HaveOccurred())
			g.Expect(label.Type()).To(gomega.Equal(tt.wantType))
			g.Expect(label.OwnerID()).To(gomega.Equal(tt.wantOwner))
		})
	}
}

func TestLabelContainer(t *testing.T) {
	g := gomega.NewWithT(t)

	container := NewLabelContainer(
		SubscriptionLabel{LabelData: LabelData{Key: "b", Value: "2"}, SubscriptionID: "sub-1"},
		SubscriptionLabel{LabelData: LabelData{Key: "a", Value: "1"}, SubscriptionID: "sub-1"},
		// same key, later entry wins
		SubscriptionLabel{LabelData: LabelData{Key: "b", Value: "3"}, SubscriptionID: "sub-1"},
	)

	g.Expect(container.Len()).To(gomega.Equal(2))
	g.Expect(container.Keys()).To(gomega.Equal([]string{"a", "b"}))
	g.Expect(container.GetLabelValue("b")).To(gomega.Equal("3"))
	g.Expect(container.GetLabelValue("missing")).To(gomega.Equal(""))

	_, ok := container.Get("a")
	g.Expect(ok).To(gomega.BeTrue())
}

func TestCluster_GetLabel(t *testing.T) {
	g := gomega.NewWithT(t)

	cluster := &Cluster{
		SubscriptionLabels: NewLabelContainer(
			SubscriptionLabel{LabelData: LabelData{Key: "shared", Value: "from-subscription"}},
		),
		OrganizationLabels: NewLabelContainer(
			OrganizationLabel{LabelData: LabelData{Key: "shared", Value: "from-org"}},
			OrganizationLabel{LabelData: LabelData{Key: "org-only", Value: "inherited"}},
		),
	}

	// subscription labels shadow organization labels
	label, ok := cluster.GetLabel("shared")
	g.Expect(ok).To(gomega.BeTrue())
	g.Expect(label.Data().Value).To(gomega.Equal("from-subscription"))

	label, ok = cluster.GetLabel("org-only")
	g.Expect(ok).To(gomega.BeTrue())
	g.Expect(label.Data().Value).To(gomega.Equal("inherited"))

	_, ok = cluster.GetLabel("absent")
	g.Expect(ok).To(gomega.BeFalse())
}

func TestCluster_SubscriptionLabelContainerHref(t *testing.T) {
	g := gomega.NewWithT(t)

	cluster := &Cluster{SubscriptionHref: "/api/accounts_mgmt/v1/subscriptions/sub-1"}
	g.Expect(cluster.SubscriptionLabelContainerHref()).
		To(gomega.Equal("/api/accounts_mgmt/v1/subscriptions/sub-1/labels"))

	empty := &Cluster{}
	g.Expect(empty.SubscriptionLabelContainerHref()).To(gomega.Equal(""))
}
