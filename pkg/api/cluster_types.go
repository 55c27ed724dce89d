package api

// ClusterState is the lifecycle state reported by clusters_mgmt
type ClusterState string

const (
	ClusterStateError        ClusterState = "error"
	ClusterStateHibernating  ClusterState = "hibernating"
	ClusterStateInstalling   ClusterState = "installing"
	ClusterStatePending      ClusterState = "pending"
	ClusterStatePoweringDown ClusterState = "powering_down"
	ClusterStateReady        ClusterState = "ready"
	ClusterStateResuming     ClusterState = "resuming"
	ClusterStateUninstalling ClusterState = "uninstalling"
	ClusterStateUnknown      ClusterState = "unknown"
	ClusterStateValidating   ClusterState = "validating"
	ClusterStateWaiting      ClusterState = "waiting"
)

// Capability is a subscription capability flag
type Capability struct {
	Name      string
	Value     string
	Inherited bool
}

// Cluster is a read-only snapshot joining a clusters_mgmt cluster with its
// subscription's labels and capabilities and its organization's labels. It
// is rebuilt on every reconciliation cycle and never mutated afterwards.
type Cluster struct {
	ID               string
	ExternalID       string
	Name             string
	DisplayName      string
	SubscriptionID   string
	SubscriptionHref string
	OrganizationID   string
	Region           string
	APIURL           string
	ConsoleURL       string
	ProductID        string
	State            ClusterState

	Capabilities       map[string]Capability
	SubscriptionLabels *LabelContainer
	OrganizationLabels *LabelContainer
}

// GetLabel looks a label up by key, checking subscription labels first and
// falling back to the inherited organization labels
func (c *Cluster) GetLabel(key string) (Label, bool) {
	if c.SubscriptionLabels != nil {
		if label, ok := c.SubscriptionLabels.Get(key); ok {
			return label, true
		}
	}
	if c.OrganizationLabels != nil {
		if label, ok := c.OrganizationLabels.Get(key); ok {
			return label, true
		}
	}
	return nil, false
}

// SubscriptionLabelContainerHref is the label container sub-resource of the
// cluster's subscription
func (c *Cluster) SubscriptionLabelContainerHref() string {
	if c.SubscriptionHref == "" {
		return ""
	}
	return c.SubscriptionHref + "/labels"
}
