package ocm

import (
	"sync"

	sdkClient "github.com/openshift-online/ocm-sdk-go"
	amsv1 "github.com/openshift-online/ocm-sdk-go/accountsmgmt/v1"
	clustersmgmtv1 "github.com/openshift-online/ocm-sdk-go/clustersmgmt/v1"

	"github.com/app-sre/ocm-label-reconciler/pkg/api"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm/search"
)

var _ Client = &ClientMock{}

// ClientMock is a mock implementation of Client for tests. Set the *Func
// fields for the methods a test exercises; unset read methods return empty
// results and unset write methods succeed. All calls are recorded.
type ClientMock struct {
	GetLabelsFunc                       func(filter search.Filter) ([]api.Label, error)
	GetSubscriptionsFunc                func(filter search.Filter) ([]*amsv1.Subscription, error)
	GetClustersFunc                     func(filter search.Filter) ([]*clustersmgmtv1.Cluster, error)
	GetOrganizationIDFromExternalIDFunc func(externalID string) (string, error)
	AddLabelFunc                        func(href string, key string, value string) error
	UpdateLabelFunc                     func(href string, key string, value string) error
	DeleteLabelFunc                     func(href string, key string) error

	lock  sync.Mutex
	calls struct {
		GetLabels []struct {
			Filter search.Filter
		}
		GetSubscriptions []struct {
			Filter search.Filter
		}
		GetClusters []struct {
			Filter search.Filter
		}
		GetOrganizationIDFromExternalID []struct {
			ExternalID string
		}
		AddLabel []struct {
			Href  string
			Key   string
			Value string
		}
		UpdateLabel []struct {
			Href  string
			Key   string
			Value string
		}
		DeleteLabel []struct {
			Href string
			Key  string
		}
	}
}

func (m *ClientMock) GetLabels(filter search.Filter) ([]api.Label, error) {
	m.lock.Lock()
	m.calls.GetLabels = append(m.calls.GetLabels, struct {
		Filter search.Filter
	}{filter})
	m.lock.Unlock()
	if m.GetLabelsFunc == nil {
		return nil, nil
	}
	return m.GetLabelsFunc(filter)
}

func (m *ClientMock) GetSubscriptions(filter search.Filter) ([]*amsv1.Subscription, error) {
	m.lock.Lock()
	m.calls.GetSubscriptions = append(m.calls.GetSubscriptions, struct {
		Filter search.Filter
	}{filter})
	m.lock.Unlock()
	if m.GetSubscriptionsFunc == nil {
		return nil, nil
	}
	return m.GetSubscriptionsFunc(filter)
}

func (m *ClientMock) GetClusters(filter search.Filter) ([]*clustersmgmtv1.Cluster, error) {
	m.lock.Lock()
	m.calls.GetClusters = append(m.calls.GetClusters, struct {
		Filter search.Filter
	}{filter})
	m.lock.Unlock()
	if m.GetClustersFunc == nil {
		return nil, nil
	}
	return m.GetClustersFunc(filter)
}

func (m *ClientMock) GetOrganizationIDFromExternalID(externalID string) (string, error) {
	m.lock.Lock()
	m.calls.GetOrganizationIDFromExternalID = append(m.calls.GetOrganizationIDFromExternalID, struct {
		ExternalID string
	}{externalID})
	m.lock.Unlock()
	if m.GetOrganizationIDFromExternalIDFunc == nil {
		return "", nil
	}
	return m.GetOrganizationIDFromExternalIDFunc(externalID)
}

func (m *ClientMock) AddLabel(href string, key string, value string) error {
	m.lock.Lock()
	m.calls.AddLabel = append(m.calls.AddLabel, struct {
		Href  string
		Key   string
		Value string
	}{href, key, value})
	m.lock.Unlock()
	if m.AddLabelFunc == nil {
		return nil
	}
	return m.AddLabelFunc(href, key, value)
}

func (m *ClientMock) UpdateLabel(href string, key string, value string) error {
	m.lock.Lock()
	m.calls.UpdateLabel = append(m.calls.UpdateLabel, struct {
		Href  string
		Key   string
		Value string
	}{href, key, value})
	m.lock.Unlock()
	if m.UpdateLabelFunc == nil {
		return nil
	}
	return m.UpdateLabelFunc(href, key, value)
}

func (m *ClientMock) DeleteLabel(href string, key string) error {
	m.lock.Lock()
	m.calls.DeleteLabel = append(m.calls.DeleteLabel, struct {
		Href string
		Key  string
	}{href, key})
	m.lock.Unlock()
	if m.DeleteLabelFunc == nil {
		return nil
	}
	return m.DeleteLabelFunc(href, key)
}

func (m *ClientMock) Connection() *sdkClient.Connection {
	return nil
}

func (m *ClientMock) GetLabelsCalls() []struct {
	Filter search.Filter
} {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.calls.GetLabels
}

func (m *ClientMock) GetSubscriptionsCalls() []struct {
	Filter search.Filter
} {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.calls.GetSubscriptions
}

func (m *ClientMock) GetClustersCalls() []struct {
	Filter search.Filter
} {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.calls.GetClusters
}

func (m *ClientMock) GetOrganizationIDFromExternalIDCalls() []struct {
	ExternalID string
} {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.calls.GetOrganizationIDFromExternalID
}

func (m *ClientMock) AddLabelCalls() []struct {
	Href  string
	Key   string
	Value string
} {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.calls.AddLabel
}

func (m *ClientMock) UpdateLabelCalls() []struct {
	Href  string
	Key   string
	Value string
} {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.calls.UpdateLabel
}

func (m *ClientMock) DeleteLabelCalls() []struct {
	Href string
	Key  string
} {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.calls.DeleteLabel
}
