package ocm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	pkgerrors "github.com/pkg/errors"

	sdkClient "github.com/openshift-online/ocm-sdk-go"
	amsv1 "github.com/openshift-online/ocm-sdk-go/accountsmgmt/v1"
	clustersmgmtv1 "github.com/openshift-online/ocm-sdk-go/clustersmgmt/v1"

	"github.com/app-sre/ocm-label-reconciler/pkg/api"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm/search"
	"github.com/app-sre/ocm-label-reconciler/pkg/errors"
	"github.com/app-sre/ocm-label-reconciler/pkg/shared"
)

const (
	labelsEndpoint        = "/api/accounts_mgmt/v1/labels"
	organizationsEndpoint = "/api/accounts_mgmt/v1/organizations"

	// maxPages is a hard cap on the pagination loop, guarding against a
	// remote collection that keeps returning full pages
	maxPages = 500

	defaultPageSize = 100
)

// Client is the OCM API surface the reconciler consumes. Labels are listed
// through the accounts_mgmt label search endpoint and written through the
// label container sub-resources addressed by href; subscriptions and
// clusters are listed through the typed SDK collections.
type Client interface {
	// GetLabels lists the labels matching the filter across subscriptions,
	// organizations and accounts
	GetLabels(filter search.Filter) ([]api.Label, error)
	// GetSubscriptions lists the subscriptions matching the filter, with
	// labels and capabilities attached
	GetSubscriptions(filter search.Filter) ([]*amsv1.Subscription, error)
	// GetClusters lists the clusters matching the filter
	GetClusters(filter search.Filter) ([]*clustersmgmtv1.Cluster, error)
	GetOrganizationIDFromExternalID(externalID string) (string, error)
	// AddLabel creates a label in the label container at href
	AddLabel(href string, key string, value string) error
	// UpdateLabel replaces the value of an existing label in the label
	// container at href
	UpdateLabel(href string, key string, value string) error
	// DeleteLabel removes a label from the label container at href
	DeleteLabel(href string, key string) error
	Connection() *sdkClient.Connection
}

var _ Client = &client{}

type client struct {
	connection *sdkClient.Connection
	pageSize   int
	cache      *cache.Cache
}

// NewOCMConnection builds an authenticated OCM connection from the given
// config. The returned func closes the connection.
func NewOCMConnection(ocmConfig *OCMConfig) (*sdkClient.Connection, func(), error) {
	builder := sdkClient.NewConnectionBuilder().
		URL(ocmConfig.BaseURL).
		TokenURL(ocmConfig.TokenURL).
		RetryLimit(ocmConfig.RetryLimit).
		MetricsSubsystem("api_outbound")

	// Create a logger that has the debug level enabled:
	logger, err := sdkClient.NewGoLoggerBuilder().
		Debug(ocmConfig.Debug).
		Build()
	if err != nil {
		return nil, nil, err
	}
	builder = builder.Logger(logger)

	if ocmConfig.ClientID != "" && ocmConfig.ClientSecret != "" {
		builder = builder.Client(ocmConfig.ClientID, ocmConfig.ClientSecret)
	} else if ocmConfig.SelfToken != "" {
		if shared.IsJWTTokenExpired(ocmConfig.SelfToken) {
			return nil, nil, fmt.Errorf("can't build OCM client connection, the provided token is expired")
		}
		builder = builder.Tokens(ocmConfig.SelfToken)
	} else {
		return nil, nil, fmt.Errorf("can't build OCM client connection, no Client/Secret or Token has been provided")
	}

	connection, err := builder.Build()
	if err != nil {
		return nil, nil, err
	}
	return connection, func() {
		_ = connection.Close()
	}, nil
}

func NewClient(connection *sdkClient.Connection, maxPageSize int) Client {
	if maxPageSize <= 0 {
		maxPageSize = defaultPageSize
	}
	return &client{
		connection: connection,
		pageSize:   maxPageSize,
		cache:      cache.New(168*time.Hour, 1*time.Hour),
	}
}

func (c *client) Connection() *sdkClient.Connection {
	return c.connection
}

func (c *client) GetLabels(filter search.Filter) ([]api.Label, error) {
	rendered, err := filter.Render()
	if err != nil {
		return nil, err
	}
	items, err := c.getPaginated(labelsEndpoint, rendered)
	if err != nil {
		return nil, err
	}
	labels := make([]api.Label, 0, len(items))
	for _, item := range items {
		label, err := api.ParseLabel(item)
		if err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, nil
}

func (c *client) GetSubscriptions(filter search.Filter) ([]*amsv1.Subscription, error) {
	rendered, err := filter.Render()
	if err != nil {
		return nil, err
	}
	var subscriptions []*amsv1.Subscription
	for page := 1; ; page++ {
		response, err := c.connection.AccountsMgmt().V1().Subscriptions().List().
			Search(rendered).
			Parameter("fetchLabels", true).
			Parameter("fetchCapabilities", true).
			Page(page).
			Size(c.pageSize).
			Send()
		if err != nil {
			return nil, pkgerrors.Wrap(err, "error retrieving subscription list")
		}
		items := response.Items().Slice()
		subscriptions = append(subscriptions, items...)
		if len(items) < c.pageSize {
			break
		}
		if page >= maxPages {
			return nil, errors.PaginationOverflow(
				"subscription search '%s' still returned full pages after %d pages", rendered, maxPages)
		}
	}
	return subscriptions, nil
}

func (c *client) GetClusters(filter search.Filter) ([]*clustersmgmtv1.Cluster, error) {
	rendered, err := filter.Render()
	if err != nil {
		return nil, err
	}
	var clusters []*clustersmgmtv1.Cluster
	for page := 1; ; page++ {
		response, err := c.connection.ClustersMgmt().V1().Clusters().List().
			Search(rendered).
			Page(page).
			Size(c.pageSize).
			Send()
		if err != nil {
			return nil, pkgerrors.Wrap(err, "error retrieving cluster list")
		}
		items := response.Items().Slice()
		clusters = append(clusters, items...)
		if len(items) < c.pageSize {
			break
		}
		if page >= maxPages {
			return nil, errors.PaginationOverflow(
				"cluster search '%s' still returned full pages after %d pages", rendered, maxPages)
		}
	}
	return clusters, nil
}

func (c *client) GetOrganizationIDFromExternalID(externalID string) (string, error) {
	orgID, cached := c.cache.Get(externalID)
	if cached {
		orgID, ok := orgID.(string)
		if ok && orgID != "" {
			return orgID, nil
		}
	}

	rendered, err := search.NewFilter().Eq("external_id", externalID).Render()
	if err != nil {
		return "", err
	}
	response, err := c.connection.AccountsMgmt().V1().Organizations().List().Search(rendered).Send()
	if err != nil {
		return "", err
	}

	items := response.Items()
	if items.Len() < 1 {
		return "", errors.NotFound("organization with external_id '%s' can't be found", externalID)
	}

	organizationID := items.Get(0).ID()
	c.cache.Set(externalID, organizationID, cache.DefaultExpiration)
	return organizationID, nil
}

func (c *client) AddLabel(href string, key string, value string) error {
	body, err := json.Marshal(map[string]interface{}{
		"kind":     "Label",
		"key":      key,
		"value":    value,
		"internal": false,
	})
	if err != nil {
		return err
	}
	response, sendErr := c.connection.Post().Path(href).Bytes(body).Send()
	if sendErr != nil {
		return pkgerrors.Wrapf(sendErr, "error adding label '%s' on '%s'", key, href)
	}
	if response.Status() >= http.StatusMultipleChoices {
		return errors.NewErrorFromHTTPStatusCode(response.Status(),
			"ocm client failed to add label '%s' on '%s'", key, href)
	}
	return nil
}

func (c *client) UpdateLabel(href string, key string, value string) error {
	body, err := json.Marshal(map[string]interface{}{
		"kind":  "Label",
		"key":   key,
		"value": value,
	})
	if err != nil {
		return err
	}
	response, sendErr := c.connection.Patch().Path(href + "/" + key).Bytes(body).Send()
	if sendErr != nil {
		return pkgerrors.Wrapf(sendErr, "error updating label '%s' on '%s'", key, href)
	}
	if response.Status() >= http.StatusMultipleChoices {
		return errors.NewErrorFromHTTPStatusCode(response.Status(),
			"ocm client failed to update label '%s' on '%s'", key, href)
	}
	return nil
}

func (c *client) DeleteLabel(href string, key string) error {
	response, sendErr := c.connection.Delete().Path(href + "/" + key).Send()
	if sendErr != nil {
		return pkgerrors.Wrapf(sendErr, "error deleting label '%s' on '%s'", key, href)
	}
	if response.Status() >= http.StatusMultipleChoices {
		return errors.NewErrorFromHTTPStatusCode(response.Status(),
			"ocm client failed to delete label '%s' on '%s'", key, href)
	}
	return nil
}

// listPage mirrors the envelope of a paginated accounts_mgmt collection
type listPage struct {
	Page  int               `json:"page"`
	Size  int               `json:"size"`
	Total int               `json:"total"`
	Items []json.RawMessage `json:"items"`
}

// getPaginated concatenates the items of all pages of a raw collection
// endpoint, increasing the page number while pages come back full
func (c *client) getPaginated(path string, searchQuery string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	for page := 1; ; page++ {
		response, err := c.connection.Get().
			Path(path).
			Parameter("search", searchQuery).
			Parameter("page", fmt.Sprintf("%d", page)).
			Parameter("size", fmt.Sprintf("%d", c.pageSize)).
			Send()
		if err != nil {
			return nil, pkgerrors.Wrapf(err, "error listing '%s'", path)
		}
		if response.Status() != http.StatusOK {
			return nil, errors.NewErrorFromHTTPStatusCode(response.Status(),
				"ocm client failed to list '%s'", path)
		}
		var decoded listPage
		if err := json.Unmarshal(response.Bytes(), &decoded); err != nil {
			return nil, pkgerrors.Wrapf(err, "error decoding page %d of '%s'", page, path)
		}
		items = append(items, decoded.Items...)
		if len(decoded.Items) < c.pageSize {
			break
		}
		if page >= maxPages {
			return nil, errors.PaginationOverflow(
				"collection '%s' still returned full pages after %d pages", path, maxPages)
		}
	}
	return items, nil
}

// OrganizationLabelContainerHref is the label container sub-resource of an
// organization
func OrganizationLabelContainerHref(orgID string) string {
	return organizationsEndpoint + "/" + orgID + "/labels"
}
