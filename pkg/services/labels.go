package services

import (
	"github.com/app-sre/ocm-label-reconciler/pkg/api"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm/search"
)

// LabelService exposes label discovery over the accounts_mgmt label search
// endpoint
type LabelService interface {
	// GetLabels lists all labels matching the filter, regardless of variant
	GetLabels(filter search.Filter) ([]api.Label, error)
	// GetSubscriptionLabels lists the subscription labels matching the filter
	GetSubscriptionLabels(filter search.Filter) ([]api.SubscriptionLabel, error)
	// GetOrganizationLabels lists the organization labels matching the filter
	GetOrganizationLabels(filter search.Filter) ([]api.OrganizationLabel, error)
}

var _ LabelService = &labelService{}

type labelService struct {
	client ocm.Client
}

func NewLabelService(client ocm.Client) LabelService {
	return &labelService{client: client}
}

func (s *labelService) GetLabels(filter search.Filter) ([]api.Label, error) {
	return s.client.GetLabels(filter)
}

func (s *labelService) GetSubscriptionLabels(filter search.Filter) ([]api.SubscriptionLabel, error) {
	labels, err := s.client.GetLabels(filter.And(
		search.NewFilter().Eq("type", string(api.SubscriptionLabelType))))
	if err != nil {
		return nil, err
	}
	out := make([]api.SubscriptionLabel, 0, len(labels))
	for _, label := range labels {
		if subscriptionLabel, ok := label.(api.SubscriptionLabel); ok {
			out = append(out, subscriptionLabel)
		}
	}
	return out, nil
}

func (s *labelService) GetOrganizationLabels(filter search.Filter) ([]api.OrganizationLabel, error) {
	labels, err := s.client.GetLabels(filter.And(
		search.NewFilter().Eq("type", string(api.OrganizationLabelType))))
	if err != nil {
		return nil, err
	}
	out := make([]api.OrganizationLabel, 0, len(labels))
	for _, label := range labels {
		if organizationLabel, ok := label.(api.OrganizationLabel); ok {
			out = append(out, organizationLabel)
		}
	}
	return out, nil
}
