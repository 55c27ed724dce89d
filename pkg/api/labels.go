package api

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/app-sre/ocm-label-reconciler/pkg/errors"
)

// LabelType discriminates the owning entity of an OCM label
type LabelType string

const (
	SubscriptionLabelType LabelType = "Subscription"
	OrganizationLabelType LabelType = "Organization"
	AccountLabelType      LabelType = "Account"
)

// Label is an immutable value object parsed from an accounts_mgmt label
type Label interface {
	// Data returns the attributes shared by all label variants
	Data() LabelData
	// Type returns the label variant
	Type() LabelType
	// OwnerID returns the id of the owning subscription, organization or account
	OwnerID() string
}

// LabelData holds the attributes common to all label variants
type LabelData struct {
	ID        string
	Href      string
	Key       string
	Value     string
	Internal  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubscriptionLabel is a label attached to a subscription
type SubscriptionLabel struct {
	LabelData
	SubscriptionID string
}

func (l SubscriptionLabel) Data() LabelData { return l.LabelData }
func (l SubscriptionLabel) Type() LabelType { return SubscriptionLabelType }
func (l SubscriptionLabel) OwnerID() string { return l.SubscriptionID }

// OrganizationLabel is a label attached to an organization, inherited by all
// its clusters unless overridden at the subscription level
type OrganizationLabel struct {
	LabelData
	OrganizationID string
}

func (l OrganizationLabel) Data() LabelData { return l.LabelData }
func (l OrganizationLabel) Type() LabelType { return OrganizationLabelType }
func (l OrganizationLabel) OwnerID() string { return l.OrganizationID }

// AccountLabel is a label attached to a user account
type AccountLabel struct {
	LabelData
	AccountID string
}

func (l AccountLabel) Data() LabelData { return l.LabelData }
func (l AccountLabel) Type() LabelType { return AccountLabelType }
func (l AccountLabel) OwnerID() string { return l.AccountID }

// labelJSON mirrors the wire representation of an accounts_mgmt label
type labelJSON struct {
	ID             string    `json:"id"`
	Href           string    `json:"href"`
	Key            string    `json:"key"`
	Value          string    `json:"value"`
	Internal       bool      `json:"internal"`
	Type           string    `json:"type"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	SubscriptionID string    `json:"subscription_id"`
	OrganizationID string    `json:"organization_id"`
	AccountID      string    `json:"account_id"`
}

// ParseLabel builds the label variant selected by the raw object's `type`
// field. An unknown type is an error: it signals schema drift on the remote
// API and must not be silently dropped.
func ParseLabel(raw []byte) (Label, error) {
	var decoded labelJSON
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errors.GeneralError("cannot decode label: %v", err)
	}
	data := LabelData{
		ID:        decoded.ID,
		Href:      decoded.Href,
		Key:       decoded.Key,
		Value:     decoded.Value,
		Internal:  decoded.Internal,
		CreatedAt: decoded.CreatedAt,
		UpdatedAt: decoded.UpdatedAt,
	}
	switch LabelType(decoded.Type) {
	case SubscriptionLabelType:
		return SubscriptionLabel{LabelData: data, SubscriptionID: decoded.SubscriptionID}, nil
	case OrganizationLabelType:
		return OrganizationLabel{LabelData: data, OrganizationID: decoded.OrganizationID}, nil
	case AccountLabelType:
		return AccountLabel{LabelData: data, AccountID: decoded.AccountID}, nil
	default:
		return nil, errors.UnknownLabelType("unknown label type '%s' on label '%s'", decoded.Type, decoded.Key)
	}
}

// LabelContainer is a read-only collection of labels keyed by label key
type LabelContainer struct {
	labels map[string]Label
}

// NewLabelContainer builds a container from the given labels. A later label
// with the same key replaces an earlier one.
func NewLabelContainer(labels ...Label) *LabelContainer {
	container := &LabelContainer{labels: map[string]Label{}}
	for _, label := range labels {
		container.labels[label.Data().Key] = label
	}
	return container
}

// Get returns the label stored under key
func (c *LabelContainer) Get(key string) (Label, bool) {
	label, ok := c.labels[key]
	return label, ok
}

// GetLabelValue returns the value of the label stored under key, or the
// empty string when absent
func (c *LabelContainer) GetLabelValue(key string) string {
	label, ok := c.labels[key]
	if !ok {
		return ""
	}
	return label.Data().Value
}

// Keys returns the label keys in sorted order
func (c *LabelContainer) Keys() []string {
	keys := make([]string, 0, len(c.labels))
	for k := range c.labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Labels returns the labels ordered by key
func (c *LabelContainer) Labels() []Label {
	out := make([]Label, 0, len(c.labels))
	for _, key := range c.Keys() {
		out = append(out, c.labels[key])
	}
	return out
}

func (c *LabelContainer) Len() int {
	return len(c.labels)
}
