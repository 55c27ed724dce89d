package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/app-sre/ocm-label-reconciler/pkg/errors"
)

// LabelOwnerRef identifies the entity labels are being synced onto. Identity
// deliberately excludes the display name and the label container href: two
// refs address the same entity when their ids and environment match, even if
// the desired-state side never resolved a name or an API link for it.
type LabelOwnerRef interface {
	// IdentityKey is the stable identity used to match current and desired
	// state entries
	IdentityKey() string
	// RefName is the display name used in logs, possibly empty on
	// desired-state refs
	RefName() string
	// RequiredLabelContainerHref returns the href of the remote label
	// container. It fails loudly when the href was never resolved against
	// OCM, which means the caller violated the "act on current state only"
	// rule.
	RequiredLabelContainerHref() (string, error)
}

// ClusterRef addresses labels held by a cluster's subscription
type ClusterRef struct {
	ClusterID          string
	OrgID              string
	Name               string
	OCMEnv             string
	LabelContainerHref string
}

func (r ClusterRef) IdentityKey() string {
	return fmt.Sprintf("cluster/%s/%s/%s", r.OCMEnv, r.OrgID, r.ClusterID)
}

func (r ClusterRef) RefName() string {
	return r.Name
}

func (r ClusterRef) RequiredLabelContainerHref() (string, error) {
	if r.LabelContainerHref == "" {
		return "", errors.MissingLabelContainerHref(
			"label container href missing on cluster '%s' (%s): refusing to act on an entity not resolved against OCM",
			r.Name, r.ClusterID)
	}
	return r.LabelContainerHref, nil
}

// OrgRef addresses labels held by an organization
type OrgRef struct {
	OrgID              string
	Name               string
	OCMEnv             string
	LabelContainerHref string
}

func (r OrgRef) IdentityKey() string {
	return fmt.Sprintf("organization/%s/%s", r.OCMEnv, r.OrgID)
}

func (r OrgRef) RefName() string {
	return r.Name
}

func (r OrgRef) RequiredLabelContainerHref() (string, error) {
	if r.LabelContainerHref == "" {
		return "", errors.MissingLabelContainerHref(
			"label container href missing on organization '%s' (%s): refusing to act on an entity not resolved against OCM",
			r.Name, r.OrgID)
	}
	return r.LabelContainerHref, nil
}

// LabelValues maps a label key to its value
type LabelValues map[string]string

// LabelState maps label owners to the labels they carry (or should carry).
// Entries are matched between two states by the owner's identity key.
type LabelState struct {
	entries map[string]labelStateEntry
}

type labelStateEntry struct {
	ref    LabelOwnerRef
	labels LabelValues
}

func NewLabelState() *LabelState {
	return &LabelState{entries: map[string]labelStateEntry{}}
}

// Set records the labels for an owner, replacing any previous entry that
// matches its identity
func (s *LabelState) Set(ref LabelOwnerRef, labels LabelValues) {
	if labels == nil {
		labels = LabelValues{}
	}
	s.entries[ref.IdentityKey()] = labelStateEntry{ref: ref, labels: labels}
}

// Get returns the labels recorded for an owner matching the given ref's
// identity
func (s *LabelState) Get(ref LabelOwnerRef) (LabelValues, bool) {
	entry, ok := s.entries[ref.IdentityKey()]
	if !ok {
		return nil, false
	}
	return entry.labels, true
}

// Refs returns the owners in identity-key sorted order
func (s *LabelState) Refs() []LabelOwnerRef {
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	refs := make([]LabelOwnerRef, 0, len(keys))
	for _, k := range keys {
		refs = append(refs, s.entries[k].ref)
	}
	return refs
}

func (s *LabelState) Len() int {
	return len(s.entries)
}

// Hash returns the hex sha256 of the canonical serialization of the state.
// Structurally identical states hash identically regardless of the order
// entries or labels were inserted, so orchestrators may compare hashes
// across runs to skip reconciliation cycles.
func (s *LabelState) Hash() string {
	canonical := make(map[string]LabelValues, len(s.entries))
	for key, entry := range s.entries {
		canonical[key] = entry.labels
	}
	// encoding/json serializes map keys in sorted order
	serialized, err := json.Marshal(canonical)
	if err != nil {
		// entries only hold plain strings
		panic(err)
	}
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:])
}
