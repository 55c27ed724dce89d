// Package aggregator provides a generic multiset-like container keyed by a
// canonical serialization of arbitrary grouping parameters, a set-based diff
// between two such containers, and a runner that dispatches registered
// actions over the diff output. It is the older diff mechanism used by a
// subset of the integrations; the label reconciliation protocol in
// pkg/services uses its own state model.
package aggregator

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"reflect"
	"sort"

	"github.com/app-sre/ocm-label-reconciler/pkg/errors"
)

// Params is the arbitrary grouping key of one list element
type Params map[string]interface{}

// ListElement groups the items that were recorded under one set of params
type ListElement struct {
	Params Params        `json:"params"`
	Items  []interface{} `json:"items"`
}

// AggregatedList groups opaque items under a hash of their grouping params.
// It is not safe for concurrent mutation; callers fanning out item collection
// must merge results from a single goroutine.
type AggregatedList struct {
	elements map[string]*ListElement
}

func NewAggregatedList() *AggregatedList {
	return &AggregatedList{
		elements: map[string]*ListElement{},
	}
}

// HashParams returns the canonical identity of a params map: the hex sha256
// of its key-sorted JSON serialization. The encoding is stable across
// processes, so hashes may be compared between runs.
func HashParams(params Params) string {
	// encoding/json serializes map keys in sorted order
	serialized, err := json.Marshal(params)
	if err != nil {
		// params are plain decoded configuration values; a marshal failure
		// means a programming error upstream
		panic(err)
	}
	sum := sha256.Sum256(serialized)
	return hex.EncodeToString(sum[:])
}

// Add records items under the given params. Items already present under the
// same params are skipped, compared by deep equality.
func (l *AggregatedList) Add(params Params, items []interface{}) {
	hash := HashParams(params)
	element, ok := l.elements[hash]
	if !ok {
		element = &ListElement{Params: params}
		l.elements[hash] = element
	}
	for _, item := range items {
		if !containsItem(element.Items, item) {
			element.Items = append(element.Items, item)
		}
	}
}

// Get returns the element recorded under the given params
func (l *AggregatedList) Get(params Params) (*ListElement, error) {
	return l.GetByParamsHash(HashParams(params))
}

// GetByParamsHash returns the element recorded under the given params hash
func (l *AggregatedList) GetByParamsHash(hash string) (*ListElement, error) {
	element, ok := l.elements[hash]
	if !ok {
		return nil, errors.NotFound("no element with params hash '%s'", hash)
	}
	return element, nil
}

// Len returns the number of distinct params groups
func (l *AggregatedList) Len() int {
	return len(l.elements)
}

// Elements returns all elements ordered by their params hash
func (l *AggregatedList) Elements() []ListElement {
	hashes := l.sortedHashes()
	out := make([]ListElement, 0, len(hashes))
	for _, h := range hashes {
		out = append(out, *l.elements[h])
	}
	return out
}

func (l *AggregatedList) sortedHashes() []string {
	hashes := make([]string, 0, len(l.elements))
	for h := range l.elements {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)
	return hashes
}

// DiffBucket identifies one of the four outcomes of diffing two lists
type DiffBucket int

const (
	// BucketInsert holds elements present only in the desired list
	BucketInsert DiffBucket = iota
	// BucketDelete holds elements present only in the current list
	BucketDelete
	// BucketUpdateInsert holds, for shared params, the items only the
	// desired list carries
	BucketUpdateInsert
	// BucketUpdateDelete holds, for shared params, the items only the
	// current list carries
	BucketUpdateDelete
)

func (b DiffBucket) String() string {
	switch b {
	case BucketInsert:
		return "insert"
	case BucketDelete:
		return "delete"
	case BucketUpdateInsert:
		return "update-insert"
	case BucketUpdateDelete:
		return "update-delete"
	default:
		return "unknown"
	}
}

// DiffState is the bucketed output of AggregatedList.Diff
type DiffState map[DiffBucket][]ListElement

// Diff compares the receiver (current state) against right (desired state).
// Elements under shared params contribute to the update buckets only when
// the respective item-set difference is non-empty; the update buckets carry
// the current side's params, which may hold identity fields the desired side
// never recorded.
func (l *AggregatedList) Diff(right *AggregatedList) DiffState {
	state := DiffState{}

	for _, hash := range right.sortedHashes() {
		if _, ok := l.elements[hash]; !ok {
			state[BucketInsert] = append(state[BucketInsert], *right.elements[hash])
		}
	}

	for _, hash := range l.sortedHashes() {
		left := l.elements[hash]
		other, ok := right.elements[hash]
		if !ok {
			state[BucketDelete] = append(state[BucketDelete], *left)
			continue
		}
		if added := itemsDifference(other.Items, left.Items); len(added) > 0 {
			state[BucketUpdateInsert] = append(state[BucketUpdateInsert], ListElement{
				Params: left.Params,
				Items:  added,
			})
		}
		if removed := itemsDifference(left.Items, other.Items); len(removed) > 0 {
			state[BucketUpdateDelete] = append(state[BucketUpdateDelete], ListElement{
				Params: left.Params,
				Items:  removed,
			})
		}
	}

	return state
}

// itemsDifference returns the items in a that are not in b, preserving order
func itemsDifference(a []interface{}, b []interface{}) []interface{} {
	var out []interface{}
	for _, item := range a {
		if !containsItem(b, item) {
			out = append(out, item)
		}
	}
	return out
}

func containsItem(items []interface{}, item interface{}) bool {
	for _, existing := range items {
		if reflect.DeepEqual(existing, item) {
			return true
		}
	}
	return false
}
