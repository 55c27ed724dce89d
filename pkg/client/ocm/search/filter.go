package search

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/senseyeio/duration"

	"github.com/app-sre/ocm-label-reconciler/pkg/errors"
)

// Filter is an immutable builder for OCM search query strings, as accepted by
// the `search` parameter of the accounts_mgmt and clusters_mgmt collection
// endpoints. Every builder method returns a new Filter and leaves the
// receiver untouched. Construction errors are deferred and surfaced by
// Render, in the style of the ocm-sdk-go object builders.
type Filter struct {
	conditions map[string]condition
	groups     []orGroup
	err        *errors.ServiceError
}

// orGroup is a disjunction of sub-filters, AND-ed with the rest of the filter
type orGroup []Filter

// NewFilter returns an empty filter. An empty filter cannot be rendered.
func NewFilter() Filter {
	return Filter{}
}

func (f Filter) copy() Filter {
	out := Filter{err: f.err}
	if len(f.conditions) > 0 {
		out.conditions = make(map[string]condition, len(f.conditions))
		for k, v := range f.conditions {
			out.conditions[k] = v
		}
	}
	if len(f.groups) > 0 {
		out.groups = make([]orGroup, len(f.groups))
		copy(out.groups, f.groups)
	}
	return out
}

// IsEmpty returns true if the filter holds no conditions
func (f Filter) IsEmpty() bool {
	return len(f.conditions) == 0 && len(f.groups) == 0
}

func (f Filter) withError(err *errors.ServiceError) Filter {
	out := f.copy()
	out.err = err
	return out
}

func (f Filter) addCondition(key string, cond condition) Filter {
	if f.err != nil {
		return f
	}
	out := f.copy()
	if out.conditions == nil {
		out.conditions = map[string]condition{}
	}
	existing, ok := out.conditions[key]
	if !ok {
		out.conditions[key] = cond
		return out
	}
	merged, err := existing.merge(cond)
	if err != nil {
		return f.withError(errors.InvalidFilter("cannot merge conditions on field '%s': %v", key, err))
	}
	out.conditions[key] = merged
	return out
}

// Eq adds an equality condition on key. A falsy value is a no-op. Repeated
// equality conditions on the same field merge into a membership condition.
func (f Filter) Eq(key string, value string) Filter {
	if value == "" {
		return f
	}
	return f.addCondition(key, valuesCondition{values: []string{value}})
}

// IsIn adds a membership condition on key. An empty collection is a no-op and
// a one-element collection degenerates to an equality condition. Values are
// deduplicated and kept sorted.
func (f Filter) IsIn(key string, values []string) Filter {
	if len(values) == 0 {
		return f
	}
	return f.addCondition(key, valuesCondition{values: normalizeValues(values)})
}

// Like adds a pattern-match condition on key. Two patterns on the same field
// combine into a disjunction of the two matches, never into a single pattern.
func (f Filter) Like(key string, pattern string) Filter {
	if pattern == "" {
		return f
	}
	return f.addCondition(key, likeCondition{patterns: []string{pattern}})
}

// Before constrains key to dates at or before the given date
func (f Filter) Before(key string, date Date) Filter {
	return f.addCondition(key, dateCondition{before: &date})
}

// After constrains key to dates at or after the given date
func (f Filter) After(key string, date Date) Filter {
	return f.addCondition(key, dateCondition{after: &date})
}

// Between constrains key to the inclusive range [start, end]. The range is
// validated at render time, once relative dates have been resolved.
func (f Filter) Between(key string, start Date, end Date) Filter {
	return f.addCondition(key, dateCondition{after: &start, before: &end})
}

// And combines two filters conjunctively. Conditions on the same field are
// merged following the same rules as chained builder calls.
func (f Filter) And(other Filter) Filter {
	out := f
	for _, key := range sortedConditionKeys(other.conditions) {
		out = out.addCondition(key, other.conditions[key])
	}
	if other.err != nil && out.err == nil {
		out = out.withError(other.err)
	}
	if len(other.groups) > 0 {
		combined := out.copy()
		combined.groups = append(combined.groups, other.groups...)
		out = combined
	}
	return out
}

// Or combines the given filters disjunctively. Empty filters are elided and a
// disjunction of exactly one non-empty filter degenerates to that filter.
func Or(filters ...Filter) Filter {
	var nonEmpty []Filter
	for _, filter := range filters {
		if filter.err != nil {
			return Filter{err: filter.err}
		}
		if !filter.IsEmpty() {
			nonEmpty = append(nonEmpty, filter)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return Filter{}
	case 1:
		return nonEmpty[0]
	default:
		return Filter{groups: []orGroup{nonEmpty}}
	}
}

// ChunkBy splits the membership condition on key into multiple filters of at
// most chunkSize values each, leaving every other condition in place. The
// rendered value sets of the chunks partition the original set exactly. If
// the field does not carry a membership condition the call fails, unless
// ignoreMissing is set, in which case the filter is returned unchunked.
func (f Filter) ChunkBy(key string, chunkSize int, ignoreMissing bool) ([]Filter, error) {
	if f.err != nil {
		return nil, f.err
	}
	if chunkSize < 1 {
		return nil, errors.InvalidFilter("chunk size must be positive, got %d", chunkSize)
	}
	cond, ok := f.conditions[key]
	values, isList := listValues(cond)
	if !ok || !isList {
		if ignoreMissing {
			return []Filter{f}, nil
		}
		return nil, errors.InvalidFilter("cannot chunk filter by field '%s': not a list condition", key)
	}
	var chunks []Filter
	for start := 0; start < len(values); start += chunkSize {
		end := start + chunkSize
		if end > len(values) {
			end = len(values)
		}
		chunk := f.copy()
		chunk.conditions[key] = valuesCondition{values: values[start:end]}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Render builds the search string. Conditions are rendered in field-name
// sorted order to keep the output deterministic. Rendering an empty filter
// is an error.
func (f Filter) Render() (string, error) {
	return f.RenderAt(time.Now().UTC())
}

// RenderAt renders the filter resolving relative dates against the given
// instant instead of the current time
func (f Filter) RenderAt(now time.Time) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.IsEmpty() {
		return "", errors.InvalidFilter("cannot render empty filter")
	}
	var parts []string
	for _, key := range sortedConditionKeys(f.conditions) {
		rendered, err := f.conditions[key].render(key, now)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	for _, group := range f.groups {
		rendered, err := renderGroup(group, now)
		if err != nil {
			return "", err
		}
		parts = append(parts, rendered)
	}
	return strings.Join(parts, " and "), nil
}

func renderGroup(group orGroup, now time.Time) (string, error) {
	branches := make([]string, 0, len(group))
	for _, filter := range group {
		rendered, err := filter.RenderAt(now)
		if err != nil {
			return "", err
		}
		branches = append(branches, rendered)
	}
	if len(branches) == 1 {
		return branches[0], nil
	}
	return "(" + strings.Join(branches, " or ") + ")", nil
}

// Equals reports whether two filters render to the same search string. Two
// empty filters are considered equal even though neither can be rendered.
func (f Filter) Equals(other Filter) bool {
	if f.IsEmpty() && other.IsEmpty() {
		return true
	}
	now := time.Now().UTC()
	left, leftErr := f.RenderAt(now)
	right, rightErr := other.RenderAt(now)
	if leftErr != nil || rightErr != nil {
		return false
	}
	return left == right
}

func (f Filter) String() string {
	rendered, err := f.Render()
	if err != nil {
		return fmt.Sprintf("<invalid filter: %v>", err)
	}
	return rendered
}

func sortedConditionKeys(conditions map[string]condition) []string {
	keys := make([]string, 0, len(conditions))
	for k := range conditions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalizeValues(values []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// escapeValue doubles embedded single quotes per the OCM search grammar
func escapeValue(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

type condition interface {
	render(field string, now time.Time) (string, error)
	merge(other condition) (condition, error)
}

// valuesCondition holds an equality or membership constraint. A single value
// renders as an equality, multiple values render as a membership test.
type valuesCondition struct {
	values []string
}

func listValues(cond condition) ([]string, bool) {
	vc, ok := cond.(valuesCondition)
	if !ok || len(vc.values) < 2 {
		// a single value is an equality condition, not a list
		return nil, false
	}
	return vc.values, true
}

func (c valuesCondition) render(field string, _ time.Time) (string, error) {
	if len(c.values) == 1 {
		return fmt.Sprintf("%s='%s'", field, escapeValue(c.values[0])), nil
	}
	quoted := make([]string, 0, len(c.values))
	for _, v := range c.values {
		quoted = append(quoted, "'"+escapeValue(v)+"'")
	}
	return fmt.Sprintf("%s in (%s)", field, strings.Join(quoted, ",")), nil
}

func (c valuesCondition) merge(other condition) (condition, error) {
	oc, ok := other.(valuesCondition)
	if !ok {
		return nil, fmt.Errorf("condition kind mismatch")
	}
	return valuesCondition{values: normalizeValues(append(append([]string{}, c.values...), oc.values...))}, nil
}

// likeCondition holds one or more pattern constraints on a field. Multiple
// patterns render as a parenthesized disjunction.
type likeCondition struct {
	patterns []string
}

func (c likeCondition) render(field string, _ time.Time) (string, error) {
	matches := make([]string, 0, len(c.patterns))
	for _, p := range c.patterns {
		matches = append(matches, fmt.Sprintf("%s like '%s'", field, escapeValue(p)))
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return "(" + strings.Join(matches, " or ") + ")", nil
}

func (c likeCondition) merge(other condition) (condition, error) {
	oc, ok := other.(likeCondition)
	if !ok {
		return nil, fmt.Errorf("condition kind mismatch")
	}
	return likeCondition{patterns: normalizeValues(append(append([]string{}, c.patterns...), oc.patterns...))}, nil
}

// dateCondition holds an inclusive date range. Either bound may be absent.
type dateCondition struct {
	after  *Date
	before *Date
}

func (c dateCondition) render(field string, now time.Time) (string, error) {
	var parts []string
	var afterTime, beforeTime time.Time
	if c.after != nil {
		resolved, err := c.after.resolve(now)
		if err != nil {
			return "", err
		}
		afterTime = resolved
		parts = append(parts, fmt.Sprintf("%s >= '%s'", field, resolved.UTC().Format(time.RFC3339)))
	}
	if c.before != nil {
		resolved, err := c.before.resolve(now)
		if err != nil {
			return "", err
		}
		beforeTime = resolved
		parts = append(parts, fmt.Sprintf("%s <= '%s'", field, resolved.UTC().Format(time.RFC3339)))
	}
	if c.after != nil && c.before != nil && beforeTime.Before(afterTime) {
		return "", errors.InvalidFilter(
			"invalid date range on field '%s': end %s precedes start %s",
			field, beforeTime.UTC().Format(time.RFC3339), afterTime.UTC().Format(time.RFC3339))
	}
	return strings.Join(parts, " and "), nil
}

func (c dateCondition) merge(other condition) (condition, error) {
	oc, ok := other.(dateCondition)
	if !ok {
		return nil, fmt.Errorf("condition kind mismatch")
	}
	merged := c
	if oc.after != nil {
		merged.after = oc.after
	}
	if oc.before != nil {
		merged.before = oc.before
	}
	return merged, nil
}

// Date is a point in time used in date range conditions. It is either an
// absolute timestamp or a relative ISO-8601 duration resolved against "now"
// when the filter is rendered.
type Date struct {
	abs time.Time
	rel string
}

// AbsoluteDate builds a Date from a fixed timestamp
func AbsoluteDate(t time.Time) Date {
	return Date{abs: t}
}

// RelativeDate builds a Date from an ISO-8601 duration expression, e.g.
// "P1D" resolves to one day before the render time.
func RelativeDate(iso8601 string) Date {
	return Date{rel: iso8601}
}

func (d Date) resolve(now time.Time) (time.Time, error) {
	if d.rel == "" {
		return d.abs, nil
	}
	dur, err := duration.ParseISO8601(d.rel)
	if err != nil {
		return time.Time{}, errors.InvalidFilter("invalid relative date expression '%s': %v", d.rel, err)
	}
	resolved := now.AddDate(-dur.Y, -dur.M, -dur.W*7-dur.D)
	resolved = resolved.Add(-(time.Duration(dur.TH)*time.Hour +
		time.Duration(dur.TM)*time.Minute +
		time.Duration(dur.TS)*time.Second))
	return resolved, nil
}
