package services

import (
	"sort"

	"github.com/app-sre/ocm-label-reconciler/pkg/api"
	"github.com/app-sre/ocm-label-reconciler/pkg/client/ocm"
	"github.com/app-sre/ocm-label-reconciler/pkg/errors"
	"github.com/app-sre/ocm-label-reconciler/pkg/logger"
	"github.com/app-sre/ocm-label-reconciler/pkg/metrics"
	"github.com/app-sre/ocm-label-reconciler/pkg/shared"
)

// LabelDiff is the set of write operations turning one label set into another
type LabelDiff struct {
	// Add holds keys present only in the desired set
	Add api.LabelValues
	// Change holds keys present in both sets with differing values, mapped
	// to the desired value
	Change api.LabelValues
	// Delete holds keys present only in the current set, sorted
	Delete []string
}

// IsEmpty reports whether the diff requires no writes
func (d LabelDiff) IsEmpty() bool {
	return len(d.Add) == 0 && len(d.Change) == 0 && len(d.Delete) == 0
}

// DiffLabels computes the writes turning current into desired
func DiffLabels(current api.LabelValues, desired api.LabelValues) LabelDiff {
	diff := LabelDiff{Add: api.LabelValues{}, Change: api.LabelValues{}}
	for key, desiredValue := range desired {
		currentValue, ok := current[key]
		if !ok {
			diff.Add[key] = desiredValue
			continue
		}
		if currentValue != desiredValue {
			diff.Change[key] = desiredValue
		}
	}
	for key := range current {
		if _, ok := desired[key]; !ok {
			diff.Delete = append(diff.Delete, key)
		}
	}
	sort.Strings(diff.Delete)
	return diff
}

// LabelReconciler applies a desired label state onto the labels currently
// held in OCM, restricted to the label namespaces it manages
type LabelReconciler struct {
	client          ocm.Client
	integration     string
	managedPrefixes []string
}

func NewLabelReconciler(client ocm.Client, integration string, managedPrefixes []string) *LabelReconciler {
	return &LabelReconciler{
		client:          client,
		integration:     integration,
		managedPrefixes: managedPrefixes,
	}
}

// ManagedLabels strips labels outside the managed key prefixes. An empty
// prefix list manages every label.
func (r *LabelReconciler) ManagedLabels(labels api.LabelValues) api.LabelValues {
	if len(r.managedPrefixes) == 0 {
		return labels
	}
	managed := api.LabelValues{}
	for key, value := range labels {
		if shared.HasPrefixIn(key, r.managedPrefixes) {
			managed[key] = value
		}
	}
	return managed
}

// Reconcile issues the label writes that bring the current state in line
// with the desired state. Only owners present in the current state are acted
// on: a desired-only owner was never resolved against OCM and carries no
// label container to write to. A current owner without a desired entry has
// all its managed labels removed. With dryRun set no writes are issued.
func (r *LabelReconciler) Reconcile(dryRun bool, current *api.LabelState, desired *api.LabelState) *errors.ServiceError {
	for _, ref := range desired.Refs() {
		if _, ok := current.Get(ref); !ok {
			logger.Logger.V(5).Infof(
				"[%s] owner '%s' (%s) present in desired state only, skipping",
				r.integration, ref.RefName(), ref.IdentityKey())
		}
	}

	for _, ref := range current.Refs() {
		currentLabels, _ := current.Get(ref)
		desiredLabels, ok := desired.Get(ref)
		if !ok {
			desiredLabels = api.LabelValues{}
		}

		currentManaged := r.ManagedLabels(currentLabels)
		desiredManaged := r.ManagedLabels(desiredLabels)
		diff := DiffLabels(currentManaged, desiredManaged)
		if diff.IsEmpty() {
			continue
		}

		logger.Logger.V(10).Infof("[%s] %s", r.integration,
			shared.DiffAsJson(currentManaged, desiredManaged, "current", "desired"))

		href, err := ref.RequiredLabelContainerHref()
		if err != nil {
			return errors.ToServiceError(err)
		}

		for _, key := range shared.SortedKeys(diff.Add) {
			logger.Logger.Infof("[%s] create_label owner='%s' key='%s' value='%s' dry_run='%t'",
				r.integration, ref.RefName(), key, diff.Add[key], dryRun)
			if dryRun {
				continue
			}
			if err := r.applyWrite(metrics.LabelOperationCreate, func() error {
				return r.client.AddLabel(href, key, diff.Add[key])
			}); err != nil {
				return err
			}
		}
		for _, key := range shared.SortedKeys(diff.Change) {
			logger.Logger.Infof("[%s] update_label owner='%s' key='%s' value='%s' dry_run='%t'",
				r.integration, ref.RefName(), key, diff.Change[key], dryRun)
			if dryRun {
				continue
			}
			if err := r.applyWrite(metrics.LabelOperationUpdate, func() error {
				return r.client.UpdateLabel(href, key, diff.Change[key])
			}); err != nil {
				return err
			}
		}
		for _, key := range diff.Delete {
			logger.Logger.Infof("[%s] delete_label owner='%s' key='%s' dry_run='%t'",
				r.integration, ref.RefName(), key, dryRun)
			if dryRun {
				continue
			}
			if err := r.applyWrite(metrics.LabelOperationDelete, func() error {
				return r.client.DeleteLabel(href, key)
			}); err != nil {
				// a label deleted out of band since the current state was
				// fetched is already in the desired shape
				if err.Is404() {
					logger.Logger.V(5).Infof("[%s] label '%s' already absent on '%s', skipping delete",
						r.integration, key, ref.RefName())
					continue
				}
				return err
			}
		}
	}
	return nil
}

func (r *LabelReconciler) applyWrite(operation metrics.LabelOperation, write func() error) *errors.ServiceError {
	metrics.IncreaseLabelTotalOperationsCountMetric(operation)
	if err := write(); err != nil {
		return errors.ToServiceError(err)
	}
	metrics.IncreaseLabelSuccessOperationsCountMetric(operation)
	return nil
}
