package sublabels

import (
	"github.com/google/uuid"

	"github.com/app-sre/ocm-label-reconciler/pkg/logger"
	"github.com/app-sre/ocm-label-reconciler/pkg/workers"
)

// Worker runs the subscription labels integration on the reconciler schedule
type Worker struct {
	workers.BaseWorker
	integration *Integration

	lastAppliedHash string
}

var _ workers.Worker = &Worker{}

func NewWorker(integration *Integration, reconciler *workers.Reconciler) *Worker {
	return &Worker{
		BaseWorker: workers.BaseWorker{
			Id:         uuid.New().String(),
			WorkerType: IntegrationName,
			Reconciler: reconciler,
		},
		integration: integration,
	}
}

func (w *Worker) Start() {
	w.StartWorker(w)
}

func (w *Worker) Stop() {
	w.StopWorker(w)
}

func (w *Worker) Reconcile() []error {
	hash := w.integration.DesiredStateHash()
	if hash == w.lastAppliedHash {
		logger.Logger.V(5).Infof("[%s] desired state unchanged (%s), skipping cycle", IntegrationName, hash)
		return nil
	}
	if err := w.integration.Run(false); err != nil {
		return []error{err}
	}
	w.lastAppliedHash = hash
	return nil
}
