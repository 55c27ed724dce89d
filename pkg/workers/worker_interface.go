package workers

import "sync"

// Worker is a periodically reconciling background job driven by a Reconciler
type Worker interface {
	GetID() string
	GetWorkerType() string
	Start()
	Stop()
	Reconcile() []error
	GetStopChan() *chan struct{}
	GetSyncGroup() *sync.WaitGroup
	IsRunning() bool
	SetIsRunning(val bool)
}

// BaseWorker carries the bookkeeping every worker needs. Embed it and
// implement Reconcile, Start and Stop.
type BaseWorker struct {
	Id         string
	WorkerType string
	Reconciler *Reconciler

	isRunning bool
	imStop    chan struct{}
	syncGroup sync.WaitGroup
}

func (b *BaseWorker) GetID() string {
	return b.Id
}

func (b *BaseWorker) GetWorkerType() string {
	return b.WorkerType
}

func (b *BaseWorker) GetStopChan() *chan struct{} {
	return &b.imStop
}

func (b *BaseWorker) GetSyncGroup() *sync.WaitGroup {
	return &b.syncGroup
}

func (b *BaseWorker) IsRunning() bool {
	return b.isRunning
}

func (b *BaseWorker) SetIsRunning(val bool) {
	b.isRunning = val
}

// StartWorker hands the worker to its reconciler loop
func (b *BaseWorker) StartWorker(worker Worker) {
	b.Reconciler.Start(worker)
}

// StopWorker stops the reconciler loop and waits for an in-flight reconcile
// to finish
func (b *BaseWorker) StopWorker(worker Worker) {
	b.Reconciler.Stop(worker)
}
