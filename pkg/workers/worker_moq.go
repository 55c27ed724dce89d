package workers

import "sync"

var _ Worker = &WorkerMock{}

// WorkerMock is a mock implementation of Worker for tests
type WorkerMock struct {
	GetIDFunc         func() string
	GetWorkerTypeFunc func() string
	StartFunc         func()
	StopFunc          func()
	ReconcileFunc     func() []error
	GetStopChanFunc   func() *chan struct{}
	GetSyncGroupFunc  func() *sync.WaitGroup
	IsRunningFunc     func() bool
	SetIsRunningFunc  func(val bool)
}

func (m *WorkerMock) GetID() string {
	if m.GetIDFunc == nil {
		return ""
	}
	return m.GetIDFunc()
}

func (m *WorkerMock) GetWorkerType() string {
	if m.GetWorkerTypeFunc == nil {
		return ""
	}
	return m.GetWorkerTypeFunc()
}

func (m *WorkerMock) Start() {
	if m.StartFunc != nil {
		m.StartFunc()
	}
}

func (m *WorkerMock) Stop() {
	if m.StopFunc != nil {
		m.StopFunc()
	}
}

func (m *WorkerMock) Reconcile() []error {
	if m.ReconcileFunc == nil {
		return nil
	}
	return m.ReconcileFunc()
}

func (m *WorkerMock) GetStopChan() *chan struct{} {
	return m.GetStopChanFunc()
}

func (m *WorkerMock) GetSyncGroup() *sync.WaitGroup {
	return m.GetSyncGroupFunc()
}

func (m *WorkerMock) IsRunning() bool {
	if m.IsRunningFunc == nil {
		return false
	}
	return m.IsRunningFunc()
}

func (m *WorkerMock) SetIsRunning(val bool) {
	if m.SetIsRunningFunc != nil {
		m.SetIsRunningFunc(val)
	}
}
