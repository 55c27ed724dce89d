package aggregator

// Predicate decides whether a registered action applies to a diff element
type Predicate func(params Params) bool

// Action is invoked with the params and items of each matching diff element.
// Actions own their side effects and error handling; an error returned by an
// action aborts the run. Callers needing partial-failure tolerance must
// absorb errors inside the action and track success themselves.
type Action func(params Params, items []interface{}) error

type handler struct {
	bucket    DiffBucket
	predicate Predicate
	action    Action
}

// AggregatedDiffRunner dispatches registered (bucket, predicate, action)
// handlers, in registration order, over the diff of two aggregated lists.
type AggregatedDiffRunner struct {
	state    DiffState
	handlers []handler
}

func NewAggregatedDiffRunner(state DiffState) *AggregatedDiffRunner {
	return &AggregatedDiffRunner{state: state}
}

// Register adds a handler for a diff bucket. A nil predicate matches every
// element of the bucket.
func (r *AggregatedDiffRunner) Register(bucket DiffBucket, predicate Predicate, action Action) {
	r.handlers = append(r.handlers, handler{
		bucket:    bucket,
		predicate: predicate,
		action:    action,
	})
}

// Run visits the registered handlers in order and invokes each action on
// every element of its bucket whose params satisfy the predicate. The first
// action error aborts the run.
func (r *AggregatedDiffRunner) Run() error {
	for _, h := range r.handlers {
		for _, element := range r.state[h.bucket] {
			if h.predicate != nil && !h.predicate(element.Params) {
				continue
			}
			if err := h.action(element.Params, element.Items); err != nil {
				return err
			}
		}
	}
	return nil
}
