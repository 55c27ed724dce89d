package services

import (
	"sync"

	"github.com/app-sre/ocm-label-reconciler/pkg/api"
	"github.com/app-sre/ocm-label-reconciler/pkg/errors"
)

// DefaultFetchPoolSize bounds the number of environments queried in parallel
// when building current state
const DefaultFetchPoolSize = 10

// EnvironmentFetchFunc builds the current label state of one environment
type EnvironmentFetchFunc func(env string) (*api.LabelState, error)

// FetchCurrentStates queries the given environments in parallel with a
// bounded worker pool and returns the per-environment states. Results are
// collected over a channel and merged after all workers have finished, so
// the returned map and the states inside it are only ever touched by the
// calling goroutine. The first fetch error wins, the remaining fetches still
// run to completion.
func FetchCurrentStates(envs []string, poolSize int, fetch EnvironmentFetchFunc) (map[string]*api.LabelState, error) {
	if poolSize <= 0 {
		poolSize = DefaultFetchPoolSize
	}

	type fetchResult struct {
		env   string
		state *api.LabelState
		err   error
	}

	jobs := make(chan string)
	results := make(chan fetchResult, len(envs))

	var wg sync.WaitGroup
	for i := 0; i < poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for env := range jobs {
				state, err := fetch(env)
				results <- fetchResult{env: env, state: state, err: err}
			}
		}()
	}
	for _, env := range envs {
		jobs <- env
	}
	close(jobs)
	wg.Wait()
	close(results)

	states := make(map[string]*api.LabelState, len(envs))
	var firstErr error
	for result := range results {
		if result.err != nil {
			if firstErr == nil {
				firstErr = result.err
			}
			continue
		}
		states[result.env] = result.state
	}
	if firstErr != nil {
		return nil, errors.ToServiceError(firstErr)
	}
	return states, nil
}
