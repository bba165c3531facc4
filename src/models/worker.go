// Copyright 2019 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package models

import (
	"context"
	"sync"
	"time"
)

// A WorkerFunction can be executed in a loop in background every given LoopPeriod.
type WorkerFunction interface {
	// Run the worker function
	Run(ctx context.Context)
	// LoopPeriod is the time between each run of the worker function
	LoopPeriod() time.Duration
}

// A workerFunction implements WorkerFunction
type workerFunction struct {
	fnct   func(context.Context)
	period time.Duration
}

// Run the workerFunction
func (w *workerFunction) Run(ctx context.Context) {
	w.fnct(ctx)
}

// LoopPeriod is the time between each run of the worker function
func (w *workerFunction) LoopPeriod() time.Duration {
	return w.period
}

// NewWorkerFunction returns a WorkerFunction from the given fnct and period
func NewWorkerFunction(fnct func(context.Context), period time.Duration) WorkerFunction {
	return &workerFunction{
		fnct:   fnct,
		period: period,
	}
}

var (
	workerMutex     sync.Mutex
	workerFunctions []WorkerFunction
	workerCancel    context.CancelFunc
	workerGroup     sync.WaitGroup
)

// RegisterWorker registers a WorkerFunction so that it will be called by the core loop.
func RegisterWorker(wf WorkerFunction) {
	workerMutex.Lock()
	defer workerMutex.Unlock()
	workerFunctions = append(workerFunctions, wf)
}

// RunWorkerLoop launches the core worker loop. Worker functions are
// given a context that is cancelled by StopWorkerLoop.
//
// This function must be called only once or it will panic
func RunWorkerLoop() {
	workerMutex.Lock()
	defer workerMutex.Unlock()
	if workerCancel != nil {
		log.Panic("RunWorkerLoop must be called only once.")
	}
	var ctx context.Context
	ctx, workerCancel = context.WithCancel(context.Background())
	for _, workerFunc := range workerFunctions {
		workerGroup.Add(1)
		go func(wf WorkerFunction) {
			defer workerGroup.Done()
			ticker := time.NewTicker(wf.LoopPeriod())
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					wf.Run(ctx)
				case <-ctx.Done():
					return
				}
			}
		}(workerFunc)
	}
}

// StopWorkerLoop stops the core worker loop and waits for running
// worker functions to return.
//
// Calling this method if the core worker loop is not running will cause panic.
func StopWorkerLoop() {
	workerMutex.Lock()
	cancel := workerCancel
	workerMutex.Unlock()
	if cancel == nil {
		log.Panic("StopWorkerLoop called while the worker loop is not running")
	}
	cancel()
	workerGroup.Wait()
	workerMutex.Lock()
	workerCancel = nil
	workerFunctions = nil
	workerMutex.Unlock()
}
