package util

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/tools/cache"
	"k8s.io/client-go/util/workqueue"
)

// DefaultMaxRetries bounds how often a key failing with a transient error is
// requeued before it is dropped.
const DefaultMaxRetries = 10

// TaskQueue feeds calculation names from a rate limited work queue to a sync
// handler. A key is only ever handled by one worker at a time.
type TaskQueue struct {
	controllerName string
	logger         *logrus.Entry
	maxRetries     int

	Workqueue   workqueue.RateLimitingInterface
	syncHandler func(string) error
}

// NewTaskQueue returns a new TaskQueue
func NewTaskQueue(workqueue workqueue.RateLimitingInterface, syncHandler func(string) error, controllerName string, logger *logrus.Entry) *TaskQueue {
	return &TaskQueue{logger: logger,
		Workqueue:      workqueue,
		syncHandler:    syncHandler,
		controllerName: controllerName,
		maxRetries:     DefaultMaxRetries,
	}
}

// RunWorker handles keys until the queue is shut down.
func (t *TaskQueue) RunWorker() {
	for t.processNextWorkItem() {
	}
}

func (t *TaskQueue) processNextWorkItem() bool {
	obj, shutdown := t.Workqueue.Get()
	if shutdown {
		return false
	}
	defer t.Workqueue.Done(obj)

	key, ok := obj.(string)
	if !ok {
		t.Workqueue.Forget(obj)
		runtime.HandleError(fmt.Errorf("%q controller expected a calculation name in workqueue but got %#v", t.controllerName, obj))
		return true
	}

	if err := t.handle(key); err != nil {
		runtime.HandleError(err)
	}
	return true
}

// handle runs the sync handler for key. Keys that failed on their input are
// forgotten right away, the others are retried with backoff until maxRetries.
func (t *TaskQueue) handle(key string) error {
	err := t.syncHandler(key)
	switch {
	case err == nil:
		t.Workqueue.Forget(key)
		return nil
	case IsPermanent(err):
		t.logger.WithField("key", key).WithError(err).Warn("Not retrying, the input is invalid")
		t.Workqueue.Forget(key)
		return fmt.Errorf("%q controller error syncing '%s': %w", t.controllerName, key, err)
	case t.Workqueue.NumRequeues(key) >= t.maxRetries:
		t.logger.WithField("key", key).WithError(err).Error("Dropping calculation out of the queue")
		t.Workqueue.Forget(key)
		return fmt.Errorf("%q controller gave up syncing '%s' after %d retries: %w", t.controllerName, key, t.maxRetries, err)
	}
	t.Workqueue.AddRateLimited(key)
	return fmt.Errorf("%q controller error syncing '%s': %w, requeuing", t.controllerName, key, err)
}

// Enqueue queues a calculation by its key. Calculations are not namespaced,
// so the key is the calculation name.
func (t *TaskQueue) Enqueue(obj interface{}) {
	key, err := cache.MetaNamespaceKeyFunc(obj)
	if err != nil {
		runtime.HandleError(err)
		return
	}
	t.Workqueue.Add(key)
}

// EnqueueKey queues an already known calculation name.
func (t *TaskQueue) EnqueueKey(key string) {
	t.Workqueue.Add(key)
}
