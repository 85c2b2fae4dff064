package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/workqueue"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
	"github.com/vega-project/ccb-cosmology/pkg/db"
	"github.com/vega-project/ccb-cosmology/pkg/util"
)

const (
	controllerName = "calculations"
)

// Controller moves calculations from the pending list of the store to the
// executor and records their results.
type Controller struct {
	ctx          context.Context
	logger       *logrus.Entry
	store        db.CalculationStore
	archive      db.ResultsArchive
	taskQueue    *util.TaskQueue
	executeChan  chan<- *v1.Calculation
	resultChan   <-chan util.Result
	pollInterval time.Duration
	now          func() time.Time
}

// NewController returns a new Controller. The archive is optional.
func NewController(
	ctx context.Context,
	store db.CalculationStore,
	archive db.ResultsArchive,
	executeChan chan<- *v1.Calculation,
	resultChan <-chan util.Result,
	pollInterval time.Duration) *Controller {
	logger := logrus.WithField("controller", controllerName)
	controller := &Controller{
		ctx:          ctx,
		logger:       logger,
		store:        store,
		archive:      archive,
		executeChan:  executeChan,
		resultChan:   resultChan,
		pollInterval: pollInterval,
		now:          time.Now,
	}

	controller.taskQueue = util.NewTaskQueue(
		workqueue.NewNamedRateLimitingQueue(workqueue.DefaultControllerRateLimiter(), "Calculations"),
		controller.syncHandler, controllerName, logger)
	return controller
}

// Run re-enqueues the unfinished calculations, then polls the store for new
// ones until stopCh is closed.
func (c *Controller) Run(stopCh <-chan struct{}) error {
	defer runtime.HandleCrash()
	defer c.taskQueue.Workqueue.ShutDown()

	c.logger.Info("Starting calculations controller")
	if err := c.resync(); err != nil {
		return fmt.Errorf("failed to resync calculations: %w", err)
	}

	go c.resultUpdater(stopCh)
	go wait.Until(c.taskQueue.RunWorker, time.Second, stopCh)
	go wait.Until(c.poll, c.pollInterval, stopCh)

	<-stopCh
	c.logger.Info("Stopping calculations controller")
	return nil
}

// resync queues every calculation a previous run left unfinished. The ones
// that were processing go back to the created phase first.
func (c *Controller) resync() error {
	list, err := c.store.List()
	if err != nil {
		return err
	}
	for i := range list.Items {
		calc := &list.Items[i]
		if calc.Phase.Finished() {
			continue
		}
		if calc.Phase == v1.ProcessingPhase {
			calc.Phase = v1.CreatedPhase
			calc.Status.PendingTime = nil
			if err := c.store.Update(calc); err != nil {
				return fmt.Errorf("failed to reset calculation %s: %w", calc.Name, err)
			}
		}
		c.logger.WithField("calculation", calc.Name).Info("Resuming unfinished calculation")
		c.taskQueue.Enqueue(calc)
	}
	return nil
}

// poll drains the pending list of the store into the work queue.
func (c *Controller) poll() {
	for {
		name, err := c.store.NextPending()
		if err != nil {
			runtime.HandleError(fmt.Errorf("couldn't get the next pending calculation: %w", err))
			return
		}
		if name == "" {
			return
		}
		c.taskQueue.EnqueueKey(name)
	}
}

// syncHandler marks the calculation as processing and hands it over to the
// executor. Calculations with invalid input fail right away; the returned
// error is permanent, so the task queue does not retry them.
func (c *Controller) syncHandler(key string) error {
	logger := c.logger.WithField("calculation", key)

	calc, err := c.store.Get(key)
	if errors.Is(err, db.ErrNotFound) {
		logger.Info("Calculation no longer exists. Ignoring...")
		return nil
	} else if err != nil {
		return err
	}

	if calc.Phase != v1.CreatedPhase {
		logger.WithField("phase", calc.Phase).Debug("Calculation already picked up. Ignoring...")
		return nil
	}

	if err := util.ValidateSpec(calc.Spec); err != nil {
		calc.Phase = v1.FailedPhase
		calc.Status.CompletionTime = &metav1.Time{Time: c.now()}
		calc.Status.Message = err.Error()
		if updateErr := c.store.Update(calc); updateErr != nil {
			return fmt.Errorf("failed to update calculation %s: %w", calc.Name, updateErr)
		}
		calculationsFinished.With(prometheus.Labels{"method": calc.Spec.Method, "phase": string(calc.Phase)}).Inc()
		return fmt.Errorf("invalid calculation %s: %w", calc.Name, err)
	}

	calc.Phase = v1.ProcessingPhase
	calc.Status.PendingTime = &metav1.Time{Time: c.now()}
	if err := c.store.Update(calc); err != nil {
		return fmt.Errorf("failed to update calculation %s: %w", calc.Name, err)
	}

	logger.Info("Sent for execution")
	select {
	case c.executeChan <- calc:
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
	return nil
}

func (c *Controller) resultUpdater(stopCh <-chan struct{}) {
	for {
		select {
		case result := <-c.resultChan:
			if err := c.updateCalculation(result); err != nil {
				c.logger.WithError(err).WithField("calculation", result.CalcName).Error("Couldn't update calculation's results.")
			}
		case <-stopCh:
			c.logger.Info("Stopping resultUpdater")
			return
		}
	}
}

func (c *Controller) updateCalculation(r util.Result) error {
	calc, err := c.store.Get(r.CalcName)
	if err != nil {
		return fmt.Errorf("failed to get the calculation: %w", err)
	}

	calc.Phase = r.Phase
	calc.Status.CompletionTime = &metav1.Time{Time: c.now()}
	calc.Results = r.Values
	if r.Err != nil {
		calc.Status.Message = r.Err.Error()
	}
	if err := c.store.Update(calc); err != nil {
		return fmt.Errorf("failed to update calculation %s: %w", calc.Name, err)
	}
	calculationsFinished.With(prometheus.Labels{"method": calc.Spec.Method, "phase": string(calc.Phase)}).Inc()

	if c.archive != nil && calc.Phase == v1.CompletedPhase {
		if err := c.archive.StoreOrUpdate(c.ctx, calc); err != nil {
			return fmt.Errorf("failed to archive calculation %s: %w", calc.Name, err)
		}
	}
	return nil
}
