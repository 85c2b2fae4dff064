package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
	"github.com/vega-project/ccb-cosmology/pkg/db"
	"github.com/vega-project/ccb-cosmology/pkg/util"
	"github.com/vega-project/ccb-cosmology/pkg/worker/executor"
)

type Operator struct {
	ctx                    context.Context
	logger                 *logrus.Entry
	store                  db.CalculationStore
	archive                db.ResultsArchive
	pollInterval           time.Duration
	calculationsController *Controller
	executor               *executor.Executor
}

func NewMainOperator(ctx context.Context, store db.CalculationStore, archive db.ResultsArchive, pollInterval time.Duration) *Operator {
	return &Operator{
		ctx:          ctx,
		logger:       logrus.WithField("name", "operator"),
		store:        store,
		archive:      archive,
		pollInterval: pollInterval,
	}
}

// Initialize connects the calculations controller with the executor.
func (op *Operator) Initialize() {
	executeChan := make(chan *v1.Calculation)
	resultChan := make(chan util.Result)

	op.executor = executor.NewExecutor(executeChan, resultChan)
	op.calculationsController = NewController(op.ctx, op.store, op.archive, executeChan, resultChan, op.pollInterval)
}

// Run blocks until stopCh is closed or the controller fails to start.
func (op *Operator) Run(stopCh <-chan struct{}) error {
	errCh := make(chan error, 1)
	go func() { errCh <- op.calculationsController.Run(stopCh) }()
	go op.executor.Run(stopCh)

	select {
	case err := <-errCh:
		return err
	case <-stopCh:
	}
	op.logger.Info("Shutting down controllers")
	return nil
}
