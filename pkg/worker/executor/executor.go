package executor

import (
	"time"

	"github.com/sirupsen/logrus"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
	"github.com/vega-project/ccb-cosmology/pkg/util"
)

// Executor computes the calculations it receives and reports the outcome of
// each one on the result channel.
type Executor struct {
	logger      *logrus.Entry
	executeChan <-chan *v1.Calculation
	resultChan  chan<- util.Result
	compute     func(v1.CalculationSpec) ([]float64, error)
}

func NewExecutor(executeChan <-chan *v1.Calculation, resultChan chan<- util.Result) *Executor {
	return &Executor{
		logger:      logrus.WithField("component", "executor"),
		executeChan: executeChan,
		resultChan:  resultChan,
		compute:     util.Compute,
	}
}

// Run executes calculations until stopCh is closed.
func (e *Executor) Run(stopCh <-chan struct{}) {
	for {
		select {
		case <-stopCh:
			e.logger.Info("Stopping executor")
			return
		case calc := <-e.executeChan:
			result := e.execute(calc)
			select {
			case e.resultChan <- result:
			case <-stopCh:
				return
			}
		}
	}
}

func (e *Executor) execute(calc *v1.Calculation) util.Result {
	logger := e.logger.WithField("for-calculation", calc.Name)
	start := time.Now()

	values, err := e.compute(calc.Spec)
	if err != nil {
		logger.WithError(err).Warn("Calculation failed")
		return util.Result{CalcName: calc.Name, Phase: v1.FailedPhase, Err: err}
	}

	logger.WithFields(logrus.Fields{
		"method":    calc.Spec.Method,
		"redshifts": len(calc.Spec.Redshifts),
		"duration":  time.Since(start),
	}).Info("Calculation completed")
	return util.Result{CalcName: calc.Name, Phase: v1.CompletedPhase, Values: values}
}
