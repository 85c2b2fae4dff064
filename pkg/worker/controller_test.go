package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis"
	"github.com/go-redis/redis"
	"github.com/google/go-cmp/cmp"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/wait"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
	"github.com/vega-project/ccb-cosmology/pkg/cosmology"
	"github.com/vega-project/ccb-cosmology/pkg/db"
	"github.com/vega-project/ccb-cosmology/pkg/util"
)

func newTestStore(t *testing.T) *db.RedisStore {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return db.NewRedisStore(redis.NewClient(&redis.Options{Addr: s.Addr()}), time.Minute)
}

func testCalculation(name string, phase v1.CalculationPhase) *v1.Calculation {
	return &v1.Calculation{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec: v1.CalculationSpec{
			Cosmology: v1.CosmologySpec{H0: 70, Om0: 0.3},
			Method:    "scale_factor",
			Redshifts: []float64{0, 1, 3},
		},
		Phase: phase,
	}
}

type fakeArchive struct {
	stored sets.String
}

func (a *fakeArchive) StoreOrUpdate(ctx context.Context, calc *v1.Calculation) error {
	a.stored.Insert(calc.Name)
	return nil
}

func (a *fakeArchive) Get(ctx context.Context, parameters map[string]string) (*db.CalculationResults, error) {
	return nil, errors.New("not implemented")
}

func TestSyncHandler(t *testing.T) {
	testCases := []struct {
		id             string
		calculation    *v1.Calculation
		expectExecuted bool
		expectedPhase  v1.CalculationPhase
		expectedErr    bool
	}{
		{
			id:             "created calculation is executed",
			calculation:    testCalculation("calc-1", v1.CreatedPhase),
			expectExecuted: true,
			expectedPhase:  v1.ProcessingPhase,
		},
		{
			id:            "processing calculation is ignored",
			calculation:   testCalculation("calc-1", v1.ProcessingPhase),
			expectedPhase: v1.ProcessingPhase,
		},
		{
			id:            "completed calculation is ignored",
			calculation:   testCalculation("calc-1", v1.CompletedPhase),
			expectedPhase: v1.CompletedPhase,
		},
		{
			id: "calculation with invalid input fails without execution",
			calculation: func() *v1.Calculation {
				calc := testCalculation("calc-1", v1.CreatedPhase)
				calc.Spec.Redshifts = []float64{1, -3}
				return calc
			}(),
			expectedPhase: v1.FailedPhase,
			expectedErr:   true,
		},
		{
			id: "missing calculation is ignored",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			store := newTestStore(t)
			if tc.calculation != nil {
				if err := store.Create(tc.calculation); err != nil {
					t.Fatal(err)
				}
			}

			executeChan := make(chan *v1.Calculation, 1)
			c := NewController(context.Background(), store, nil, executeChan, nil, time.Second)

			err := c.syncHandler("calc-1")
			if tc.expectedErr {
				if !util.IsPermanent(err) {
					t.Fatalf("expected a permanent error, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			select {
			case calc := <-executeChan:
				if !tc.expectExecuted {
					t.Fatalf("calculation %s was not expected to be executed", calc.Name)
				}
				if calc.Status.PendingTime == nil {
					t.Fatal("expected the pending time to be set")
				}
			default:
				if tc.expectExecuted {
					t.Fatal("expected the calculation to be executed")
				}
			}

			if tc.calculation == nil {
				return
			}
			phase, err := store.Phase("calc-1")
			if err != nil {
				t.Fatal(err)
			}
			if phase != tc.expectedPhase {
				t.Fatalf("expected phase %s, got %s", tc.expectedPhase, phase)
			}
		})
	}
}

func TestUpdateCalculation(t *testing.T) {
	testCases := []struct {
		id               string
		result           util.Result
		expectedPhase    v1.CalculationPhase
		expectedResults  v1.Values
		expectedMessage  string
		expectedArchived sets.String
	}{
		{
			id:               "completed calculation is archived",
			result:           util.Result{CalcName: "calc-1", Phase: v1.CompletedPhase, Values: []float64{1, 0.5, 0.25}},
			expectedPhase:    v1.CompletedPhase,
			expectedResults:  v1.Values{1, 0.5, 0.25},
			expectedArchived: sets.NewString("calc-1"),
		},
		{
			id:               "failed calculation keeps the error",
			result:           util.Result{CalcName: "calc-1", Phase: v1.FailedPhase, Err: &cosmology.RedshiftError{Method: "age", Z: -2, Reason: "redshift must be greater than -1"}},
			expectedPhase:    v1.FailedPhase,
			expectedMessage:  "age: invalid redshift -2: redshift must be greater than -1",
			expectedArchived: sets.NewString(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			store := newTestStore(t)
			if err := store.Create(testCalculation("calc-1", v1.ProcessingPhase)); err != nil {
				t.Fatal(err)
			}
			archive := &fakeArchive{stored: sets.NewString()}
			c := NewController(context.Background(), store, archive, nil, nil, time.Second)

			if err := c.updateCalculation(tc.result); err != nil {
				t.Fatal(err)
			}

			calc, err := store.Get("calc-1")
			if err != nil {
				t.Fatal(err)
			}
			if calc.Phase != tc.expectedPhase {
				t.Fatalf("expected phase %s, got %s", tc.expectedPhase, calc.Phase)
			}
			if calc.Status.CompletionTime == nil {
				t.Fatal("expected the completion time to be set")
			}
			if diff := cmp.Diff(tc.expectedResults, calc.Results); diff != "" {
				t.Fatal(diff)
			}
			if calc.Status.Message != tc.expectedMessage {
				t.Fatalf("expected message %q, got %q", tc.expectedMessage, calc.Status.Message)
			}
			if !archive.stored.Equal(tc.expectedArchived) {
				t.Fatalf("expected archived %v, got %v", tc.expectedArchived.List(), archive.stored.List())
			}
		})
	}
}

func TestResync(t *testing.T) {
	store := newTestStore(t)
	for _, calc := range []*v1.Calculation{
		testCalculation("calc-created", v1.CreatedPhase),
		testCalculation("calc-processing", v1.ProcessingPhase),
		testCalculation("calc-completed", v1.CompletedPhase),
		testCalculation("calc-failed", v1.FailedPhase),
	} {
		if err := store.Create(calc); err != nil {
			t.Fatal(err)
		}
	}

	c := NewController(context.Background(), store, nil, nil, nil, time.Second)
	defer c.taskQueue.Workqueue.ShutDown()
	if err := c.resync(); err != nil {
		t.Fatal(err)
	}

	queued := sets.NewString()
	for c.taskQueue.Workqueue.Len() > 0 {
		key, _ := c.taskQueue.Workqueue.Get()
		queued.Insert(key.(string))
		c.taskQueue.Workqueue.Done(key)
	}
	if expected := sets.NewString("calc-created", "calc-processing"); !queued.Equal(expected) {
		t.Fatalf("expected %v to be queued, got %v", expected.List(), queued.List())
	}

	phase, err := store.Phase("calc-processing")
	if err != nil {
		t.Fatal(err)
	}
	if phase != v1.CreatedPhase {
		t.Fatalf("expected the processing calculation to be reset, got %s", phase)
	}
}

func TestOperatorRun(t *testing.T) {
	store := newTestStore(t)
	calcs := []*v1.Calculation{
		testCalculation("calc-1", v1.CreatedPhase),
		func() *v1.Calculation {
			calc := testCalculation("calc-2", v1.CreatedPhase)
			calc.Spec.Method = "luminosity"
			return calc
		}(),
	}
	for _, calc := range calcs {
		if err := store.Create(calc); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopCh := make(chan struct{})
	defer close(stopCh)

	op := NewMainOperator(ctx, store, nil, 10*time.Millisecond)
	op.Initialize()
	go func() {
		if err := op.Run(stopCh); err != nil {
			t.Errorf("operator failed: %v", err)
		}
	}()

	expected := map[string]v1.CalculationPhase{"calc-1": v1.CompletedPhase, "calc-2": v1.FailedPhase}
	if err := wait.Poll(10*time.Millisecond, 10*time.Second, func() (bool, error) {
		for name, phase := range expected {
			actual, err := store.Phase(name)
			if err != nil {
				return false, err
			}
			if actual != phase {
				return false, nil
			}
		}
		return true, nil
	}); err != nil {
		t.Fatalf("calculations did not finish: %v", err)
	}

	calc, err := store.Get("calc-1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(v1.Values{1, 0.5, 0.25}, calc.Results); diff != "" {
		t.Fatal(diff)
	}
}
