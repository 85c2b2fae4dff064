package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	v1 "github.com/vega-project/ccb-cosmology/pkg/apis/calculations/v1"
	"github.com/vega-project/ccb-cosmology/pkg/db"
)

type options struct {
	retention       time.Duration
	retentionString string
	interval        time.Duration

	redis db.RedisOptions
}

func gatherOptions() options {
	o := options{}
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	fs.StringVar(&o.retentionString, "retention", "24h", "How long finished calculations will be kept in redis")
	fs.DurationVar(&o.interval, "interval", 30*time.Second, "How often the calculations are checked")
	o.redis.Bind(fs)

	if err := fs.Parse(os.Args[1:]); err != nil {
		logrus.WithError(err).Fatal("couldn't parse arguments")
	}
	return o
}

func (o *options) validate() error {
	if o.retentionString != "" {
		var err error
		o.retention, err = time.ParseDuration(o.retentionString)
		if err != nil {
			return fmt.Errorf("couldn't parse duration: %v", err)
		}
	}
	if o.interval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}
	return o.redis.Validate()
}

type controller struct {
	store     db.CalculationStore
	retention time.Duration
	interval  time.Duration
	logger    *logrus.Entry
	now       func() time.Time
}

func (c *controller) Start(stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	c.logger.Info("Starting controller")
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		if err := c.clean(); err != nil {
			c.logger.WithError(err).Error("Errors occurred while cleaning the calculations")
		}
		c.logger.Infof("Sync time: %v", time.Since(start))

		select {
		case <-stopChan:
			c.logger.Info("Stopping controller")
			return
		case <-ticker.C:
		}
	}
}

// expired reports whether a finished calculation outlived the retention,
// counted from its completion or, without one, from its creation.
func (c *controller) expired(calc *v1.Calculation) bool {
	finished := calc.Status.StartTime.Time
	if calc.Status.CompletionTime != nil {
		finished = calc.Status.CompletionTime.Time
	}
	return c.now().Sub(finished) > c.retention
}

func (c *controller) clean() error {
	calculations, err := c.store.List()
	if err != nil {
		return fmt.Errorf("couldn't list calculations: %w", err)
	}

	var errs []error
	for i := range calculations.Items {
		calc := &calculations.Items[i]
		logger := c.logger.WithField("calculation", calc.Name)
		if !calc.Phase.Finished() || !c.expired(calc) {
			continue
		}

		if err := c.store.Delete(calc.Name); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			errs = append(errs, fmt.Errorf("couldn't delete calculation %s: %w", calc.Name, err))
			continue
		}

		logger.Info("Calculation deleted...")
	}
	return utilerrors.NewAggregate(errs)
}

func main() {
	logger := logrus.WithField("component", "janitor")
	o := gatherOptions()
	if err := o.validate(); err != nil {
		logger.WithError(err).Fatal("validation error")
	}

	store, err := o.redis.NewRedisStore()
	if err != nil {
		logger.WithError(err).Fatal("couldn't connect to redis")
	}

	c := controller{
		logger:    logger,
		retention: o.retention,
		interval:  o.interval,
		store:     store,
		now:       time.Now,
	}

	stopCh := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go c.Start(stopCh, &wg)

	sigTerm := make(chan os.Signal, 1)
	signal.Notify(sigTerm, syscall.SIGTERM)
	signal.Notify(sigTerm, syscall.SIGINT)
	<-sigTerm
	logger.Infof("Shutdown signal received, exiting...")
	close(stopCh)
	wg.Wait()
}
