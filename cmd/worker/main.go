package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/vega-project/ccb-cosmology/pkg/db"
	"github.com/vega-project/ccb-cosmology/pkg/worker"
)

type options struct {
	pollInterval time.Duration
	metricsPort  int

	redis   db.RedisOptions
	archive db.Options
}

func gatherOptions() options {
	o := options{}
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	fs.DurationVar(&o.pollInterval, "poll-interval", time.Second, "How often the pending calculations are polled from redis.")
	fs.IntVar(&o.metricsPort, "metrics-port", 9090, "Port number where the prometheus metrics are served.")

	o.redis.Bind(fs)
	o.archive.Bind(fs)
	fs.Parse(os.Args[1:])
	return o
}

func validateOptions(o options) error {
	var errs []error
	if o.pollInterval <= 0 {
		errs = append(errs, fmt.Errorf("--poll-interval must be positive"))
	}
	if o.metricsPort <= 0 || o.metricsPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid --metrics-port %d", o.metricsPort))
	}
	if err := o.redis.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := o.archive.Validate(); err != nil {
		errs = append(errs, err)
	}
	return utilerrors.NewAggregate(errs)
}

func main() {
	logger := logrus.WithField("component", "worker")

	o := gatherOptions()
	if err := validateOptions(o); err != nil {
		logger.WithError(err).Fatal("invalid options")
	}

	store, err := o.redis.NewRedisStore()
	if err != nil {
		logger.WithError(err).Fatal("couldn't connect to redis")
	}

	var archive db.ResultsArchive
	if o.archive.Enabled() {
		archive, err = o.archive.NewResultsArchive()
		if err != nil {
			logger.WithError(err).Fatal("couldn't connect to the results archive")
		}
	} else {
		logger.Info("No --db-host given, the results will not be archived")
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		logger.WithError(http.ListenAndServe(fmt.Sprintf(":%d", o.metricsPort), mux)).Error("Metrics server stopped")
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopCh := make(chan struct{})
	op := worker.NewMainOperator(ctx, store, archive, o.pollInterval)
	op.Initialize()

	errCh := make(chan error, 1)
	go func() { errCh <- op.Run(stopCh) }()

	sigTerm := make(chan os.Signal, 1)
	signal.Notify(sigTerm, syscall.SIGTERM)
	signal.Notify(sigTerm, syscall.SIGINT)
	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatalf("Error running operator: %s", err.Error())
		}
	case <-sigTerm:
		logger.Infof("Shutdown signal received, exiting...")
		cancel()
		close(stopCh)
	}
}
