package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/vega-project/ccb-cosmology/pkg/validation"
)

type options struct {
	rtol     float64
	logLevel string
}

func gatherOptions() options {
	o := options{}
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	fs.Float64Var(&o.rtol, "rtol", 0, "Relative tolerance overriding the one of every reference (0 keeps them)")
	fs.StringVar(&o.logLevel, "log-level", "info", "Level of the logs (debug, info, warn, error)")

	fs.Parse(os.Args[1:])
	return o
}

func (o *options) validate() error {
	if o.rtol < 0 {
		return fmt.Errorf("--rtol must not be negative")
	}
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	return nil
}

func main() {
	logger := logrus.WithField("component", "validate")

	o := gatherOptions()
	if err := o.validate(); err != nil {
		logger.WithError(err).Fatal("invalid options")
	}

	c, err := validation.ReferenceCosmology()
	if err != nil {
		logger.WithError(err).Fatal("couldn't create the reference cosmology")
	}

	refs := validation.FlatZ1References()
	if o.rtol > 0 {
		for i := range refs {
			refs[i].RTol = o.rtol
		}
	}

	report, err := validation.Check(c, refs)
	if err != nil {
		logger.WithError(err).Fatal("couldn't run the comparison")
	}

	logger = logger.WithField("cosmology", report.Cosmology)
	for _, result := range report.Results {
		entry := logger.WithFields(logrus.Fields{
			"quantity": result.Reference.Quantity,
			"z":        result.Reference.Z,
			"computed": result.Computed,
			"max-dev":  result.MaxDeviation,
		})
		if result.Passed() {
			entry.Info("Matches the other codes")
		} else {
			entry.Error("Deviates from the other codes")
		}
	}

	if !report.Passed() {
		logger.Errorf("%d of %d quantities failed", len(report.Failures()), len(report.Results))
		os.Exit(1)
	}
	logger.Info("All quantities match")
}
