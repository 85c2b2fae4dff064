package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/vega-project/ccb-cosmology/pkg/db"
)

type options struct {
	port     int
	logLevel string

	redis db.RedisOptions
}

func gatherOptions() options {
	o := options{}
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	fs.IntVar(&o.port, "port", 8080, "Port number where the server will listen to")
	fs.StringVar(&o.logLevel, "log-level", "info", "Level of the logs (debug, info, warn, error)")

	o.redis.Bind(fs)
	fs.Parse(os.Args[1:])
	return o
}

func (o *options) validate() error {
	if o.port <= 0 || o.port > 65535 {
		return fmt.Errorf("invalid port %d", o.port)
	}
	level, err := logrus.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	return o.redis.Validate()
}

func newRouter(s *server) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.Use(instrument)
	router.HandleFunc("/cosmologies", s.getCosmologies).Methods("GET")
	router.HandleFunc("/cosmology/{name}", s.getCosmology).Methods("GET")
	router.HandleFunc("/cosmology/{name}/{method}", s.getCosmologyMethod).Methods("GET")
	router.HandleFunc("/compute", s.postCompute).Methods("POST")
	router.HandleFunc("/calculations", s.getCalculations).Methods("GET")
	router.HandleFunc("/calculation/{id}", s.getCalculationByName).Methods("GET")
	router.HandleFunc("/calculation/{id}/results", s.getCalculationResultsByID).Methods("GET")
	router.HandleFunc("/calculations/create", s.createCalculation).Methods("POST")
	router.HandleFunc("/calculations/delete/{id}", s.deleteCalculation).Methods("DELETE")
	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		rw.Write([]byte("OK"))
	})
	return router
}

func main() {
	o := gatherOptions()
	if err := o.validate(); err != nil {
		logrus.WithError(err).Fatal("invalid options")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := o.redis.NewRedisStore()
	if err != nil {
		logrus.WithError(err).Fatal("couldn't connect to redis")
	}

	s := &server{
		logger: logrus.WithField("component", "apiserver"),
		ctx:    ctx,
		store:  store,
		cache:  store,
	}

	logrus.Infof("Listening on %d port", o.port)
	logrus.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", o.port), newRouter(s)))
}
