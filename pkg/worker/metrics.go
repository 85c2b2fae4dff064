package worker

import "github.com/prometheus/client_golang/prometheus"

var calculationsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vega",
	Name:      "calculations_finished_total",
	Help:      "Calculations finished by the worker, by method and phase",
},
	[]string{
		"method",
		"phase",
	})

func init() {
	prometheus.MustRegister(calculationsFinished)
}
