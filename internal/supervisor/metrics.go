package supervisor

import "github.com/prometheus/client_golang/prometheus"

var (
	childUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mmjd",
			Subsystem: "child",
			Name:      "up",
			Help:      "1 while a llama-server child process is alive",
		},
	)

	childStartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mmjd",
			Subsystem: "child",
			Name:      "starts_total",
			Help:      "llama-server start attempts by result",
		},
		[]string{"result"},
	)

	childStopsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mmjd",
			Subsystem: "child",
			Name:      "stops_total",
			Help:      "llama-server stops by how the child went away (exited, graceful, forced)",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(childUp, childStartsTotal, childStopsTotal)
}
