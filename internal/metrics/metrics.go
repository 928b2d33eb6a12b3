package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	workerSpawns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parley",
		Name:      "worker_spawns_total",
		Help:      "Total number of worker child processes started per worker.",
	}, []string{"worker"})

	workerFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parley",
		Name:      "worker_failures_total",
		Help:      "Total number of captured child failures per worker and failure kind.",
	}, []string{"worker", "kind"})

	workerLifetime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "parley",
		Name:      "worker_lifetime_seconds",
		Help:      "Wall-clock lifetime of worker child processes from start to join.",
	}, []string{"worker"})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "parley",
		Name:      "build_info",
		Help:      "Build metadata for the running parley binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(workerSpawns, workerFailures, workerLifetime, buildInfo)
}

// Registry returns the Prometheus registry containing all parley metrics.
func Registry() *prometheus.Registry {
	return registry
}

// AddSpawn counts one spawned child for the named worker.
func AddSpawn(worker string) {
	if worker == "" {
		return
	}
	workerSpawns.WithLabelValues(worker).Inc()
}

// AddFailure counts one captured child failure of the given kind.
func AddFailure(worker, kind string) {
	if worker == "" {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	workerFailures.WithLabelValues(worker, kind).Inc()
}

// ObserveLifetime records how long a joined child lived, in seconds.
func ObserveLifetime(worker string, seconds float64) {
	label := worker
	if label == "" {
		label = "unknown"
	}
	workerLifetime.WithLabelValues(label).Observe(seconds)
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
