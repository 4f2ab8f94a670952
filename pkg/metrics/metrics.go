package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Serialization metrics. 'promauto' registers everything on the default
// registry, so embedding applications that expose /metrics pick these up
// without extra wiring.

var (
	// SectionsWritten counts flat-file sections written, labeled by
	// section name (profiles, vertices, edges, tags).
	SectionsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadgraph_sections_written_total",
			Help: "Total number of flat-file sections written",
		},
		[]string{"section"},
	)

	// SectionsRead counts flat-file sections read, labeled by section name.
	SectionsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roadgraph_sections_read_total",
			Help: "Total number of flat-file sections read",
		},
		[]string{"section"},
	)

	// BytesWritten counts payload bytes written to graph files, size
	// prefixes included.
	BytesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roadgraph_bytes_written_total",
			Help: "Total bytes written to graph files",
		},
	)

	// BytesRead counts payload bytes read from graph files.
	BytesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roadgraph_bytes_read_total",
			Help: "Total bytes read from graph files",
		},
	)

	// GraphsSaved counts completed serializations.
	GraphsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roadgraph_graphs_saved_total",
			Help: "Total number of graphs serialized successfully",
		},
	)

	// GraphsLoaded counts completed deserializations.
	GraphsLoaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roadgraph_graphs_loaded_total",
			Help: "Total number of graphs deserialized successfully",
		},
	)
)
