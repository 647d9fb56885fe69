package defaults

import "time"

// Poller defaults.
const (
	// PollInterval is the default time between the start of two queries.
	PollInterval = 600 * time.Second

	// MinPollInterval is the smallest interval and the smallest sleep the
	// poller will use between iterations.
	MinPollInterval = time.Second

	// PollLoops runs for 30 days at the default interval.
	PollLoops = 43200

	// PollDirectory is where poll output files are written.
	PollDirectory = "."

	// OutputSuffix follows the UTC timestamp in poll output file names; the
	// format extension (".json" by default) comes after it.
	OutputSuffix = "-ephem"

	// OutputTimeLayout is ISO-8601 with second precision and a numeric UTC offset.
	OutputTimeLayout = "2006-01-02T15:04:05-07:00"
)

// Collector defaults.
const (
	// KubectlBinary is the kubectl executable looked up on PATH.
	KubectlBinary = "kubectl"

	// DebugImage runs the runtime image listing on the node.
	DebugImage = "docker.io/library/busybox:1.37"

	// DebugNamespace hosts node debug pods for both backends.
	DebugNamespace = "default"

	// DebugContainerName is the container name in debug pods.
	DebugContainerName = "debugger"
)

// Kubernetes timeouts.
const (
	// DebugPodTimeout bounds how long the api backend waits for a debug pod.
	DebugPodTimeout = 5 * time.Minute

	// DebugPodPollInterval is how often the debug pod phase is checked.
	DebugPodPollInterval = 2 * time.Second

	// DebugPodCleanupTimeout bounds deletion of a finished debug pod.
	DebugPodCleanupTimeout = 30 * time.Second
)

// Server timeouts.
const (
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)
