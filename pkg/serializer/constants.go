package serializer

// Output destinations accepted by NewFileWriterOrStdout.
const (
	// ConfigMapURIScheme selects a ConfigMap destination: cm://namespace/name.
	ConfigMapURIScheme = "cm://"

	// StdoutURI writes to stdout, same as an empty path.
	StdoutURI = "-"
)

// ConfigMap layout.
const (
	// ConfigMapDataKey is the data key prefix; the format extension is
	// appended, e.g. "report.json".
	ConfigMapDataKey = "report"

	// ConfigMapNameLabel and ConfigMapLabelValue mark ConfigMaps created by
	// the writer. Existing ConfigMaps keep their labels.
	ConfigMapNameLabel  = "app.kubernetes.io/name"
	ConfigMapLabelValue = "k8s-ephem"
)
