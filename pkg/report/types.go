// Package report holds the ephemeral storage report model and the reducer
// that builds one NodeReport from a node's stats summary and image inventory.
package report

// ImageRecord is a container image resident on a node.
type ImageRecord struct {
	// Name is repository:tag. The tag is "latest" when the source has none.
	Name string `json:"name" yaml:"name"`

	// ID is the image id or digest reported by the source, if any.
	ID string `json:"id" yaml:"id"`

	// SizeBytes is never negative. Sizes that cannot be parsed are 0.
	SizeBytes int64 `json:"sizeBytes" yaml:"sizeBytes"`
}

// PodUsageRecord is the ephemeral storage used by one pod.
type PodUsageRecord struct {
	Pod       string `json:"pod" yaml:"pod"`
	UsedBytes int64  `json:"usedBytes" yaml:"usedBytes"`
}

// NodeReport summarizes ephemeral storage and images for one node.
type NodeReport struct {
	Node           string           `json:"node" yaml:"node"`
	AvailableBytes int64            `json:"availableBytes" yaml:"availableBytes"`
	CapacityBytes  int64            `json:"capacityBytes" yaml:"capacityBytes"`
	PodUsage       []PodUsageRecord `json:"podUsage" yaml:"podUsage"`
	Images         []ImageRecord    `json:"images" yaml:"images"`
	ImageCount     int              `json:"imageCount" yaml:"imageCount"`
	TotalImageSize int64            `json:"totalImageSize" yaml:"totalImageSize"`
	TotalPodUsage  int64            `json:"totalPodUsage" yaml:"totalPodUsage"`
}

// ResultSet is the ordered list of node reports produced by one query.
type ResultSet []NodeReport

// NewResultSet returns an empty, non-nil result set so that it serializes as
// an empty array.
func NewResultSet() ResultSet {
	return make(ResultSet, 0)
}
