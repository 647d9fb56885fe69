package report

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/NVIDIA/k8s-ephem/pkg/stats"
)

// Reduce joins a node's stats summary with its image inventory.
//
// Pods without an ephemeral-storage record are skipped. The node level
// available and capacity figures are taken from the first pod that has one;
// every pod on a node shares the same node filesystem, so the values are
// expected to be identical and are not cross-checked.
//
// Reduce returns nil when no pod on the node reports ephemeral storage.
// The images slice is not modified.
func Reduce(node string, summary *stats.Summary, images []ImageRecord) *NodeReport {
	if summary == nil {
		return nil
	}

	var nr *NodeReport
	for _, pod := range summary.Pods {
		es := pod.EphemeralStorage
		if es == nil {
			continue
		}
		if nr == nil {
			nr = &NodeReport{
				Node:           node,
				AvailableBytes: es.Available(),
				CapacityBytes:  es.Capacity(),
				PodUsage:       []PodUsageRecord{},
			}
		}
		nr.PodUsage = append(nr.PodUsage, PodUsageRecord{
			Pod:       pod.PodRef.ID(),
			UsedBytes: es.Used(),
		})
	}

	if nr == nil {
		slog.Debug("no pods with ephemeral storage", slog.String("node", node))
		return nil
	}

	slices.SortStableFunc(nr.PodUsage, func(a, b PodUsageRecord) int {
		return cmp.Compare(b.UsedBytes, a.UsedBytes)
	})
	for _, p := range nr.PodUsage {
		nr.TotalPodUsage += p.UsedBytes
	}

	nr.Images = SortImages(images)
	nr.ImageCount = len(nr.Images)
	for _, img := range nr.Images {
		nr.TotalImageSize += img.SizeBytes
	}

	return nr
}

// SortImages returns a copy of images ordered by size, largest first.
// Images of equal size keep their relative order.
func SortImages(images []ImageRecord) []ImageRecord {
	sorted := make([]ImageRecord, len(images))
	copy(sorted, images)
	slices.SortStableFunc(sorted, func(a, b ImageRecord) int {
		return cmp.Compare(b.SizeBytes, a.SizeBytes)
	})
	return sorted
}
