// Package stats decodes the kubelet stats summary document served at
// /api/v1/nodes/<node>/proxy/stats/summary.
//
// Only the fields needed for ephemeral storage reporting are modeled. Pods
// that do not use ephemeral storage have no "ephemeral-storage" object, which
// decodes to a nil EphemeralStorage.
package stats

import (
	"encoding/json"
	"math"

	ephemerrors "github.com/NVIDIA/k8s-ephem/pkg/errors"
)

// Summary is the subset of the kubelet summary API used for reporting.
type Summary struct {
	Node NodeRef    `json:"node"`
	Pods []PodStats `json:"pods"`
}

// NodeRef identifies the node that produced the summary.
type NodeRef struct {
	NodeName string `json:"nodeName"`
}

// PodStats holds the per-pod entry of the summary.
type PodStats struct {
	PodRef           PodReference `json:"podRef"`
	EphemeralStorage *FsStats     `json:"ephemeral-storage,omitempty"`
}

// PodReference identifies a pod.
type PodReference struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	UID       string `json:"uid,omitempty"`
}

// ID returns the pod identifier in "namespace/name" form.
func (p PodReference) ID() string {
	return p.Namespace + "/" + p.Name
}

// FsStats is a filesystem usage record. The kubelet omits counters it cannot
// compute, so all counters are optional.
type FsStats struct {
	AvailableBytes *uint64 `json:"availableBytes,omitempty"`
	CapacityBytes  *uint64 `json:"capacityBytes,omitempty"`
	UsedBytes      *uint64 `json:"usedBytes,omitempty"`
	InodesFree     *uint64 `json:"inodesFree,omitempty"`
	Inodes         *uint64 `json:"inodes,omitempty"`
	InodesUsed     *uint64 `json:"inodesUsed,omitempty"`
}

// Available returns AvailableBytes, or 0 when absent.
func (f *FsStats) Available() int64 { return counter(f.AvailableBytes) }

// Capacity returns CapacityBytes, or 0 when absent.
func (f *FsStats) Capacity() int64 { return counter(f.CapacityBytes) }

// Used returns UsedBytes, or 0 when absent.
func (f *FsStats) Used() int64 { return counter(f.UsedBytes) }

func counter(v *uint64) int64 {
	if v == nil {
		return 0
	}
	if *v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(*v)
}

// Decode parses a stats summary document.
// A document that is not JSON, or that has no "pods" array, is a parse error.
func Decode(data []byte) (*Summary, error) {
	var raw struct {
		Summary
		Pods *[]PodStats `json:"pods"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ephemerrors.Wrap(ephemerrors.ErrCodeParse, "failed to decode stats summary", err)
	}
	if raw.Pods == nil {
		return nil, ephemerrors.New(ephemerrors.ErrCodeParse, "stats summary has no pods array")
	}

	s := raw.Summary
	s.Pods = *raw.Pods
	return &s, nil
}
