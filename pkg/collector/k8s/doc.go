// Package k8s queries a cluster through the Kubernetes API with client-go.
//
// It offers the same reads as the kubectl backend without a kubectl binary:
//
//   - ListNodes lists Node objects and returns their names in API order.
//   - FetchStats reads the kubelet stats summary through the node proxy
//     subresource (/api/v1/nodes/<node>/proxy/stats/summary).
//   - NodeStatusImages reads status.images from the Node object.
//   - RuntimeImages runs crictl in a privileged pod on the node (see
//     package agent) and parses its log.
//
// # Runtime Listing Transcript
//
// kubectl debug prints a banner line before the crictl output. The runtime
// listing prepends the same banner so both backends hand the parser the
// same shape:
//
//	Creating debugging pod <pod> with container debugger on node <node>.
//	IMAGE                   TAG      IMAGE ID        SIZE
//	registry.k8s.io/pause   3.10     873ed75102791   320kB
//
// # Kubernetes Client
//
// Set ClientSet explicitly, or leave it nil to use the process-wide client
// from package client (kubeconfig discovery, then in-cluster config).
//
// # Testing
//
// The fake clientset has no REST client, so the stats summary read can be
// replaced through Collector.ReadSummary.
package k8s
