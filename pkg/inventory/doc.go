// Package inventory turns the raw output of cluster reads into typed values.
//
// It has no knowledge of how the output was obtained: the kubectl backend
// feeds it command output and the api backend feeds it API objects or pod
// logs. Three formats are handled:
//
//   - the tabular node list printed by "kubectl get nodes"
//   - the image list embedded in a node's status
//   - the text table printed by "crictl images" inside a debug session
//
// # Runtime image listing
//
// The debug session transcript starts with a banner line and a column
// header, followed by one row per image:
//
//	Creating debugging pod node-debugger-node-1-x7k2p with container debugger on node node-1.
//	IMAGE                               TAG       IMAGE ID        SIZE
//	docker.io/library/nginx             1.27      4cad75abc83d5   72.1MB
//	registry.k8s.io/pause               <none>    873ed75102791   320kB
//
// Each row must have exactly four whitespace separated fields; a row that
// does not is reported as a parse error rather than skipped. Sizes with a
// GB, MB or kB suffix are converted to bytes; anything else, including
// plain byte counts, is recorded as 0.
package inventory
