// Package kubectl queries a cluster by running the kubectl binary.
//
// Every read maps to one kubectl invocation:
//
//	nodes          kubectl get nodes
//	stats          kubectl get --raw /api/v1/nodes/<node>/proxy/stats/summary
//	node-status    kubectl get node <node> -o json
//	runtime        kubectl debug node/<node> -i --image=<image> --profile=sysadmin -- chroot /host crictl images
//
// The runtime listing captures stdout and stderr together because kubectl
// prints the debug pod banner on stderr and the parser expects it as the
// first line. Commands run through kubectl.Executor so tests can substitute
// a fake.
package kubectl
