/*
Package agent runs a short-lived privileged pod on a specific node and
collects what it prints.

The api backend uses it to list the images known to the node's container
runtime: the pod is pinned to the node with spec.nodeName, mounts the host
root filesystem at /host and runs "chroot /host crictl images". It is the
in-cluster equivalent of "kubectl debug node/<name> --profile=sysadmin".

# Lifecycle

Each run creates a uniquely named pod, waits for it to reach Succeeded or
Failed, reads the container log and deletes the pod. The pod is deleted
even when waiting fails or the caller's context is cancelled.

# Usage Example

	clientset, _, err := client.GetKubeClient()
	if err != nil {
		return err
	}

	deployer := agent.NewDeployer(clientset, agent.Config{
		Namespace: "default",
		NodeName:  "node-1",
		Image:     "docker.io/library/busybox:1.37",
		Command:   []string{"chroot", "/host", "crictl", "images"},
		Timeout:   5 * time.Minute,
	})

	logs, err := deployer.Run(ctx)

# Testing

The package works with the client-go fake clientset. The fake never moves
pods out of Pending, so tests set the phase with a reactor:

	clientset := fake.NewClientset()
	clientset.PrependReactor("create", "pods", func(a k8stesting.Action) (bool, runtime.Object, error) {
		a.(k8stesting.CreateAction).GetObject().(*corev1.Pod).Status.Phase = corev1.PodSucceeded
		return false, nil, nil
	})
*/
package agent
