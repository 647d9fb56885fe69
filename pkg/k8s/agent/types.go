package agent

import (
	"time"

	"k8s.io/client-go/kubernetes"
)

// Config describes the pod to run.
type Config struct {
	// Namespace the pod is created in.
	Namespace string

	// NodeName pins the pod to a node.
	NodeName string

	// Image runs the command. It needs a chroot binary.
	Image string

	// Command is the container command.
	Command []string

	// Timeout bounds the wait for the pod to finish. Zero uses the default.
	Timeout time.Duration
}

// Deployer creates, watches and removes one agent pod.
type Deployer struct {
	clientset kubernetes.Interface
	config    Config
	podName   string
}

// CleanupOptions controls Cleanup.
type CleanupOptions struct {
	// Timeout bounds the deletion. Zero uses the default.
	Timeout time.Duration
}
