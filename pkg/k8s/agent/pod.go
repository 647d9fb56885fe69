package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/ptr"

	"github.com/NVIDIA/k8s-ephem/pkg/defaults"
	ephemerrors "github.com/NVIDIA/k8s-ephem/pkg/errors"
)

const (
	hostVolumeName = "host-root"
	hostMountPath  = "/host"

	labelApp  = "app.kubernetes.io/name"
	labelNode = "k8s-ephem.nvidia.com/node"
	appName   = "k8s-ephem-agent"
)

func (d *Deployer) buildPod() *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      d.podName,
			Namespace: d.config.Namespace,
			Labels: map[string]string{
				labelApp:  appName,
				labelNode: d.config.NodeName,
			},
		},
		Spec: corev1.PodSpec{
			NodeName:                      d.config.NodeName,
			RestartPolicy:                 corev1.RestartPolicyNever,
			HostPID:                       true,
			HostNetwork:                   true,
			TerminationGracePeriodSeconds: ptr.To[int64](0),
			AutomountServiceAccountToken:  ptr.To(false),
			Tolerations: []corev1.Toleration{
				{Operator: corev1.TolerationOpExists},
			},
			Containers: []corev1.Container{
				{
					Name:    defaults.DebugContainerName,
					Image:   d.config.Image,
					Command: d.config.Command,
					SecurityContext: &corev1.SecurityContext{
						Privileged: ptr.To(true),
					},
					VolumeMounts: []corev1.VolumeMount{
						{Name: hostVolumeName, MountPath: hostMountPath},
					},
				},
			},
			Volumes: []corev1.Volume{
				{
					Name: hostVolumeName,
					VolumeSource: corev1.VolumeSource{
						HostPath: &corev1.HostPathVolumeSource{Path: "/"},
					},
				},
			},
		},
	}
}

func (d *Deployer) ensurePod(ctx context.Context) error {
	pod := d.buildPod()
	_, err := d.clientset.CoreV1().Pods(d.config.Namespace).Create(ctx, pod, metav1.CreateOptions{})
	if err != nil {
		return ephemerrors.Wrap(ephemerrors.ErrCodeClusterQuery, "create pod "+d.podName, err)
	}
	slog.Debug("created agent pod",
		slog.String("pod", d.podName),
		slog.String("namespace", d.config.Namespace),
		slog.String("node", d.config.NodeName))
	return nil
}

func (d *Deployer) waitForPodCompletion(ctx context.Context, timeout time.Duration) error {
	var phase corev1.PodPhase
	var reason string

	err := wait.PollUntilContextTimeout(ctx, defaults.DebugPodPollInterval, timeout, true,
		func(ctx context.Context) (bool, error) {
			pod, err := d.clientset.CoreV1().Pods(d.config.Namespace).Get(ctx, d.podName, metav1.GetOptions{})
			if err != nil {
				return false, err
			}
			phase = pod.Status.Phase
			reason = podFailureReason(pod)
			return phase == corev1.PodSucceeded || phase == corev1.PodFailed, nil
		})
	if err != nil {
		return ephemerrors.WrapWithContext(ephemerrors.ErrCodeClusterQuery,
			fmt.Sprintf("agent pod %s did not complete (phase %q)", d.podName, phase), err,
			map[string]any{"node": d.config.NodeName, "timeout": timeout.String()})
	}

	if phase == corev1.PodFailed {
		return ephemerrors.WrapWithContext(ephemerrors.ErrCodeClusterQuery,
			fmt.Sprintf("agent pod %s failed: %s", d.podName, reason), nil,
			map[string]any{"node": d.config.NodeName})
	}

	return nil
}

func (d *Deployer) getPodLogs(ctx context.Context) ([]byte, error) {
	req := d.clientset.CoreV1().Pods(d.config.Namespace).GetLogs(d.podName, &corev1.PodLogOptions{
		Container: defaults.DebugContainerName,
	})
	logs, err := req.DoRaw(ctx)
	if err != nil {
		return nil, ephemerrors.Wrap(ephemerrors.ErrCodeClusterQuery, "read logs of pod "+d.podName, err)
	}
	return logs, nil
}

func (d *Deployer) deletePod(ctx context.Context) error {
	err := d.clientset.CoreV1().Pods(d.config.Namespace).Delete(ctx, d.podName, metav1.DeleteOptions{
		GracePeriodSeconds: ptr.To[int64](0),
	})
	return ignoreNotFound(err)
}

// podFailureReason summarizes why a pod failed from its status.
func podFailureReason(pod *corev1.Pod) string {
	var parts []string
	if pod.Status.Reason != "" {
		parts = append(parts, pod.Status.Reason)
	}
	if pod.Status.Message != "" {
		parts = append(parts, pod.Status.Message)
	}
	for _, cs := range pod.Status.ContainerStatuses {
		if t := cs.State.Terminated; t != nil {
			parts = append(parts, fmt.Sprintf("container %s exited %d (%s)", cs.Name, t.ExitCode, t.Reason))
		}
	}
	if len(parts) == 0 {
		return "unknown reason"
	}
	return strings.Join(parts, "; ")
}
