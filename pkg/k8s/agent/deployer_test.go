package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/NVIDIA/k8s-ephem/pkg/defaults"
	ephemerrors "github.com/NVIDIA/k8s-ephem/pkg/errors"
)

const testNamespace = "ephem-test"

func testConfig() Config {
	return Config{
		Namespace: testNamespace,
		NodeName:  "node-1",
		Image:     "busybox:test",
		Command:   []string{"chroot", "/host", "crictl", "images"},
		Timeout:   time.Second,
	}
}

// finishPodsWith makes every created pod report the given phase.
func finishPodsWith(clientset *fake.Clientset, phase corev1.PodPhase) {
	clientset.PrependReactor("create", "pods", func(a k8stesting.Action) (bool, runtime.Object, error) {
		pod := a.(k8stesting.CreateAction).GetObject().(*corev1.Pod)
		pod.Status.Phase = phase
		return false, nil, nil
	})
}

func TestNewDeployer_Defaults(t *testing.T) {
	d := NewDeployer(fake.NewClientset(), Config{NodeName: "node-1"})

	if d.config.Namespace != defaults.DebugNamespace {
		t.Errorf("expected namespace %q, got %q", defaults.DebugNamespace, d.config.Namespace)
	}
	if d.config.Image != defaults.DebugImage {
		t.Errorf("expected image %q, got %q", defaults.DebugImage, d.config.Image)
	}
	if d.config.Timeout != defaults.DebugPodTimeout {
		t.Errorf("expected timeout %v, got %v", defaults.DebugPodTimeout, d.config.Timeout)
	}
	if !strings.HasPrefix(d.PodName(), podNamePrefix+"node-1-") {
		t.Errorf("unexpected pod name %q", d.PodName())
	}
}

func TestNewDeployer_UniqueNames(t *testing.T) {
	clientset := fake.NewClientset()
	a := NewDeployer(clientset, testConfig())
	b := NewDeployer(clientset, testConfig())
	if a.PodName() == b.PodName() {
		t.Errorf("expected distinct pod names, both were %q", a.PodName())
	}
}

func TestNewDeployer_LongNodeName(t *testing.T) {
	cfg := testConfig()
	cfg.NodeName = strings.Repeat("n", 250)
	d := NewDeployer(fake.NewClientset(), cfg)

	if len(d.PodName()) > 63 {
		t.Errorf("pod name too long: %d characters", len(d.PodName()))
	}
}

func TestNewDeployer_TruncatedNameIsValid(t *testing.T) {
	tests := []struct {
		name string
		node string
	}{
		{"dot at cut", strings.Repeat("a", 39) + ".ec2.internal"},
		{"hyphen at cut", strings.Repeat("b", 39) + "-worker-pool-1"},
		{"separators before cut", strings.Repeat("c", 37) + "-.-rest-of-name"},
		{"short", "ip-10-0-0-1.ec2.internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.NodeName = tt.node
			d := NewDeployer(fake.NewClientset(), cfg)

			if errs := validation.IsDNS1123Subdomain(d.PodName()); len(errs) > 0 {
				t.Errorf("pod name %q is invalid: %v", d.PodName(), errs)
			}
		})
	}
}

func TestDeployer_Deploy(t *testing.T) {
	clientset := fake.NewClientset()
	cfg := testConfig()
	d := NewDeployer(clientset, cfg)
	ctx := context.Background()

	if err := d.Deploy(ctx); err != nil {
		t.Fatalf("Deploy() failed: %v", err)
	}

	pod, err := clientset.CoreV1().Pods(testNamespace).Get(ctx, d.PodName(), metav1.GetOptions{})
	if err != nil {
		t.Fatalf("pod not found: %v", err)
	}

	if pod.Spec.NodeName != cfg.NodeName {
		t.Errorf("expected nodeName %q, got %q", cfg.NodeName, pod.Spec.NodeName)
	}
	if pod.Spec.RestartPolicy != corev1.RestartPolicyNever {
		t.Errorf("expected restart policy Never, got %q", pod.Spec.RestartPolicy)
	}
	if !pod.Spec.HostPID {
		t.Error("expected HostPID to be true")
	}
	if len(pod.Spec.Tolerations) != 1 || pod.Spec.Tolerations[0].Operator != corev1.TolerationOpExists {
		t.Errorf("expected a single tolerate-everything toleration, got %+v", pod.Spec.Tolerations)
	}

	if len(pod.Spec.Containers) != 1 {
		t.Fatalf("expected 1 container, got %d", len(pod.Spec.Containers))
	}
	c := pod.Spec.Containers[0]
	if c.Name != defaults.DebugContainerName {
		t.Errorf("expected container %q, got %q", defaults.DebugContainerName, c.Name)
	}
	if c.Image != cfg.Image {
		t.Errorf("expected image %q, got %q", cfg.Image, c.Image)
	}
	if strings.Join(c.Command, " ") != "chroot /host crictl images" {
		t.Errorf("unexpected command %v", c.Command)
	}
	if c.SecurityContext == nil || c.SecurityContext.Privileged == nil || !*c.SecurityContext.Privileged {
		t.Error("expected privileged container")
	}
	if len(c.VolumeMounts) != 1 || c.VolumeMounts[0].MountPath != hostMountPath {
		t.Errorf("expected host root mounted at %s, got %+v", hostMountPath, c.VolumeMounts)
	}

	if len(pod.Spec.Volumes) != 1 || pod.Spec.Volumes[0].HostPath == nil || pod.Spec.Volumes[0].HostPath.Path != "/" {
		t.Errorf("expected hostPath / volume, got %+v", pod.Spec.Volumes)
	}
	if pod.Labels[labelNode] != cfg.NodeName {
		t.Errorf("expected node label %q, got %q", cfg.NodeName, pod.Labels[labelNode])
	}
}

func TestDeployer_DeployRequiresNode(t *testing.T) {
	cfg := testConfig()
	cfg.NodeName = ""
	d := NewDeployer(fake.NewClientset(), cfg)

	if err := d.Deploy(context.Background()); err == nil {
		t.Fatal("expected error without node name")
	}
}

func TestDeployer_Run(t *testing.T) {
	clientset := fake.NewClientset()
	finishPodsWith(clientset, corev1.PodSucceeded)
	d := NewDeployer(clientset, testConfig())
	ctx := context.Background()

	out, err := d.Run(ctx)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	// The fake clientset always serves this body for pod logs.
	if string(out) != "fake logs" {
		t.Errorf("expected fake logs, got %q", out)
	}

	_, err = clientset.CoreV1().Pods(testNamespace).Get(ctx, d.PodName(), metav1.GetOptions{})
	if !apierrors.IsNotFound(err) {
		t.Errorf("expected pod to be deleted, got err=%v", err)
	}
}

func TestDeployer_RunPodFailed(t *testing.T) {
	clientset := fake.NewClientset()
	finishPodsWith(clientset, corev1.PodFailed)
	d := NewDeployer(clientset, testConfig())
	ctx := context.Background()

	_, err := d.Run(ctx)
	if err == nil {
		t.Fatal("expected error for failed pod")
	}
	if !ephemerrors.IsCode(err, ephemerrors.ErrCodeClusterQuery) {
		t.Errorf("expected %s, got %v", ephemerrors.ErrCodeClusterQuery, err)
	}

	_, err = clientset.CoreV1().Pods(testNamespace).Get(ctx, d.PodName(), metav1.GetOptions{})
	if !apierrors.IsNotFound(err) {
		t.Errorf("expected pod to be deleted after failure, got err=%v", err)
	}
}

func TestDeployer_WaitTimeout(t *testing.T) {
	clientset := fake.NewClientset()
	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	d := NewDeployer(clientset, cfg)
	ctx := context.Background()

	// Pod stays Pending.
	_, err := d.Run(ctx)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !ephemerrors.IsCode(err, ephemerrors.ErrCodeClusterQuery) {
		t.Errorf("expected %s, got %v", ephemerrors.ErrCodeClusterQuery, err)
	}

	_, err = clientset.CoreV1().Pods(testNamespace).Get(ctx, d.PodName(), metav1.GetOptions{})
	if !apierrors.IsNotFound(err) {
		t.Errorf("expected pod to be deleted after timeout, got err=%v", err)
	}
}

func TestDeployer_CleanupIdempotent(t *testing.T) {
	d := NewDeployer(fake.NewClientset(), testConfig())
	ctx := context.Background()

	// Nothing was deployed.
	if err := d.Cleanup(ctx, CleanupOptions{}); err != nil {
		t.Errorf("Cleanup() on missing pod failed: %v", err)
	}
}

func TestDeployer_CleanupAfterCancel(t *testing.T) {
	clientset := fake.NewClientset()
	d := NewDeployer(clientset, testConfig())

	if err := d.Deploy(context.Background()); err != nil {
		t.Fatalf("Deploy() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Cleanup(ctx, CleanupOptions{Timeout: time.Second}); err != nil {
		t.Fatalf("Cleanup() failed: %v", err)
	}

	_, err := clientset.CoreV1().Pods(testNamespace).Get(context.Background(), d.PodName(), metav1.GetOptions{})
	if !apierrors.IsNotFound(err) {
		t.Errorf("expected pod to be deleted, got err=%v", err)
	}
}

func TestPodFailureReason(t *testing.T) {
	tests := []struct {
		name string
		pod  *corev1.Pod
		want string
	}{
		{
			name: "empty status",
			pod:  &corev1.Pod{},
			want: "unknown reason",
		},
		{
			name: "reason and container exit",
			pod: &corev1.Pod{Status: corev1.PodStatus{
				Reason: "Evicted",
				ContainerStatuses: []corev1.ContainerStatus{{
					Name:  "debugger",
					State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{ExitCode: 127, Reason: "Error"}},
				}},
			}},
			want: "Evicted; container debugger exited 127 (Error)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := podFailureReason(tt.pod); got != tt.want {
				t.Errorf("podFailureReason() = %q, want %q", got, tt.want)
			}
		})
	}
}
