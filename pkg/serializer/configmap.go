package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/k8s-ephem/pkg/k8s/client"
)

// ConfigMapWriter stores the encoded value in a ConfigMap, creating it if needed.
type ConfigMapWriter struct {
	Namespace string
	Name      string
	Format    Format

	// Kubeconfig selects the target cluster when ClientSet is nil.
	// Empty uses the shared default-discovery client.
	Kubeconfig string

	// ClientSet is resolved from Kubeconfig when nil.
	ClientSet kubernetes.Interface
}

// NewConfigMapWriter creates a ConfigMapWriter. No API call is made until Serialize.
func NewConfigMapWriter(namespace, name string, format Format) *ConfigMapWriter {
	if format.IsUnknown() {
		format = FormatJSON
	}
	return &ConfigMapWriter{Namespace: namespace, Name: name, Format: format}
}

// Key returns the data key the value is stored under.
func (c *ConfigMapWriter) Key() string {
	return ConfigMapDataKey + c.Format.Extension()
}

func (c *ConfigMapWriter) clientSet() (kubernetes.Interface, error) {
	if c.Kubeconfig != "" {
		cs, _, err := client.BuildKubeClient(c.Kubeconfig)
		return cs, err
	}
	cs, _, err := client.GetKubeClient()
	return cs, err
}

// Serialize encodes data and writes it to the ConfigMap.
func (c *ConfigMapWriter) Serialize(ctx context.Context, data any) error {
	b, err := encode(c.Format, data)
	if err != nil {
		return err
	}

	if c.ClientSet == nil {
		cs, err := c.clientSet()
		if err != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", err)
		}
		c.ClientSet = cs
	}

	cms := c.ClientSet.CoreV1().ConfigMaps(c.Namespace)
	cm, err := cms.Get(ctx, c.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		cm = &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      c.Name,
				Namespace: c.Namespace,
				Labels:    map[string]string{ConfigMapNameLabel: ConfigMapLabelValue},
			},
			Data: map[string]string{c.Key(): string(b)},
		}
		if _, err := cms.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create ConfigMap %s/%s: %w", c.Namespace, c.Name, err)
		}
		slog.Debug("created ConfigMap", slog.String("namespace", c.Namespace), slog.String("name", c.Name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get ConfigMap %s/%s: %w", c.Namespace, c.Name, err)
	}

	if cm.Data == nil {
		cm.Data = map[string]string{}
	}
	cm.Data[c.Key()] = string(b)
	if _, err := cms.Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update ConfigMap %s/%s: %w", c.Namespace, c.Name, err)
	}
	slog.Debug("updated ConfigMap", slog.String("namespace", c.Namespace), slog.String("name", c.Name))
	return nil
}

// parseConfigMapURI splits cm://namespace/name.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	rest := strings.TrimPrefix(uri, ConfigMapURIScheme)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI %q, expected %snamespace/name", uri, ConfigMapURIScheme)
	}
	return parts[0], parts[1], nil
}
