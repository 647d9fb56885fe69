package inventory

import (
	"encoding/json"
	"log/slog"

	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"
	corev1 "k8s.io/api/core/v1"

	ephemerrors "github.com/NVIDIA/k8s-ephem/pkg/errors"
	"github.com/NVIDIA/k8s-ephem/pkg/report"
)

// DecodeNodeImages decodes a node object as printed by
// "kubectl get node <name> -o json" and returns its status image list.
func DecodeNodeImages(data []byte) ([]report.ImageRecord, error) {
	var node corev1.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, ephemerrors.Wrap(ephemerrors.ErrCodeParse, "failed to decode node", err)
	}
	if node.Kind != "" && node.Kind != "Node" {
		return nil, ephemerrors.New(ephemerrors.ErrCodeParse, "expected kind Node, got "+node.Kind)
	}
	return ImagesFromNodeStatus(node.Status.Images), nil
}

// ImagesFromNodeStatus converts the images a node reports in its status.
func ImagesFromNodeStatus(images []corev1.ContainerImage) []report.ImageRecord {
	records := make([]report.ImageRecord, 0, len(images))
	for _, img := range images {
		records = append(records, imageFromNames(img.Names, img.SizeBytes))
	}
	return records
}

// imageFromNames picks the repository:tag name and the digest out of the
// names a node lists for one image. Nodes usually report both a digested
// ("repo@sha256:...") and a tagged ("repo:tag") name; images pulled by
// digest only get the default tag.
func imageFromNames(names []string, size int64) report.ImageRecord {
	rec := report.ImageRecord{SizeBytes: max(size, 0)}

	var (
		repo reference.Named
		id   digest.Digest
	)
	for _, n := range names {
		ref, err := reference.ParseNormalizedNamed(n)
		if err != nil {
			slog.Debug("skipping unparseable image name", slog.String("name", n), slog.String("error", err.Error()))
			continue
		}
		if repo == nil {
			repo = reference.TrimNamed(ref)
		}
		if tagged, ok := ref.(reference.Tagged); ok && rec.Name == "" {
			rec.Name = ref.Name() + ":" + tagged.Tag()
		}
		if digested, ok := ref.(reference.Digested); ok && id == "" {
			id = digested.Digest()
		}
	}

	switch {
	case rec.Name != "":
	case repo != nil:
		rec.Name = reference.TagNameOnly(repo).String()
	case len(names) > 0:
		rec.Name = names[0]
	}
	rec.ID = id.String()

	return rec
}
