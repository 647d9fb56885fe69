package inventory

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	ephemerrors "github.com/NVIDIA/k8s-ephem/pkg/errors"
	"github.com/NVIDIA/k8s-ephem/pkg/report"
)

const (
	// runtimePreambleLines is the banner plus the column header.
	runtimePreambleLines = 2

	runtimeColumns = 4

	noneTag    = "<none>"
	defaultTag = "latest"

	debugBannerPrefix = "Creating debugging pod "
)

var sizeUnits = []struct {
	suffix string
	factor float64
}{
	{"GB", 1e9},
	{"MB", 1e6},
	{"kB", 1e3},
}

// ParseRuntimeImages parses a debug session transcript of "crictl images".
func ParseRuntimeImages(output string) ([]report.ImageRecord, error) {
	images := []report.ImageRecord{}
	lines := strings.Split(output, "\n")
	if len(lines) <= runtimePreambleLines {
		return images, nil
	}

	for i, line := range lines[runtimePreambleLines:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != runtimeColumns {
			return nil, ephemerrors.WrapWithContext(ephemerrors.ErrCodeParse,
				fmt.Sprintf("runtime image listing line %d has %d fields, want %d", i+runtimePreambleLines+1, len(fields), runtimeColumns),
				nil, map[string]any{"line": line})
		}

		name, tag, id, size := fields[0], fields[1], fields[2], fields[3]
		if tag == noneTag {
			tag = defaultTag
		}
		images = append(images, report.ImageRecord{
			Name:      name + ":" + tag,
			ID:        id,
			SizeBytes: ParseSize(size),
		})
	}

	return images, nil
}

// DebugPodName returns the pod name from the "Creating debugging pod <name>
// with container ..." banner of a debug session, or "" if there is none.
func DebugPodName(output string) string {
	for line := range strings.Lines(output) {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), debugBannerPrefix)
		if !ok {
			continue
		}
		if fields := strings.Fields(rest); len(fields) > 0 {
			return strings.TrimSuffix(fields[0], ".")
		}
	}
	return ""
}

// ParseSize converts a human readable size such as "1.5GB", "250MB" or
// "10kB" to bytes, truncating any fraction. Any other suffix, a missing
// suffix or an unparseable number yields 0.
func ParseSize(s string) int64 {
	s = strings.TrimSpace(s)
	for _, u := range sizeUnits {
		num, ok := strings.CutSuffix(s, u.suffix)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) || v*u.factor >= math.MaxInt64 {
			return 0
		}
		return int64(v * u.factor)
	}
	return 0
}
