package inventory

import "strings"

// ParseNodeTable extracts node names from "kubectl get nodes" output.
// The first line is the column header. Blank lines are ignored, and empty
// output yields an empty, non-nil slice.
func ParseNodeTable(output string) []string {
	nodes := []string{}
	lines := strings.Split(output, "\n")
	if len(lines) < 2 {
		return nodes
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		nodes = append(nodes, fields[0])
	}
	return nodes
}
