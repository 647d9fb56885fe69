// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli implements the command-line interface for the ephemctl tool.
//
// # Overview
//
// ephemctl reports, per Kubernetes node, how much ephemeral storage each pod
// uses and which container images the node holds. It is meant for cluster
// administrators tracking down nodes that run out of local disk.
//
// # Commands
//
// query - Query all nodes once:
//
//	ephemctl query [--file FILE] [--format json|yaml|table]
//	ephemctl query --file cm://namespace/configmap-name  # ConfigMap output
//
// Writes a JSON array with one object per node that runs at least one pod
// using ephemeral storage. Nodes are queried sequentially and the first
// failure aborts the query.
//
// poll - Query repeatedly:
//
//	ephemctl poll [--dir DIR] [--interval SECONDS] [--loops N]
//	ephemctl poll --continue-on-error --listen :8080
//
// Each iteration writes <DIR>/<UTC timestamp>-ephem.json. The wait between
// iterations is the interval minus the query duration, but at least one
// second. With --listen the latest report is served on /v1/report along with
// /health, /ready and /metrics.
//
// version - Print version information.
//
// # Global Flags
//
//	--backend          kubectl or api (default: kubectl)
//	--images           node-status or runtime (default: node-status)
//	--kubectl          kubectl binary (default: kubectl)
//	--kubeconfig       Path to kubeconfig file
//	--debug-image      Image of the node debug pod (runtime image source)
//	--debug-namespace  Namespace of node debug pods (runtime image source)
//	--debug-timeout    Debug pod timeout (default: 5m)
//	--debug            Enable debug logging
//	--log-json         Output logs in JSON format
//	--help, -h         Show command help
//	--version, -v      Show version information
//
// # Output Formats
//
// JSON (default):
//   - Indented, stable field and node order
//
// YAML:
//   - Same structure as JSON
//
// Table:
//   - Flattened FIELD/VALUE rows for terminal viewing
//
// # Environment Variables
//
//	LOG_LEVEL                   Set logging verbosity (debug, info, warn, error)
//	KUBECONFIG                  Kubeconfig path list used when --kubeconfig is not set
//	K8S_EPHEM_BACKEND           --backend
//	K8S_EPHEM_IMAGES            --images
//	K8S_EPHEM_KUBECTL           --kubectl
//	K8S_EPHEM_DEBUG_IMAGE       --debug-image
//	K8S_EPHEM_DEBUG_NAMESPACE   --debug-namespace
//	K8S_EPHEM_DEBUG_TIMEOUT     --debug-timeout
//	K8S_EPHEM_FILE              query --file
//	K8S_EPHEM_FORMAT            --format
//	K8S_EPHEM_DIR               poll --dir
//	K8S_EPHEM_INTERVAL          poll --interval
//	K8S_EPHEM_LOOPS             poll --loops
//	K8S_EPHEM_CONTINUE_ON_ERROR poll --continue-on-error
//	K8S_EPHEM_LISTEN            poll --listen
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, query failure)
//	2  Context canceled or timeout
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to specialized packages:
//   - pkg/query - Node listing, fetching and reduction
//   - pkg/collector - kubectl and api backends
//   - pkg/poller - Repeated queries and timestamped output
//   - pkg/server - HTTP surface for poll --listen
//   - pkg/serializer - Output formatting (including ConfigMap)
//   - pkg/logging - Structured logging
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/NVIDIA/k8s-ephem/pkg/cli.version=1.0.0'"
package cli
