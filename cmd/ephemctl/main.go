package main

import "github.com/NVIDIA/k8s-ephem/pkg/cli"

func main() {
	cli.Execute()
}
