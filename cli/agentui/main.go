package main

import (
	"os"

	agentuicmder "github.com/papercomputeco/agentui/cmd/agentui"
)

func main() {
	cmd := agentuicmder.NewAgentUICmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
