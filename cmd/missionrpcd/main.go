// Command missionrpcd hosts a MissionRPC service registry over TCP.
//
// Usage:
//
//	missionrpcd start
//	missionrpcd start --config /etc/missionrpc/config.yaml
//	missionrpcd version
package main

import (
	"fmt"
	"os"

	"github.com/jeeves-cluster-organization/missionrpc/cmd/missionrpcd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
