// Command goaset drives the asset-lending session core from a terminal.
//
//	goaset --redis localhost:6379 login -u alice -p secret
//	goaset --redis localhost:6379 --tab <id> assets --search drill
//
// Without --redis the session lives in memory for one invocation, so every
// command logs in first from --username/--password or GOASET_USERNAME and
// GOASET_PASSWORD.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
