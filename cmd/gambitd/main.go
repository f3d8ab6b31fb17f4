// Command gambitd runs a gambit blockchain node.
package main

import "github.com/ardanlabs/gambit/cmd/gambitd/cmd"

// build is the git version of this program. It can be set at link time
// with -ldflags "-X main.build=..." and is threaded into cmd.Build.
var build = "develop"

func main() {
	cmd.Build = build
	cmd.Execute()
}
