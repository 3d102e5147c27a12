// The main package for the fantasy-stats-crawler executable.
package main

import (
	"github.com/gridironlabs/fantasy-stats-crawler/cmd"
)

func main() {
	cmd.Execute()
}
