// The main package for the webmonitor executable.
package main

import (
	"webmonitor/cmd"
)

func main() {
	cmd.Execute()
}
