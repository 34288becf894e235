// SPDX-License-Identifier: MPL-2.0

package main

import cmd "envrun/cmd/envrun"

func main() {
	cmd.Execute()
}
