// Command hosttrie is the single binary housing every subcommand in this
// module, dispatching on os.Args[0] (when invoked via a symlink named after
// the subcommand) or os.Args[1] (when invoked directly).
package main

import (
	"fmt"
	"os"
	"path"

	"github.com/quietdns/hosttrie/cmd"

	_ "github.com/quietdns/hosttrie/cmd/trie-loader"
	_ "github.com/quietdns/hosttrie/cmd/trie-query"
)

var usage = fmt.Sprintf(`Usage: %s <subcommand> [flags]

  Run '%s --list' to see available subcommands, or
  '%s <subcommand> --help' for a subcommand's flags.
`, os.Args[0], os.Args[0], os.Args[0])

func main() {
	var command string
	if path.Base(os.Args[0]) == "hosttrie" {
		if len(os.Args) <= 1 || os.Args[1] == "--help" || os.Args[1] == "-help" {
			fmt.Fprint(os.Stderr, usage)
			return
		}
		if os.Args[1] == "--list" || os.Args[1] == "-list" {
			for _, c := range cmd.AvailableCommands() {
				fmt.Println(c)
			}
			return
		}
		command = os.Args[1]
		os.Args = os.Args[1:]
	} else {
		// Invoked through a symlink named after the subcommand.
		command = path.Base(os.Args[0])
	}

	commandFunc := cmd.LookupCommand(command)
	if commandFunc == nil {
		fmt.Fprintf(os.Stderr, "Unknown subcommand %q.\n", command)
		os.Exit(1)
	}
	commandFunc()
}
