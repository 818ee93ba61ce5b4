// ledgerctl consulta y opera el ledger de estoque desde la terminal, sobre el
// mismo almacenamiento que la API (configurado por variables de entorno).
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var rawOutput = flag.Bool("raw", false, "imprimir markdown sin formato de terminal")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&stockCmd{}, "consultas")
	commander.Register(&alertsCmd{}, "consultas")
	commander.Register(&historyCmd{}, "consultas")
	commander.Register(&verifyCmd{}, "consultas")

	commander.Register(&entryCmd{}, "movimientos")
	commander.Register(&exitCmd{}, "movimientos")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
