package main

import (
	"io"
	"log"
	"os"

	"github.com/trezcool/masomo-web/core"
	"github.com/trezcool/masomo-web/core/gateway"
	"github.com/trezcool/masomo-web/core/identity"
	backendsvc "github.com/trezcool/masomo-web/services/backend"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	errAndDie(err)

	// start CLI
	cli := newCommandLine(backendsvc.NewClient(conf), os.Stdout)
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func newCommandLine(transport gateway.Transport, out io.Writer) *commandLine {
	caches := gateway.NewRegistry(transport, gateway.RegistryOptions{})
	return &commandLine{
		caches:   caches,
		resolver: identity.NewResolver(caches, 0 /* wait for the backend */),
		out:      out,
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
