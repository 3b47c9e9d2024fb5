package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/di"
	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "echo logs to the console and enable verbose SQL logging")
	flag.Parse()

	_, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %s\n", err)
		os.Exit(1)
	}
}
