package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/edgefn/modelgate/internal/config"
	"github.com/edgefn/modelgate/internal/lang"
	"github.com/edgefn/modelgate/internal/server"
	"github.com/edgefn/modelgate/internal/version"
)

func main() {
	var cfgPath string
	var testConfig bool
	var showVersion bool
	flag.StringVar(&cfgPath, "config", "modelgate.yaml", "path to config yaml")
	flag.StringVar(&cfgPath, "c", "modelgate.yaml", "path to config yaml (alias of --config)")
	flag.BoolVar(&testConfig, "t", false, "test config and exit (no network)")
	flag.BoolVar(&showVersion, "V", false, "show version information")
	flag.Parse()

	if showVersion {
		fmt.Println(version.Get())
		return
	}

	if testConfig {
		// Support nginx-like: `modelgate -t ./modelgate.yaml`
		if flag.NArg() == 1 && strings.TrimSpace(flag.Arg(0)) != "" {
			cfgPath = strings.TrimSpace(flag.Arg(0))
		}
		if err := runConfigTest(cfgPath); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "error: "+err.Error())
			os.Exit(1)
		}
		fmt.Println("configuration ok")
		return
	}

	if err := server.Run(cfgPath); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func runConfigTest(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	fmt.Println("ok: config")

	gate := lang.NewGate(lang.Whatlang{}, cfg.Languages)
	fmt.Printf("ok: languages supported=%d\n", len(gate.Codes()))

	fmt.Printf("ok: model id=%s\n", cfg.Model.ID)
	return nil
}
