package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/propflow/commshub/internal/daemon"
	"go.uber.org/fx"
)

func main() {
	configFlag := flag.String("config", "", "path to config file (default ~/.commshub/config.toml)")
	viewerFlag := flag.String("viewer", "", "acting user id (overrides config)")
	flag.Parse()

	configPath := *configFlag
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		configPath = filepath.Join(home, ".commshub", "config.toml")
	}

	app := fx.New(
		daemon.Module(daemon.Params{
			ConfigPath: configPath,
			ViewerID:   *viewerFlag,
		}),
	)

	app.Run()
}
