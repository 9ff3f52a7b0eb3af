// Command lightmetrica is the CLI driver for the render() entry point
// (spec.md §6.2): it loads a JSON config, applies flag overrides, and calls
// render.Render, matching the teacher's flag-based main() shape.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/df07/lightmetrica-go/pkg/render"
)

func main() {
	configPath := flag.String("config", "", "path to a render config JSON file (required)")
	scenePath := flag.String("scene", "", "override config.scene")
	output := flag.String("output", "", "override config.output")
	spp := flag.Int("spp", 0, "override config.spp")
	monitorAddr := flag.String("monitor", "", "override config.monitor_addr, e.g. localhost:8090")
	help := flag.Bool("help", false, "show help information")
	flag.Parse()

	if *help || *configPath == "" {
		fmt.Println("Lightmetrica renderer")
		fmt.Println("Usage: lightmetrica -config path/to/config.json [overrides]")
		fmt.Println()
		flag.PrintDefaults()
		if *configPath == "" && !*help {
			os.Exit(2)
		}
		return
	}

	if err := run(*configPath, *scenePath, *output, *spp, *monitorAddr); err != nil {
		fmt.Fprintln(os.Stderr, "lightmetrica:", err)
		os.Exit(1)
	}
}

func run(configPath, scenePath, output string, spp int, monitorAddr string) error {
	f, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, err := render.LoadConfig(f)
	if err != nil {
		return err
	}

	if scenePath != "" {
		cfg.Scene = scenePath
	}
	if output != "" {
		cfg.Output = output
	}
	if spp > 0 {
		cfg.SPP = spp
	}
	if monitorAddr != "" {
		cfg.MonitorAddr = monitorAddr
	}

	logger := render.NewStdLogger(os.Stdout)
	logger.Printf("rendering %s", summarize(cfg))

	result, err := render.Render(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	logger.Printf("done: %d samples processed", result.Processed)
	return nil
}

func summarize(cfg render.Config) string {
	b, err := json.Marshal(cfg)
	if err != nil {
		return cfg.String()
	}
	return string(b)
}
