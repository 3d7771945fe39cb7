package main

import (
	"log"

	corecmd "github.com/m3rciful/sholatbot/core/cmd"
	"github.com/m3rciful/sholatbot/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        app.LoadCarrier,
		Bootstrap:         app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("sholatbot: %v", err)
	}
}
