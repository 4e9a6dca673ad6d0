package main

import (
	"log"

	corecmd "github.com/m3rciful/pagebot/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig:        loadConfig,
		Bootstrap:         buildApp,
	})
	if err != nil {
		log.Fatalf("pagebot: %v", err)
	}
}
