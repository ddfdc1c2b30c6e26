package main

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/cloudradar-monitoring/hwprobe"
)

var (
	// set on build:
	// go build -o hwprobe -ldflags="-X main.version=$(git describe --always --long --dirty --tag)" github.com/cloudradar-monitoring/hwprobe/cmd/hwprobe
	version string
)

func main() {
	cfgPath := hwprobe.ConfigPath()
	cfg, cfgErr := hwprobe.HandleConfigSetup(cfgPath)

	hwprobe.ConfigureLogger(cfg, os.Stderr)
	if cfgErr != nil {
		log.WithError(cfgErr).Warnf("problems with config %s, continuing with defaults where needed", cfgPath)
	}
	if version != "" {
		log.Debugf("hwprobe %s", version)
	}

	if err := hwprobe.New(cfg).Run(os.Stdout); err != nil {
		// registry failures were already reported by Run
		if !errors.Is(err, hwprobe.ErrRegistryInit) {
			log.Errorf("%s", err.Error())
		}
		os.Exit(1)
	}
}
