// Package hwprobe takes a one-shot inventory of the CPU and graphics hardware
// of a macOS host and prints it in three labeled sections.
package hwprobe

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cloudradar-monitoring/hwprobe/pkg/cpuinfo"
	"github.com/cloudradar-monitoring/hwprobe/pkg/gpu"
	"github.com/cloudradar-monitoring/hwprobe/pkg/registry"
	"github.com/cloudradar-monitoring/hwprobe/pkg/report"
)

var logger = logrus.WithField("package", "hwprobe")

// ErrRegistryInit is matched (errors.Is) by the error Run returns when no
// registry backend could be opened.
var ErrRegistryInit = errors.New("registry initialization failed")

// RegistryInitError keeps the backend failure behind ErrRegistryInit.
type RegistryInitError struct {
	Err error
}

func (e *RegistryInitError) Error() string {
	return fmt.Sprintf("%s: %s", ErrRegistryInit.Error(), e.Err.Error())
}

func (e *RegistryInitError) Unwrap() error {
	return e.Err
}

func (e *RegistryInitError) Is(target error) bool {
	return target == ErrRegistryInit
}

type Probe struct {
	cfg *Config

	openRegistry func(registry.Options) (registry.Registry, error)
	collectCPU   func() (*cpuinfo.Identity, error)
}

func New(cfg *Config) *Probe {
	return &Probe{
		cfg:          cfg,
		openRegistry: registry.Open,
		collectCPU:   cpuinfo.Collect,
	}
}

// Run writes the CPU, GPU identity and GPU statistics sections to w. Problems
// inside a section only shrink that section. An unusable registry still
// yields empty GPU sections and then a *RegistryInitError; the only other
// error is a failing writer.
func (p *Probe) Run(w io.Writer) error {
	logger.Debugf("active config:\n%s", p.cfg.DumpToml())

	if err := p.runCPUSection(w); err != nil {
		return err
	}

	reg, err := p.openRegistry(p.cfg.RegistryOptions())
	if err != nil {
		initErr := &RegistryInitError{Err: err}
		logger.WithError(err).Errorf("[GPU] %s", ErrRegistryInit.Error())
		if err := writeGPUSections(w, nil, nil); err != nil {
			return err
		}
		return initErr
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logger.WithError(err).Warn("could not close registry")
		}
	}()
	logger.Debugf("using %s registry backend", reg.Backend())

	ids := gpu.EnumerateIdentities(reg)
	stats := gpu.EnumerateLiveStats(reg)

	return writeGPUSections(w, ids, stats)
}

// writeGPUSections prints both GPU headers even when there is nothing to list.
func writeGPUSections(w io.Writer, ids []gpu.Identity, stats []gpu.LiveStats) error {
	if _, err := fmt.Fprintf(w, "INFO: GPU Quantity = %d\n", len(ids)); err != nil {
		return errors.Wrap(err, "could not write gpu section")
	}
	if err := report.WriteGPUIdentities(w, ids); err != nil {
		return errors.Wrap(err, "could not write gpu section")
	}

	if _, err := fmt.Fprintln(w, "INFO: GPU Stat"); err != nil {
		return errors.Wrap(err, "could not write gpu stat section")
	}
	if err := report.WriteGPUStatsList(w, stats); err != nil {
		return errors.Wrap(err, "could not write gpu stat section")
	}

	return nil
}

func (p *Probe) runCPUSection(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "INFO: CPU"); err != nil {
		return errors.Wrap(err, "could not write cpu section")
	}

	cpu, err := p.collectCPU()
	if err != nil {
		logger.WithError(err).Warn("[CPU] cpu identity is incomplete")
	}
	if cpu == nil {
		cpu = &cpuinfo.Identity{}
	}

	return errors.Wrap(report.WriteCPU(w, cpu), "could not write cpu section")
}
