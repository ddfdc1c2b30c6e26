// Package report renders probe records as the indented "Reporter:" blocks
// read by operators and grepped by wrapper scripts. Every block ends with a
// blank line; absent optional fields are left out.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cloudradar-monitoring/hwprobe/pkg/cpuinfo"
	"github.com/cloudradar-monitoring/hwprobe/pkg/gpu"
)

const header = "Reporter:\n"

type block struct {
	strings.Builder
}

func newBlock() *block {
	b := &block{}
	b.WriteString(header)
	return b
}

func (b *block) field(label, value string) {
	fmt.Fprintf(b, "  + %s: %s\n", label, value)
}

func (b *block) flush(w io.Writer) error {
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func WriteGPUIdentity(w io.Writer, id gpu.Identity) error {
	b := newBlock()
	b.field("Name", id.Name)
	if id.Model != nil {
		b.field("Model", *id.Model)
	}
	if id.Vendor != nil {
		b.field("Vendor", id.Vendor.String())
	}
	if id.DeviceID != nil {
		b.field("Device ID", *id.DeviceID)
	}
	if mib, ok := id.VRAMMiB(); ok {
		b.field("VRAM Size", strconv.FormatUint(mib, 10))
	}
	return b.flush(w)
}

func WriteGPUIdentities(w io.Writer, ids []gpu.Identity) error {
	for _, id := range ids {
		if err := WriteGPUIdentity(w, id); err != nil {
			return err
		}
	}
	return nil
}

func WriteGPUStats(w io.Writer, st gpu.LiveStats) error {
	b := newBlock()
	if st.TextureCount != nil {
		b.field("Textures", strconv.FormatInt(int64(*st.TextureCount), 10))
	}
	if st.VRAMMiB != nil {
		b.field("VRAM (MB)", strconv.FormatInt(int64(*st.VRAMMiB), 10))
	}
	if st.VRAMFreeBytes != nil {
		b.field("VRAM Free (B)", strconv.FormatInt(*st.VRAMFreeBytes, 10))
	}
	if st.DeviceUtil != nil {
		b.field("Device usage (%)", strconv.Itoa(*st.DeviceUtil))
	}
	if st.CoreUtil != nil {
		b.field("Core usage (%)", strconv.FormatFloat(*st.CoreUtil, 'g', 6, 64))
	}
	return b.flush(w)
}

func WriteGPUStatsList(w io.Writer, stats []gpu.LiveStats) error {
	for _, st := range stats {
		if err := WriteGPUStats(w, st); err != nil {
			return err
		}
	}
	return nil
}

func WriteCPU(w io.Writer, c *cpuinfo.Identity) error {
	b := newBlock()
	b.field("Name", c.Brand)
	b.field("Architecture", c.Arch)
	b.field("Family", strconv.FormatInt(int64(c.Family), 10))
	b.field("Physical cores", strconv.Itoa(c.PhysicalCores))
	b.field("Logical cores", strconv.Itoa(c.LogicalCores))
	return b.flush(w)
}
