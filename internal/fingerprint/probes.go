package fingerprint

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/nwtrace/rtcleak/internal/model"
)

// Probe is one (capability, accessor) pair. The accessor returns the observed
// value and whether the capability was readable.
type Probe struct {
	// Name is the capability name as it appears in the report.
	Name string

	// Read returns the value and whether it is present.
	Read func(ctx context.Context) (any, bool)
}

// Collector gathers the platform fingerprint.
type Collector struct {
	probes []Probe
	logger *slog.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithProbes replaces the default probe list. Used by tests to inject
// deterministic accessors.
func WithProbes(probes []Probe) Option {
	return func(c *Collector) {
		c.probes = probes
	}
}

// NewCollector creates a Collector with the default probe list.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		probes: defaultProbes(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect runs every probe in order and returns the fingerprint of the
// capabilities that were present. Probe failures are logged at debug level
// and skipped.
func (c *Collector) Collect(ctx context.Context) *model.Fingerprint {
	fp := model.NewFingerprint()
	for _, p := range c.probes {
		v, ok := p.Read(ctx)
		if !ok {
			c.logger.Debug("capability not readable", "capability", p.Name)
			continue
		}
		fp.Set(p.Name, v)
	}
	return fp
}

// defaultProbes is the enumerated allow-list of platform capabilities.
// Order here is report order.
func defaultProbes() []Probe {
	// One host.Info call backs several probes.
	var info *host.InfoStat
	hostInfo := func(ctx context.Context) *host.InfoStat {
		if info == nil {
			info, _ = host.InfoWithContext(ctx)
		}
		return info
	}

	return []Probe{
		{Name: "hostname", Read: func(ctx context.Context) (any, bool) {
			if i := hostInfo(ctx); i != nil && i.Hostname != "" {
				return i.Hostname, true
			}
			return nil, false
		}},
		{Name: "os", Read: func(ctx context.Context) (any, bool) {
			if i := hostInfo(ctx); i != nil && i.OS != "" {
				return i.OS, true
			}
			return nil, false
		}},
		{Name: "platform", Read: func(ctx context.Context) (any, bool) {
			if i := hostInfo(ctx); i != nil && i.Platform != "" {
				return i.Platform, true
			}
			return nil, false
		}},
		{Name: "platform_version", Read: func(ctx context.Context) (any, bool) {
			if i := hostInfo(ctx); i != nil && i.PlatformVersion != "" {
				return i.PlatformVersion, true
			}
			return nil, false
		}},
		{Name: "kernel_arch", Read: func(ctx context.Context) (any, bool) {
			if i := hostInfo(ctx); i != nil && i.KernelArch != "" {
				return i.KernelArch, true
			}
			return nil, false
		}},
		{Name: "virtualization", Read: func(ctx context.Context) (any, bool) {
			if i := hostInfo(ctx); i != nil && i.VirtualizationSystem != "" {
				return i.VirtualizationSystem, true
			}
			return nil, false
		}},
		{Name: "cpu_count", Read: func(ctx context.Context) (any, bool) {
			n, err := cpu.CountsWithContext(ctx, true)
			if err != nil || n == 0 {
				return nil, false
			}
			return n, true
		}},
		{Name: "memory_mb", Read: func(ctx context.Context) (any, bool) {
			vm, err := mem.VirtualMemoryWithContext(ctx)
			if err != nil || vm == nil {
				return nil, false
			}
			return int(vm.Total / (1 << 20)), true
		}},
		{Name: "timezone", Read: func(context.Context) (any, bool) {
			zone, _ := time.Now().Zone()
			if zone == "" {
				return nil, false
			}
			return zone, true
		}},
		{Name: "go_version", Read: func(context.Context) (any, bool) {
			return runtime.Version(), true
		}},
	}
}
