package quality

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hero-engine/core"
)

// DefaultProbeTimeout bounds how long Probe waits for the host surface.
const DefaultProbeTimeout = 2 * time.Second

// MinHighTextureSize is the smallest max-texture-size that allows anything
// above Low.
const MinHighTextureSize = 4096

// CapabilityInfo is what a host surface reports about its GPU.
type CapabilityInfo struct {
	Renderer       string
	Vendor         string
	Version        string
	MaxTextureSize int
}

// HostSurface answers capability queries. Implementations may block.
type HostSurface interface {
	Info() (CapabilityInfo, error)
}

// HostSurfaceFunc adapts a function to HostSurface.
type HostSurfaceFunc func() (CapabilityInfo, error)

func (f HostSurfaceFunc) Info() (CapabilityInfo, error) { return f() }

// ErrNoSurface is reported when no host surface is available.
var ErrNoSurface = errors.New("no host surface")

type rule struct {
	match string
	tier  Tier
}

// Checked in order; first match wins. Renderer and vendor strings are
// lower-cased before matching.
var rules = []rule{
	{"llvmpipe", TierLow},
	{"softpipe", TierLow},
	{"swiftshader", TierLow},
	{"software", TierLow},
	{"mali-4", TierLow},
	{"adreno (tm) 3", TierLow},
	{"powervr", TierLow},
	{"intel(r) hd graphics", TierLow},
	{"geforce rtx", TierHigh},
	{"geforce gtx 10", TierHigh},
	{"radeon rx", TierHigh},
	{"radeon pro", TierHigh},
	{"apple m", TierHigh},
	{"quadro", TierHigh},
	{"intel(r) iris", TierMedium},
	{"intel(r) uhd", TierMedium},
	{"adreno", TierMedium},
	{"mali", TierMedium},
	{"geforce", TierMedium},
	{"radeon", TierMedium},
}

// Classify maps reported capabilities to a tier. Unknown hardware is Medium;
// small texture limits force Low.
func Classify(info CapabilityInfo) Tier {
	if info.MaxTextureSize > 0 && info.MaxTextureSize < MinHighTextureSize {
		return TierLow
	}
	name := strings.ToLower(info.Renderer + " " + info.Vendor)
	for _, r := range rules {
		if strings.Contains(name, r.match) {
			return r.tier
		}
	}
	return TierMedium
}

// Probe queries surface and classifies the result. It never fails: a nil
// surface, an error, a panic in the surface, or exceeding timeout all yield
// TierLow.
func Probe(ctx context.Context, surface HostSurface, timeout time.Duration) Tier {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	info, err := query(ctx, surface, timeout)
	if err != nil {
		core.Logger().Warn("capability probe failed, using low tier", "err", err)
		return TierLow
	}
	tier := Classify(info)
	core.Logger().Info("capability probe",
		"renderer", info.Renderer,
		"vendor", info.Vendor,
		"maxTexture", info.MaxTextureSize,
		"tier", tier)
	return tier
}

type probeResult struct {
	info CapabilityInfo
	err  error
}

func query(ctx context.Context, surface HostSurface, timeout time.Duration) (CapabilityInfo, error) {
	if surface == nil {
		return CapabilityInfo{}, ErrNoSurface
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan probeResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- probeResult{err: fmt.Errorf("host surface panicked: %v", r)}
			}
		}()
		info, err := surface.Info()
		done <- probeResult{info: info, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return CapabilityInfo{}, fmt.Errorf("query host surface: %w", res.err)
		}
		return res.info, nil
	case <-ctx.Done():
		return CapabilityInfo{}, fmt.Errorf("query host surface: %w", ctx.Err())
	}
}
