package haptic

import "math"

// Interpolator maps a device's node list and the current input cloud to one
// intensity per device node, each clamped to [0,1]. Implementations are
// carried as part of a device's factors and selected once per device
// lifetime (spec.md §4.1).
type Interpolator interface {
	Interpolate(deviceNodes []Node, inputs []*InputNode) []float32
}

// GaussianConfig holds the Gaussian-with-snap algorithm's tunable
// parameters, as described in spec.md §4.1.
type GaussianConfig struct {
	// Merge is the snap radius: a device node within Merge meters of an
	// interacting input node binds to it exactly, at full intensity.
	Merge float32
	// Falloff is the distance (meters) at which the Gaussian kernel has
	// decayed to 5% of its peak.
	Falloff float32
	// Cutoff is the distance beyond which an input node contributes
	// nothing to the smooth pass.
	Cutoff float32
}

// Gaussian is the default interpolation algorithm: an exact "snap" pass for
// very close device/input pairs, followed by a Gaussian-weighted blend of
// everything else within Cutoff.
type Gaussian struct {
	cfg   GaussianConfig
	kappa float32 // 2*sigma^2
	// OnOverflow is called when the smooth pass produces a result above
	// 1.0 before it gets clamped (a numerical or configuration error).
	// Optional; nil is treated as a no-op.
	OnOverflow func(node Node, result float32)
}

// NewGaussian derives sigma/kappa from cfg.Falloff and returns a ready
// Gaussian interpolator.
func NewGaussian(cfg GaussianConfig) *Gaussian {
	g := &Gaussian{cfg: cfg}
	g.setFalloff(cfg.Falloff)
	return g
}

func (g *Gaussian) setFalloff(falloff float32) {
	sigma := falloff / (-2.0 * float32(math.Log(0.05)))
	g.kappa = 2 * sigma * sigma
	g.cfg.Falloff = falloff
}

func (g *Gaussian) kernel(distance float32) float32 {
	return float32(math.Exp(float64(-distance * distance / g.kappa)))
}

// Interpolate implements Interpolator.
func (g *Gaussian) Interpolate(deviceNodes []Node, inputs []*InputNode) []float32 {
	out := make([]float32, len(deviceNodes))

	claimedInput := make([]bool, len(inputs))
	claimedOutput := make([]bool, len(deviceNodes))

	// Snap pass: first interacting input within Merge distance claims the
	// device node, in device-node order, at the input's raw intensity.
	for outIdx, node := range deviceNodes {
		for inIdx, in := range inputs {
			if claimedInput[inIdx] {
				continue
			}
			if !node.Interacts(in.Node) {
				continue
			}
			dist := node.Dist(in.Node)
			if dist <= g.cfg.Merge {
				claimedInput[inIdx] = true
				claimedOutput[outIdx] = true
				out[outIdx] = in.Intensity()
				break
			}
		}
	}

	// Smooth pass over everything unclaimed.
	for outIdx, node := range deviceNodes {
		if claimedOutput[outIdx] {
			continue
		}
		out[outIdx] = g.singleNode(node, inputs, claimedInput)
	}

	return out
}

func (g *Gaussian) singleNode(node Node, inputs []*InputNode, claimedInput []bool) float32 {
	var numerator, denominator float32

	for inIdx, in := range inputs {
		if claimedInput[inIdx] {
			continue
		}
		if !node.Interacts(in.Node) {
			continue
		}
		dist := node.Dist(in.Node)
		if dist != dist { // NaN guard
			continue
		}
		if dist >= g.cfg.Cutoff {
			continue
		}
		weight := g.kernel(dist)
		numerator += weight * in.Intensity()
		denominator += weight
	}

	if denominator <= 0 {
		return 0
	}
	result := numerator / denominator
	if result > 1 {
		if g.OnOverflow != nil {
			g.OnOverflow(node, result)
		}
		return 1
	}
	return result
}
