// Package audio turns an audio stream into beat pulses for the engine.
package audio

// DetectorConfig tunes beat detection. Energies are mean squared sample
// values over one block.
type DetectorConfig struct {
	History     int     // blocks of energy history, about one second
	Sensitivity float64 // a beat needs energy above Sensitivity × average
	MinEnergy   float64 // ignore near-silence
	Refractory  int     // blocks to wait after a beat
	MaxStrength float32
}

func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		History:     43,
		Sensitivity: 1.4,
		MinEnergy:   1e-4,
		Refractory:  10,
		MaxStrength: 8,
	}
}

// Detector flags blocks whose energy jumps above the recent average.
type Detector struct {
	cfg     DetectorConfig
	history []float64
	next    int
	count   int
	sum     float64
	quiet   int
	beats   int
}

func NewDetector(cfg DetectorConfig) *Detector {
	def := DefaultDetectorConfig()
	if cfg.History <= 1 {
		cfg.History = def.History
	}
	if cfg.Sensitivity <= 1 {
		cfg.Sensitivity = def.Sensitivity
	}
	if cfg.MaxStrength <= 0 {
		cfg.MaxStrength = def.MaxStrength
	}
	if cfg.Refractory < 0 {
		cfg.Refractory = 0
	}
	return &Detector{cfg: cfg, history: make([]float64, cfg.History)}
}

// Feed records one block's energy. It reports a beat and its strength,
// the energy ratio over the average minus one, capped at MaxStrength.
func (d *Detector) Feed(energy float64) (bool, float32) {
	avg := 0.0
	if d.count > 0 {
		avg = d.sum / float64(d.count)
	}

	d.sum -= d.history[d.next]
	d.history[d.next] = energy
	d.sum += energy
	d.next = (d.next + 1) % len(d.history)
	if d.count < len(d.history) {
		d.count++
	}

	if d.quiet > 0 {
		d.quiet--
		return false, 0
	}
	// Wait for a full second of history before judging.
	if d.count < len(d.history) || energy < d.cfg.MinEnergy {
		return false, 0
	}
	if avg <= 0 {
		avg = d.cfg.MinEnergy
	}
	ratio := energy / avg
	if ratio < d.cfg.Sensitivity {
		return false, 0
	}
	d.quiet = d.cfg.Refractory
	d.beats++
	strength := float32(ratio - 1)
	if strength > d.cfg.MaxStrength {
		strength = d.cfg.MaxStrength
	}
	return true, strength
}

// Beats is the number of beats reported so far.
func (d *Detector) Beats() int { return d.beats }
