package calibrate

import (
	"fmt"
	"runtime"
	"time"

	"github.com/yourusername/dupr-insight/internal/config"
)

// Config holds the grid-search bounds and resolution for one calibration run.
// Steps count candidates: both interval endpoints are included, so KSteps=64
// over [1,64] yields unit steps and ScaleSteps=10 over [100,1000] yields
// steps of 100.
type Config struct {
	KMin       float64
	KMax       float64
	KSteps     int
	ScaleMin   float64
	ScaleMax   float64
	ScaleSteps int
	Metric     Metric
	Timeout    time.Duration
	Workers    int
}

// DefaultConfig returns the documented defaults: K in [1,64] with 64
// candidates, scale in [100,1000] with 10 candidates, outcome MAE, no
// timeout, one worker per CPU.
func DefaultConfig() Config {
	return Config{
		KMin:       1,
		KMax:       64,
		KSteps:     64,
		ScaleMin:   100,
		ScaleMax:   1000,
		ScaleSteps: 10,
		Metric:     MetricOutcomeMAE,
	}
}

// FromConfig converts app config to a calibration config
func FromConfig(cfg *config.CalibrationConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("calibration config is required")
	}

	c := Config{
		KMin:       cfg.KMin,
		KMax:       cfg.KMax,
		KSteps:     cfg.KSteps,
		ScaleMin:   cfg.ScaleMin,
		ScaleMax:   cfg.ScaleMax,
		ScaleSteps: cfg.ScaleSteps,
		Metric:     Metric(cfg.ErrorMetric),
		Timeout:    time.Duration(cfg.TimeoutMs) * time.Millisecond,
		Workers:    cfg.Workers,
	}

	return c, c.Validate()
}

// Validate validates calibration config parameters
func (c Config) Validate() error {
	if c.KSteps <= 0 || c.ScaleSteps <= 0 {
		return fmt.Errorf("grid steps must be positive")
	}
	if c.KMin <= 0 || c.KMin > c.KMax {
		return fmt.Errorf("K bounds must satisfy 0 < k_min <= k_max")
	}
	if c.ScaleMin <= 0 || c.ScaleMin > c.ScaleMax {
		return fmt.Errorf("scale bounds must satisfy 0 < scale_min <= scale_max")
	}
	if c.KSteps > 1 && c.KMin == c.KMax {
		return fmt.Errorf("k_steps > 1 requires k_min < k_max")
	}
	if c.ScaleSteps > 1 && c.ScaleMin == c.ScaleMax {
		return fmt.Errorf("scale_steps > 1 requires scale_min < scale_max")
	}
	switch c.Metric {
	case MetricOutcomeMAE, MetricDeltaMAE:
	case "":
		return fmt.Errorf("error metric is required")
	default:
		return fmt.Errorf("unknown error metric %q", c.Metric)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// workerCount resolves the configured worker count, defaulting to GOMAXPROCS
// and never exceeding the number of scale rows to keep workers busy.
func (c Config) workerCount() int {
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > c.ScaleSteps {
		workers = c.ScaleSteps
	}
	return workers
}

// kValues materialises the K candidate grid, endpoints inclusive.
func (c Config) kValues() []float64 {
	return gridValues(c.KMin, c.KMax, c.KSteps)
}

// scaleValues materialises the scale candidate grid, endpoints inclusive.
func (c Config) scaleValues() []float64 {
	return gridValues(c.ScaleMin, c.ScaleMax, c.ScaleSteps)
}

func gridValues(min, max float64, steps int) []float64 {
	values := make([]float64, steps)
	if steps == 1 {
		values[0] = min
		return values
	}
	width := (max - min) / float64(steps-1)
	for i := range values {
		values[i] = min + float64(i)*width
	}
	// Pin the last candidate to the exact bound so the invariant
	// "K and scale lie within the configured bounds" holds bit-exactly.
	values[steps-1] = max
	return values
}
