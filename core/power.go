package core

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/signalsfoundry/mission-control/model"
)

// RandSource supplies uniform values in [0, 1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// SeededRand is a deterministic RandSource that is safe for concurrent use.
type SeededRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRand returns a PCG-backed source seeded with seed.
func NewSeededRand(seed uint64) *SeededRand {
	return &SeededRand{r: rand.New(rand.NewPCG(seed, seed))}
}

func (s *SeededRand) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// DefaultRand is backed by the goroutine-safe top-level math/rand/v2
// generator.
var DefaultRand RandSource = globalRand{}

const (
	defaultBaselinePower = 80.0
	eclipsePowerFloor    = 40.0
	eclipsePowerDrop     = 30.0
	solarSwing           = 15.0
	powerNoiseSpan       = 5.0 // total width, centred on zero
)

// MaxProfileHours bounds a power profile to one leap year of samples.
const MaxProfileHours = 24 * 366

// PowerProfile predicts one sample per hour for hours hours from start.
// Hours inside an eclipse fall back to battery level; sunlit hours follow a
// sinusoidal solar term. Each sample carries noise in [-2.5, 2.5] drawn from
// rnd, or DefaultRand when rnd is nil. Power is clamped to [0, 100].
func PowerProfile(sat model.Satellite, eclipses []model.EclipsePeriod, start time.Time, hours int, rnd RandSource) ([]model.PowerSample, error) {
	if !finite(sat.Power) {
		return nil, fmt.Errorf("%w: power level must be finite", ErrInvalidGeometry)
	}
	if hours < 0 || hours > MaxProfileHours {
		return nil, fmt.Errorf("%w: hour count must be within [0, %d], got %d", ErrInvalidGeometry, MaxProfileHours, hours)
	}
	if rnd == nil {
		rnd = DefaultRand
	}

	baseline := sat.Power
	if baseline == 0 {
		baseline = defaultBaselinePower
	}

	samples := make([]model.PowerSample, 0, hours)
	for hour := 0; hour < hours; hour++ {
		ts := start.Add(time.Duration(hour) * time.Hour)
		eclipse := InEclipse(eclipses, ts)

		var power float64
		if eclipse {
			power = math.Max(eclipsePowerFloor, baseline-eclipsePowerDrop)
		} else {
			sunAngle := math.Sin(float64(hour) * math.Pi / 12)
			power = math.Min(100, baseline+sunAngle*solarSwing)
		}
		power += (rnd.Float64() - 0.5) * powerNoiseSpan

		samples = append(samples, model.PowerSample{
			Hour:      hour,
			Power:     Clamp(power, 0, 100),
			Eclipse:   eclipse,
			Timestamp: ts,
		})
	}
	return samples, nil
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
