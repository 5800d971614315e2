package aa

import (
	"context"
	"math"

	average "github.com/RobinUS2/golang-moving-average"
)

// tempWindow is the number of poll samples averaged for the reported
// zone temperature
const tempWindow = 30

type ZoneConfig struct {
	AcKey       string
	Key         string
	Coordinator Coordinator
}

// Zone is a driver for one zone under an AC unit.
// Invokes callbacks when the underlying fields change, reads the cached
// state to answer getters and dispatches change requests on set* methods.
type Zone struct {
	ZoneConfig
	OnStateChange       func(state string)
	OnTargetTempChange  func(targetTemp float64)
	OnCurrentTempChange func(currentTemp float64)
	OnDamperChange      func(percent int)
	lastTemp            float64
	temp                *average.MovingAverage
}

// NewZone creates a driver for the given zone and hooks its change
// callbacks into the coordinator
func NewZone(config *ZoneConfig) *Zone {
	z := &Zone{
		ZoneConfig: *config,
		temp:       average.New(tempWindow),
	}
	z.Coordinator.RegisterCallback(z.path("state"), func(path string) {
		if z.OnStateChange != nil {
			z.OnStateChange(z.State())
		}
	})
	z.Coordinator.RegisterCallback(z.path("setTemp"), func(path string) {
		if z.OnTargetTempChange != nil {
			z.OnTargetTempChange(z.TargetTemperature())
		}
	})
	z.Coordinator.RegisterCallback(z.path("value"), func(path string) {
		if z.OnDamperChange != nil {
			z.OnDamperChange(z.DamperPercent())
		}
	})
	return z
}

func (z *Zone) path(field string) string {
	return z.AcKey + "/zones/" + z.Key + "/" + field
}

func (z *Zone) zone() ZoneInfo {
	return z.Coordinator.Data().Aircons[z.AcKey].Zones[z.Key]
}

// Name returns the zone name configured on the wall controller
func (z *Zone) Name() string {
	return z.zone().Name
}

// IsControllable reports whether the zone has temperature control.
// Type 0 zones are plain dampers and get no climate entity.
func (z *Zone) IsControllable() bool {
	return z.zone().Type != 0
}

// State returns the vendor damper state, open or close
func (z *Zone) State() string {
	return z.zone().State
}

// HvacMode maps the damper state onto a Home Assistant HVAC mode
func (z *Zone) HvacMode() string {
	if z.State() == STATE_OPEN {
		return HVAC_MODE_HEAT_COOL
	}
	return HVAC_MODE_OFF
}

// DamperPercent returns how far the damper is open
func (z *Zone) DamperPercent() int {
	return z.zone().Value
}

// CurrentTemperature returns the last measured zone temperature
func (z *Zone) CurrentTemperature() float64 {
	return z.zone().MeasuredTemp
}

// AverageCurrentTemperature returns the measured temperature smoothed over
// the sampling window, rounded to one decimal
func (z *Zone) AverageCurrentTemperature() float64 {
	return math.Round(z.temp.Avg()*10) / 10
}

// SampleTemperature adds the current measurement to the smoothing window
// and fires OnCurrentTempChange when the smoothed value moves
func (z *Zone) SampleTemperature() {
	z.temp.Add(z.CurrentTemperature())
	if z.OnCurrentTempChange == nil {
		return
	}
	t := z.AverageCurrentTemperature()
	if t != z.lastTemp {
		z.lastTemp = t
		z.OnCurrentTempChange(t)
	}
}

// TargetTemperature returns the zone setpoint in °C
func (z *Zone) TargetTemperature() float64 {
	return z.zone().SetTemp
}

// TurnOn opens the zone
func (z *Zone) TurnOn(ctx context.Context) error {
	return z.setState(ctx, STATE_OPEN)
}

// TurnOff closes the zone
func (z *Zone) TurnOff(ctx context.Context) error {
	return z.setState(ctx, STATE_CLOSE)
}

// SetHvacMode closes the zone for "off" and opens it for any other mode
func (z *Zone) SetHvacMode(ctx context.Context, hvacMode string) error {
	if hvacMode == HVAC_MODE_OFF {
		return z.TurnOff(ctx)
	}
	return z.TurnOn(ctx)
}

// SetTargetTemperature sets the zone setpoint, clamped to the controller's
// whole-degree 16–32 °C range
func (z *Zone) SetTargetTemperature(ctx context.Context, targetTemp float64) error {
	return z.Coordinator.Aircon(ctx, Request{
		z.AcKey: {Zones: map[string]ZoneChange{
			z.Key: {SetTemp: tempPtr(clampTemp(targetTemp))},
		}},
	})
}

func (z *Zone) setState(ctx context.Context, state string) error {
	return z.Coordinator.Aircon(ctx, Request{
		z.AcKey: {Zones: map[string]ZoneChange{
			z.Key: {State: strPtr(state)},
		}},
	})
}
