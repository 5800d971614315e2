package aa

import (
	"context"
	"math"
)

// Coordinator supplies the cached controller state and the command dispatch
// path. Implemented by the coordinator package; mocked in tests.
type Coordinator interface {
	Data() *SystemData
	RegisterCallback(path string, callback func(path string))
	TriggerCallbacks()
	Poll(ctx context.Context) error
	Aircon(ctx context.Context, req Request) error
}

type AcConfig struct {
	Key         string
	Coordinator Coordinator
}

// Ac is a driver for one ducted AC unit. Getters read the coordinator's
// cached state, setters dispatch change requests through it.
type Ac struct {
	AcConfig
	OnHvacModeChange   func(hvacMode string)
	OnFanModeChange    func(fanMode string)
	OnTargetTempChange func(targetTemp float64)
}

// NewAc creates a driver for the AC unit under the given key and hooks its
// change callbacks into the coordinator
func NewAc(config *AcConfig) *Ac {
	a := &Ac{
		AcConfig: *config,
	}
	hvacModeChanged := func(path string) {
		if a.OnHvacModeChange != nil {
			a.OnHvacModeChange(a.HvacMode())
		}
	}
	// state and mode together determine the HVAC mode
	a.Coordinator.RegisterCallback(a.Key+"/info/state", hvacModeChanged)
	a.Coordinator.RegisterCallback(a.Key+"/info/mode", hvacModeChanged)
	a.Coordinator.RegisterCallback(a.Key+"/info/fan", func(path string) {
		if a.OnFanModeChange != nil {
			a.OnFanModeChange(a.FanMode())
		}
	})
	a.Coordinator.RegisterCallback(a.Key+"/info/setTemp", func(path string) {
		if a.OnTargetTempChange != nil {
			a.OnTargetTempChange(a.TargetTemperature())
		}
	})
	return a
}

func (a *Ac) info() AcInfo {
	return a.Coordinator.Data().Aircons[a.Key].Info
}

// Name returns the unit name configured on the wall controller
func (a *Ac) Name() string {
	return a.info().Name
}

// HvacMode returns the current Home Assistant HVAC mode
func (a *Ac) HvacMode() string {
	info := a.info()
	return HassHvacMode(info.State, info.Mode)
}

// HvacModes returns the modes this unit supports. MyAuto units also offer
// "auto".
func (a *Ac) HvacModes() []string {
	modes := []string{HVAC_MODE_OFF, HVAC_MODE_COOL, HVAC_MODE_HEAT, HVAC_MODE_FAN_ONLY, HVAC_MODE_DRY}
	if a.info().MyAutoModeEnabled {
		modes = append(modes, HVAC_MODE_AUTO)
	}
	return modes
}

// FanMode returns the current Home Assistant fan mode
func (a *Ac) FanMode() string {
	return HassFanMode(a.info().Fan)
}

// TargetTemperature returns the unit setpoint in °C
func (a *Ac) TargetTemperature() float64 {
	return a.info().SetTemp
}

// TurnOn switches the unit on in its last mode
func (a *Ac) TurnOn(ctx context.Context) error {
	return a.Coordinator.Aircon(ctx, Request{
		a.Key: {Info: &InfoChange{State: strPtr(STATE_ON)}},
	})
}

// TurnOff switches the unit off
func (a *Ac) TurnOff(ctx context.Context) error {
	return a.Coordinator.Aircon(ctx, Request{
		a.Key: {Info: &InfoChange{State: strPtr(STATE_OFF)}},
	})
}

// SetHvacMode sets the Home Assistant HVAC mode. "off" turns the unit off,
// any other mode turns it on in the corresponding controller mode.
func (a *Ac) SetHvacMode(ctx context.Context, hvacMode string) error {
	if hvacMode == HVAC_MODE_OFF {
		return a.TurnOff(ctx)
	}
	mode, err := VendorMode(hvacMode)
	if err != nil {
		return err
	}
	return a.Coordinator.Aircon(ctx, Request{
		a.Key: {Info: &InfoChange{
			State: strPtr(STATE_ON),
			Mode:  strPtr(mode),
		}},
	})
}

// SetFanMode sets the Home Assistant fan mode
func (a *Ac) SetFanMode(ctx context.Context, fanMode string) error {
	fan, err := VendorFanMode(fanMode)
	if err != nil {
		return err
	}
	return a.Coordinator.Aircon(ctx, Request{
		a.Key: {Info: &InfoChange{Fan: strPtr(fan)}},
	})
}

// SetTargetTemperature sets the unit setpoint, clamped to the controller's
// whole-degree 16–32 °C range
func (a *Ac) SetTargetTemperature(ctx context.Context, targetTemp float64) error {
	return a.Coordinator.Aircon(ctx, Request{
		a.Key: {Info: &InfoChange{SetTemp: tempPtr(clampTemp(targetTemp))}},
	})
}

func clampTemp(t float64) float64 {
	t = math.Round(t)
	if t < MIN_TEMP {
		return MIN_TEMP
	}
	if t > MAX_TEMP {
		return MAX_TEMP
	}
	return t
}
