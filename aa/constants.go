package aa

import (
	"errors"
	"fmt"

	"advantageair2mqtt/bimap"
)

// States the controller reports for AC units and zones
const STATE_ON = "on"
const STATE_OFF = "off"
const STATE_OPEN = "open"
const STATE_CLOSE = "close"

// Home Assistant HVAC modes
const HVAC_MODE_OFF = "off"
const HVAC_MODE_COOL = "cool"
const HVAC_MODE_HEAT = "heat"
const HVAC_MODE_FAN_ONLY = "fan_only"
const HVAC_MODE_DRY = "dry"
const HVAC_MODE_AUTO = "auto"
const HVAC_MODE_HEAT_COOL = "heat_cool"

// Home Assistant fan modes
const FAN_AUTO = "auto"
const FAN_LOW = "low"
const FAN_MEDIUM = "medium"
const FAN_HIGH = "high"

// Setpoint limits of the wall controller, °C
const MIN_TEMP = 16
const MAX_TEMP = 32

// AcModes maps the controller's mode vocabulary to Home Assistant HVAC modes.
// "myauto" is only offered on units that report myAutoModeEnabled.
var AcModes = bimap.New(map[interface{}]interface{}{
	"heat":   HVAC_MODE_HEAT,
	"cool":   HVAC_MODE_COOL,
	"vent":   HVAC_MODE_FAN_ONLY,
	"dry":    HVAC_MODE_DRY,
	"myauto": HVAC_MODE_AUTO,
})

// FanModes maps the controller's fan vocabulary to Home Assistant fan modes
var FanModes = bimap.New(map[interface{}]interface{}{
	"autoAA": FAN_AUTO,
	"low":    FAN_LOW,
	"medium": FAN_MEDIUM,
	"high":   FAN_HIGH,
})

// FanSpeeds gives the nominal duty percentage for each fixed fan mode
var FanSpeeds = map[string]int{
	FAN_LOW:    30,
	FAN_MEDIUM: 60,
	FAN_HIGH:   100,
}

func init() {
	AcModes.MakeImmutable()
	FanModes.MakeImmutable()
}

var ErrUnknownMode = errors.New("unknown HVAC mode")
var ErrUnknownFanMode = errors.New("unknown fan mode")

// HassHvacMode translates a controller state/mode pair into the Home
// Assistant HVAC mode. A unit that is switched off reports its last mode,
// so state wins.
func HassHvacMode(state string, mode string) string {
	if state != STATE_ON {
		return HVAC_MODE_OFF
	}
	m, ok := AcModes.Get(mode)
	if !ok {
		return HVAC_MODE_OFF
	}
	return m.(string)
}

// VendorMode translates a Home Assistant HVAC mode into the controller's
// vocabulary. HVAC_MODE_OFF has no vendor mode, it is a state change.
func VendorMode(hvacMode string) (string, error) {
	m, ok := AcModes.GetInverse(hvacMode)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, hvacMode)
	}
	return m.(string), nil
}

// HassFanMode translates a controller fan setting into the Home Assistant
// fan mode
func HassFanMode(fan string) string {
	m, ok := FanModes.Get(fan)
	if !ok {
		return ""
	}
	return m.(string)
}

// VendorFanMode translates a Home Assistant fan mode into the controller's
// vocabulary
func VendorFanMode(fanMode string) (string, error) {
	m, ok := FanModes.GetInverse(fanMode)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFanMode, fanMode)
	}
	return m.(string), nil
}
