package aa

import (
	"strconv"
)

// SystemData is the state document the wall controller returns from
// /getSystemData. Only the fields the bridge uses are mapped.
type SystemData struct {
	Aircons map[string]Aircon `json:"aircons"`
	System  System            `json:"system"`
}

// System describes the wall controller itself
type System struct {
	RID         string `json:"rid"`
	Name        string `json:"name"`
	MyAppRev    string `json:"myAppRev"`
	TspModel    string `json:"tspModel"`
	NeedsUpdate bool   `json:"needsUpdate"`
}

// Aircon is one ducted AC unit with its zones
type Aircon struct {
	Info  AcInfo              `json:"info"`
	Zones map[string]ZoneInfo `json:"zones"`
}

// AcInfo is the control state of an AC unit
type AcInfo struct {
	Name              string  `json:"name"`
	State             string  `json:"state"`
	Mode              string  `json:"mode"`
	Fan               string  `json:"fan"`
	SetTemp           float64 `json:"setTemp"`
	MyAutoModeEnabled bool    `json:"myAutoModeEnabled"`
	CountDownToOff    int     `json:"countDownToOff"`
	CountDownToOn     int     `json:"countDownToOn"`
}

// ZoneInfo is the state of one zone damper/sensor group.
// Type 0 means the zone has no temperature control, only a damper.
type ZoneInfo struct {
	Name         string  `json:"name"`
	Number       int     `json:"number"`
	State        string  `json:"state"`
	Type         int     `json:"type"`
	SetTemp      float64 `json:"setTemp"`
	MeasuredTemp float64 `json:"measuredTemp"`
	Value        int     `json:"value"`
	RSSI         int     `json:"rssi"`
}

// Request is a partial change document in the shape /setAircon expects:
// {"ac1":{"info":{"state":"on"}}} or {"ac1":{"zones":{"z01":{"setTemp":24}}}}
type Request map[string]AcChange

// AcChange alters an AC unit's own settings and/or some of its zones
type AcChange struct {
	Info  *InfoChange           `json:"info,omitempty"`
	Zones map[string]ZoneChange `json:"zones,omitempty"`
}

// InfoChange alters fields of AcInfo. Nil fields are left untouched.
type InfoChange struct {
	State   *string  `json:"state,omitempty"`
	Mode    *string  `json:"mode,omitempty"`
	Fan     *string  `json:"fan,omitempty"`
	SetTemp *float64 `json:"setTemp,omitempty"`
}

// ZoneChange alters fields of ZoneInfo. Nil fields are left untouched.
type ZoneChange struct {
	State   *string  `json:"state,omitempty"`
	SetTemp *float64 `json:"setTemp,omitempty"`
}

func strPtr(s string) *string    { return &s }
func tempPtr(t float64) *float64 { return &t }

// Clone returns a deep copy of the state document
func (sd *SystemData) Clone() *SystemData {
	out := &SystemData{
		Aircons: make(map[string]Aircon, len(sd.Aircons)),
		System:  sd.System,
	}
	for acKey, ac := range sd.Aircons {
		zones := make(map[string]ZoneInfo, len(ac.Zones))
		for zoneKey, zone := range ac.Zones {
			zones[zoneKey] = zone
		}
		out.Aircons[acKey] = Aircon{Info: ac.Info, Zones: zones}
	}
	return out
}

// Apply folds a change request into the state document. Unknown AC or zone
// keys are ignored, matching the controller's behavior.
func (sd *SystemData) Apply(req Request) {
	for acKey, change := range req {
		ac, ok := sd.Aircons[acKey]
		if !ok {
			continue
		}
		if change.Info != nil {
			if change.Info.State != nil {
				ac.Info.State = *change.Info.State
			}
			if change.Info.Mode != nil {
				ac.Info.Mode = *change.Info.Mode
			}
			if change.Info.Fan != nil {
				ac.Info.Fan = *change.Info.Fan
			}
			if change.Info.SetTemp != nil {
				ac.Info.SetTemp = *change.Info.SetTemp
			}
		}
		for zoneKey, zc := range change.Zones {
			zone, ok := ac.Zones[zoneKey]
			if !ok {
				continue
			}
			if zc.State != nil {
				zone.State = *zc.State
			}
			if zc.SetTemp != nil {
				zone.SetTemp = *zc.SetTemp
			}
			ac.Zones[zoneKey] = zone
		}
		sd.Aircons[acKey] = ac
	}
}

// Flatten renders the document as path→value pairs so the coordinator can
// diff consecutive polls and fire change callbacks per field
func (sd *SystemData) Flatten() map[string]string {
	m := make(map[string]string)
	for acKey, ac := range sd.Aircons {
		info := ac.Info
		m[acKey+"/info/name"] = info.Name
		m[acKey+"/info/state"] = info.State
		m[acKey+"/info/mode"] = info.Mode
		m[acKey+"/info/fan"] = info.Fan
		m[acKey+"/info/setTemp"] = formatTemp(info.SetTemp)
		m[acKey+"/info/myAutoModeEnabled"] = strconv.FormatBool(info.MyAutoModeEnabled)
		for zoneKey, zone := range ac.Zones {
			p := acKey + "/zones/" + zoneKey
			m[p+"/name"] = zone.Name
			m[p+"/state"] = zone.State
			m[p+"/setTemp"] = formatTemp(zone.SetTemp)
			m[p+"/measuredTemp"] = formatTemp(zone.MeasuredTemp)
			m[p+"/value"] = strconv.Itoa(zone.Value)
		}
	}
	return m
}

func formatTemp(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64)
}
