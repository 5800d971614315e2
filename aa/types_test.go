package aa_test

import (
	"testing"

	"advantageair2mqtt/aa"
	"advantageair2mqtt/myair"

	"github.com/epiclabs-io/ut"
)

func TestCloneIsDeep(tx *testing.T) {
	t := ut.BeginTest(tx, false)
	defer t.FinishTest()

	original := myair.NewMock().State
	clone := original.Clone()

	zone := clone.Aircons["ac1"].Zones["z01"]
	zone.State = aa.STATE_CLOSE
	clone.Aircons["ac1"].Zones["z01"] = zone

	t.Equals(aa.STATE_OPEN, original.Aircons["ac1"].Zones["z01"].State)
	t.Equals(aa.STATE_CLOSE, clone.Aircons["ac1"].Zones["z01"].State)
}

func TestApply(tx *testing.T) {
	t := ut.BeginTest(tx, false)
	defer t.FinishTest()

	sd := myair.NewMock().State
	state := aa.STATE_OFF
	fan := "low"
	temp := 21.0

	sd.Apply(aa.Request{
		"ac1": {
			Info: &aa.InfoChange{State: &state, Fan: &fan},
			Zones: map[string]aa.ZoneChange{
				"z01": {SetTemp: &temp},
			},
		},
	})

	info := sd.Aircons["ac1"].Info
	t.Equals(aa.STATE_OFF, info.State)
	t.Equals("low", info.Fan)
	t.Equals("cool", info.Mode) // untouched fields survive
	t.Equals(21.0, sd.Aircons["ac1"].Zones["z01"].SetTemp)

	// unknown targets are ignored, like the controller does
	sd.Apply(aa.Request{
		"ac9": {Info: &aa.InfoChange{State: &state}},
		"ac1": {Zones: map[string]aa.ZoneChange{"z99": {SetTemp: &temp}}},
	})
	t.Equals(aa.STATE_OFF, sd.Aircons["ac1"].Info.State)
}

func TestFlatten(tx *testing.T) {
	t := ut.BeginTest(tx, false)
	defer t.FinishTest()

	flat := myair.NewMock().State.Flatten()

	t.Equals("cool", flat["ac1/info/mode"])
	t.Equals("on", flat["ac1/info/state"])
	t.Equals("24", flat["ac1/info/setTemp"])
	t.Equals("false", flat["ac1/info/myAutoModeEnabled"])
	t.Equals("open", flat["ac1/zones/z01/state"])
	t.Equals("25.5", flat["ac1/zones/z01/measuredTemp"])
	t.Equals("100", flat["ac1/zones/z01/value"])
	t.Equals("Bedroom", flat["ac1/zones/z02/name"])

	_, ok := flat["ac1/zones/z99/state"]
	t.Assert(!ok, "no entries for zones that do not exist")
}
