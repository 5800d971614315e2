package coordinator_test

import (
	"context"
	"errors"
	"testing"

	"advantageair2mqtt/aa"
	"advantageair2mqtt/coordinator"
	"advantageair2mqtt/myair"

	"github.com/epiclabs-io/ut"
)

func TestCoordinator(tx *testing.T) {
	t := ut.BeginTest(tx, false)
	defer t.FinishTest()
	ctx := context.Background()

	device := myair.NewMock()
	c := coordinator.New(&coordinator.Config{Device: device})

	var fired []string
	record := func(path string) {
		fired = append(fired, path)
	}
	c.RegisterCallback("ac1/info/mode", record)
	c.RegisterCallback("ac1/zones/z01/state", record)

	// reading before the first poll is a programming error
	panicked := func() (panicked bool) {
		defer func() {
			panicked = recover() != nil
		}()
		c.Data()
		return false
	}()
	t.Assert(panicked, "Data() should panic before the first Poll()")

	// first poll fires every watched field
	err := c.Poll(ctx)
	t.Ok(err)
	t.Equals([]string{"ac1/info/mode", "ac1/zones/z01/state"}, fired)
	t.Equals("cool", c.Data().Aircons["ac1"].Info.Mode)

	// no change, no callbacks
	fired = nil
	err = c.Poll(ctx)
	t.Ok(err)
	t.Equals(0, len(fired))

	// a change on the device fires only the affected callback
	ac := device.State.Aircons["ac1"]
	ac.Info.Mode = "heat"
	device.State.Aircons["ac1"] = ac
	err = c.Poll(ctx)
	t.Ok(err)
	t.Equals([]string{"ac1/info/mode"}, fired)
	t.Equals("heat", c.Data().Aircons["ac1"].Info.Mode)

	// commands update the cache optimistically once acknowledged
	fired = nil
	err = c.Aircon(ctx, aa.Request{
		"ac1": {Zones: map[string]aa.ZoneChange{
			"z01": {State: closePtr()},
		}},
	})
	t.Ok(err)
	t.Equals([]string{"ac1/zones/z01/state"}, fired)
	t.Equals(aa.STATE_CLOSE, c.Data().Aircons["ac1"].Zones["z01"].State)
	t.Equals(1, len(device.Requests))

	// the next poll agrees with the optimistic state, nothing re-fires
	fired = nil
	err = c.Poll(ctx)
	t.Ok(err)
	t.Equals(0, len(fired))

	// TriggerCallbacks replays everything, e.g. after an MQTT reconnect
	fired = nil
	c.TriggerCallbacks()
	t.Equals([]string{"ac1/info/mode", "ac1/zones/z01/state"}, fired)

	// transport errors surface and leave the cache untouched
	fired = nil
	device.FetchErr = errors.New("device unreachable")
	err = c.Poll(ctx)
	t.MustFail(err, "Poll should fail when the device is unreachable")
	t.Equals("heat", c.Data().Aircons["ac1"].Info.Mode)

	device.SendErr = errors.New("device busy")
	err = c.Aircon(ctx, aa.Request{
		"ac1": {Info: &aa.InfoChange{Mode: ventPtr()}},
	})
	t.MustFail(err, "Aircon should fail when the device rejects the command")
	t.Equals("heat", c.Data().Aircons["ac1"].Info.Mode)
	t.Equals(0, len(fired))
}

func closePtr() *string {
	s := aa.STATE_CLOSE
	return &s
}

func ventPtr() *string {
	s := "vent"
	return &s
}
