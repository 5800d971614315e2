package myair

import (
	"context"
	"errors"

	"advantageair2mqtt/aa"
)

// Mock is an in-memory stand-in for a wall controller. Change requests are
// applied to its state so tests can drive the bridge end to end.
type Mock struct {
	State    *aa.SystemData
	FetchErr error
	SendErr  error
	Requests []aa.Request
}

// NewMock returns a controller with one AC unit and four zones, two with
// temperature control, one damper-only, one closed
func NewMock() *Mock {
	return &Mock{
		State: &aa.SystemData{
			System: aa.System{
				RID:      "uniqueid",
				Name:     "testsystem",
				MyAppRev: "10.20",
				TspModel: "AA108",
			},
			Aircons: map[string]aa.Aircon{
				"ac1": {
					Info: aa.AcInfo{
						Name:    "AC One",
						State:   aa.STATE_ON,
						Mode:    "cool",
						Fan:     "high",
						SetTemp: 24,
					},
					Zones: map[string]aa.ZoneInfo{
						"z01": {
							Name:         "Living",
							Number:       1,
							State:        aa.STATE_OPEN,
							Type:         1,
							SetTemp:      24,
							MeasuredTemp: 25.5,
							Value:        100,
							RSSI:         40,
						},
						"z02": {
							Name:         "Bedroom",
							Number:       2,
							State:        aa.STATE_CLOSE,
							Type:         1,
							SetTemp:      22,
							MeasuredTemp: 23,
							Value:        0,
							RSSI:         52,
						},
						"z03": {
							Name:   "Garage",
							Number: 3,
							State:  aa.STATE_OPEN,
							Type:   0,
							Value:  60,
						},
					},
				},
			},
		},
	}
}

func (m *Mock) GetSystemData(ctx context.Context) (*aa.SystemData, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.State.Clone(), nil
}

func (m *Mock) SetAircon(ctx context.Context, req aa.Request) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	for acKey := range req {
		if _, ok := m.State.Aircons[acKey]; !ok {
			return errors.New("unknown aircon " + acKey)
		}
	}
	m.Requests = append(m.Requests, req)
	m.State.Apply(req)
	return nil
}
