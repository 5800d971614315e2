package aa

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"
)

// MqttClient is the broker connection the bridge publishes through
type MqttClient interface {
	Publish(topic string, qos byte, retained bool, payload string) error
	Subscribe(topic string, callback func(message string)) error
}

type Config struct {
	NodeName          string // topic segment identifying this controller
	TopicPrefix       string
	HassPrefix        string
	AvailabilityTopic string
	CommandTimeout    time.Duration
	Mqtt              MqttClient
	Coordinator       Coordinator
}

// Bridge exposes every AC unit and zone of one wall controller as Home
// Assistant entities over MQTT
type Bridge struct {
	Config
	acs   []*Ac
	zones []*Zone
}

// NewBridge creates a bridge with the supplied configuration
func NewBridge(config *Config) *Bridge {
	b := &Bridge{
		Config: *config,
	}
	if b.CommandTimeout == 0 {
		b.CommandTimeout = 10 * time.Second
	}
	return b
}

// Start polls the controller once, builds the entities it reports,
// announces them to Home Assistant and publishes their current state
func (b *Bridge) Start(ctx context.Context) error {
	err := b.Coordinator.Poll(ctx)
	if err != nil {
		return err
	}
	data := b.Coordinator.Data()

	for _, acKey := range sortedKeys(data.Aircons) {
		ac := data.Aircons[acKey]
		b.addAc(acKey)
		for _, zoneKey := range sortedKeys(ac.Zones) {
			b.addZone(acKey, zoneKey)
		}
	}

	b.Coordinator.TriggerCallbacks()
	b.sampleTemperatures()

	if b.AvailabilityTopic != "" {
		b.publish(b.AvailabilityTopic, "online")
	}
	b.publish(b.getSysTopic("rid"), data.System.RID)
	b.publish(b.getSysTopic("name"), data.System.Name)
	b.publish(b.getSysTopic("appRev"), data.System.MyAppRev)
	b.publish(b.getSysTopic("model"), data.System.TspModel)
	b.publish(b.getSysTopic("needsUpdate"), fmt.Sprintf("%t", data.System.NeedsUpdate))
	return nil
}

// Tick refreshes the controller state and feeds the temperature smoothers
func (b *Bridge) Tick(ctx context.Context) {
	err := b.Coordinator.Poll(ctx)
	if err != nil {
		log.Printf("Error polling controller: %s\n", err)
		return
	}
	b.sampleTemperatures()
}

func (b *Bridge) addAc(acKey string) {
	ac := NewAc(&AcConfig{
		Key:         acKey,
		Coordinator: b.Coordinator,
	})
	b.acs = append(b.acs, ac)

	modeTopic := b.getAcTopic(acKey, "mode")
	modeSetTopic := modeTopic + "/set"
	fanTopic := b.getAcTopic(acKey, "fanMode")
	fanSetTopic := fanTopic + "/set"
	targetTempTopic := b.getAcTopic(acKey, "targetTemp")
	targetTempSetTopic := targetTempTopic + "/set"

	ac.OnHvacModeChange = func(hvacMode string) {
		b.publish(modeTopic, hvacMode)
	}
	ac.OnFanModeChange = func(fanMode string) {
		b.publish(fanTopic, fanMode)
		if speed, ok := FanSpeeds[fanMode]; ok {
			b.publish(b.getAcTopic(acKey, "fanSpeed"), strconv.Itoa(speed))
		}
	}
	ac.OnTargetTempChange = func(targetTemp float64) {
		b.publish(targetTempTopic, formatTemp(targetTemp))
	}

	b.subscribe(modeSetTopic, func(ctx context.Context, message string) error {
		return ac.SetHvacMode(ctx, message)
	})
	b.subscribe(fanSetTopic, func(ctx context.Context, message string) error {
		return ac.SetFanMode(ctx, message)
	})
	b.subscribe(targetTempSetTopic, func(ctx context.Context, message string) error {
		targetTemp, err := strconv.ParseFloat(message, 64)
		if err != nil {
			return err
		}
		return ac.SetTargetTemperature(ctx, targetTemp)
	})

	name := ac.Name()
	if name == "" {
		name = acKey
	}
	config := map[string]interface{}{
		"name":                      name,
		"unique_id":                 b.uniqueID(acKey),
		"modes":                     ac.HvacModes(),
		"mode_state_topic":          modeTopic,
		"mode_command_topic":        modeSetTopic,
		"fan_modes":                 []string{FAN_AUTO, FAN_LOW, FAN_MEDIUM, FAN_HIGH},
		"fan_mode_state_topic":      fanTopic,
		"fan_mode_command_topic":    fanSetTopic,
		"temperature_state_topic":   targetTempTopic,
		"temperature_command_topic": targetTempSetTopic,
		"temperature_unit":          "C",
		"temp_step":                 1,
		"min_temp":                  MIN_TEMP,
		"max_temp":                  MAX_TEMP,
	}
	b.publishDiscovery(acKey, config)
}

func (b *Bridge) addZone(acKey string, zoneKey string) {
	stateTopic := b.getZoneTopic(acKey, zoneKey, "state")
	damperTopic := b.getZoneTopic(acKey, zoneKey, "damper")

	zoneInfo := b.Coordinator.Data().Aircons[acKey].Zones[zoneKey]
	if zoneInfo.Type == 0 {
		// damper-only zone: telemetry topics but no climate entity
		zonePath := acKey + "/zones/" + zoneKey
		b.Coordinator.RegisterCallback(zonePath+"/state", func(path string) {
			b.publish(stateTopic, b.Coordinator.Data().Aircons[acKey].Zones[zoneKey].State)
		})
		b.Coordinator.RegisterCallback(zonePath+"/value", func(path string) {
			b.publish(damperTopic, strconv.Itoa(b.Coordinator.Data().Aircons[acKey].Zones[zoneKey].Value))
		})
		return
	}

	zone := NewZone(&ZoneConfig{
		AcKey:       acKey,
		Key:         zoneKey,
		Coordinator: b.Coordinator,
	})
	b.zones = append(b.zones, zone)

	modeTopic := b.getZoneTopic(acKey, zoneKey, "mode")
	modeSetTopic := modeTopic + "/set"
	currentTempTopic := b.getZoneTopic(acKey, zoneKey, "currentTemp")
	targetTempTopic := b.getZoneTopic(acKey, zoneKey, "targetTemp")
	targetTempSetTopic := targetTempTopic + "/set"

	zone.OnDamperChange = func(percent int) {
		b.publish(damperTopic, strconv.Itoa(percent))
	}
	zone.OnStateChange = func(state string) {
		b.publish(stateTopic, state)
		b.publish(modeTopic, zone.HvacMode())
	}
	zone.OnCurrentTempChange = func(currentTemp float64) {
		b.publish(currentTempTopic, formatTemp(currentTemp))
	}
	zone.OnTargetTempChange = func(targetTemp float64) {
		b.publish(targetTempTopic, formatTemp(targetTemp))
	}

	b.subscribe(modeSetTopic, func(ctx context.Context, message string) error {
		return zone.SetHvacMode(ctx, message)
	})
	b.subscribe(targetTempSetTopic, func(ctx context.Context, message string) error {
		targetTemp, err := strconv.ParseFloat(message, 64)
		if err != nil {
			return err
		}
		return zone.SetTargetTemperature(ctx, targetTemp)
	})

	config := map[string]interface{}{
		"name":                      zone.Name(),
		"unique_id":                 b.uniqueID(acKey + "-" + zoneKey),
		"modes":                     []string{HVAC_MODE_OFF, HVAC_MODE_HEAT_COOL},
		"mode_state_topic":          modeTopic,
		"mode_command_topic":        modeSetTopic,
		"current_temperature_topic": currentTempTopic,
		"temperature_state_topic":   targetTempTopic,
		"temperature_command_topic": targetTempSetTopic,
		"temperature_unit":          "C",
		"temp_step":                 1,
		"min_temp":                  MIN_TEMP,
		"max_temp":                  MAX_TEMP,
	}
	b.publishDiscovery(acKey+"_"+zoneKey, config)
}

func (b *Bridge) sampleTemperatures() {
	for _, zone := range b.zones {
		zone.SampleTemperature()
	}
}

func (b *Bridge) publish(topic string, payload string) {
	err := b.Mqtt.Publish(topic, 0, true, payload)
	if err != nil {
		log.Printf("Error publishing to %s: %s\n", topic, err)
	}
}

func (b *Bridge) publishDiscovery(objectID string, config map[string]interface{}) {
	if b.AvailabilityTopic != "" {
		config["availability_topic"] = b.AvailabilityTopic
	}
	configJSON, _ := json.Marshal(config)
	// <discovery_prefix>/<component>/<node_id>/<object_id>/config
	topic := fmt.Sprintf("%s/climate/%s/%s/config", b.HassPrefix, b.NodeName, objectID)
	b.publish(topic, string(configJSON))
}

func (b *Bridge) subscribe(topic string, handler func(ctx context.Context, message string) error) {
	err := b.Mqtt.Subscribe(topic, func(message string) {
		ctx, cancel := context.WithTimeout(context.Background(), b.CommandTimeout)
		defer cancel()
		if err := handler(ctx, message); err != nil {
			log.Printf("Error handling %q on topic %s: %s\n", message, topic, err)
		}
	})
	if err != nil {
		log.Printf("Error subscribing to %s: %s\n", topic, err)
	}
}

func (b *Bridge) uniqueID(suffix string) string {
	return fmt.Sprintf("%s-%s", b.Coordinator.Data().System.RID, suffix)
}

func (b *Bridge) getAcTopic(acKey string, subtopic string) string {
	return fmt.Sprintf("%s/%s/%s/%s", b.TopicPrefix, b.NodeName, acKey, subtopic)
}

func (b *Bridge) getZoneTopic(acKey string, zoneKey string, subtopic string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", b.TopicPrefix, b.NodeName, acKey, zoneKey, subtopic)
}

func (b *Bridge) getSysTopic(subtopic string) string {
	return fmt.Sprintf("%s/%s/sys/%s", b.TopicPrefix, b.NodeName, subtopic)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
