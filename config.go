package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"time"

	"advantageair2mqtt/aa"
	"advantageair2mqtt/coordinator"
	"advantageair2mqtt/mqtt"
	"advantageair2mqtt/myair"
)

type Config struct {
	MqttClient   *mqtt.Client
	BridgeConfig *aa.Config
	PollInterval time.Duration
	MetricsAddr  string
}

func generateNodeName(host string) string {
	reg, err := regexp.Compile("[^a-zA-Z0-9]+")
	if err != nil {
		log.Fatal(err)
	}
	return reg.ReplaceAllString(host, "_")
}

func ParseCommandLine() *Config {
	hostname, _ := os.Hostname()

	server := flag.String("server", "tcp://127.0.0.1:1883", "The full url of the MQTT server to connect to ex: tcp://127.0.0.1:1883")
	clientid := flag.String("clientid", hostname+strconv.Itoa(time.Now().Second()), "A clientid for the connection")
	username := flag.String("username", "", "A username to authenticate to the MQTT server")
	password := flag.String("password", "", "Password to match username")
	prefix := flag.String("prefix", "advantageair2mqtt", "MQTT topic root where to publish/read topics")
	hassPrefix := flag.String("hassPrefix", "homeassistant", "Home assistant discovery prefix")
	aaHost := flag.String("aaHost", "", "Hostname or IP of the Advantage Air wall controller")
	aaPort := flag.Int("aaPort", myair.DefaultPort, "HTTP port of the wall controller")
	nodeName := flag.String("name", "", "Name for this controller in topics. Defaults to a name derived from aaHost")
	pollInterval := flag.Duration("pollInterval", 10*time.Second, "How often to poll the wall controller")
	requestTimeout := flag.Duration("requestTimeout", 5*time.Second, "Per-request timeout talking to the wall controller")
	metricsAddr := flag.String("metricsAddr", "", "Listen address for Prometheus metrics, e.g. :9167. Disabled when empty")

	flag.Parse()

	if *aaHost == "" {
		log.Fatalf("aaHost is required")
	}

	name := *nodeName
	if name == "" {
		name = generateNodeName(*aaHost)
	}

	device := myair.New(&myair.Config{
		Host:    *aaHost,
		Port:    *aaPort,
		Timeout: *requestTimeout,
	})

	coord := coordinator.New(&coordinator.Config{
		Device: device,
	})

	availabilityTopic := fmt.Sprintf("%s/%s/status", *prefix, name)

	mqttClient := mqtt.New(&mqtt.Config{
		Server:            *server,
		ClientID:          *clientid,
		Username:          *username,
		Password:          *password,
		AvailabilityTopic: availabilityTopic,
	})

	return &Config{
		MqttClient:   mqttClient,
		PollInterval: *pollInterval,
		MetricsAddr:  *metricsAddr,
		BridgeConfig: &aa.Config{
			NodeName:          name,
			TopicPrefix:       *prefix,
			HassPrefix:        *hassPrefix,
			AvailabilityTopic: availabilityTopic,
			Mqtt:              mqttClient,
			Coordinator:       coord,
		},
	}
}
