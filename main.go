package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"advantageair2mqtt/aa"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("Serving metrics on %s/metrics\n", addr)
	err := http.ListenAndServe(addr, mux)
	if err != nil {
		log.Printf("Metrics listener stopped: %s\n", err)
	}
}

func main() {

	ctrlC := make(chan os.Signal, 1)
	signal.Notify(ctrlC, os.Interrupt, syscall.SIGTERM)

	config := ParseCommandLine()

	if config.MetricsAddr != "" {
		go serveMetrics(config.MetricsAddr)
	}

	go func() {
		ticker := time.NewTicker(config.PollInterval)
		var sessionID int
		var bridge *aa.Bridge
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), config.PollInterval)
			newSessionID := config.MqttClient.ID
			if sessionID != newSessionID {
				// new MQTT session: rebuild the bridge so discovery and
				// retained state are published again
				bridge = aa.NewBridge(config.BridgeConfig)
				err := bridge.Start(ctx)
				if err != nil {
					log.Printf("Error starting bridge: %s\n", err)
				} else {
					sessionID = newSessionID
				}
			} else if bridge != nil {
				bridge.Tick(ctx)
			}
			cancel()
		}
	}()

	<-ctrlC

	config.MqttClient.Close()
}
