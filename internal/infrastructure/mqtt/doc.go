// Package mqtt provides MQTT client connectivity for the gateway.
//
// This package manages:
//   - Connection to the broker with connect-retry and auto-reconnect
//   - Subscriptions that are reapplied on every reconnect
//   - Publishing actuator notifications
//   - Logging of connect, reconnect and offline transitions
//
// Sensors publish readings to the broker; the gateway subscribes to the
// telemetry topic and publishes a notification for every actuator command.
//
//	sensors → broker → gateway → store
//	HTTP client → gateway → broker → actuator listeners
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT, logger)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe("sensor/mac", 0, func(topic string, payload []byte) error {
//	    return handle(payload)
//	})
//
//	err = client.Publish("solenoid_info", payload, 0, false)
package mqtt
