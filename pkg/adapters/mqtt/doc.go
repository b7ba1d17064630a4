// Package mqtt publishes engine callbacks to an MQTT broker, so devices and
// dashboards can follow a prototype being played. Each callback becomes one
// JSON message on {prefix}/{session}/{navigate|variable|state|url|gesture}.
package mqtt
