// Package telemetry ingests pond sensor readings from the broker.
//
// Each message on the telemetry topic is handled independently:
//
//  1. The payload is parsed as a JSON object.
//  2. The reading is stamped with the gateway's clock (UTC, ISO 8601 with
//     milliseconds). Any timestamp sent by the device is ignored.
//  3. idkolam, jenis_sensor and value must be present and non-null.
//  4. The reading is inserted once.
//
// A message that fails any step is logged and dropped. Nothing is retried,
// requeued or acknowledged back to the device; delivery is at most once.
//
// Stored readings are optionally mirrored to InfluxDB and pushed to live
// feed subscribers. Neither affects whether the reading is stored.
package telemetry
