// Package influxdb mirrors pond sensor readings into InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. The mirror is
// optional (influxdb.enabled in config.yaml) and never on the critical path:
// a reading is persisted to the relational store first, then queued here.
//
// Usage:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without a mirror
//	}
//	defer client.Close()
//
//	client.WriteSensorReading(12, "ph", 7.1, time.Now())
//
// Writes are batched according to batch_size and flush_interval. Batch
// failures are delivered asynchronously through SetOnError.
package influxdb
