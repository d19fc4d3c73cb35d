package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// measurementSensor is the measurement that holds mirrored pond readings.
const measurementSensor = "sensor_readings"

// WriteSensorReading queues one pond reading for the next batch.
//
// The pond id and sensor type become tags so dashboards can group by them;
// the reading is the single "value" field. The write is non-blocking.
//
// Example:
//
//	client.WriteSensorReading(12, "ph", 7.1, recordedAt)
func (c *Client) WriteSensorReading(idkolam int64, jenisSensor string, value float64, at time.Time) {
	if !c.isOpen() {
		return
	}

	c.writeAPI.WritePoint(sensorPoint(idkolam, jenisSensor, value, at))
}

func sensorPoint(idkolam int64, jenisSensor string, value float64, at time.Time) *write.Point {
	return write.NewPoint(
		measurementSensor,
		map[string]string{
			"idkolam":      strconv.FormatInt(idkolam, 10),
			"jenis_sensor": jenisSensor,
		},
		map[string]interface{}{
			"value": value,
		},
		at,
	)
}
