// Package actuator records solenoid and aerator commands for a pond and
// announces them to field devices over the broker.
//
// Every command is stored as an event before it is announced. An announce
// failure is logged and does not undo the stored event.
package actuator
