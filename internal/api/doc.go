// Package api implements the HTTP REST API and WebSocket live feed for the
// aquaponics gateway.
//
// This package provides:
//   - REST endpoints for accounts, farms, ponds, sensor readings, actuator
//     commands, and access requests
//   - WebSocket hub broadcasting stored readings and actuator events
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Responses
//
// Successful reads return JSON. Writes return either the created row as
// JSON or a short plain-text confirmation. Every error is a plain-text
// body; store and broker failures are logged with driver detail and the
// client only sees a generic message.
//
// # Graceful Degradation
//
// The server operates without the broker. Actuator commands are still
// stored and acknowledged; only the device announcement is lost, and
// /health reports the broker as disconnected.
package api
