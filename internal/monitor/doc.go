// Package monitor serves the exchange's HTTP monitoring endpoints.
//
// Endpoints:
//   - GET /health: status, active sessions and inventory counts
//   - GET /inventory: the current ticket list as JSON
//   - GET /ws: WebSocket stream of trade events, one JSON object per message
//
// WebSocket clients are pinged on an interval and dropped when they fall
// behind or stop answering.
package monitor
