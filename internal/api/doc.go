// Package api serves predictions over HTTP using fiber.
//
// # Routes
//
//	GET  /health               liveness and model fingerprint
//	POST /api/v1/predict       multipart upload, field "file"
//	POST /api/v1/record        raw WAV body from an in-browser recorder
//	GET  /api/v1/history       recent predictions, ?limit=N
//
// Every response is a JSON envelope with "status" set to "ok" or "error".
// Errors scoped to one request (undecodable audio, missing ffmpeg, a failed
// pipeline stage) answer 422, malformed requests 400, and anything else 500.
// The server never exits because a request failed.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
// Start holds an exclusive flock on the state directory lock file so two
// servers cannot share one history database.
package api
