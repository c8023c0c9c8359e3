// Package auth implements authentication and authorization for the WiFi
// manager's local HTTP control API.
//
// It validates bearer JWTs (RS256 via PEM or JWKS, or HS256) and enforces
// viewer/controller roles and read/control/telemetry scopes on each route.
package auth
