// internal/status/constants.go
package status

// Charger presence constants.
// These values are reported to API clients and MUST NOT be configurable.

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state before the first transaction.
const HealthUnknown uint16 = 0

// HealthOK represents a charger answering on the bus.
const HealthOK uint16 = 1

// HealthError represents a charger that stopped answering.
const HealthError uint16 = 2

// ---- PRESENCE ----

// PresenceConnected is reported while the last transaction succeeded.
const PresenceConnected = "connected"

// PresenceDisconnected is reported otherwise, including before the first transaction.
const PresenceDisconnected = "disconnected"

// ---- LIMITS ----

// MaxSecondsInError is where SecondsInError saturates.
const MaxSecondsInError = 65535

// ErrorCodeGeneric is reported for failures that carry no device code.
const ErrorCodeGeneric uint16 = 1
