// Package rate enforces fixed-window login attempt budgets per identifier
// and per client IP, backed by Redis counters. Counters are written only on
// failed attempts and cleared on success, so well-behaved clients never pay
// more than one read per authentication.
package rate
