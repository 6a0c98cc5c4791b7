// Package internaldefs exposes stable metric name and bucket definitions
// shared by exporter implementations.
//
// Definitions live here so every exporter publishes identical metric names
// and bucket boundaries. Changing a definition here changes all exporters
// at once.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
