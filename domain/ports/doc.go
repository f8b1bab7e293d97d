// Package ports defines the interfaces the host depends on for
// infrastructure: reading configuration and opening plugin images.
// Infrastructure adapters implement these interfaces.
package ports
