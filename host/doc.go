// Package host provides the runtime environment plugins are loaded into.
//
// A Manager bootstraps each plugin image with the host function table,
// validates the descriptor the image exports, and drives the plugin
// lifecycle. The table is served by an Executor, which runs the futures
// plugins spawn, and a Bus, which dispatches events to plugin listeners
// in priority order.
package host
