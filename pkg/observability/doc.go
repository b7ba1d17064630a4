/*
Package observability provides tools for monitoring the Keyframe engine.

Metrics are exposed as hook middleware: NewMetrics registers Prometheus
collectors and Hooks returns domain.Hooks that record into them, so any host
can chain them with its own callbacks.
*/
package observability
