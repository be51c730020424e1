/*
Package observability exposes engine activity as Prometheus metrics.

Metrics.Hooks plugs into domain.LifecycleHooks so every step, undo,
augmentation and termination is counted. Metrics.Middleware instruments the
HTTP adapter.
*/
package observability
