/*
Package observability exports conversation metrics.

Metrics are fed by domain.LifecycleHooks, so the dialogue core never imports a
metrics library. The CLI optionally serves them over HTTP with a health probe.
*/
package observability
