/*
Package observability turns scheduler lifecycle hooks into Prometheus metrics and
structured log lines.

Both are plain domain.LifecycleHooks values; combine them with domain.ChainHooks
and pass the result to the scheduler or the workspace.
*/
package observability
