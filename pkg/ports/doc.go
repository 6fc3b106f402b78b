/*
Package ports defines the driven ports (interfaces) for flowcanvas.

These interfaces decouple the editor core from external implementations, allowing
the scheduler to run any node executor and the workspace to persist workflows in
various storage backends.

# Key Interfaces

  - NodeExecutor: Performs the type-specific work of a node (see package registry).
  - Runner: Runs a graph snapshot to completion or first failure (see package scheduler).
  - WorkflowStore: Persists workflow documents (memory, file, Redis).
  - DistributedLocker: Provides distributed locking for concurrent workflow access.
  - Watchable: Signals that a workflow source changed on disk.
*/
package ports
