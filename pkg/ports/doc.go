/*
Package ports defines the driven ports (interfaces) for the flowstep engine.

These interfaces decouple session handling from external implementations,
allowing runs to be persisted in memory, on disk or in Redis, and coordinated
across replicas.

# Key Interfaces

  - SessionStore: Responsible for persisting and loading a Session (snapshot plus undo history).
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
