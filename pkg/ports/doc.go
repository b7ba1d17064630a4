/*
Package ports defines the driven ports (interfaces) for the Keyframe engine.

These interfaces decouple the core logic from external implementations, allowing
the engine to run on virtual or wall-clock time and to work with various document
sources and storage backends.

# Key Interfaces

  - Scheduler: the engine's clock and timer source.
  - DocumentLoader: Responsible for loading prototype documents (e.g., from Loam, files or Memory).
  - SnapshotStore: Responsible for persisting and loading preview session Snapshots.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
  - Publisher: Sends host callbacks to an external broker.
*/
package ports
