/*
Package ports defines the driven ports (interfaces) for the weaver engine.

These interfaces decouple the project workflow engine from external
implementations, allowing it to work with various storage backends, LLM
providers, source readers and review front-ends.

# Key Interfaces

  - StateStore: persists and loads ProjectState atomically.
  - Locker: provides the per-project exclusion that rejects concurrent runs.
  - Orchestrator: turns a goal and a corpus into task drafts.
  - TaskModel: executes one task against accumulated context.
  - CorpusSource: reads a locator (file, URL) into text.
  - Reviewer: presents the blueprint at the human checkpoint and collects edits.
*/
package ports
