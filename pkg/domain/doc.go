/*
Package domain contains the core domain models and business rules for the weaver engine.

It defines the entities of the project lifecycle and the rules that keep them
consistent. This package is kept pure and free of external dependencies like
I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - ProjectState: the persisted snapshot of a project (Goal, Stage, Corpus, Blueprint, Cursor).
  - Task: one unit of planned work with a description, status and eventual result.
  - Stage: the lifecycle position of a project, advanced only through Transitions.
  - ExecutionReport: the outcome of a single run invocation.
*/
package domain
