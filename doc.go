/*
Package weaver is a workflow engine for long-running, multi-step LLM projects.

A project is initialized with a goal, fed source material (the corpus), decomposed
by an orchestrator model into an ordered plan of tasks (the blueprint) and then
executed task by task. Progress is persisted after every task, so a run can stop
at any point and continue later from the cursor.

# Lifecycle

	CREATED -> INGESTED -> PLANNED -> RUNNING -> COMPLETED
	                                      |  \-> PAUSED -> RUNNING
	                                      \----> FAILED

Ingest and Plan may be repeated until a run starts. Run is accepted from PLANNED,
PAUSED and, after a crash, RUNNING. Any other call fails with a
*domain.InvalidStageError.

# Human checkpoint

Run with RunOptions.HumanFeedback suspends before the first task of a freshly
planned blueprint. The blueprint is handed to a ports.Reviewer and the call
returns a report carrying a resume token. Resume with that token applies the
human's edits and starts executing.

# Usage

	eng, err := weaver.New(
		weaver.WithStore(store),
		weaver.WithOrchestrator(orchestrator),
		weaver.WithTaskModel(model),
	)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	_, _ = eng.Initialize(ctx, "demo", "write a poem")
	_, _ = eng.Plan(ctx, "demo")
	report, err := eng.Run(ctx, "demo", ports.RunOptions{Steps: 2})
*/
package weaver
