package config

type WorkerKeyStruct struct {
	// PendingScoringQueue holds IDs of finalized sessions whose result has not been persisted yet.
	// Each queued or in-flight ID also holds a guard key "<queue>:<id>".
	PendingScoringQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PendingScoringQueue: "pending_scoring_queue",
}
