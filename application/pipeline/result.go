package pipeline

// Stage identifies the pipeline step a per-project failure occurred in.
type Stage string

// Pipeline stages.
const (
	StageEmbedding  Stage = "embedding"
	StageSimilarity Stage = "similarity"
)

// ProjectFailure records one project skipped during a run.
type ProjectFailure struct {
	projectID string
	stage     Stage
	err       error
}

// NewProjectFailure creates a ProjectFailure.
func NewProjectFailure(projectID string, stage Stage, err error) ProjectFailure {
	return ProjectFailure{projectID: projectID, stage: stage, err: err}
}

// ProjectID returns the failed project id.
func (f ProjectFailure) ProjectID() string { return f.projectID }

// Stage returns the stage the failure occurred in.
func (f ProjectFailure) Stage() Stage { return f.stage }

// Err returns the underlying error.
func (f ProjectFailure) Err() error { return f.err }

// RunResult aggregates the outcome of one pipeline run. Failed projects are
// reported individually rather than as a bare count so callers can decide
// whether a shortfall warrants re-running.
type RunResult struct {
	documentsIndexed int
	edgesPersisted   int
	failures         []ProjectFailure
}

// NewRunResult creates a RunResult.
func NewRunResult(documentsIndexed, edgesPersisted int, failures []ProjectFailure) RunResult {
	cp := make([]ProjectFailure, len(failures))
	copy(cp, failures)
	return RunResult{
		documentsIndexed: documentsIndexed,
		edgesPersisted:   edgesPersisted,
		failures:         cp,
	}
}

// DocumentsIndexed returns the number of documents upserted into the index.
func (r RunResult) DocumentsIndexed() int { return r.documentsIndexed }

// EdgesPersisted returns the number of similarity edges written.
func (r RunResult) EdgesPersisted() int { return r.edgesPersisted }

// Failures returns the projects skipped during the run.
func (r RunResult) Failures() []ProjectFailure {
	cp := make([]ProjectFailure, len(r.failures))
	copy(cp, r.failures)
	return cp
}
