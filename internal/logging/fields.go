package logging

// Field name constants for structured logging.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldFiles      = "files"
	FieldInput      = "input"
	FieldOutput     = "output"
	FieldWorkingDir = "working_dir"

	// Configuration fields.
	FieldConfig = "config"
	FieldCheck  = "check"
	FieldJobs   = "jobs"

	// Engine fields.
	FieldPass        = "pass"
	FieldDescription = "description"
	FieldEdits       = "edits"
	FieldRule        = "rule"
	FieldDuration    = "duration"
	FieldLine        = "line"
	FieldBlocks      = "blocks"

	// Statistics fields.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesChanged    = "files_changed"
	FieldFilesFailed     = "files_failed"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
