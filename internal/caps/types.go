package caps

// DefaultCohort is the cohort name used when a single CAPS directory is
// supplied instead of a multi-cohort TSV.
const DefaultCohort = "single"

// Visit identifies one participant/session pair within a cohort.
type Visit struct {
	Participant string
	Session     string
	Cohort      string
}

// FileType describes the preprocessed image a generation run consumes.
type FileType struct {
	// Pattern matches the image filename within the session directory tree.
	Pattern string
	// Description is a human-readable summary for logs and errors.
	Description string
}
