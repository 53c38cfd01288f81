package interfaces

// Issue labels the pipeline reads and writes. They are the only state the
// system persists between runs; everything else is rebuilt from the live
// issue.
const (
	// LabelBlogSubmission marks an issue filed through the submission form.
	LabelBlogSubmission = "blog-submission"
	// LabelValidSubmission marks a submission that passed validation and is
	// under review.
	LabelValidSubmission = "valid-submission"
	// LabelInvalid marks a submission rejected by validation.
	LabelInvalid = "invalid"
	// LabelImported marks a submission that was converted into a pull
	// request.
	LabelImported = "imported"
	// LabelImportFailed marks a submission whose import attempt failed.
	LabelImportFailed = "import-failed"
)
