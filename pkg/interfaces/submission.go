package interfaces

// FrontMatter is the typed metadata block extracted from a submission. The
// inline Extra map retains any unknown keys pasted by the submitter so the
// policy validator can reject them with an explicit message.
type FrontMatter struct {
	Title         string         `yaml:"title"`
	Description   string         `yaml:"description"`
	Author        string         `yaml:"author"`
	Subject       string         `yaml:"subject"`
	FeaturedImage string         `yaml:"featuredImage"`
	Submission    bool           `yaml:"submission"`
	Extra         map[string]any `yaml:",inline"`
}

// Submission is the unit of work flowing through the pipeline. It is rebuilt
// from the live issue on every run; the tracker's labels are the only state
// persisted between runs.
type Submission struct {
	IssueNumber int
	Author      string
	RawBody     string
	FrontMatter FrontMatter
	Body        string
}

// ImageRole distinguishes how a referenced image is used in the post.
type ImageRole string

const (
	// ImageRoleInline marks an image embedded in the Markdown body.
	ImageRoleInline ImageRole = "inline"
	// ImageRoleFeatured marks the post's featured image.
	ImageRoleFeatured ImageRole = "featured"
)

// ImageReference describes a remote image declared by the submission and,
// once resolved, the local filename it will be committed under.
type ImageReference struct {
	URL           string
	Role          ImageRole
	LocalFilename string
}

// ValidationResult accumulates the outcome of independent validation checks.
// Errors preserve the order in which the checks are defined.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Merge combines another result into this one, preserving error order.
func (r ValidationResult) Merge(other ValidationResult) ValidationResult {
	errs := append(append([]string{}, r.Errors...), other.Errors...)
	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// TreeEntry is a single file destined for the publish commit.
type TreeEntry struct {
	Path    string
	Content []byte
}

// PublishPlan captures every deterministic decision for a publish run: names,
// paths, the commit message, and the full file set. Plans are built fresh per
// run and never mutated, which is what makes retries safe.
type PublishPlan struct {
	BranchName    string
	PostDir       string
	ImageDir      string
	CommitMessage string
	Entries       []TreeEntry
}
