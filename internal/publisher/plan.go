package publisher

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-blog-intake/pkg/interfaces"
)

const (
	branchPrefix  = "submissions/issue-"
	maxBranchLen  = 60
	postsRoot     = "content/posts"
	imagesDirName = "images"
	postFileName  = "index.md"
	dateLayout    = "2006-01-02"
)

var postQuoteReplacer = strings.NewReplacer(`"`, `\"`)

// slugFor normalises the title into a slug, falling back to a timestamp name
// when the title yields nothing usable.
func slugFor(title string, now time.Time) string {
	normalized, err := slug.Normalize(title)
	if err != nil || normalized == "" {
		return fmt.Sprintf("post-%d", now.Unix())
	}
	return normalized
}

// branchFor composes the submission branch name. Only the slug segment is
// truncated to honour the length limit, so the issue number always survives
// and branch identity stays unambiguous.
func branchFor(issueNumber int, slugValue string) string {
	prefix := fmt.Sprintf("%s%d-", branchPrefix, issueNumber)
	room := maxBranchLen - len(prefix)
	if room <= 0 {
		return strings.TrimSuffix(prefix, "-")
	}
	if len(slugValue) > room {
		slugValue = strings.TrimRight(slugValue[:room], "-")
	}
	if slugValue == "" {
		return strings.TrimSuffix(prefix, "-")
	}
	return prefix + slugValue
}

// hasTraversal rejects any composed path or filename that could escape the
// post directory.
func hasTraversal(p string) bool {
	return strings.Contains(p, "..")
}

// renderPost assembles the final Markdown document: rewritten front matter
// with the local featured-image path and publish date, followed by the
// rewritten body.
func renderPost(fm interfaces.FrontMatter, featuredPath, publishDate, body string) []byte {
	esc := postQuoteReplacer.Replace
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: \"%s\"\n", esc(fm.Title))
	fmt.Fprintf(&b, "description: \"%s\"\n", esc(fm.Description))
	fmt.Fprintf(&b, "author: \"%s\"\n", esc(fm.Author))
	fmt.Fprintf(&b, "subject: \"%s\"\n", esc(fm.Subject))
	fmt.Fprintf(&b, "featuredImage: \"%s\"\n", esc(featuredPath))
	fmt.Fprintf(&b, "publishDate: \"%s\"\n", publishDate)
	b.WriteString("---\n\n")
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return []byte(b.String())
}

// postDirFor composes the dated post directory path.
func postDirFor(publishDate, slugValue string) string {
	return path.Join(postsRoot, publishDate+"-"+slugValue)
}
