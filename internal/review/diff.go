// Package review exposes the code index to an LLM-driven review session
// over MCP. The review chain itself lives outside this repository; this
// package carries the diff types it feeds us and the search tool it calls.
package review

// ChangeType classifies one file's change within a diff set.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
	ChangeRenamed  ChangeType = "renamed"
)

// CodeDiff is one changed file from an external diff provider. Only the
// path and change classification matter to the index tool; the content is
// carried for the review chain.
type CodeDiff struct {
	FilePath   string     `json:"file_path"`
	ChangeType ChangeType `json:"change_type"`
	Content    string     `json:"content,omitempty"`
}

// BoostPaths returns the file paths from a diff set, passed through to
// search queries so the store can favor symbols near the change. Deleted
// files are excluded since their symbols no longer exist.
func BoostPaths(diffs []CodeDiff) []string {
	paths := make([]string, 0, len(diffs))
	for _, diff := range diffs {
		if diff.ChangeType == ChangeDeleted {
			continue
		}
		paths = append(paths, diff.FilePath)
	}
	return paths
}
