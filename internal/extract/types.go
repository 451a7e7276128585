package extract

// Rule names reported on every match.
const (
	RuleExecutable = "executable"
	RuleUnixPath   = "unix-path"
	RuleKnownTool  = "known-tool"
	RuleShell      = "shell"
	RuleDeclared   = "declared"
)

// Rule finds raw tool tokens in a block of query text. Tokens are returned
// as they appear in the text; the extractor normalizes and resolves them.
type Rule interface {
	Name() string
	Find(text string) []string
}

// Match is one distinct tool found in a text.
type Match struct {
	// Tool is the catalog name when Resolved, otherwise the normalized token.
	Tool     string `json:"tool"`
	Evidence string `json:"evidence"`
	Rule     string `json:"rule"`
	Resolved bool   `json:"resolved"`
}

// Result holds everything extracted from a single text.
type Result struct {
	Tools        []Match  `json:"tools"`
	Repositories []string `json:"repositories,omitempty"`
	DownloadURLs []string `json:"download_urls,omitempty"`
}

func (r Result) clone() Result {
	out := Result{
		Tools:        append([]Match(nil), r.Tools...),
		Repositories: append([]string(nil), r.Repositories...),
		DownloadURLs: append([]string(nil), r.DownloadURLs...),
	}
	return out
}

// Reference ties a tool to the artifact that mentions it. A (Tool, Artifact)
// pair is recorded once; Evidence and Rule come from the first sighting.
type Reference struct {
	Tool     string `json:"tool"`
	Artifact string `json:"artifact"`
	Evidence string `json:"evidence"`
	Rule     string `json:"rule"`
}
