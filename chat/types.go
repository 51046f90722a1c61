package chat

// Source is one ranked section that backed the answer.
type Source struct {
	Title           string
	PolicyTitle     string
	Score           int
	MatchedKeywords []string
	Snippet         string
}

// RelatedSection is a section from the keyword graph sharing vocabulary with
// the answer's sources.
type RelatedSection struct {
	Title          string
	PolicyTitle    string
	SharedKeywords int
}

type Response struct {
	Answer  string
	Sources []Source
	Related []RelatedSection
}
