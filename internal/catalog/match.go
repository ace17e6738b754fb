package catalog

import "strings"

const (
	// DefaultMinScore is the score a category needs to be returned without
	// falling back to keyword overrides.
	DefaultMinScore = 1

	// phraseBonus is added when a category's whole title appears in the text.
	phraseBonus = 3
)

// Source tells which phase of matching produced a result.
type Source string

const (
	SourceScore    Source = "score"
	SourceOverride Source = "override"
	SourceNone     Source = "none"
)

// CategoryScore is the accumulated score of one category for a query.
type CategoryScore struct {
	CategoryID int `json:"categoryId"`
	Score      int `json:"score"`
}

// MatchResult describes how a text was matched against an index.
type MatchResult struct {
	CategoryID int    `json:"categoryId"`
	OK         bool   `json:"ok"`
	Score      int    `json:"score"`
	Source     Source `json:"source"`
	// Token is the token whose override was used, when Source is SourceOverride.
	Token string `json:"token,omitempty"`
	// Scores lists every category that scored, in the order each one first scored.
	Scores []CategoryScore `json:"scores,omitempty"`
}

// scoreboard accumulates scores while remembering the order in which
// categories first scored. That order is the tie-break.
type scoreboard struct {
	pos    map[int]int
	scores []CategoryScore
}

func (s *scoreboard) add(id, points int) {
	if i, ok := s.pos[id]; ok {
		s.scores[i].Score += points
		return
	}
	if s.pos == nil {
		s.pos = make(map[int]int)
	}
	s.pos[id] = len(s.scores)
	s.scores = append(s.scores, CategoryScore{CategoryID: id, Score: points})
}

// best returns the highest score; on a tie the category that scored first wins.
func (s *scoreboard) best() (CategoryScore, bool) {
	if len(s.scores) == 0 {
		return CategoryScore{}, false
	}
	top := s.scores[0]
	for _, cs := range s.scores[1:] {
		if cs.Score > top.Score {
			top = cs
		}
	}
	return top, true
}

// MatchCategory returns the id of the category that best matches text, or
// false when nothing matched. The returned id comes either from the index's
// categories or from its keyword overrides; an override pointing at an id
// missing from the catalog is returned as is.
func MatchCategory(text string, idx *Index, minScore int) (int, bool) {
	res := Explain(text, idx, minScore)
	return res.CategoryID, res.OK
}

// Match is MatchCategory with DefaultMinScore.
func Match(text string, idx *Index) (int, bool) {
	return MatchCategory(text, idx, DefaultMinScore)
}

// Explain runs the matcher and reports the scores behind its decision.
//
// Scoring: every token of text adds one point to each category whose title
// produced the same token, and a category whose lowercased title occurs in
// the lowercased text gets phraseBonus more. The top category is returned if
// its score reaches minScore. Otherwise the tokens are checked in order against
// the keyword overrides and the first hit is returned.
func Explain(text string, idx *Index, minScore int) MatchResult {
	res := MatchResult{Source: SourceNone}
	if idx == nil {
		return res
	}

	tokens := Tokens(text)

	var board scoreboard
	for _, token := range tokens {
		for _, id := range idx.inverted[token] {
			board.add(id, 1)
		}
	}

	lc := lower(text)
	for _, id := range idx.order {
		title := lower(idx.byID[id].Title)
		// An empty title is a substring of everything and must not score.
		if title != "" && strings.Contains(lc, title) {
			board.add(id, phraseBonus)
		}
	}
	res.Scores = board.scores

	if top, ok := board.best(); ok && top.Score >= minScore {
		res.CategoryID = top.CategoryID
		res.Score = top.Score
		res.Source = SourceScore
		res.OK = true
		return res
	}

	for _, token := range tokens {
		if id, ok := idx.overrides[token]; ok {
			res.CategoryID = id
			res.Source = SourceOverride
			res.Token = token
			res.OK = true
			return res
		}
	}

	return res
}
