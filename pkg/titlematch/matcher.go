package titlematch

import (
	"regexp"

	"github.com/hbollon/go-edlib"
)

// numberRegex extracts sequence numbers from titles (e.g., "2", "3").
var numberRegex = regexp.MustCompile(`\b(\d+)\b`)

// Confidence represents the confidence level of a title match.
type Confidence int

const (
	ConfidenceNone   Confidence = iota // score < 0.70
	ConfidenceLow                      // score >= 0.70
	ConfidenceMedium                   // score >= 0.85
	ConfidenceHigh                     // score >= 0.95
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// Result is the outcome of matching a query against candidate titles.
type Result struct {
	Index      int     // position of the matched candidate, -1 for none
	Title      string  // the matched candidate title
	Score      float64 // Jaro-Winkler similarity (0.0-1.0)
	Confidence Confidence
}

// Best finds the best candidate for a query title. Jaro-Winkler favors
// prefix matches, which suits media titles; a bonus applies when
// sequence numbers agree ("Movie 2" should not match "Movie 3").
func Best(query string, candidates []string) Result {
	best := Result{Index: -1, Confidence: ConfidenceNone}
	if len(candidates) == 0 {
		return best
	}

	cleanQuery := Clean(query)
	queryNumbers := extractNumbers(cleanQuery)

	for i, candidate := range candidates {
		cleanCandidate := Clean(candidate)

		score := float64(edlib.JaroWinklerSimilarity(cleanQuery, cleanCandidate))
		score = adjustScoreForNumbers(score, queryNumbers, extractNumbers(cleanCandidate))

		if score > best.Score {
			best.Index = i
			best.Title = candidate
			best.Score = score
		}
	}

	switch {
	case best.Score >= 0.95:
		best.Confidence = ConfidenceHigh
	case best.Score >= 0.85:
		best.Confidence = ConfidenceMedium
	case best.Score >= 0.70:
		best.Confidence = ConfidenceLow
	default:
		best.Confidence = ConfidenceNone
		best.Index = -1
		best.Title = ""
	}

	return best
}

func extractNumbers(title string) []string {
	return numberRegex.FindAllString(title, -1)
}

// adjustScoreForNumbers applies a bonus when sequence numbers match
// between query and candidate, and a penalty when they disagree or the
// candidate lacks them entirely.
func adjustScoreForNumbers(score float64, queryNums, candidateNums []string) float64 {
	if len(queryNums) == 0 {
		return score
	}

	if len(candidateNums) == 0 {
		return score * 0.85
	}

	candidateSet := make(map[string]bool, len(candidateNums))
	for _, n := range candidateNums {
		candidateSet[n] = true
	}
	for _, n := range queryNums {
		if candidateSet[n] {
			return min(score*1.05, 1.0)
		}
	}

	return score * 0.90
}
