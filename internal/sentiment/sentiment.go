// Package sentiment classifies review feedback as good, neutral or bad.
//
// The classification is a pure function of the rating and the comment text:
// identical input always yields the same result.
package sentiment

import (
	"strings"
	"unicode"
)

// Sentiment is the derived classification of a review.
type Sentiment string

const (
	Good    Sentiment = "good"
	Neutral Sentiment = "neutral"
	Bad     Sentiment = "bad"
)

// Valid is the set of sentiments.
var Valid = []Sentiment{Good, Neutral, Bad}

// IsValid checks if a sentiment is recognized.
func (s Sentiment) IsValid() bool {
	return s == Good || s == Neutral || s == Bad
}

var positive = map[string]bool{
	"amazing": true, "awesome": true, "best": true, "caring": true, "clean": true,
	"excellent": true, "fantastic": true, "friendly": true, "good": true, "great": true,
	"happy": true, "helpful": true, "kind": true, "love": true, "loved": true,
	"lovely": true, "nice": true, "perfect": true, "professional": true, "recommend": true,
	"safe": true, "thank": true, "thanks": true, "wonderful": true,
}

var negative = map[string]bool{
	"angry": true, "awful": true, "bad": true, "dirty": true, "disappointed": true,
	"disappointing": true, "hate": true, "horrible": true, "hurt": true, "injured": true,
	"late": true, "lost": true, "poor": true, "rude": true, "sick": true,
	"terrible": true, "unhappy": true, "unsafe": true, "worst": true,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "isn't": true, "wasn't": true,
	"don't": true, "didn't": true, "won't": true,
}

// Classify derives a sentiment from a 1-5 rating and an optional comment.
//
// The rating contributes -2..+2 around a neutral 3. The comment contributes
// at most one point either way, so it can tip a borderline rating but never
// overrule a 1 or a 5.
func Classify(rating int, comment string) Sentiment {
	score := ratingScore(rating) + clamp(CommentScore(comment), -1, 1)
	switch {
	case score >= 1:
		return Good
	case score <= -1:
		return Bad
	default:
		return Neutral
	}
}

func ratingScore(rating int) int {
	switch {
	case rating >= 5:
		return 2
	case rating == 4:
		return 1
	case rating == 3:
		return 0
	case rating == 2:
		return -1
	default:
		return -2
	}
}

// CommentScore counts positive minus negative words in comment. A negator
// directly before a word flips it.
func CommentScore(comment string) int {
	words := strings.FieldsFunc(strings.ToLower(comment), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	score := 0
	for i, w := range words {
		var v int
		switch {
		case positive[w]:
			v = 1
		case negative[w]:
			v = -1
		default:
			continue
		}
		if i > 0 && negators[words[i-1]] {
			v = -v
		}
		score += v
	}
	return score
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
