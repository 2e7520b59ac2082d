package engagement

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

var sentencePattern = regexp.MustCompile(`\b[^.!?]+[.!?]*`)

// FleschReadingEase scores text on the Flesch Reading Ease scale, rounded to
// two decimals. Higher is easier; text with no words scores the formula's
// constant term.
func FleschReadingEase(text string) float64 {
	words := lexicon(text)
	sentences := sentenceCount(text)

	var asl, asw float64
	if len(words) > 0 {
		asl = float64(len(words)) / float64(sentences)
		syl := 0
		for _, w := range words {
			syl += syllables(w)
		}
		asw = float64(syl) / float64(len(words))
	}

	score := 206.835 - 1.015*asl - 84.6*asw
	return math.Round(score*100) / 100
}

// lexicon splits text into words with punctuation removed. Apostrophes are
// kept so contractions count as one word.
func lexicon(text string) []string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) && r != '\'' {
			return -1
		}
		return r
	}, text)
	return strings.Fields(stripped)
}

// sentenceCount counts sentences, ignoring fragments of two words or fewer.
// It is never below one.
func sentenceCount(text string) int {
	n := 0
	for _, s := range sentencePattern.FindAllString(text, -1) {
		if len(lexicon(s)) > 2 {
			n++
		}
	}
	return max(n, 1)
}

// syllables estimates the syllable count of an English word by counting
// vowel groups, with a silent trailing "e" removed.
func syllables(word string) int {
	var letters []rune
	for _, r := range strings.ToLower(word) {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
		}
	}
	if len(letters) == 0 {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range letters {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}

	n := len(letters)
	if count > 1 && letters[n-1] == 'e' && !(n > 2 && letters[n-2] == 'l' && !isVowel(letters[n-3])) {
		count--
	}
	return max(count, 1)
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
