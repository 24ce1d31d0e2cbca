// Package usage provides a heuristic token estimate for responses. The local
// engine does not report token counts, so the OpenAI usage block is filled
// with a rune-class estimate instead of being omitted.
package usage

import (
	"math"
	"strings"
	"unicode"
)

// per-rune-class weights tuned against common BPE vocabularies
const (
	wordWeight    = 1.02
	numberWeight  = 1.55
	cjkWeight     = 0.85
	symbolWeight  = 0.4
	emojiWeight   = 2.12
	newlineWeight = 0.5
	spaceWeight   = 0.42
)

// EstimateTokens approximates the token count of text.
func EstimateTokens(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	type wordType int
	const (
		none wordType = iota
		latin
		number
	)
	cur := none

	var count float64
	for _, r := range text {
		if unicode.IsSpace(r) {
			cur = none
			if r == '\n' || r == '\t' {
				count += newlineWeight
			} else {
				count += spaceWeight
			}
			continue
		}
		if isCJK(r) {
			cur = none
			count += cjkWeight
			continue
		}
		if isEmoji(r) {
			cur = none
			count += emojiWeight
			continue
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			newType := latin
			if unicode.IsNumber(r) {
				newType = number
			}
			if cur != newType {
				if newType == number {
					count += numberWeight
				} else {
					count += wordWeight
				}
				cur = newType
			}
			continue
		}
		cur = none
		count += symbolWeight
	}
	return int(math.Ceil(count))
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		(r >= 0x3040 && r <= 0x30FF) ||
		(r >= 0xAC00 && r <= 0xD7A3)
}

func isEmoji(r rune) bool {
	return (r >= 0x1F300 && r <= 0x1F9FF) ||
		(r >= 0x2600 && r <= 0x26FF) ||
		(r >= 0x2700 && r <= 0x27BF) ||
		(r >= 0x1F600 && r <= 0x1F64F) ||
		(r >= 0x1FA00 && r <= 0x1FAFF)
}
