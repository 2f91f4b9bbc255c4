// Package lang provides the small English-language helpers the rest of
// the driver leans on: articles, plurals, possessives, pronoun tables,
// adverb prefix lookup and a couple of input validators.
package lang

import (
	"fmt"
	"sort"
	"strings"
)

// Gender is a living's grammatical gender.
type Gender byte

const (
	Male   Gender = 'm'
	Female Gender = 'f'
	Neuter Gender = 'n'
)

// ParseGender validates a gender answer ("m", "male", "f", ...).
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return Male, nil
	case "f", "female":
		return Female, nil
	case "n", "neuter", "it":
		return Neuter, nil
	}
	return 0, fmt.Errorf("that is not a valid gender")
}

// Subjective returns the subjective pronoun (he/she/it).
func (g Gender) Subjective() string {
	switch g {
	case Male:
		return "he"
	case Female:
		return "she"
	}
	return "it"
}

// Objective returns the objective pronoun (him/her/it).
func (g Gender) Objective() string {
	switch g {
	case Male:
		return "him"
	case Female:
		return "her"
	}
	return "it"
}

// Possessive returns the possessive pronoun (his/her/its).
func (g Gender) Possessive() string {
	switch g {
	case Male:
		return "his"
	case Female:
		return "her"
	}
	return "its"
}

// Reflexive returns the reflexive pronoun (himself/herself/itself).
func (g Gender) Reflexive() string {
	switch g {
	case Male:
		return "himself"
	case Female:
		return "herself"
	}
	return "itself"
}

// Adjective returns the gender as a describing word.
func (g Gender) Adjective() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	}
	return "neuter"
}

// String implements fmt.Stringer ("m", "f", "n").
func (g Gender) String() string { return string(g) }

// ParseYesNo validates a yes/no answer.
func ParseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "sure", "yep", "yeah", "ok", "okay":
		return true, nil
	case "n", "no", "nope", "nah":
		return false, nil
	}
	return false, fmt.Errorf("please answer yes or no")
}

// Article returns "a" or "an" for the given word.
func Article(word string) string {
	if word == "" {
		return "a"
	}
	switch word[0] {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return "an"
	}
	return "a"
}

// WithArticle prefixes word with its indefinite article.
func WithArticle(word string) string {
	return Article(word) + " " + word
}

// Pluralize applies basic English pluralization rules.
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	switch {
	case strings.HasSuffix(lower, "s"), strings.HasSuffix(lower, "x"),
		strings.HasSuffix(lower, "z"), strings.HasSuffix(lower, "sh"),
		strings.HasSuffix(lower, "ch"):
		return word + "es"
	case strings.HasSuffix(lower, "y") && len(word) > 1 && !isVowel(lower[len(lower)-2]):
		return word[:len(word)-1] + "ies"
	case strings.HasSuffix(lower, "f"):
		return word[:len(word)-1] + "ves"
	case strings.HasSuffix(lower, "fe"):
		return word[:len(word)-2] + "ves"
	}
	return word + "s"
}

// Possessive returns the possessive form of a name ("max's", "Jones'").
func Possessive(name string) string {
	if strings.HasSuffix(name, "s") {
		return name + "'"
	}
	return name + "'s"
}

// Join renders a name list as prose: "A", "A and B", "A, B, and C".
func Join(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
}

// Capitalize upcases the first letter of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FullStop appends a period unless s already ends in punctuation.
func FullStop(s string) string {
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?', '\'', '"':
		return s
	}
	return s + "."
}

// IsAdverb reports whether word is in the adverb vocabulary.
func IsAdverb(word string) bool {
	i := sort.SearchStrings(Adverbs, word)
	return i < len(Adverbs) && Adverbs[i] == word
}

// AdverbsByPrefix returns the contiguous slice of adverbs starting with
// prefix. The result aliases the Adverbs table; callers must not mutate it.
func AdverbsByPrefix(prefix string) []string {
	lo := sort.SearchStrings(Adverbs, prefix)
	hi := lo
	for hi < len(Adverbs) && strings.HasPrefix(Adverbs[hi], prefix) {
		hi++
	}
	return Adverbs[lo:hi]
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
