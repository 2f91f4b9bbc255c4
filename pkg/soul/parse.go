package soul

import (
	"fmt"
	"strings"

	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/world"
)

// ParseError reports a structurally invalid utterance (ambiguous
// pronoun, duplicate adverb, unknown word, ...). The message is shown
// to the player verbatim and the turn does not count.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func parseErrorf(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

// UnknownVerbError is raised when the first word is not a recognised
// verb. It carries the word and the rest of the utterance so the
// dispatcher can retry it as a movement direction or suggest help.
type UnknownVerbError struct {
	Verb  string
	Words []string
}

func (e *UnknownVerbError) Error() string {
	return fmt.Sprintf("the verb %s is unrecognized", e.Verb)
}

// Who is one parse target: a living, an item, or an exit.
type Who struct {
	Living *world.Living
	Item   *world.Item
	Way    world.Way
}

// Title returns the target's display title.
func (w Who) Title() string {
	switch {
	case w.Living != nil:
		return w.Living.Title
	case w.Item != nil:
		return w.Item.Title
	case w.Way != nil:
		return w.Way.ExitTitle()
	}
	return ""
}

// WhoInfo records per-target parse facts.
type WhoInfo struct {
	Sequence     int
	PreviousWord string
}

// ParseResult is the structured result of parsing one utterance.
type ParseResult struct {
	Verb         string
	Qualifier    string
	Adverb       string
	BodyPart     string
	Message      string
	Args         []string
	Who          []Who
	WhoInfo      map[Who]WhoInfo
	Unrecognized []string
	Unparsed     string
}

// WhoLivings returns the livings among the targets, in order.
func (p *ParseResult) WhoLivings() []*world.Living {
	var out []*world.Living
	for _, w := range p.Who {
		if w.Living != nil {
			out = append(out, w.Living)
		}
	}
	return out
}

// QualifiedVerb is the verb as reported in refusals ("fail tickle").
func (p *ParseResult) QualifiedVerb() string {
	if p.Qualifier != "" {
		return p.Qualifier + " " + p.Verb
	}
	return p.Verb
}

// connectives are filler words skipped between tokens; the skipped word
// is remembered as the "previous word" of the following target.
var connectives = map[string]bool{
	"and": true, "&": true, "at": true, "to": true, "before": true,
	"in": true, "on": true, "the": true, "with": true, "from": true,
}

var ambiguousPronouns = map[string]bool{
	"them": true, "him": true, "her": true, "it": true,
}

// Parse turns a free-form utterance into a ParseResult. The actor's
// surroundings provide the name context: livings and items in the
// location, carried items, and exits. externalVerbs are the command
// verbs and story verbs the caller also accepts.
func Parse(actor *world.Living, input string, externalVerbs map[string]bool) (*ParseResult, error) {
	message, remainder := extractMessage(input)
	tokens := strings.Fields(remainder)
	if len(tokens) == 0 && message == "" {
		return nil, &ParseError{Msg: "What?"}
	}

	result := &ParseResult{
		Message: message,
		WhoInfo: make(map[Who]WhoInfo),
	}

	// Leading action qualifier.
	if len(tokens) > 0 {
		if _, ok := Qualifiers[strings.ToLower(tokens[0])]; ok {
			result.Qualifier = strings.ToLower(tokens[0])
			tokens = tokens[1:]
		}
	}
	// One leading connective may precede the verb ("and smile").
	if len(tokens) > 0 && connectives[strings.ToLower(tokens[0])] {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return nil, &ParseError{Msg: "What?"}
	}

	verb := strings.ToLower(tokens[0])
	vdef, isSoulVerb := Verbs[verb]
	if !isSoulVerb && !externalVerbs[verb] {
		return nil, &UnknownVerbError{Verb: tokens[0], Words: tokens[1:]}
	}
	result.Verb = verb
	result.Unparsed = normalizeUnparsed(result.Qualifier, verb, tokens[1:], message)
	tokens = tokens[1:]
	result.Args = append(result.Args, tokens...)

	messageVerb := isSoulVerb && expectsMessage(vdef)
	names := collectNames(actor)

	include := true
	prevWord := ""
	seq := 0
	collecting := false

	addWho := func(w Who) {
		for i, existing := range result.Who {
			if existing == w {
				if !include {
					result.Who = append(result.Who[:i], result.Who[i+1:]...)
					delete(result.WhoInfo, w)
				}
				return
			}
		}
		if include {
			result.Who = append(result.Who, w)
			result.WhoInfo[w] = WhoInfo{Sequence: seq, PreviousWord: prevWord}
			seq++
		}
	}

	for i := 0; i < len(tokens); i++ {
		word := strings.ToLower(tokens[i])

		switch {
		case ambiguousPronouns[word]:
			return nil, parseErrorf("It is not clear who you mean.")

		case word == "me" || word == "myself" || word == "self":
			addWho(Who{Living: actor})
			prevWord = ""
			continue

		case word == "everyone" || word == "everybody" || word == "all":
			if include {
				result.Who = result.Who[:0]
				for k := range result.WhoInfo {
					delete(result.WhoInfo, k)
				}
				seq = 0
				if actor.Location() != nil {
					for _, lv := range actor.Location().Livings() {
						if lv != actor {
							addWho(Who{Living: lv})
						}
					}
				}
				if len(result.Who) == 0 {
					return nil, parseErrorf("There is nobody here.")
				}
			} else {
				result.Who = result.Who[:0]
				for k := range result.WhoInfo {
					delete(result.WhoInfo, k)
				}
				seq = 0
			}
			prevWord = ""
			continue

		case word == "everything":
			return nil, parseErrorf("You can't do something to everything, be more specific.")

		case word == "except" || word == "but":
			include = !include
			prevWord = ""
			continue
		}

		// Names match before anything else so multi-word titles that
		// contain filler words ("the hairy cat") are not broken apart.
		if w, consumed := matchName(names, tokens[i:]); consumed > 0 {
			addWho(w)
			i += consumed - 1
			prevWord = ""
			continue
		}

		if connectives[word] {
			prevWord = word
			continue
		}

		if _, ok := BodyParts[word]; ok {
			if result.BodyPart != "" {
				return nil, parseErrorf("You can't do that both %s and %s.",
					BodyParts[result.BodyPart], BodyParts[word])
			}
			result.BodyPart = word
			prevWord = ""
			continue
		}

		if lang.IsAdverb(word) {
			if result.Adverb != "" {
				return nil, parseErrorf("You can't do that both %s and %s.", result.Adverb, word)
			}
			result.Adverb = word
			prevWord = ""
			continue
		}

		// A message verb soaks up unrecognized words when no quoted
		// message was given; once the first word is soaked, subsequent
		// tokens keep flowing into the message until a name or keyword
		// interrupts.
		if messageVerb && (collecting || result.Message == "") {
			if collecting {
				result.Message += " " + tokens[i]
			} else {
				result.Message = tokens[i]
				collecting = true
			}
			prevWord = ""
			continue
		}

		// Adverb prefix lookup.
		matches := lang.AdverbsByPrefix(word)
		switch len(matches) {
		case 1:
			if result.Adverb != "" {
				return nil, parseErrorf("You can't do that both %s and %s.", result.Adverb, matches[0])
			}
			result.Adverb = matches[0]
			prevWord = ""
			continue
		case 0:
			// Not an adverb prefix; maybe a misspelled name.
			if suggestion := suggestName(names, word); suggestion != "" {
				return nil, parseErrorf("Perhaps you meant %s?", suggestion)
			}
			result.Unrecognized = append(result.Unrecognized, tokens[i])
			prevWord = ""
		default:
			return nil, parseErrorf("What adverb did you mean: %s?", lang.Join(matches))
		}
	}

	// Commands get their leftover words as arguments; a pure emote has
	// no use for words nobody understood.
	if isSoulVerb && !externalVerbs[verb] && len(result.Unrecognized) > 0 {
		return nil, parseErrorf("It's not clear what you mean by '%s'.", result.Unrecognized[0])
	}

	return result, nil
}

// extractMessage pulls the first single- or double-quoted substring out
// of the input and returns it with the remaining text. Inner
// punctuation is preserved.
func extractMessage(input string) (message, remainder string) {
	for _, q := range []byte{'\'', '"'} {
		start := -1
		for i := 0; i < len(input); i++ {
			// Opening quote only at a word boundary, so apostrophes
			// inside words (don't, max's) are left alone.
			if input[i] == q && (i == 0 || input[i-1] == ' ') {
				start = i
				break
			}
		}
		if start < 0 {
			continue
		}
		end := strings.IndexByte(input[start+1:], q)
		if end < 0 {
			continue
		}
		end += start + 1
		return input[start+1 : end], strings.TrimSpace(input[:start] + " " + input[end+1:])
	}
	return "", input
}

// nameEntry pairs a lowercased visible name with its entity.
type nameEntry struct {
	name string
	who  Who
}

// collectNames gathers all names visible to the actor: livings here,
// items here, carried items, and exits. Longer names sort first so the
// greedy matcher prefers "door two" over "door".
func collectNames(actor *world.Living) []nameEntry {
	var entries []nameEntry
	add := func(name string, w Who) {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			return
		}
		entries = append(entries, nameEntry{name: name, who: w})
	}
	loc := actor.Location()
	if loc != nil {
		for _, lv := range loc.Livings() {
			w := Who{Living: lv}
			add(lv.Name, w)
			add(lv.Title, w)
			for alias := range lv.Aliases {
				add(alias, w)
			}
		}
		for _, it := range loc.Items() {
			w := Who{Item: it}
			add(it.Name, w)
			add(it.Title, w)
			for alias := range it.Aliases {
				add(alias, w)
			}
		}
		seenWays := map[world.Way]bool{}
		for dir, way := range loc.Exits {
			w := Who{Way: way}
			add(dir, w)
			if !seenWays[way] {
				seenWays[way] = true
				add(way.ExitTitle(), w)
			}
		}
	}
	for _, it := range actor.Inventory() {
		w := Who{Item: it}
		add(it.Name, w)
		add(it.Title, w)
		for alias := range it.Aliases {
			add(alias, w)
		}
	}
	return entries
}

// matchName greedily matches the longest run of tokens against the
// visible names. Returns the entity and how many tokens were consumed.
func matchName(names []nameEntry, tokens []string) (Who, int) {
	const maxWords = 5
	limit := maxWords
	if len(tokens) < limit {
		limit = len(tokens)
	}
	for n := limit; n >= 1; n-- {
		candidate := strings.ToLower(strings.Join(tokens[:n], " "))
		for _, e := range names {
			if e.name == candidate {
				return e.who, n
			}
		}
	}
	return Who{}, 0
}

// suggestName returns a visible name the word is a prefix of, if any.
func suggestName(names []nameEntry, word string) string {
	for _, e := range names {
		if strings.HasPrefix(e.name, word) {
			return e.name
		}
	}
	return ""
}

// normalizeUnparsed reassembles the utterance in canonical form so that
// re-parsing it produces an equivalent result.
func normalizeUnparsed(qualifier, verb string, rest []string, message string) string {
	parts := make([]string, 0, len(rest)+3)
	if qualifier != "" {
		parts = append(parts, qualifier)
	}
	parts = append(parts, verb)
	parts = append(parts, rest...)
	if message != "" {
		parts = append(parts, "'"+message+"'")
	}
	return strings.Join(parts, " ")
}
