package soul

import (
	"fmt"
	"strings"

	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/world"
)

// Messages is the rendered triple for one emote. Target is empty when
// the emote has no living targets.
type Messages struct {
	Player string
	Room   string
	Target string
}

// viewpoint selects whose eyes a message is rendered for.
type viewpoint int

const (
	viewActor viewpoint = iota
	viewRoom
	viewTarget
)

var irregularConjugations = map[string]string{
	"have": "has",
	"go":   "goes",
	"do":   "does",
}

// conjugate turns a verb stem into its third-person singular form.
func conjugate(stem string) string {
	if f, ok := irregularConjugations[stem]; ok {
		return f
	}
	switch {
	case strings.HasSuffix(stem, "s"), strings.HasSuffix(stem, "x"),
		strings.HasSuffix(stem, "z"), strings.HasSuffix(stem, "ch"),
		strings.HasSuffix(stem, "sh"), strings.HasSuffix(stem, "o"):
		return stem + "es"
	case len(stem) > 1 && strings.HasSuffix(stem, "y") && !isVowel(stem[len(stem)-2]):
		return stem[:len(stem)-1] + "ies"
	default:
		return stem + "s"
	}
}

func isVowel(c byte) bool {
	return strings.IndexByte("aeiou", c) >= 0
}

// splitTemplate breaks a verb template into its tokens.
func splitTemplate(tmpl string) []string {
	return strings.Fields(tmpl)
}

// Render produces the three viewpoint messages for a parsed soul
// emote. The returned strings carry no trailing newline.
func Render(actor *world.Living, p *ParseResult) (*Messages, error) {
	vd, ok := Verbs[p.Verb]
	if !ok {
		return nil, &UnknownVerbError{Verb: p.Verb}
	}
	if (vd.VType == PREV || vd.VType == PHYS) && len(p.Who) == 0 {
		return nil, parseErrorf("%s whom?", lang.Capitalize(p.Verb))
	}
	if p.Message == "" && templateHasSlot(actor, p, vd, "MSG") {
		return nil, parseErrorf("%s what?", lang.Capitalize(p.Verb))
	}

	var q Qualifier
	hasQualifier := false
	if p.Qualifier != "" {
		q, hasQualifier = Qualifiers[p.Qualifier]
		if !hasQualifier {
			return nil, parseErrorf("What do you mean, %s?", p.Qualifier)
		}
	}
	othersConjugated := !hasQualifier || q.RoomConjugated

	playerBody := renderBody(actor, p, vd, viewActor, false)
	roomBody := renderBody(actor, p, vd, viewRoom, othersConjugated)
	targetBody := renderBody(actor, p, vd, viewTarget, othersConjugated)

	if hasQualifier {
		playerBody = fmt.Sprintf(q.Player, playerBody)
		roomBody = fmt.Sprintf(q.Room, roomBody)
		targetBody = fmt.Sprintf(q.Room, targetBody)
	}

	m := &Messages{
		Player: lang.FullStop("You " + playerBody),
		Room:   lang.FullStop(actor.Title + " " + roomBody),
	}
	if len(p.WhoLivings()) > 0 {
		m.Target = lang.FullStop(actor.Title + " " + targetBody)
	}
	return m, nil
}

// Socialize parses and renders in one step.
func Socialize(actor *world.Living, input string) (*ParseResult, *Messages, error) {
	parsed, err := Parse(actor, input, nil)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := Render(actor, parsed)
	if err != nil {
		return nil, nil, err
	}
	return parsed, msgs, nil
}

// templateSelect picks the template tokens for this parse. Implicit
// types synthesize a template around the verb stem.
func templateSelect(p *ParseResult, vd VerbDef, conjugated bool) []string {
	hasTarget := len(p.Who) > 0
	stem := p.Verb + "$"
	extra := ""
	if vd.Extra != "" {
		extra = " " + vd.Extra
	}
	switch vd.VType {
	case DEFA:
		return splitTemplate(stem + extra + " HOW AT")
	case PREV:
		return splitTemplate(stem + extra + " WHO HOW")
	case PHYS:
		return splitTemplate(stem + extra + " WHO HOW WHERE")
	case SHRT:
		return splitTemplate(stem + extra + " HOW")
	case PERS:
		if hasTarget {
			return splitTemplate(vd.Tmpl[1])
		}
		return splitTemplate(vd.Tmpl[0])
	case SIMP:
		return splitTemplate(vd.Tmpl[0])
	case DEUX:
		if conjugated {
			return splitTemplate(vd.Tmpl[1])
		}
		return splitTemplate(vd.Tmpl[0])
	case QUAD:
		idx := 0
		if hasTarget {
			idx = 2
		}
		if conjugated {
			idx++
		}
		return splitTemplate(vd.Tmpl[idx])
	}
	return nil
}

func templateHasSlot(actor *world.Living, p *ParseResult, vd VerbDef, slot string) bool {
	for _, tok := range templateSelect(p, vd, false) {
		base, _ := splitToken(tok)
		if base == slot {
			return true
		}
	}
	return false
}

// splitToken separates trailing punctuation from a template token so
// slots like "WHAT!" substitute cleanly.
func splitToken(tok string) (base, suffix string) {
	i := len(tok)
	for i > 0 && strings.IndexByte(".,!?", tok[i-1]) >= 0 {
		i--
	}
	return tok[:i], tok[i:]
}

// renderBody renders the template for one viewpoint, without the
// leading subject and without terminal punctuation.
func renderBody(actor *world.Living, p *ParseResult, vd VerbDef, view viewpoint, conjugated bool) string {
	tokens := templateSelect(p, vd, conjugated)
	var out []string
	for _, tok := range tokens {
		base, suffix := splitToken(tok)
		sub := substitute(actor, p, vd, view, conjugated, base)
		if sub == "" && suffix == "" {
			continue
		}
		if sub == "" {
			// Attach bare punctuation to the previous word.
			if n := len(out); n > 0 {
				out[n-1] += suffix
			}
			continue
		}
		out = append(out, sub+suffix)
	}
	return strings.Join(out, " ")
}

func substitute(actor *world.Living, p *ParseResult, vd VerbDef, view viewpoint, conjugated bool, tok string) string {
	if strings.HasSuffix(tok, "$") {
		stem := strings.TrimSuffix(tok, "$")
		if conjugated {
			return conjugate(stem)
		}
		return stem
	}
	switch tok {
	case "WHO":
		return whoText(actor, p, view)
	case "YOUR":
		if view == viewActor {
			return "your"
		}
		return actor.Gender.Possessive()
	case "MY":
		if view == viewActor {
			return "your"
		}
		return actor.Gender.Objective()
	case "POSS":
		return possText(actor, p, view)
	case "SUBJ":
		return subjText(actor, p, view)
	case "IS":
		if len(p.Who) > 1 || view == viewTarget {
			return "are"
		}
		return "is"
	case "HOW":
		if p.Adverb != "" {
			return p.Adverb
		}
		return vd.Adverb
	case "WHERE":
		if p.BodyPart != "" {
			return BodyParts[p.BodyPart]
		}
		return vd.Where
	case "WHAT":
		return p.Message
	case "MSG":
		if strings.HasPrefix(p.Message, "'") {
			return strings.TrimPrefix(p.Message, "'")
		}
		return "'" + p.Message + "'"
	case "AT":
		if len(p.Who) == 0 {
			return ""
		}
		who := whoText(actor, p, view)
		if vd.Prep == "" {
			return who
		}
		return vd.Prep + " " + who
	}
	return tok
}

// whoText renders the target list for one viewpoint. The target's own
// view collapses the list to "you".
func whoText(actor *world.Living, p *ParseResult, view viewpoint) string {
	if view == viewTarget {
		return "you"
	}
	names := make([]string, 0, len(p.Who))
	for _, w := range p.Who {
		switch {
		case w.Living == actor && view == viewActor:
			names = append(names, "yourself")
		case w.Living == actor:
			names = append(names, actor.Gender.Reflexive())
		default:
			names = append(names, w.Title())
		}
	}
	return lang.Join(names)
}

// possText renders the possessive of the target list.
func possText(actor *world.Living, p *ParseResult, view viewpoint) string {
	if view == viewTarget {
		return "your"
	}
	names := make([]string, 0, len(p.Who))
	for _, w := range p.Who {
		switch {
		case w.Living == actor && view == viewActor:
			names = append(names, "your own")
		case w.Living == actor:
			names = append(names, actor.Gender.Possessive()+" own")
		default:
			names = append(names, lang.Possessive(w.Title()))
		}
	}
	if len(names) == 0 {
		if view == viewActor {
			return "your"
		}
		return actor.Gender.Possessive()
	}
	return lang.Join(names)
}

func subjText(actor *world.Living, p *ParseResult, view viewpoint) string {
	if len(p.Who) > 1 {
		return "they"
	}
	if view == viewTarget {
		return "you"
	}
	if len(p.Who) == 1 {
		if lv := p.Who[0].Living; lv != nil {
			return lv.Gender.Subjective()
		}
		return "it"
	}
	return actor.Gender.Subjective()
}
