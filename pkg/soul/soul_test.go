package soul

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyloom/storyloom/pkg/lang"
	"github.com/storyloom/storyloom/pkg/world"
)

type soulEnv struct {
	room   *world.Location
	julie  *world.Living
	max    *world.Living
	philip *world.Living
	kate   *world.Living
	cat    *world.Living
}

func newSoulEnv(t *testing.T) *soulEnv {
	t.Helper()
	env := &soulEnv{
		room:   world.NewLocation("square", "The town square."),
		julie:  world.NewLiving("julie", lang.Female, "human"),
		max:    world.NewLiving("max", lang.Male, "human"),
		philip: world.NewLiving("philip", lang.Male, "human"),
		kate:   world.NewLiving("kate", lang.Female, "human"),
		cat:    world.NewLiving("cat", lang.Neuter, "cat"),
	}
	env.julie.Title = "Julie"
	env.kate.Title = "Kate"
	env.cat.Title = "the hairy cat"
	for _, lv := range []*world.Living{env.julie, env.max, env.philip, env.kate, env.cat} {
		lv.MoveTo(env.room, nil)
	}
	return env
}

func TestGenderDependentRendering(t *testing.T) {
	env := newSoulEnv(t)
	for gender, want := range map[lang.Gender]string{
		lang.Female: "Julie stomps her foot.",
		lang.Male:   "Julie stomps his foot.",
		lang.Neuter: "Julie stomps its foot.",
	} {
		env.julie.Gender = gender
		_, msgs, err := Socialize(env.julie, "stomp")
		require.NoError(t, err)
		assert.Equal(t, want, msgs.Room)
		assert.Equal(t, "You stomp your foot.", msgs.Player)
		assert.Empty(t, msgs.Target)
	}
}

func TestTargetedYellWithAdverbAndMessage(t *testing.T) {
	env := newSoulEnv(t)
	parsed, msgs, err := Socialize(env.julie, "yell 'why' angrily at max")
	require.NoError(t, err)
	assert.Equal(t, "You yell 'why' angrily at max.", msgs.Player)
	assert.Equal(t, "Julie yells 'why' angrily at max.", msgs.Room)
	assert.Equal(t, "Julie yells 'why' angrily at you.", msgs.Target)
	require.Len(t, parsed.Who, 1)
	assert.Same(t, env.max, parsed.Who[0].Living)
}

func TestSmileAtEveryone(t *testing.T) {
	env := newSoulEnv(t)
	parsed, msgs, err := Socialize(env.julie, "smile confusedly at everyone")
	require.NoError(t, err)
	assert.Equal(t, "Julie smiles confusedly at you.", msgs.Target)
	assert.Equal(t, "Julie smiles confusedly at max, philip, Kate, and the hairy cat.", msgs.Room)
	for _, w := range parsed.Who {
		assert.NotSame(t, env.julie, w.Living)
	}
	assert.Len(t, parsed.Who, 4)
}

func TestQualifierWrapsUnconjugatedAction(t *testing.T) {
	env := newSoulEnv(t)
	_, msgs, err := Socialize(env.julie, "fail tickle max")
	require.NoError(t, err)
	assert.Equal(t, "You try to tickle max, but fail miserably.", msgs.Player)
	assert.Equal(t, "Julie tries to tickle max, but fails miserably.", msgs.Room)
	assert.Equal(t, "Julie tries to tickle you, but fails miserably.", msgs.Target)
}

func TestQualifierWrapsConjugatedAction(t *testing.T) {
	env := newSoulEnv(t)
	_, msgs, err := Socialize(env.julie, "suddenly stomp")
	require.NoError(t, err)
	assert.Equal(t, "You suddenly stomp your foot.", msgs.Player)
	assert.Equal(t, "Julie suddenly stomps her foot.", msgs.Room)
}

func TestBodyPartAndDefaultWhere(t *testing.T) {
	env := newSoulEnv(t)
	_, msgs, err := Socialize(env.julie, "pat max")
	require.NoError(t, err)
	assert.Equal(t, "You pat max on the head.", msgs.Player)

	_, msgs, err = Socialize(env.julie, "pat max on the arm")
	require.NoError(t, err)
	assert.Equal(t, "You pat max on the arm.", msgs.Player)
	assert.Equal(t, "Julie pats you on the arm.", msgs.Target)
}

func TestSelfTargetReflexive(t *testing.T) {
	env := newSoulEnv(t)
	_, msgs, err := Socialize(env.julie, "tickle me")
	require.NoError(t, err)
	assert.Equal(t, "You tickle yourself.", msgs.Player)
	assert.Equal(t, "Julie tickles herself.", msgs.Room)
}

func TestExceptInvertsIncludeFlag(t *testing.T) {
	env := newSoulEnv(t)
	parsed, _, err := Socialize(env.julie, "smile at everyone except max")
	require.NoError(t, err)
	assert.Len(t, parsed.Who, 3)
	for _, w := range parsed.Who {
		assert.NotSame(t, env.max, w.Living)
	}
}

func TestAdverbPrefixResolution(t *testing.T) {
	env := newSoulEnv(t)
	parsed, _, err := Socialize(env.julie, "smile confus at max")
	require.NoError(t, err)
	assert.Equal(t, "confusedly", parsed.Adverb)
}

func TestAdverbPrefixAmbiguity(t *testing.T) {
	env := newSoulEnv(t)
	_, _, err := Socialize(env.julie, "smile conf at max")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confidently")
	assert.Contains(t, err.Error(), "confusedly")
}

func TestDoubleAdverbIsAnError(t *testing.T) {
	env := newSoulEnv(t)
	_, _, err := Socialize(env.julie, "smile angrily confusedly")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "angrily")
	assert.Contains(t, err.Error(), "confusedly")
}

func TestDoubleBodyPartIsAnError(t *testing.T) {
	env := newSoulEnv(t)
	_, _, err := Socialize(env.julie, "pat max on the head hand")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "on the head")
	assert.Contains(t, err.Error(), "on the hand")
}

func TestAmbiguousPronoun(t *testing.T) {
	env := newSoulEnv(t)
	_, _, err := Socialize(env.julie, "kiss him")
	require.Error(t, err)
	assert.Equal(t, "It is not clear who you mean.", err.Error())
}

func TestUnknownWordIsAnError(t *testing.T) {
	env := newSoulEnv(t)
	_, _, err := Socialize(env.julie, "smile zzyzx")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Msg, "zzyzx")
}

func TestUnknownVerb(t *testing.T) {
	env := newSoulEnv(t)
	_, err := Parse(env.julie, "frobnicate max", nil)
	var uerr *UnknownVerbError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "frobnicate", uerr.Verb)
}

func TestExternalVerbCollectsArgs(t *testing.T) {
	env := newSoulEnv(t)
	parsed, err := Parse(env.julie, "give wallet to max", map[string]bool{"give": true})
	require.NoError(t, err)
	assert.Equal(t, "give", parsed.Verb)
	require.Len(t, parsed.Who, 1)
	info := parsed.WhoInfo[parsed.Who[0]]
	assert.Equal(t, "to", info.PreviousWord)
}

func TestDoubleQuotedMessageKeepsPunctuation(t *testing.T) {
	env := newSoulEnv(t)
	parsed, msgs, err := Socialize(env.julie, `yell "hello, there!" at max`)
	require.NoError(t, err)
	assert.Equal(t, "hello, there!", parsed.Message)
	assert.Equal(t, "You yell 'hello, there!' at max.", msgs.Player)
}

func TestUnquotedMultiWordMessage(t *testing.T) {
	env := newSoulEnv(t)
	parsed, _, err := Socialize(env.julie, "yell why did max")
	require.NoError(t, err)
	assert.Equal(t, "why did", parsed.Message)
	require.Len(t, parsed.Who, 1)
	assert.Same(t, env.max, parsed.Who[0].Living)
}

func TestMessageVerbWithoutMessage(t *testing.T) {
	env := newSoulEnv(t)
	_, _, err := Socialize(env.julie, "yell at max")
	require.Error(t, err)
	assert.Equal(t, "Yell what?", err.Error())
}

func TestTargetRequired(t *testing.T) {
	env := newSoulEnv(t)
	_, _, err := Socialize(env.julie, "tickle")
	require.Error(t, err)
	assert.Equal(t, "Tickle whom?", err.Error())
}

func TestUnparsedReparsesEquivalently(t *testing.T) {
	env := newSoulEnv(t)
	parsed, _, err := Socialize(env.julie, "fail yell 'why' angrily at max")
	require.NoError(t, err)
	again, err := Parse(env.julie, parsed.Unparsed, nil)
	require.NoError(t, err)
	assert.Equal(t, parsed.Verb, again.Verb)
	assert.Equal(t, parsed.Qualifier, again.Qualifier)
	assert.Equal(t, parsed.Adverb, again.Adverb)
	assert.Equal(t, parsed.Message, again.Message)
	assert.Equal(t, parsed.Who, again.Who)
}

func TestWhoOrderIsStable(t *testing.T) {
	env := newSoulEnv(t)
	parsed, _, err := Socialize(env.julie, "smile at kate and max and philip")
	require.NoError(t, err)
	require.Len(t, parsed.Who, 3)
	assert.Same(t, env.kate, parsed.Who[0].Living)
	assert.Same(t, env.max, parsed.Who[1].Living)
	assert.Same(t, env.philip, parsed.Who[2].Living)
	assert.Equal(t, 0, parsed.WhoInfo[parsed.Who[0]].Sequence)
	assert.Equal(t, 2, parsed.WhoInfo[parsed.Who[2]].Sequence)
}

func TestConjugation(t *testing.T) {
	assert.Equal(t, "stomps", conjugate("stomp"))
	assert.Equal(t, "gazes", conjugate("gaze"))
	assert.Equal(t, "kisses", conjugate("kiss"))
	assert.Equal(t, "stretches", conjugate("stretch"))
	assert.Equal(t, "goes", conjugate("go"))
	assert.Equal(t, "has", conjugate("have"))
	assert.Equal(t, "tries", conjugate("try"))
}
