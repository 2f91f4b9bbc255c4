package soul

// VerbType selects how a verb's templates are interpreted and how the
// three viewpoint messages are derived from them.
type VerbType int

const (
	// DEFA renders the implicit template "verb$ HOW AT".
	DEFA VerbType = iota
	// PREV requires a target: "verb$ [extra] WHO HOW".
	PREV
	// PHYS requires a target: "verb$ [extra] WHO HOW WHERE".
	PHYS
	// SHRT takes no target: "verb$ [extra] HOW".
	SHRT
	// PERS has two templates: without and with a target.
	PERS
	// SIMP has a single template with explicit escape slots.
	SIMP
	// DEUX has two parallel templates: actor viewpoint and observer
	// viewpoint, spelled out in full.
	DEUX
	// QUAD has four templates: no-target actor/observer and
	// with-target actor/observer.
	QUAD
)

// VerbDef is one entry in the verb table. Templates are strings of
// space-separated tokens; tokens ending in '$' are verb stems to
// conjugate per viewpoint, uppercase tokens are escape slots
// (WHO HOW WHERE WHAT MSG YOUR MY POSS SUBJ IS AT).
type VerbDef struct {
	VType  VerbType
	Adverb string   // default adverb when the player gives none
	Where  string   // default body-part phrase (PHYS verbs)
	Prep   string   // trailing preposition for the AT slot
	Extra  string   // extra words after the verb (PREV/PHYS/SHRT)
	Tmpl   []string // explicit templates (PERS/SIMP/DEUX/QUAD)
}

// Qualifier wraps a verb's action string to change its polarity or
// modality. Player and Room are format strings receiving the action;
// RoomConjugated selects whether the room form wraps the conjugated
// action (suddenly X-s) or the plain one (tries to X).
type Qualifier struct {
	Player         string
	Room           string
	RoomConjugated bool
}

// Qualifiers is the action-qualifier table, keyed by the leading word.
var Qualifiers = map[string]Qualifier{
	"suddenly": {"suddenly %s", "suddenly %s", true},
	"again":    {"%s again", "%s again", true},
	"fail":     {"try to %s, but fail miserably", "tries to %s, but fails miserably", false},
	"attempt":  {"attempt to %s", "attempts to %s", false},
	"pretend":  {"pretend to %s", "pretends to %s", false},
	"don't":    {"don't %s", "doesn't %s", false},
	"dont":     {"don't %s", "doesn't %s", false},
}

// BodyParts maps a body-part word to the phrase slotted into WHERE.
var BodyParts = map[string]string{
	"hand":     "on the hand",
	"arm":      "on the arm",
	"leg":      "on the leg",
	"thigh":    "on the thigh",
	"cheek":    "on the cheek",
	"face":     "in the face",
	"chest":    "on the chest",
	"stomach":  "in the stomach",
	"butt":     "in the butt",
	"behind":   "on the behind",
	"back":     "on the back",
	"head":     "on the head",
	"forehead": "on the forehead",
	"nose":     "on the nose",
	"neck":     "in the neck",
	"ear":      "on the ear",
	"eye":      "in the eye",
	"shoulder": "on the shoulder",
	"knee":     "on the knee",
	"kneecap":  "on the kneecap",
	"shin":     "on the shin",
	"ankle":    "on the ankle",
	"foot":     "on the foot",
	"hurts":    "where it hurts",
	"all":      "all over",
}

// AggressiveVerbs are emotes a story may treat as hostile acts.
var AggressiveVerbs = map[string]bool{
	"bonk": true, "kick": true, "punch": true, "push": true,
	"shove": true, "slap": true, "smack": true, "spank": true,
	"strangle": true, "tackle": true, "trip": true, "whack": true,
}

// NonLivingOK are emotes that may target items and exits too.
var NonLivingOK = map[string]bool{
	"admire": true, "caress": true, "examine": true, "feel": true,
	"kick": true, "lick": true, "poke": true, "point": true,
	"pat": true, "sniff": true, "stare": true, "tap": true,
	"tickle": true, "touch": true, "whack": true,
}

// MovementVerbs are words the dispatcher treats as movement when
// followed by an exit name.
var MovementVerbs = map[string]bool{
	"climb": true, "crawl": true, "enter": true, "go": true,
	"leave": true, "move": true, "run": true, "sprint": true,
	"walk": true,
}

// Verbs is the emote verb table.
var Verbs = map[string]VerbDef{
	// DEFA: "verb$ HOW AT"
	"agree":    {VType: DEFA, Prep: "with"},
	"apologize": {VType: DEFA, Prep: "to"},
	"applaud":  {VType: DEFA, Prep: "for"},
	"bark":     {VType: DEFA, Prep: "at"},
	"beam":     {VType: DEFA, Prep: "at"},
	"beckon":   {VType: DEFA, Prep: "to"},
	"blink":    {VType: DEFA, Prep: "at"},
	"blush":    {VType: DEFA, Prep: "at"},
	"bow":      {VType: DEFA, Prep: "to"},
	"cackle":   {VType: DEFA, Adverb: "gleefully", Prep: "at"},
	"chuckle":  {VType: DEFA, Prep: "at"},
	"cheer":    {VType: DEFA, Prep: "for"},
	"cringe":   {VType: DEFA, Prep: "from"},
	"croak":    {VType: DEFA, Prep: "at"},
	"crygasm":  {VType: DEFA, Prep: "at"},
	"curtsy":   {VType: DEFA, Prep: "before"},
	"dance":    {VType: DEFA, Prep: "with"},
	"disagree": {VType: DEFA, Prep: "with"},
	"drool":    {VType: DEFA, Prep: "at"},
	"flirt":    {VType: DEFA, Prep: "with"},
	"frown":    {VType: DEFA, Prep: "at"},
	"gasp":     {VType: DEFA, Prep: "at"},
	"giggle":   {VType: DEFA, Adverb: "merrily", Prep: "at"},
	"glare":    {VType: DEFA, Prep: "at"},
	"grin":     {VType: DEFA, Adverb: "evilly", Prep: "at"},
	"groan":    {VType: DEFA, Prep: "at"},
	"growl":    {VType: DEFA, Prep: "at"},
	"grunt":    {VType: DEFA, Prep: "at"},
	"hiccup":   {VType: DEFA},
	"hiss":     {VType: DEFA, Prep: "at"},
	"howl":     {VType: DEFA, Prep: "at"},
	"laugh":    {VType: DEFA, Prep: "at"},
	"meow":     {VType: DEFA, Prep: "at"},
	"moan":     {VType: DEFA, Prep: "at"},
	"nod":      {VType: DEFA, Prep: "at"},
	"pout":     {VType: DEFA, Prep: "at"},
	"purr":     {VType: DEFA, Prep: "at"},
	"scowl":    {VType: DEFA, Prep: "at"},
	"sigh":     {VType: DEFA, Prep: "at"},
	"smile":    {VType: DEFA, Prep: "at"},
	"smirk":    {VType: DEFA, Prep: "at"},
	"snarl":    {VType: DEFA, Prep: "at"},
	"sneer":    {VType: DEFA, Prep: "at"},
	"snicker":  {VType: DEFA, Prep: "at"},
	"sniffle":  {VType: DEFA},
	"snore":    {VType: DEFA},
	"snort":    {VType: DEFA, Prep: "at"},
	"sob":      {VType: DEFA},
	"squeal":   {VType: DEFA, Prep: "at"},
	"stare":    {VType: DEFA, Prep: "at"},
	"sulk":     {VType: DEFA, Prep: "at"},
	"wave":     {VType: DEFA, Adverb: "happily", Prep: "at"},
	"whistle":  {VType: DEFA, Prep: "at"},
	"wink":     {VType: DEFA, Adverb: "suggestively", Prep: "at"},
	"yawn":     {VType: DEFA, Prep: "at"},

	// PREV: "verb$ [extra] WHO HOW" (requires a target)
	"admire":       {VType: PREV},
	"caress":       {VType: PREV, Adverb: "gently"},
	"comfort":      {VType: PREV},
	"congratulate": {VType: PREV},
	"cuddle":       {VType: PREV, Adverb: "affectionately"},
	"embrace":      {VType: PREV, Adverb: "warmly"},
	"envy":         {VType: PREV},
	"forgive":      {VType: PREV},
	"greet":        {VType: PREV},
	"grope":        {VType: PREV},
	"hug":          {VType: PREV},
	"kiss":         {VType: PREV},
	"lick":         {VType: PREV},
	"mock":         {VType: PREV},
	"nominate":     {VType: PREV},
	"pity":         {VType: PREV},
	"push":         {VType: PREV},
	"salute":       {VType: PREV},
	"shove":        {VType: PREV},
	"sniff":        {VType: PREV},
	"squeeze":      {VType: PREV, Adverb: "fondly"},
	"strangle":     {VType: PREV},
	"tackle":       {VType: PREV},
	"taunt":        {VType: PREV},
	"tease":        {VType: PREV},
	"thank":        {VType: PREV},
	"tickle":       {VType: PREV},
	"touch":        {VType: PREV},
	"trust":        {VType: PREV},
	"welcome":      {VType: PREV},

	// PHYS: "verb$ [extra] WHO HOW WHERE" (requires a target)
	"bonk":  {VType: PHYS, Where: "on the head"},
	"kick":  {VType: PHYS, Adverb: "hard"},
	"pat":   {VType: PHYS, Where: "on the head"},
	"poke":  {VType: PHYS, Where: "in the ribs"},
	"prod":  {VType: PHYS, Where: "in the stomach"},
	"punch": {VType: PHYS, Adverb: "hard", Where: "in the face"},
	"slap":  {VType: PHYS, Where: "in the face"},
	"smack": {VType: PHYS, Where: "on the behind"},
	"spank": {VType: PHYS, Where: "on the butt"},
	"tap":   {VType: PHYS, Where: "on the shoulder"},
	"whack": {VType: PHYS, Where: "on the head"},

	// SHRT: "verb$ [extra] HOW" (no target)
	"blanch":   {VType: SHRT},
	"cough":    {VType: SHRT},
	"daydream": {VType: SHRT},
	"faint":    {VType: SHRT},
	"fidget":   {VType: SHRT, Adverb: "nervously"},
	"meditate": {VType: SHRT},
	"pace":     {VType: SHRT, Extra: "around"},
	"panic":    {VType: SHRT},
	"ponder":   {VType: SHRT, Extra: "the situation"},
	"pray":     {VType: SHRT},
	"shiver":   {VType: SHRT},
	"shudder":  {VType: SHRT},
	"stretch":  {VType: SHRT},
	"sweat":    {VType: SHRT, Adverb: "profusely"},
	"tremble":  {VType: SHRT},
	"twiddle":  {VType: SHRT, Extra: "YOUR thumbs"},
	"wince":    {VType: SHRT},
	"wobble":   {VType: SHRT},

	// PERS: two templates, without and with a target
	"gaze": {VType: PERS, Tmpl: []string{
		"gaze$ HOW around",
		"gaze$ HOW at WHO",
	}},
	"grovel": {VType: PERS, Tmpl: []string{
		"grovel$ HOW",
		"grovel$ HOW before WHO",
	}},
	"point": {VType: PERS, Tmpl: []string{
		"point$ HOW into the distance",
		"point$ HOW at WHO",
	}},
	"sing": {VType: PERS, Tmpl: []string{
		"sing$ a song HOW",
		"sing$ a song HOW to WHO",
	}},
	"stomp": {VType: PERS, Tmpl: []string{
		"stomp$ YOUR foot HOW",
		"stomp$ HOW on POSS foot",
	}},
	"wiggle": {VType: PERS, Tmpl: []string{
		"wiggle$ YOUR ears HOW",
		"wiggle$ YOUR ears HOW at WHO",
	}},

	// SIMP: a single template with explicit slots
	"chant":   {VType: SIMP, Tmpl: []string{"chant$ HOW WHAT"}},
	"curse":   {VType: SIMP, Prep: "at", Tmpl: []string{"curse$ WHAT HOW AT"}},
	"exclaim": {VType: SIMP, Tmpl: []string{"exclaim$ HOW WHAT!"}},
	"gossip":  {VType: SIMP, Prep: "with", Tmpl: []string{"gossip$ HOW AT about WHAT"}},
	"mumble":  {VType: SIMP, Prep: "to", Tmpl: []string{"mumble$ MSG HOW AT"}},
	"murmur":  {VType: SIMP, Prep: "to", Tmpl: []string{"murmur$ MSG HOW AT"}},
	"mutter":  {VType: SIMP, Prep: "to", Tmpl: []string{"mutter$ MSG HOW AT"}},
	"scream":  {VType: SIMP, Adverb: "loudly", Prep: "at", Tmpl: []string{"scream$ MSG HOW AT"}},
	"search":  {VType: SIMP, Prep: "", Tmpl: []string{"search$ HOW for something"}},
	"shout":   {VType: SIMP, Adverb: "loudly", Prep: "at", Tmpl: []string{"shout$ MSG HOW AT"}},
	"wail":    {VType: SIMP, Tmpl: []string{"wail$ HOW WHAT"}},
	"whisper": {VType: SIMP, Prep: "to", Tmpl: []string{"whisper$ MSG HOW AT"}},
	"yell":    {VType: SIMP, Adverb: "", Prep: "at", Tmpl: []string{"yell$ MSG HOW AT"}},

	// DEUX: actor template / observer template
	"collapse": {VType: DEUX, Tmpl: []string{
		"collapse HOW in a heap",
		"collapses HOW in a heap",
	}},
	"fall": {VType: DEUX, Tmpl: []string{
		"fall HOW down",
		"falls HOW down",
	}},
	"stumble": {VType: DEUX, Tmpl: []string{
		"stumble HOW and almost fall",
		"stumbles HOW and almost falls",
	}},
	"swoon": {VType: DEUX, Tmpl: []string{
		"swoon HOW and faint dead away",
		"swoons HOW and faints dead away",
	}},

	// QUAD: no-target actor/observer, with-target actor/observer
	"hide": {VType: QUAD, Tmpl: []string{
		"hide HOW",
		"hides HOW",
		"hide HOW behind WHO",
		"hides HOW behind WHO",
	}},
	"jump": {VType: QUAD, Tmpl: []string{
		"jump HOW up and down",
		"jumps HOW up and down",
		"jump HOW onto WHO",
		"jumps HOW onto WHO",
	}},
	"trip": {VType: QUAD, Tmpl: []string{
		"trip HOW over YOUR own feet",
		"trips HOW over YOUR own feet",
		"trip WHO HOW",
		"trips WHO HOW",
	}},
	"turn": {VType: QUAD, Tmpl: []string{
		"turn HOW around",
		"turns HOW around",
		"turn YOUR head HOW towards WHO",
		"turns YOUR head HOW towards WHO",
	}},
}

// IsVerb reports whether word is a soul emote verb.
func IsVerb(word string) bool {
	_, ok := Verbs[word]
	return ok
}

// expectsMessage reports whether the verb's templates contain a MSG or
// WHAT slot, meaning unmatched words may form a spoken message.
func expectsMessage(vd VerbDef) bool {
	for _, t := range vd.Tmpl {
		for _, tok := range splitTemplate(t) {
			if tok == "MSG" || tok == "WHAT" {
				return true
			}
		}
	}
	return false
}
