package lang

// Adverbs is the full adverb vocabulary, in lexicographic order.
// AdverbsByPrefix relies on this ordering for its binary search.
var Adverbs = []string{
	"absentmindedly",
	"accusingly",
	"admiringly",
	"adoringly",
	"affectionately",
	"angrily",
	"anxiously",
	"appreciatively",
	"apprehensively",
	"approvingly",
	"archly",
	"arrogantly",
	"attentively",
	"badly",
	"bashfully",
	"bitterly",
	"blankly",
	"bluntly",
	"boldly",
	"bravely",
	"breathlessly",
	"briefly",
	"brightly",
	"briskly",
	"broadly",
	"brutally",
	"calmly",
	"carefully",
	"carelessly",
	"casually",
	"cautiously",
	"cheekily",
	"cheerfully",
	"childishly",
	"civilly",
	"clearly",
	"cleverly",
	"clumsily",
	"coldly",
	"completely",
	"confidently",
	"confusedly",
	"contentedly",
	"coolly",
	"coyly",
	"craftily",
	"crazily",
	"cruelly",
	"curiously",
	"cutely",
	"cynically",
	"dangerously",
	"darkly",
	"dearly",
	"deeply",
	"defiantly",
	"deliberately",
	"delicately",
	"delightedly",
	"demandingly",
	"derisively",
	"desperately",
	"devilishly",
	"diabolically",
	"differently",
	"disappointedly",
	"disapprovingly",
	"disbelievingly",
	"discreetly",
	"disdainfully",
	"dismally",
	"distantly",
	"dreamily",
	"dubiously",
	"eagerly",
	"earnestly",
	"easily",
	"elegantly",
	"emotionally",
	"encouragingly",
	"energetically",
	"enthusiastically",
	"enviously",
	"evilly",
	"exasperatedly",
	"excitedly",
	"eximiously",
	"expectantly",
	"faintly",
	"fairly",
	"faithfully",
	"fearfully",
	"ferociously",
	"fiercely",
	"firmly",
	"flatly",
	"fondly",
	"foolishly",
	"formally",
	"frantically",
	"freely",
	"frivolously",
	"fully",
	"furiously",
	"gallantly",
	"generously",
	"gently",
	"gladly",
	"gleefully",
	"gracefully",
	"graciously",
	"gratefully",
	"gravely",
	"greedily",
	"grimly",
	"grumpily",
	"guiltily",
	"happily",
	"harshly",
	"hastily",
	"haughtily",
	"heartily",
	"heavily",
	"helpfully",
	"helplessly",
	"hesitantly",
	"honestly",
	"hopefully",
	"hopelessly",
	"humbly",
	"hungrily",
	"hurriedly",
	"hysterically",
	"icily",
	"idiotically",
	"impatiently",
	"impishly",
	"impolitely",
	"inconspicuously",
	"indecisively",
	"indignantly",
	"innocently",
	"inquisitively",
	"insanely",
	"insistently",
	"intensely",
	"interestedly",
	"ironically",
	"irritably",
	"jealously",
	"jovially",
	"joyfully",
	"jubilantly",
	"kindly",
	"knowingly",
	"lazily",
	"lightly",
	"longingly",
	"loudly",
	"lovingly",
	"loyally",
	"madly",
	"melodramatically",
	"menacingly",
	"mercilessly",
	"merrily",
	"mightily",
	"mischievously",
	"miserably",
	"mockingly",
	"modestly",
	"moodily",
	"mournfully",
	"mysteriously",
	"nastily",
	"nervously",
	"nicely",
	"noisily",
	"nonchalantly",
	"obediently",
	"obligingly",
	"obnoxiously",
	"oddly",
	"ominously",
	"openly",
	"outrageously",
	"passionately",
	"patiently",
	"peacefully",
	"pensively",
	"perfectly",
	"personally",
	"persuasively",
	"pityingly",
	"playfully",
	"pleadingly",
	"pleasantly",
	"politely",
	"pompously",
	"positively",
	"powerfully",
	"precisely",
	"profusely",
	"proudly",
	"provocatively",
	"purposefully",
	"questioningly",
	"quickly",
	"quietly",
	"quizzically",
	"rapidly",
	"reassuringly",
	"recklessly",
	"regretfully",
	"reluctantly",
	"remorsefully",
	"reproachfully",
	"resignedly",
	"respectfully",
	"romantically",
	"roughly",
	"rudely",
	"ruthlessly",
	"sadistically",
	"sadly",
	"sarcastically",
	"sardonically",
	"savagely",
	"scornfully",
	"secretively",
	"seductively",
	"sensually",
	"seriously",
	"shamelessly",
	"sharply",
	"sheepishly",
	"shyly",
	"silently",
	"sleepily",
	"slowly",
	"slyly",
	"smugly",
	"softly",
	"solemnly",
	"somberly",
	"soothingly",
	"stealthily",
	"sternly",
	"stubbornly",
	"stupidly",
	"suggestively",
	"sullenly",
	"suspiciously",
	"sweetly",
	"sympathetically",
	"tearfully",
	"tenderly",
	"tensely",
	"tentatively",
	"terribly",
	"thankfully",
	"thoroughly",
	"thoughtfully",
	"threateningly",
	"timidly",
	"tiredly",
	"totally",
	"tragically",
	"triumphantly",
	"truthfully",
	"understandingly",
	"uneasily",
	"unhappily",
	"unwillingly",
	"urgently",
	"vaguely",
	"viciously",
	"victoriously",
	"vigorously",
	"warily",
	"warmly",
	"weakly",
	"wearily",
	"wickedly",
	"wildly",
	"wisely",
	"wistfully",
	"woefully",
	"wolfishly",
	"wonderingly",
	"worriedly",
	"wryly",
	"zealously",
}
