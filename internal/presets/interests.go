package presets

import "math/rand"

// InterestCorpus is the pool `npc random` draws interests from.
var InterestCorpus = []string{
	"day night cycle shifts affect patrols",
	"weather changes reduce long range visibility",
	"resource scarcity spikes change crafting priorities",
	"faction reputation shifts unlock hostile dialogue",
	"territory control flips alter spawn ownership",
	"quest branch outcomes reshape village behavior",
	"economy inflation raises merchant barter thresholds",
	"market volatility changes item rarity values",
	"seasonal biome transitions unlock migration routes",
	"enemy spawn surges trigger defensive formations",
	"boss phase transitions punish greedy attacks",
	"difficulty scaling thresholds alter damage windows",
	"party morale swings reduce combat coordination",
	"ally betrayal events change trust mechanics",
	"npc trust updates unlock secret interactions",
	"stealth detection changes force route adjustments",
	"combat stance changes alter stamina costs",
	"cooldown reset windows create burst opportunities",
	"buff stack decay weakens frontline pressure",
	"crowd panic spread changes evacuation paths",
	"city alert escalation increases guard density",
	"crime heat buildup triggers bounty hunters",
	"guard patrol shifts expose blind spots",
	"lockdown protocol activation blocks market access",
	"base defense integrity loss opens breaches",
	"structure damage stages impact repair costs",
	"repair state recovery restores turret accuracy",
	"fog of war reveals hidden ambushers",
	"checkpoint control flips open travel shortcuts",
	"portal cycle changes disrupt fast travel",
	"hazard zone expansion restricts safe routes",
	"radiation spikes force shelter prioritization",
	"corruption spread alters wildlife aggression patterns",
	"infection outbreak phases strain healing supplies",
	"energy grid overload events disable stations",
	"power restoration phases reboot security drones",
	"supply line disruptions starve frontline units",
	"convoy ambush outcomes shift regional morale",
	"diplomacy treaty status changes border access",
	"war declaration events trigger full mobilization",
	"ceasefire expiration reopens contested objectives",
	"siege progression stages weaken outer walls",
	"fortification breaches create new entry vectors",
	"loot tier unlocks improve drop quality",
	"crafting station upgrades shorten production times",
	"tech tree milestones unlock utility skills",
	"world event windows boost encounter density",
	"story chapter transitions change faction goals",
	"respawn timer changes punish reckless pushes",
	"permadeath flag toggles raise mission stakes",
}

const (
	minRandomInterests = 13
	maxRandomInterests = 17
)

// RandomInterestCount returns a count in [13, 17].
func RandomInterestCount(rng *rand.Rand) int {
	return minRandomInterests + rng.Intn(maxRandomInterests-minRandomInterests+1)
}

// PickInterests returns min(n, len(InterestCorpus)) distinct interests in
// random order. The corpus itself is not modified.
func PickInterests(rng *rand.Rand, n int) []string {
	shuffled := make([]string, len(InterestCorpus))
	copy(shuffled, InterestCorpus)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n < 0 {
		n = 0
	}
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
