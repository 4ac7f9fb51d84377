package bot

import (
	"math/rand"
	"strings"
)

var english = []string{
	"about", "after", "again", "agree", "almost", "always", "amazing", "anyone",
	"around", "because", "before", "better", "between", "bring", "build",
	"busy", "change", "check", "clean", "clear", "close", "coffee", "come",
	"cool", "could", "day", "definitely", "doing", "done", "down", "early",
	"easy", "enough", "every", "exactly", "fair", "fast", "feel", "find",
	"fine", "first", "fun", "getting", "going", "good", "great", "guess",
	"hard", "have", "hear", "hello", "help", "here", "home", "hope", "idea",
	"just", "keep", "kind", "know", "last", "late", "later", "learn", "left",
	"like", "listen", "little", "long", "look", "lunch", "make", "maybe",
	"mean", "meet", "might", "more", "morning", "move", "much", "need",
	"never", "new", "next", "nice", "night", "nothing", "now", "okay", "once",
	"only", "other", "over", "people", "place", "plan", "play", "point",
	"pretty", "probably", "question", "quick", "quite", "read", "ready",
	"really", "right", "running", "said", "same", "see", "share", "should",
	"show", "size", "sleep", "slow", "small", "some", "soon", "sorry",
	"sound", "start", "stay", "still", "stop", "story", "sure", "take",
	"talk", "team", "tell", "thanks", "that", "then", "there", "thing",
	"think", "time", "today", "together", "tomorrow", "totally", "true",
	"turn", "understand", "wait", "walk", "want", "watch", "water", "week",
	"weird", "well", "what", "when", "where", "while", "will", "with",
	"work", "world", "would", "write", "yeah", "yes", "yet", "your",
}

var emojis = []string{
	"🙂", "😂", "😅", "🤔", "👍", "👀", "🎉", "🔥", "🚀", "💯", "✨", "☕",
}

// Sentence returns a random chat line of 2-10 words, half the time suffixed
// with an emoji. Generated lines stay well under the inbound payload limit.
func Sentence(rng *rand.Rand) string {
	var sb strings.Builder
	words := 2 + rng.Intn(9)
	for i := 0; i < words; i++ {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(english[rng.Intn(len(english))])
	}
	if rng.Intn(2) == 0 {
		sb.WriteByte(' ')
		sb.WriteString(emojis[rng.Intn(len(emojis))])
	}
	return sb.String()
}
