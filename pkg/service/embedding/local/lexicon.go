package local

// stopwords carry no topical signal and are dropped before hashing
var stopwords = toSet(
	"a", "about", "after", "again", "all", "also", "am", "an", "and", "any", "are", "as", "at",
	"be", "been", "before", "being", "both", "but", "by",
	"can", "could", "did", "do", "does", "doing", "done", "for", "from",
	"had", "has", "have", "having", "he", "her", "here", "hers", "him", "his", "how",
	"i", "if", "im", "in", "into", "is", "it", "its", "just", "me", "mine", "more", "most", "my", "myself",
	"no", "not", "now", "of", "off", "on", "once", "only", "or", "other", "our", "ours", "out", "over", "own",
	"really", "same", "she", "should", "so", "some", "such",
	"than", "that", "the", "their", "theirs", "them", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "us", "very",
	"was", "we", "were", "what", "when", "where", "which", "while", "who", "whom", "why", "will", "with", "would",
	"you", "your", "yours", "yourself",
)

// concepts groups words that should land close together even when they do
// not share a surface form. A question about eating then matches a statement
// about pasta.
var concepts = buildConcepts(map[string][]string{
	"preference": {
		"like", "liked", "love", "loved", "favorite", "favourite", "enjoy", "enjoyed",
		"prefer", "preferred", "fan", "adore", "fond", "passion",
	},
	"aversion": {
		"hate", "hated", "dislike", "disliked", "avoid", "allergic", "allergy", "detest",
	},
	"food": {
		"eat", "eating", "ate", "food", "meal", "pasta", "pizza", "dinner", "lunch", "breakfast",
		"cook", "cooking", "dish", "cuisine", "restaurant", "snack", "taste", "sushi", "burger",
		"salad", "noodle", "ramen", "rice", "bread", "cheese", "dessert", "chocolate", "vegan",
		"vegetarian", "spicy", "curry", "steak", "soup", "fruit", "hungry", "recipe", "bake", "baking",
	},
	"drink": {
		"drink", "drinking", "coffee", "tea", "beer", "wine", "juice", "water", "cocktail", "espresso", "latte",
	},
	"outdoors": {
		"hiking", "hike", "mountain", "trail", "camping", "camp", "outdoor", "outdoors", "nature",
		"forest", "climbing", "climb", "lake", "river", "beach", "park", "garden", "gardening",
	},
	"sport": {
		"sport", "soccer", "football", "basketball", "tennis", "golf", "running", "run", "gym",
		"yoga", "swim", "swimming", "cycling", "bike", "ski", "skiing", "workout", "exercise", "marathon",
	},
	"travel": {
		"travel", "traveling", "travelling", "trip", "vacation", "holiday", "flight", "visit",
		"visited", "abroad", "country", "city", "tour", "journey", "passport", "hotel",
	},
	"work": {
		"work", "working", "job", "office", "career", "boss", "colleague", "meeting", "project",
		"deadline", "company", "employer", "salary", "manager", "team", "client", "promotion",
	},
	"family": {
		"family", "mother", "mom", "father", "dad", "parent", "sister", "brother", "sibling",
		"wife", "husband", "partner", "son", "daughter", "child", "children", "kid", "grandma",
		"grandpa", "married", "wedding", "baby",
	},
	"pet": {
		"pet", "dog", "cat", "puppy", "kitten", "bird", "fish", "hamster", "rabbit",
	},
	"music": {
		"music", "song", "songs", "band", "concert", "guitar", "piano", "sing", "singing", "album", "jazz", "rock",
	},
	"reading": {
		"book", "read", "reading", "novel", "author", "library", "story", "poetry", "magazine",
	},
	"film": {
		"movie", "film", "cinema", "watch", "watching", "series", "show", "netflix", "actor", "anime",
	},
	"health": {
		"health", "doctor", "sick", "ill", "pain", "hospital", "medicine", "sleep", "tired",
		"stress", "anxiety", "diet", "weight", "headache", "therapy",
	},
	"tech": {
		"computer", "code", "coding", "programming", "software", "app", "phone", "laptop",
		"internet", "game", "gaming", "developer", "ai", "robot",
	},
	"home": {
		"home", "house", "apartment", "live", "living", "room", "rent", "move", "moved", "neighbor",
	},
	"study": {
		"school", "study", "studying", "university", "college", "class", "exam", "teacher", "student", "degree", "learn", "learning",
	},
})

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func buildConcepts(groups map[string][]string) map[string]string {
	out := make(map[string]string)
	for concept, words := range groups {
		for _, w := range words {
			out[w] = concept
		}
	}
	return out
}
