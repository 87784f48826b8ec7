package trends

// fallbackTable is the static topic pool used when the trends feed is
// unreachable. Entries are evergreen on purpose; exclusion of recently used
// entries is handled by the caller through the dedup store.
var fallbackTable = map[Category][]string{
	CategoryTechnology: {
		"How smartphones changed photography forever",
		"The hidden cost of free apps",
		"Why old video games never truly die",
		"The story of the first computer virus",
		"How GPS knows where you are",
		"Why QWERTY keyboards won",
	},
	CategoryScience: {
		"Why the sky is actually violet",
		"How vaccines train your immune system",
		"The deepest hole humans ever dug",
		"Why cats always land on their feet",
		"What happens inside a black hole",
		"How sleep cleans your brain",
	},
	CategoryHistory: {
		"The library that burned twice",
		"How spices started wars",
		"The shortest war in history",
		"Why Rome built straight roads",
		"The tale of the first marathon runner",
		"How salt was once worth gold",
	},
	CategoryNature: {
		"Trees that talk to each other underground",
		"The bird that never lands",
		"Why flamingos are pink",
		"The loudest animal on Earth",
		"How octopuses taste with their arms",
		"The forest older than the dinosaurs",
	},
	CategoryFinance: {
		"Why banks were invented by farmers",
		"The tulip that crashed an economy",
		"How credit scores actually work",
		"Why coins have ridged edges",
		"The island that used stones as money",
		"How inflation quietly shrinks savings",
	},
}

// FallbackTopics returns the static topic pool for a category, in fixed
// order so exclusion bookkeeping stays deterministic.
func FallbackTopics(category Category) []Topic {
	titles := fallbackTable[category]
	topics := make([]Topic, 0, len(titles))
	for _, title := range titles {
		topics = append(topics, Topic{Title: title, Category: category})
	}
	return topics
}

// Categories lists every category with a fallback pool.
func Categories() []Category {
	return []Category{
		CategoryTechnology,
		CategoryScience,
		CategoryHistory,
		CategoryNature,
		CategoryFinance,
	}
}
