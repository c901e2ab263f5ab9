package interpret

import (
	"strings"
	"unicode/utf16"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

const defaultTheme = "contemplation"

var verses = map[string][]models.Verse{
	"science": {
		{Text: "We will show them Our signs in the horizons and within themselves until it becomes clear to them that it is the truth.", Ref: "41:53"},
		{Text: "Do they not look at the camels, how they are created? And at the sky, how it is raised? And at the mountains, how they are erected? And at the earth, how it is spread out?", Ref: "88:17-20"},
		{Text: "Indeed, in the creation of the heavens and the earth and the alternation of the night and the day are signs for those of understanding.", Ref: "3:190"},
	},
	"nature": {
		{Text: "And it is He who sends down rain from the sky, and We produce thereby the growth of all things.", Ref: "6:99"},
		{Text: "And the earth - We have spread it and cast therein firmly set mountains and caused to grow therein something of every beautiful kind.", Ref: "50:7"},
		{Text: "Do you not see that Allah sends down rain from the sky and makes it flow as springs in the earth?", Ref: "39:21"},
	},
	"health": {
		{Text: "And when I am ill, it is He who cures me.", Ref: "26:80"},
		{Text: "O mankind, there has come to you instruction from your Lord and healing for what is in the breasts.", Ref: "10:57"},
		{Text: "We send down the Quran as a healing and mercy for the believers.", Ref: "17:82"},
	},
	"space": {
		{Text: "And We have certainly beautified the nearest heaven with stars.", Ref: "67:5"},
		{Text: "It is He who created the night and the day and the sun and the moon; all in an orbit are swimming.", Ref: "21:33"},
		{Text: "And He has subjected to you the night and day and the sun and moon, and the stars are subjected by His command.", Ref: "16:12"},
	},
	"technology": {
		{Text: "And He taught Adam the names - all of them.", Ref: "2:31"},
		{Text: "Read in the name of your Lord who created. Created man from a clinging substance. Read, and your Lord is the most Generous. Who taught by the pen. Taught man that which he knew not.", Ref: "96:1-5"},
		{Text: "And We have certainly honored the children of Adam.", Ref: "17:70"},
	},
	"economy": {
		{Text: "And do not consume one another's wealth unjustly or send it to the rulers in order that you might consume a portion of the wealth of the people in sin.", Ref: "2:188"},
		{Text: "O you who have believed, fulfill all contracts.", Ref: "5:1"},
		{Text: "And Allah has permitted trade and has forbidden interest.", Ref: "2:275"},
	},
	"social": {
		{Text: "O mankind, indeed We have created you from male and female and made you peoples and tribes that you may know one another.", Ref: "49:13"},
		{Text: "And cooperate in righteousness and piety, but do not cooperate in sin and aggression.", Ref: "5:2"},
		{Text: "The believers are but brothers, so make settlement between your brothers.", Ref: "49:10"},
	},
	"gratitude": {
		{Text: "And He gave you from all you asked of Him. And if you should count the favor of Allah, you could not enumerate them.", Ref: "14:34"},
		{Text: "If you are grateful, I will surely increase you in favor.", Ref: "14:7"},
		{Text: "So remember Me; I will remember you. And be grateful to Me and do not deny Me.", Ref: "2:152"},
	},
	"contemplation": {
		{Text: "And He has subjected to you whatever is in the heavens and whatever is on the earth - all from Him. Indeed in that are signs for a people who give thought.", Ref: "45:13"},
		{Text: "Then do they not reflect upon the Quran, or are there locks upon their hearts?", Ref: "47:24"},
		{Text: "Indeed, in the creation of the heavens and earth, and the alternation of the night and the day, and the ships which sail through the sea with that which benefits people... are signs for a people who use reason.", Ref: "2:164"},
	},
	"hope": {
		{Text: "So verily, with the hardship, there is relief. Verily, with the hardship, there is relief.", Ref: "94:5-6"},
		{Text: "And whoever fears Allah - He will make for him a way out. And will provide for him from where he does not expect.", Ref: "65:2-3"},
		{Text: "Do not lose hope in the mercy of Allah.", Ref: "39:53"},
	},
	"life": {
		{Text: "Every soul will taste death. Then to Us will you be returned.", Ref: "29:57"},
		{Text: "And We have certainly created man and We know what his soul whispers to him, and We are closer to him than his jugular vein.", Ref: "50:16"},
		{Text: "He who created death and life to test you as to which of you is best in deed.", Ref: "67:2"},
	},
}

// themes is checked in order; the first theme with the most hits wins.
var themes = []struct {
	name     string
	keywords []string
}{
	{"science", []string{"research", "study", "scientist", "discovery", "experiment", "laboratory", "findings", "evidence"}},
	{"nature", []string{"climate", "environment", "weather", "forest", "ocean", "wildlife", "animal", "plant", "tree", "water", "rain", "flood", "drought"}},
	{"health", []string{"health", "medical", "doctor", "hospital", "disease", "cure", "treatment", "vaccine", "medicine", "patient", "wellness"}},
	{"space", []string{"space", "nasa", "satellite", "planet", "star", "moon", "sun", "galaxy", "universe", "astronaut", "rocket", "mars", "asteroid"}},
	{"technology", []string{"technology", "ai", "artificial intelligence", "robot", "computer", "digital", "internet", "software", "innovation", "tech"}},
	{"economy", []string{"economy", "market", "stock", "trade", "business", "finance", "money", "bank", "investment", "gdp", "inflation"}},
	{"social", []string{"community", "society", "people", "family", "children", "education", "school", "culture", "peace", "unity", "cooperation"}},
	{"gratitude", []string{"gift", "blessing", "success", "achievement", "milestone", "celebrate", "award", "honor", "grateful"}},
	{"hope", []string{"hope", "recovery", "survive", "overcome", "resilience", "strength", "courage", "miracle", "rescue"}},
	{"life", []string{"life", "death", "birth", "age", "elderly", "generation", "mortality", "soul", "spirit"}},
}

// Theme returns the verse theme that best matches the text.
func Theme(title, content string) string {
	text := strings.ToLower(title + " " + content)

	best, bestHits := defaultTheme, 0
	for _, t := range themes {
		hits := 0
		for _, kw := range t.keywords {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = t.name, hits
		}
	}
	return best
}

// RelevantVerse picks a verse for an article. The same title always gets
// the same verse.
func RelevantVerse(title, content string) models.Verse {
	list := verses[Theme(title, content)]

	sum := 0
	for _, c := range utf16.Encode([]rune(title)) {
		sum += int(c)
	}
	return list[sum%len(list)]
}

// ReferencePassages are the teachings every prompt is grounded on.
func ReferencePassages() []models.Passage {
	return []models.Passage{
		{
			Content: "Spirituality is the direct result of contemplation, the kind of intellectual development that takes place when a believer ponders over the Creator and His creation. The source of spirituality is observation and reflection, rather than any sort of mysterious exercises.",
			Source:  "Centre for Peace and Spirituality",
		},
		{
			Content: "Gratitude is not just saying thanks; it is recognizing God's blessings in every moment. When we develop this awareness, even ordinary events become extraordinary signs of divine wisdom.",
			Source:  "Centre for Peace and Spirituality",
		},
		{
			Content: "The universe is like a vast book, and those who contemplate it discover the glory of its Author. Every scientific discovery is an unveiling of God's creative wisdom.",
			Source:  "Centre for Peace and Spirituality",
		},
	}
}
