package newsapi

import (
	"strings"
	"time"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

type sample struct {
	id, title, description, content, source, author, image string
}

var samples = []sample{
	{
		"sample-1",
		"Scientists Discover New Evidence of Water on Mars",
		"NASA researchers have found compelling evidence of subsurface water ice on Mars, opening new possibilities for future exploration.",
		"In a groundbreaking discovery, NASA scientists have detected significant deposits of water ice beneath the Martian surface. This finding could revolutionize our understanding of the Red Planet and pave the way for future human missions.",
		"BBC News", "Science Correspondent",
		"https://images.unsplash.com/photo-1614728263952-84ea256f9679?w=800",
	},
	{
		"sample-2",
		"Global Climate Summit Reaches Historic Agreement",
		"World leaders commit to ambitious carbon reduction targets at the international climate conference.",
		"Leaders from over 190 countries have agreed to unprecedented measures to combat climate change, including significant reductions in carbon emissions over the next decade.",
		"Reuters", "Environment Editor",
		"https://images.unsplash.com/photo-1569163139599-0f4517e36f51?w=800",
	},
	{
		"sample-3",
		"Breakthrough in Renewable Energy Storage Technology",
		"New battery technology promises to make solar and wind power more reliable and accessible.",
		"Scientists have developed a revolutionary battery technology that can store renewable energy for weeks, potentially solving one of the biggest challenges in the transition to clean energy.",
		"Al Jazeera", "Technology Reporter",
		"https://images.unsplash.com/photo-1509391366360-2e959784a276?w=800",
	},
	{
		"sample-4",
		"Medical Research Shows Promise in Treating Age-Related Diseases",
		"New treatments could help millions of elderly patients lead healthier lives.",
		"A team of international researchers has made significant progress in understanding the biological mechanisms of aging, leading to potential treatments for diseases like Alzheimer's and Parkinson's.",
		"Associated Press", "Health Correspondent",
		"https://images.unsplash.com/photo-1576091160399-112ba8d25d1d?w=800",
	},
	{
		"sample-5",
		"Space Telescope Captures Stunning Images of Distant Galaxy",
		"The images reveal new details about the formation of stars and planets billions of light years away.",
		"Astronomers have released breathtaking images from the latest space telescope, showing unprecedented details of a galaxy formed just 500 million years after the Big Bang.",
		"BBC News", "Science Editor",
		"https://images.unsplash.com/photo-1462331940025-496dfbfc7564?w=800",
	},
	{
		"sample-6",
		"Ocean Conservation Efforts Show Positive Results",
		"Marine protected areas are helping fish populations recover in key regions.",
		"A decade of conservation efforts is finally paying off as marine biologists report significant recovery of fish populations in protected ocean areas around the world.",
		"Reuters", "Environment Correspondent",
		"https://images.unsplash.com/photo-1583212292454-1fe6229603b7?w=800",
	},
	{
		"sample-7",
		"Archaeological Discovery Reveals Ancient Civilization's Advanced Knowledge",
		"Excavations uncover evidence of sophisticated astronomical understanding in ancient cultures.",
		"Archaeologists have uncovered artifacts that suggest ancient civilizations had far more advanced understanding of astronomy and mathematics than previously thought.",
		"The Hindu", "Culture Reporter",
		"https://images.unsplash.com/photo-1599946347371-68eb71b16afc?w=800",
	},
	{
		"sample-8",
		"New Study Highlights Benefits of Forest Preservation",
		"Forests play even larger role in climate regulation than previously estimated.",
		"A comprehensive global study has revealed that forests absorb 30% more carbon dioxide than previously calculated, emphasizing the critical importance of forest preservation.",
		"Al Jazeera", "Climate Correspondent",
		"https://images.unsplash.com/photo-1448375240586-882707db888b?w=800",
	},
	{
		"sample-9",
		"Community Gardens Transform Urban Neighborhoods",
		"Urban gardening initiatives bring communities together while improving local food security.",
		"Cities around the world are seeing the transformative power of community gardens, which not only provide fresh produce but also create spaces for neighbors to connect and support each other.",
		"Associated Press", "Community Reporter",
		"https://images.unsplash.com/photo-1416879595882-3373a0480b5b?w=800",
	},
	{
		"sample-10",
		"Astronomers Detect Signals from Exoplanet's Atmosphere",
		"The discovery could help identify planets capable of supporting life.",
		"For the first time, scientists have detected water vapor and other molecules in the atmosphere of an exoplanet in the habitable zone of its star, bringing us closer to finding potentially habitable worlds.",
		"BBC News", "Space Correspondent",
		"https://images.unsplash.com/photo-1444703686981-a3abbc4d4fe3?w=800",
	},
	{
		"sample-11",
		"Teen Overcomes Disability to Become Paralympic Champion",
		"Against all odds, a young athlete with a rare condition has triumphed at the international games.",
		"Born with a rare genetic condition that doctors said would prevent her from ever walking, Maria has not only learned to walk but has become a Paralympic gold medalist through years of determination and perseverance.",
		"BBC News", "Sports Correspondent",
		"https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=800",
	},
	{
		"sample-12",
		"Community Rebuilds After Natural Disaster Through Unity",
		"Neighbors come together to rebuild homes and lives after devastating earthquake.",
		"In the aftermath of a devastating earthquake, a small community has shown remarkable resilience. Through collective effort and unwavering hope, they have rebuilt not just structures but stronger bonds of human connection.",
		"Reuters", "Community Reporter",
		"https://images.unsplash.com/photo-1469571486292-0ba58a3f068b?w=800",
	},
}

// sampleCues selects the samples shown for a category when offline.
var sampleCues = map[string][]string{
	"inspiration": {"community", "overcome", "champion", "rebuild", "conservation"},
	"science":     {"scien", "discover", "space", "research", "astronomers", "telescope"},
	"nature":      {"ocean", "forest", "marine", "climate", "conservation"},
	"health":      {"medical", "health", "treat", "patients"},
}

// SampleNews returns the built-in demo articles, stamped with the current time.
func SampleNews() []models.ArticleRecord {
	now := time.Now().UTC()
	out := make([]models.ArticleRecord, len(samples))
	for i, s := range samples {
		out[i] = models.ArticleRecord{
			ID:          s.id,
			Title:       s.title,
			Description: s.description,
			Content:     s.content,
			Source:      s.source,
			Author:      s.author,
			ImageURL:    s.image,
			PublishedAt: now,
		}
	}
	return out
}

// SampleNewsByCategory returns the demo articles whose title or description
// hints at the category. Unknown categories get every sample.
func SampleNewsByCategory(categoryID string) []models.ArticleRecord {
	all := SampleNews()
	cues, ok := sampleCues[categoryID]
	if !ok {
		return all
	}

	var out []models.ArticleRecord
	for _, a := range all {
		text := strings.ToLower(a.Title + " " + a.Description)
		for _, cue := range cues {
			if strings.Contains(text, cue) {
				a.Category = categoryID
				out = append(out, a)
				break
			}
		}
	}
	return out
}
