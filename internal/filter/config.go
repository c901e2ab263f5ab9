// Package filter scores news articles for spiritual suitability and fits them
// into the site's categories. Everything here is a pure function of article
// text and the keyword tables the Filter was built with.
package filter

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/infoai1/spiritual-reflections/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a keyword table fails validation.
var ErrInvalidConfig = errors.New("invalid filter config")

// KeywordGroup is a named list of keywords matched as substrings.
type KeywordGroup struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// KeywordTiers weights category keywords by importance.
type KeywordTiers struct {
	High   []string `yaml:"high"`
	Medium []string `yaml:"medium"`
	Low    []string `yaml:"low"`
}

// Category is a news section together with the keywords that define it.
type Category struct {
	models.Category `yaml:",inline"`

	Keywords        KeywordTiers `yaml:"keywords"`
	SearchQueries   []string     `yaml:"search_queries"`
	QuranicConcepts []string     `yaml:"quranic_concepts"`
}

// Config is the complete keyword configuration of a Filter.
type Config struct {
	Positive   []KeywordGroup    `yaml:"positive"`
	Negative   []KeywordGroup    `yaml:"negative"`
	Categories []Category        `yaml:"categories"`
	Reasons    map[string]string `yaml:"reasons"`
}

// DefaultConfig returns a fresh copy of the built-in keyword tables.
func DefaultConfig() Config {
	return Config{
		Positive: []KeywordGroup{
			{Name: "nature", Keywords: []string{"nature", "natural", "wildlife", "forest", "ocean", "mountain", "river", "animal", "plant", "ecosystem"}},
			{Name: "science", Keywords: []string{"discovery", "research", "scientist", "study", "breakthrough", "found", "evidence", "phenomenon"}},
			{Name: "space", Keywords: []string{"space", "universe", "galaxy", "star", "planet", "cosmic", "astronomy", "nasa", "telescope", "mars", "moon"}},
			{Name: "environment", Keywords: []string{"climate", "environment", "conservation", "renewable", "sustainable", "green", "clean", "preservation"}},
			{Name: "health", Keywords: []string{"health", "medical", "cure", "treatment", "healing", "wellness", "recovery", "breakthrough"}},
			{Name: "technology", Keywords: []string{"innovation", "technology", "advancement", "progress", "development", "solution"}},
			{Name: "community", Keywords: []string{"community", "volunteer", "charity", "help", "support", "together", "unity", "peace"}},
			{Name: "wisdom", Keywords: []string{"wisdom", "knowledge", "education", "learning", "understanding", "ancient", "history"}},
			{Name: "wonder", Keywords: []string{"amazing", "remarkable", "extraordinary", "miracle", "wonder", "beautiful", "stunning", "incredible"}},
		},
		Negative: []KeywordGroup{
			{Name: "violence", Keywords: []string{"murder", "killed", "shooting", "attack", "terrorist", "bomb", "explosion", "war", "conflict", "violence"}},
			{Name: "crime", Keywords: []string{"crime", "criminal", "arrest", "prison", "jail", "robbery", "theft", "fraud", "scam"}},
			{Name: "politics", Keywords: []string{"election", "politician", "political", "campaign", "vote", "party", "opposition", "scandal"}},
			{Name: "celebrity", Keywords: []string{"celebrity", "hollywood", "bollywood", "movie star", "singer", "gossip", "divorce", "affair"}},
			{Name: "negative", Keywords: []string{"death toll", "disaster", "tragedy", "crisis", "collapse", "failure", "scandal", "controversy"}},
		},
		Categories: []Category{
			{
				Category: models.Category{
					ID:          "inspiration",
					Name:        "Inspiration",
					Description: "Real-life stories of people overcoming challenges creatively",
					Icon:        "💪",
					Priority:    1,
				},
				Keywords: KeywordTiers{
					High:   []string{"overcome", "triumph", "resilience", "perseverance", "courage", "against all odds", "remarkable story", "inspiring", "never gave up"},
					Medium: []string{"survive", "recover", "challenge", "determination", "hope", "success story", "hero", "strength"},
					Low:    []string{"achievement", "milestone", "breakthrough", "journey", "struggle"},
				},
				SearchQueries: []string{
					"overcome challenge success story",
					"inspiring recovery story",
					"against all odds triumph",
					"resilience perseverance story",
					"human spirit triumph",
				},
				QuranicConcepts: []string{"Tawakkul", "Sabr", "Shukr"},
			},
			{
				Category: models.Category{
					ID:          "science",
					Name:        "Science",
					Description: "Discoveries that inspire awe and God's remembrance",
					Icon:        "🔬",
					Priority:    2,
				},
				Keywords: KeywordTiers{
					High:   []string{"discovery", "breakthrough", "scientists find", "researchers discover", "first time ever", "evidence found", "new species"},
					Medium: []string{"research", "study finds", "experiment", "phenomenon", "universe", "galaxy", "nature reveals"},
					Low:    []string{"technology", "innovation", "advancement", "development", "analysis"},
				},
				SearchQueries: []string{
					"scientific discovery breakthrough",
					"space exploration discovery",
					"nature research findings",
					"universe astronomy discovery",
					"amazing scientific finding",
				},
				QuranicConcepts: []string{"Tafakkur", "Ayat", "Khalq"},
			},
			{
				Category: models.Category{
					ID:          "nature",
					Name:        "Nature",
					Description: "The living world as a sign of its Creator",
					Icon:        "🌿",
					Priority:    3,
				},
				Keywords: KeywordTiers{
					High:   []string{"wildlife", "ecosystem", "conservation", "rainforest", "coral reef", "endangered species", "biodiversity"},
					Medium: []string{"forest", "ocean", "river", "mountain", "migration", "habitat", "marine"},
					Low:    []string{"nature", "animal", "plant", "climate", "weather"},
				},
				SearchQueries: []string{
					"wildlife conservation success",
					"ocean ecosystem recovery",
					"endangered species rebound",
				},
				QuranicConcepts: []string{"Ayat", "Khalq", "Rizq"},
			},
			{
				Category: models.Category{
					ID:          "health",
					Name:        "Health",
					Description: "Healing, recovery and the blessing of well-being",
					Icon:        "🩺",
					Priority:    4,
				},
				Keywords: KeywordTiers{
					High:   []string{"cure", "new treatment", "medical breakthrough", "vaccine", "recovery", "healing"},
					Medium: []string{"patients", "clinical trial", "therapy", "doctors", "hospital", "wellness"},
					Low:    []string{"health", "medicine", "diet", "exercise", "care"},
				},
				SearchQueries: []string{
					"medical breakthrough treatment",
					"patient recovery story",
					"new cure discovered",
				},
				QuranicConcepts: []string{"Shukr", "Sabr", "Rizq"},
			},
		},
		Reasons: map[string]string{
			"nature":      "reflects on God's creation in nature",
			"science":     "scientific discovery reveals divine wisdom",
			"space":       "cosmic wonders demonstrate Creator's vastness",
			"environment": "reminds us of our duty as stewards of Earth",
			"health":      "shows blessings of life and healing",
			"technology":  "human ingenuity as a divine gift",
			"community":   "demonstrates unity and compassion",
			"wisdom":      "connects to timeless knowledge",
			"wonder":      "evokes awe at creation's marvels",
		},
	}
}

// LoadConfig reads a YAML keyword table from path. Sections missing from the
// file keep their built-in defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read filter config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, fmt.Errorf("parse filter config: %w", err)
	}

	cfg := DefaultConfig()
	if len(file.Positive) > 0 {
		cfg.Positive = file.Positive
	}
	if len(file.Negative) > 0 {
		cfg.Negative = file.Negative
	}
	if len(file.Categories) > 0 {
		cfg.Categories = file.Categories
	}
	for k, v := range file.Reasons {
		cfg.Reasons[k] = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that group and category names are present and unique.
func (c Config) Validate() error {
	if err := validateGroups("positive", c.Positive); err != nil {
		return err
	}
	if err := validateGroups("negative", c.Negative); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.ID == "" {
			return fmt.Errorf("%w: category %d has no id", ErrInvalidConfig, i)
		}
		if _, dup := seen[cat.ID]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidConfig, cat.ID)
		}
		seen[cat.ID] = struct{}{}
	}
	return nil
}

func validateGroups(kind string, groups []KeywordGroup) error {
	seen := make(map[string]struct{}, len(groups))
	for i, g := range groups {
		if g.Name == "" {
			return fmt.Errorf("%w: %s group %d has no name", ErrInvalidConfig, kind, i)
		}
		if _, dup := seen[g.Name]; dup {
			return fmt.Errorf("%w: duplicate %s group %q", ErrInvalidConfig, kind, g.Name)
		}
		seen[g.Name] = struct{}{}
	}
	return nil
}

// lowerAll returns a lower-cased copy of keywords with empty entries dropped.
// An empty keyword would match every text.
func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
