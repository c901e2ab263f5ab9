// Package models defines the core data structures for Spiritual Reflections.
package models

// Category is the display metadata of a news section.
type Category struct {
	ID          string `bson:"_id" json:"id" yaml:"id"`
	Name        string `bson:"name" json:"name" yaml:"name"`
	Description string `bson:"description" json:"description" yaml:"description"`
	Icon        string `bson:"icon" json:"icon" yaml:"icon"`
	Priority    int    `bson:"priority" json:"priority" yaml:"priority"`
}

// QuranicConcept is a theme an interpretation may draw on.
type QuranicConcept struct {
	Name        string   `json:"name"`
	ArabicName  string   `json:"arabic_name"`
	Meaning     string   `json:"meaning"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// QuranicConcepts lists the concepts categories refer to by name.
var QuranicConcepts = []QuranicConcept{
	{Name: "Tawakkul", ArabicName: "توكل", Meaning: "Trust in God", Description: "Complete reliance on Allah while taking appropriate action", Keywords: []string{"trust", "rely", "faith", "depend", "confidence", "overcome", "hope"}},
	{Name: "Sabr", ArabicName: "صبر", Meaning: "Patience & Perseverance", Description: "Steadfastness in face of trials", Keywords: []string{"patience", "endure", "persevere", "steadfast", "wait", "trial", "difficulty"}},
	{Name: "Shukr", ArabicName: "شكر", Meaning: "Gratitude", Description: "Thankfulness to Allah for all blessings", Keywords: []string{"grateful", "thankful", "blessing", "gift", "appreciate", "favor"}},
	{Name: "Tafakkur", ArabicName: "تفكر", Meaning: "Contemplation", Description: "Deep reflection on Allah's creation", Keywords: []string{"think", "reflect", "ponder", "contemplate", "understand", "discover", "universe", "creation"}},
	{Name: "Ayat", ArabicName: "آيات", Meaning: "Signs of God", Description: "Recognizing Allah's signs in creation", Keywords: []string{"sign", "evidence", "proof", "wonder", "miracle", "creation", "nature"}},
	{Name: "Khalq", ArabicName: "خلق", Meaning: "Creation", Description: "Allah's creative power manifested in the universe", Keywords: []string{"create", "universe", "nature", "life", "origin", "beginning", "design"}},
	{Name: "Hidayah", ArabicName: "هداية", Meaning: "Guidance", Description: "Divine guidance toward the right path", Keywords: []string{"guide", "path", "direction", "lead", "show", "way"}},
	{Name: "Rizq", ArabicName: "رزق", Meaning: "Provision", Description: "Allah's provision and sustenance", Keywords: []string{"provision", "sustain", "provide", "gift", "blessing", "resource"}},
}

// GetQuranicConcept returns a concept by name.
func GetQuranicConcept(name string) *QuranicConcept {
	for _, c := range QuranicConcepts {
		if c.Name == name {
			return &c
		}
	}
	return nil
}
