package chatbot

// KnowledgeBase holds the static business facts the assistant answers from.
// It is loaded once at startup and never mutated.
type KnowledgeBase struct {
	CompanyName   string
	Location      string
	Phone         string
	Email         string
	Services      []string
	SellingPoints []string
}

// DefaultKnowledge returns the knowledge base for KAS Waterproofing & Building Services.
func DefaultKnowledge() *KnowledgeBase {
	return &KnowledgeBase{
		CompanyName: "KAS Waterproofing & Building Services LLC",
		Location:    "319 S State Rd 7, Plantation, FL",
		Phone:       "954-982-2809",
		Email:       "ingrid@kaswaterproofingbuilding.com",
		Services: []string{
			"Construction",
			"Waterproofing",
			"Painting",
			"Remodeling",
			"Commercial Projects",
		},
		SellingPoints: []string{
			"Licensed & Insured",
			"Free Estimates",
			"Residential & Commercial",
			"South Florida Service Area",
		},
	}
}
