package domain

type Category string

const (
	CategoryIdentity  Category = "identity"
	CategoryHealth    Category = "health"
	CategoryWork      Category = "work"
	CategoryHousing   Category = "housing"
	CategoryForms     Category = "forms"
	CategoryLegal     Category = "legal"
	CategoryFinancial Category = "financial"
	CategoryOther     Category = "other"
)

// CategoryRule binds a category to its lowercase substring triggers.
type CategoryRule struct {
	Category Category
	Label    string
	Keywords []string
}

// categoryRules is scanned in declaration order; the first rule with a matching keyword wins.
var categoryRules = []CategoryRule{
	{
		Category: CategoryIdentity,
		Label:    "Identity & Residence",
		Keywords: []string{
			"passport", "passaporto", "carta d'identità", "carta di identità", "identity", "id card",
			"permesso", "soggiorno", "residence permit", "visa", "visto", "citizenship", "cittadinanza",
		},
	},
	{
		Category: CategoryHealth,
		Label:    "Health",
		Keywords: []string{
			"health", "tessera sanitaria", "sanitari", "asl", "doctor", "medico", "medical",
			"hospital", "ospedale", "vaccin",
		},
	},
	{
		Category: CategoryWork,
		Label:    "Work",
		Keywords: []string{
			"contract", "contratto", "employment", "employer", "lavoro", "job", "payslip",
			"busta paga", "salary", "stipendio",
		},
	},
	{
		Category: CategoryHousing,
		Label:    "Housing",
		Keywords: []string{
			"housing", "rental", "affitto", "lease agreement", "locazione", "landlord", "apartment",
			"appartamento", "residenza", "utility", "bolletta",
		},
	},
	{
		Category: CategoryForms,
		Label:    "Forms & Applications",
		Keywords: []string{"modulo", "modello", "application", "domanda", "istanza", "questionnaire"},
	},
	{
		Category: CategoryLegal,
		Label:    "Legal",
		Keywords: []string{
			"legal", "court", "tribunale", "lawyer", "avvocato", "ricorso", "sentenza",
			"decreto", "multa", "notice",
		},
	},
	{
		Category: CategoryFinancial,
		Label:    "Financial & Tax",
		Keywords: []string{
			"bank", "banca", "tax", "tasse", "codice fiscale", "agenzia delle entrate", "invoice",
			"fattura", "iban", "f24", "isee", "inps",
		},
	},
}

// CategoryRules returns the classification table in scan order.
func CategoryRules() []CategoryRule {
	out := make([]CategoryRule, len(categoryRules))
	copy(out, categoryRules)
	return out
}

// Categories lists every category in display order, with other last.
func Categories() []Category {
	out := make([]Category, 0, len(categoryRules)+1)
	for _, rule := range categoryRules {
		out = append(out, rule.Category)
	}
	return append(out, CategoryOther)
}

func (c Category) Label() string {
	for _, rule := range categoryRules {
		if rule.Category == c {
			return rule.Label
		}
	}
	return "Other"
}

// CategoryGroup is one non-empty bucket of the vault grouped by category.
type CategoryGroup struct {
	Category  Category   `json:"category"`
	Label     string     `json:"label"`
	Documents []Document `json:"documents"`
}
