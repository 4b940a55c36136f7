package usecase

import "strings"

type Office struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ContactHint string `json:"contactHint"`
}

type officeRule struct {
	office   Office
	keywords []string
}

var officeRules = []officeRule{
	{
		office: Office{
			ID:          "questura",
			Name:        "Questura (Immigration Office)",
			Description: "Handles permesso di soggiorno, visas, and residence permits",
			ContactHint: "Find your local Questura email at poliziadistato.it",
		},
		keywords: []string{"permesso", "visa", "soggiorno"},
	},
	{
		office: Office{
			ID:          "prefettura",
			Name:        "Prefettura",
			Description: "Prefecture office for citizenship and administrative matters",
			ContactHint: "Find your local Prefettura at prefettura.[city].it",
		},
		keywords: []string{"cittadinanza", "citizenship"},
	},
	{
		office: Office{
			ID:          "comune",
			Name:        "Comune (Municipality)",
			Description: "Handles residency registration, certificates, and local services",
			ContactHint: "Find your Comune at comune.[city].it",
		},
		keywords: []string{"residenza", "residence", "anagrafe"},
	},
	{
		office: Office{
			ID:          "agenzia-entrate",
			Name:        "Agenzia delle Entrate",
			Description: "Tax office for codice fiscale and tax matters",
			ContactHint: "Contact via agenziaentrate.gov.it",
		},
		keywords: []string{"codice fiscale", "tax"},
	},
	{
		office: Office{
			ID:          "asl",
			Name:        "ASL (Local Health Authority)",
			Description: "Handles tessera sanitaria and healthcare enrollment",
			ContactHint: "Find your ASL at the regional health website",
		},
		keywords: []string{"tessera sanitaria", "health", "doctor"},
	},
	{
		office: Office{
			ID:          "motorizzazione",
			Name:        "Motorizzazione Civile",
			Description: "Driver license conversion and vehicle registration",
			ContactHint: "Find your office at ilportaledellautomobilista.it",
		},
		keywords: []string{"driver", "license", "patente"},
	},
	{
		office: Office{
			ID:          "inps",
			Name:        "INPS",
			Description: "Social security and pension services",
			ContactHint: "Contact via inps.it",
		},
		keywords: []string{"pension", "inps"},
	},
}

// SuggestOffice picks the office responsible for a topic, first rule wins.
func SuggestOffice(text string) (Office, bool) {
	lower := strings.ToLower(text)
	for _, rule := range officeRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.office, true
			}
		}
	}
	return Office{}, false
}
