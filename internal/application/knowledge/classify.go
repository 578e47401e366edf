package knowledge

import "strings"

type businessRule struct {
	kind     string
	sentence string
	terms    []string
}

// businessRules are evaluated in order; the first match wins.
var businessRules = []businessRule{
	{"financial", "This is a financial services company.", []string{"bank", "finance", "financial", "investment", "insurance", "loan"}},
	{"healthcare", "This is a healthcare organization.", []string{"health", "medical", "clinic", "hospital", "patient", "doctor"}},
	{"technology", "This is a technology company.", []string{"software", "technology", "tech", "digital", "cloud", "platform"}},
	{"consulting", "This is a consulting firm.", []string{"consulting", "consultant", "advisory", "strategy"}},
	{"retail", "This is a retail business.", []string{"shop", "store", "retail", "product", "buy", "cart"}},
}

const genericBusiness = "This is a business that provides various services to its customers."

// BusinessType classifies content and returns the rule kind with its sentence.
func BusinessType(content string) (kind, sentence string) {
	lc := strings.ToLower(content)
	for _, r := range businessRules {
		for _, t := range r.terms {
			if strings.Contains(lc, t) {
				return r.kind, r.sentence
			}
		}
	}
	return "generic", genericBusiness
}

var serviceSignals = []struct{ term, label string }{
	{"consulting", "consulting services"},
	{"development", "development services"},
	{"marketing", "marketing solutions"},
	{"design", "design services"},
	{"support", "customer support"},
	{"training", "training programs"},
	{"sales", "sales assistance"},
}

const genericServices = "They offer a range of professional services to meet customer needs"

// Services lists every service label whose term occurs in content.
func Services(content string) []string {
	lc := strings.ToLower(content)
	var out []string
	for _, s := range serviceSignals {
		if strings.Contains(lc, s.term) {
			out = append(out, s.label)
		}
	}
	return out
}

func servicesSentence(labels []string) string {
	if len(labels) == 0 {
		return genericServices
	}
	return "They offer " + strings.Join(labels, ", ")
}
