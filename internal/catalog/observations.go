package catalog

import "strings"

// Observation categories, in menu order.
const (
	CategoryCTO = "CTO"
	CategoryNAP = "NAP"
	CategoryFAT = "FAT"
)

var categories = []string{CategoryCTO, CategoryNAP, CategoryFAT}

var observations = map[string][]string{
	CategoryCTO: {
		"CTO sin potencia",
		"CTO con potencia degradada",
		"CTO Hurtada",
		"CTO sin facilidades",
		"CTO con puertos degradados",
		"CTO con puertos sin potencia",
		"CTO sin tapa",
		"Prevencion de CTO",
		"CTO - Habilitacion de puertos",
		"CTO con intermitencia",
		"CTO con conector mecanico",
		"Reposición de CTO",
	},
	CategoryNAP: {
		"NAP sin potencia",
		"NAP con potencia degradada",
		"NAP con puertos degradados",
		"NAP con puertos sin potencia",
		"NAP con rotulo equivocado",
		"NAP sin facilidades",
		"Prevencion de NAP",
		"NAP con intermitencia",
	},
	CategoryFAT: {
		"FAT sin potencia",
		"FAT con potencia degradada",
		"FAT sin facilidades",
		"FAT con puertos degradados",
		"FAT con puertos sin potencia",
		"FAT con intermitencia",
	},
}

// Categories returns the observation categories in menu order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// Observations returns the ordered observation list for a category, or nil for
// an unknown category.
func Observations(category string) []string {
	list, ok := observations[category]
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// Observation resolves a (category, index) pair, or false when out of range.
func Observation(category string, index int) (string, bool) {
	list := observations[category]
	if index < 0 || index >= len(list) {
		return "", false
	}
	return list[index], true
}

// DetectCategory guesses the element category from a box code, or "" when the
// code names no known element type.
func DetectCategory(code string) string {
	c := strings.ToUpper(code)
	for _, cat := range categories {
		if strings.Contains(c, cat) {
			return cat
		}
	}
	return ""
}
