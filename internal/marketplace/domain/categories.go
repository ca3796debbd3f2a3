package domain

// Subcategories maps each category to its fixed subcategory list. The
// creation form enforces consistency of the pair; the stores do not
// re-validate it.
var Subcategories = map[Category][]string{
	CategoryCrops:     {"Maize", "Sorghum", "Rice", "Banana", "Sesame"},
	CategoryLivestock: {"Camel", "Cow", "Goat", "Sheep"},
}

// Locations is the fixed list of cities a profile or listing can use.
var Locations = []string{
	"Mogadishu",
	"Hargeisa",
	"Kismayo",
	"Baidoa",
	"Garowe",
	"Bosaso",
	"Beledweyne",
	"Jowhar",
	"Merca",
	"Burao",
}

func ValidCategory(c Category) bool {
	_, ok := Subcategories[c]
	return ok
}

func ValidSubcategory(c Category, sub string) bool {
	for _, s := range Subcategories[c] {
		if s == sub {
			return true
		}
	}
	return false
}

func ValidLocation(loc string) bool {
	for _, l := range Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// AllSubcategories returns the crops subcategories followed by the
// livestock ones, the order the search screen shows them in.
func AllSubcategories() []string {
	out := make([]string, 0, len(Subcategories[CategoryCrops])+len(Subcategories[CategoryLivestock]))
	out = append(out, Subcategories[CategoryCrops]...)
	out = append(out, Subcategories[CategoryLivestock]...)
	return out
}
