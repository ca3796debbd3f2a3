package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mohashafici/DalagHub/internal/marketplace/domain"
)

func sampleListings() []*domain.Listing {
	return []*domain.Listing{
		{
			ID:          "l1",
			Title:       "Fresh Maize Harvest",
			Category:    domain.CategoryCrops,
			Subcategory: "Maize",
			Location:    "Mogadishu",
		},
		{
			ID:          "l2",
			Title:       "Healthy Dairy Cow",
			Category:    domain.CategoryLivestock,
			Subcategory: "Cow",
			Location:    "Hargeisa",
		},
		{
			ID:          "l3",
			Title:       "Sesame Seeds",
			Category:    domain.CategoryCrops,
			Subcategory: "Sesame",
			Location:    "Baidoa",
		},
	}
}

func ids(listings []*domain.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func TestApply_CategoryAll_ReturnsEverything(t *testing.T) {
	listings := sampleListings()

	assert.Equal(t, []string{"l1", "l2", "l3"}, ids(Apply(listings, Criteria{Category: CategoryAll})))
	assert.Equal(t, []string{"l1", "l2", "l3"}, ids(Apply(listings, Criteria{})))
}

func TestApply_CategoryCrops_ExcludesLivestock(t *testing.T) {
	filtered := Apply(sampleListings(), Criteria{Category: "crops"})

	assert.Equal(t, []string{"l1", "l3"}, ids(filtered))
	for _, l := range filtered {
		assert.NotEqual(t, domain.CategoryLivestock, l.Category)
	}
}

func TestApply_QueryCaseInsensitiveSubstring(t *testing.T) {
	listings := sampleListings()

	// Hits on any of title, location or subcategory qualify.
	assert.Equal(t, []string{"l1"}, ids(Apply(listings, Criteria{Query: "maize"})))
	assert.Equal(t, []string{"l1"}, ids(Apply(listings, Criteria{Query: "MOGADISHU"})))
	assert.Equal(t, []string{"l2"}, ids(Apply(listings, Criteria{Query: "cow"})))
	assert.Empty(t, Apply(listings, Criteria{Query: "camel"}))
}

func TestApply_QueryPartialSubstring(t *testing.T) {
	filtered := Apply(sampleListings(), Criteria{Query: "harv"})
	assert.Equal(t, []string{"l1"}, ids(filtered))
}

func TestApply_LocationAndSubcategoryExactMatch(t *testing.T) {
	listings := sampleListings()

	assert.Equal(t, []string{"l2"}, ids(Apply(listings, Criteria{Location: "Hargeisa"})))
	assert.Equal(t, []string{"l3"}, ids(Apply(listings, Criteria{Subcategory: "Sesame"})))
	assert.Empty(t, Apply(listings, Criteria{Location: "Hargeisa", Subcategory: "Sesame"}))
}

func TestApply_CombinedCriteria(t *testing.T) {
	filtered := Apply(sampleListings(), Criteria{Category: "crops", Query: "seeds"})
	assert.Equal(t, []string{"l3"}, ids(filtered))
}

func TestApply_PreservesInputOrder(t *testing.T) {
	listings := sampleListings()
	filtered := Apply(listings, Criteria{Category: "crops"})

	// Insertion order is creation-time descending from the catalog store;
	// filtering must not re-sort.
	assert.Equal(t, []string{"l1", "l3"}, ids(filtered))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	listings := sampleListings()
	Apply(listings, Criteria{Category: "livestock", Query: "cow"})

	assert.Len(t, listings, 3)
	assert.Equal(t, "l1", listings[0].ID)
}
