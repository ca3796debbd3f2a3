package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory(CategoryCrops))
	assert.True(t, ValidCategory(CategoryLivestock))
	assert.False(t, ValidCategory(Category("machinery")))
}

func TestValidSubcategory_ChecksThePair(t *testing.T) {
	assert.True(t, ValidSubcategory(CategoryCrops, "Maize"))
	assert.True(t, ValidSubcategory(CategoryLivestock, "Camel"))

	// A subcategory is only valid under its own category.
	assert.False(t, ValidSubcategory(CategoryCrops, "Camel"))
	assert.False(t, ValidSubcategory(CategoryLivestock, "Maize"))
	assert.False(t, ValidSubcategory(CategoryCrops, "maize"))
}

func TestValidLocation(t *testing.T) {
	assert.True(t, ValidLocation("Mogadishu"))
	assert.True(t, ValidLocation("Burao"))
	assert.False(t, ValidLocation("Nairobi"))
	assert.False(t, ValidLocation(""))
}

func TestAllSubcategories_CropsFirst(t *testing.T) {
	all := AllSubcategories()

	assert.Len(t, all, 9)
	assert.Equal(t, "Maize", all[0])
	assert.Equal(t, "Camel", all[5])
}

func TestReportReasonValid(t *testing.T) {
	for _, reason := range []ReportReason{ReportReasonSpam, ReportReasonInappropriate, ReportReasonFraud, ReportReasonDuplicate, ReportReasonOther} {
		assert.True(t, reason.Valid(), string(reason))
	}
	assert.False(t, ReportReason("boring").Valid())
	assert.False(t, ReportReason("").Valid())
}
