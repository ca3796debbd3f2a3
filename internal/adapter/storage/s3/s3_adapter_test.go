package s3

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey_NamespacedPerIdentity(t *testing.T) {
	key := objectKey("seller-1", "maize.jpg")

	assert.True(t, strings.HasPrefix(key, "seller-1/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
}

func TestObjectKey_UniqueWithinSameMillisecond(t *testing.T) {
	// A batch upload can generate several keys inside one millisecond;
	// identical keys would make a later file silently replace an earlier one.
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		key := objectKey("seller-1", "maize.jpg")
		_, dup := seen[key]
		assert.False(t, dup, "duplicate object key %s", key)
		seen[key] = struct{}{}
	}
}

func TestObjectKey_KeepsExtensionOnly(t *testing.T) {
	key := objectKey("seller-1", "field photo.PNG")

	assert.NotContains(t, key, "field photo")
	assert.True(t, strings.HasSuffix(key, ".PNG"))
}
