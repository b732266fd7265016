package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "rahim@example.com", NormalizeEmail("  Rahim@Example.COM "))
	assert.Equal(t, "a@b.co", NormalizeEmail("a@b.co"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "fresh-mustard-oil-1l", Slugify("Fresh Mustard Oil  1L"))
	assert.Equal(t, "rice", Slugify("  Rice!!!  "))
	assert.Equal(t, "a-b-c", Slugify("a_b_c"))
}
