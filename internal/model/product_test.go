package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	discount := 80.0
	p := &Product{Price: 100, DiscountPrice: &discount}
	assert.Equal(t, 80.0, p.EffectivePrice())

	// 折扣价不低于原价时不生效
	bad := 120.0
	p = &Product{Price: 100, DiscountPrice: &bad}
	assert.Equal(t, 100.0, p.EffectivePrice())

	p = &Product{Price: 100}
	assert.Equal(t, 100.0, p.EffectivePrice())
}
