package shop_test

import (
	"testing"

	"grocer/feature/shop"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Options(t *testing.T) {
	assert.Len(t, shop.Config{CatalogueTTLSeconds: 60}.Options(), 1)
	assert.Empty(t, shop.Config{}.Options())
	assert.Empty(t, shop.Config{CatalogueTTLSeconds: -1}.Options())
}
