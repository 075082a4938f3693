package product_test

import (
	"testing"
	"time"

	"grocer/core/api"
	"grocer/feature/product"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOffer(t *testing.T) {
	t.Run("ParsesWindow", func(t *testing.T) {
		o, err := product.NewOffer("http://img/o.gif", "Half price", "valid from 29/12/2010 until 4/1/2011")
		require.NoError(t, err)
		assert.True(t, o.HasWindow())
		assert.Equal(t, time.Date(2010, 12, 29, 0, 0, 0, 0, time.UTC), o.ValidFrom)
		assert.Equal(t, time.Date(2011, 1, 4, 0, 0, 0, 0, time.UTC), o.ValidUntil)
	})

	t.Run("UnknownValidityKeepsText", func(t *testing.T) {
		o, err := product.NewOffer("", "3 for 2", "while stocks last")
		require.NoError(t, err)
		assert.False(t, o.HasWindow())
		assert.Equal(t, "while stocks last", o.Validity)
	})

	t.Run("EmptyDescription", func(t *testing.T) {
		_, err := product.NewOffer("http://img/o.gif", "  ", "valid from 1/1/2011 until 2/1/2011")
		assert.ErrorIs(t, err, api.ErrInvalidArgument)
	})
}

func TestParseValidity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"Valid", "valid from 1/6/2011 until 28/6/2011", true},
		{"TwoDigitDays", "valid from 01/06/2011 until 28/06/2011", true},
		{"ImpossibleDate", "valid from 31/2/2011 until 28/6/2011", false},
		{"BadMonth", "valid from 1/13/2011 until 28/6/2011", false},
		{"Prefix", "offer valid from 1/6/2011 until 28/6/2011", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, ok := product.ParseValidity(tt.in)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestOfferActiveAt(t *testing.T) {
	o, err := product.NewOffer("", "Half price", "valid from 1/6/2011 until 28/6/2011")
	require.NoError(t, err)

	assert.False(t, o.ActiveAt(time.Date(2011, 5, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, o.ActiveAt(time.Date(2011, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, o.ActiveAt(time.Date(2011, 6, 28, 18, 0, 0, 0, time.UTC)))
	assert.False(t, o.ActiveAt(time.Date(2011, 6, 29, 0, 0, 0, 0, time.UTC)))

	open, err := product.NewOffer("", "Half price", "")
	require.NoError(t, err)
	assert.True(t, open.ActiveAt(time.Now()))
}

func TestBarcodeValid(t *testing.T) {
	assert.True(t, product.Barcode("4006381333931").Valid())
	assert.True(t, product.Barcode("96385074").Valid())
	assert.True(t, product.Barcode("036000291452").Valid())
	assert.False(t, product.Barcode("4006381333932").Valid())
	assert.False(t, product.Barcode("40063813339a1").Valid())
	assert.False(t, product.Barcode("123").Valid())
	assert.Equal(t, "4006381333931", product.Barcode("4006381333931").String())
}
