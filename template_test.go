package goconsolidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateTemplate(t *testing.T) {
	t.Run("ZeroPaddedWidth", func(t *testing.T) {
		tmpl, err := TranslateTemplate("%05d.tif")
		assert.Nil(t, err)
		assert.Equal(t, "{:05d}.tif", tmpl.Placeholder())
		assert.Equal(t, "00003.tif", tmpl.Render(3))
		assert.Equal(t, "123456.tif", tmpl.Render(123456))
	})
	t.Run("WidthAndPrecision", func(t *testing.T) {
		tmpl, err := TranslateTemplate("frame_%6.6d.jpg")
		assert.Nil(t, err)
		assert.Equal(t, "frame_{:6.6d}.jpg", tmpl.Placeholder())
		assert.Equal(t, "frame_000007.jpg", tmpl.Render(7))
	})
	t.Run("LeftAligned", func(t *testing.T) {
		tmpl, err := TranslateTemplate("%-4d_x.npy")
		assert.Nil(t, err)
		assert.Equal(t, "12  _x.npy", tmpl.Render(12))
	})
	t.Run("ExplicitSign", func(t *testing.T) {
		tmpl, err := TranslateTemplate("%+3d.npy")
		assert.Nil(t, err)
		assert.Equal(t, " +5.npy", tmpl.Render(5))
	})
	t.Run("SpaceFlag", func(t *testing.T) {
		tmpl, err := TranslateTemplate("% d.npy")
		assert.Nil(t, err)
		assert.Equal(t, " 5.npy", tmpl.Render(5))
	})
	t.Run("BareConversion", func(t *testing.T) {
		tmpl, err := TranslateTemplate("%d.npy")
		assert.Nil(t, err)
		assert.Equal(t, "{:d}.npy", tmpl.Placeholder())
		assert.Equal(t, "42.npy", tmpl.Render(42))
	})
	t.Run("LiteralPercent", func(t *testing.T) {
		tmpl, err := TranslateTemplate("gain100%%_%03d.tif")
		assert.Nil(t, err)
		assert.Equal(t, "gain100%_007.tif", tmpl.Render(7))
	})
	t.Run("NegativeNumber", func(t *testing.T) {
		tmpl, err := TranslateTemplate("%05d.tif")
		assert.Nil(t, err)
		assert.Equal(t, "-0003.tif", tmpl.Render(-3))
	})
	t.Run("UnsupportedConversion", func(t *testing.T) {
		_, err := TranslateTemplate("%s.tif")
		assert.NotNil(t, err)
	})
	t.Run("NoConversion", func(t *testing.T) {
		_, err := TranslateTemplate("static.tif")
		assert.NotNil(t, err)
	})
	t.Run("MultipleConversions", func(t *testing.T) {
		_, err := TranslateTemplate("a_%d_b_%d.tif")
		assert.NotNil(t, err)
	})
	t.Run("DanglingPrecision", func(t *testing.T) {
		_, err := TranslateTemplate("%5.d.tif")
		assert.NotNil(t, err)
	})
}
