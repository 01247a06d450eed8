package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	t.Run("Abbreviates street types and directionals", func(t *testing.T) {
		assert.Equal(t, "123 n main st", NormalizeAddress("123 North Main Street"))
		assert.Equal(t, "45 se oak ave", NormalizeAddress("45 Southeast Oak Avenue"))
	})

	t.Run("Equivalent forms normalize to the same key", func(t *testing.T) {
		a := NormalizeAddress("123 North Main Street Apt 4B")
		b := NormalizeAddress("123 N Main St")
		assert.Equal(t, b, a)
	})

	t.Run("Strips unit designators with their value", func(t *testing.T) {
		assert.Equal(t, "500 elm dr", NormalizeAddress("500 Elm Drive, Suite 210"))
		assert.Equal(t, "500 elm dr", NormalizeAddress("500 Elm Dr Unit 7"))
	})

	t.Run("Strips punctuation but keeps commas as separators", func(t *testing.T) {
		assert.Equal(t, "123 main st, austin, tx 78701", NormalizeAddress("123 Main St., Austin, TX 78701"))
	})

	t.Run("Collapses repeated whitespace", func(t *testing.T) {
		assert.Equal(t, "9 pine ln", NormalizeAddress("  9   Pine    Lane "))
	})

	t.Run("Idempotent", func(t *testing.T) {
		inputs := []string{
			"123 North Main Street Apt 4B",
			"500 Elm Drive, Suite 210, Dallas, TX",
			"9 Pine Lane",
			"",
		}
		for _, in := range inputs {
			once := NormalizeAddress(in)
			assert.Equal(t, once, NormalizeAddress(once))
		}
	})

	t.Run("Empty input", func(t *testing.T) {
		assert.Equal(t, "", NormalizeAddress(""))
		assert.Equal(t, "", NormalizeAddress("  ,  , "))
	})
}
