package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "product"},
		{"latin", "Fresh Mango", "fresh-mango"},
		{"punctuation", "  Grandma's  Rice!! ", "grandmas-rice"},
		{"hyphen runs", "a -- b__c", "a-bc"},
		{"digits", "Shop 42", "shop-42"},
		{"thai word", "ข้าว", "khao"},
		{"thai words with latin", "ข้าว Jasmine", "khao-jasmine"},
		{"thai characters", "กบ", "kb"},
		{"thai digits", "บ้าน ๑๒", "ban-12"},
		{"unmapped script", "日本", "product"},
		{"only symbols", "!!!", "product"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Generate(tt.input))
		})
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.Equal(t, "phonlamai-sd", Generate("ผลไม้ สด"))
	}
}

func TestProductSlug(t *testing.T) {
	assert.Equal(t, "grains-rice", ProductSlug("Rice", "Grains"))
	assert.Equal(t, "rice", ProductSlug("Rice", ""))
	assert.Equal(t, "rice", ProductSlug("Rice", "   "))
}

func TestShopSlug(t *testing.T) {
	assert.Equal(t, "auntie-noi-house-123", ShopSlug("Auntie Noi", "12/3"))
	assert.Equal(t, "ran-noi-house-5", ShopSlug("ร้าน Noi", "5"))
}

func TestUnique(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		existing []string
		want     string
	}{
		{"free", "apple", nil, "apple"},
		{"taken", "apple", []string{"apple"}, "apple-1"},
		{"skips taken suffixes", "apple", []string{"apple", "apple-1"}, "apple-2"},
		{"gap", "apple", []string{"apple", "apple-2"}, "apple-1"},
		{"case sensitive", "apple", []string{"Apple"}, "apple"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Unique(tt.base, tt.existing))
		})
	}
}
