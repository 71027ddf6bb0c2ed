// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Hair loss", "Hair loss"},
		{"inline tags", `<span class="qt0">Hair</span> Loss`, "Hair Loss"},
		{"entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"whitespace", "  a \t\n  b  ", "a\nb"},
		{
			"list items become bullets",
			"<p>Causes include:</p><ul><li>Genes</li><li> Hormones  and  stress </li><li></li></ul>",
			"Causes include:\n- Genes\n- Hormones and stress",
		},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, plainText(tt.in))
		})
	}
}
