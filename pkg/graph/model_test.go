package graph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		raw  string
		want Type
	}{
		{"person", TypePerson},
		{"Person", TypePerson},
		{"  Person  ", TypePerson},
		{"company", TypeCompany},
		{"SocialMedia", TypeSocialMedia},
		{"social media", TypeSocialMedia},
		{"social-media", TypeSocialMedia},
		{"Website", TypeWebsite},
		{"domain", TypeWebsite},
		{"Organization", TypeOrganization},
		{"organisation", TypeOrganization},
		{"org", TypeOrganization},
		{"CryptoWallet", TypeOther},
		{"", TypeOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseType(tt.raw), "raw %q", tt.raw)
	}
}

func TestTypeStyleClosedSet(t *testing.T) {
	types := []Type{TypePerson, TypeCompany, TypeSocialMedia, TypeWebsite, TypeOrganization, TypeOther}

	glyphs := make(map[rune]Type)
	for _, typ := range types {
		st := typ.Style()
		assert.NotZero(t, st.Glyph, "type %s has no glyph", typ)
		assert.NotEmpty(t, st.Color, "type %s has no color", typ)
		prev, dup := glyphs[st.Glyph]
		assert.False(t, dup, "types %s and %s share glyph %c", prev, typ, st.Glyph)
		glyphs[st.Glyph] = typ
	}

	// Unknown members fall back to the TypeOther style.
	assert.Equal(t, TypeOther.Style(), Type("asteroid").Style())
}

func TestTypeUnmarshalJSON(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"id":"e1","name":"ACME","type":"Company"}`), &n)
	require.NoError(t, err)
	assert.Equal(t, TypeCompany, n.Type)
}

func TestLinkStrength(t *testing.T) {
	tests := []struct {
		name string
		link Link
		want float64
	}{
		{"absent", Link{}, 1},
		{"float", Link{Properties: Properties{{Key: "strength", Value: 2.5}}}, 2.5},
		{"int", Link{Properties: Properties{{Key: "strength", Value: 3}}}, 3},
		{"number", Link{Properties: Properties{{Key: "strength", Value: json.Number("0.4")}}}, 0.4},
		{"non-numeric", Link{Properties: Properties{{Key: "strength", Value: "high"}}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.link.Strength())
		})
	}
}

func TestNodePinning(t *testing.T) {
	n := &Node{ID: "e1", X: 5, Y: 5}
	assert.False(t, n.Pinned())

	n.Pin(120, -30)
	assert.True(t, n.Pinned())
	assert.Equal(t, 120.0, n.X)
	assert.Equal(t, -30.0, n.Y)
	px, py := n.PinnedAt()
	assert.Equal(t, 120.0, px)
	assert.Equal(t, -30.0, py)

	n.Unpin()
	assert.False(t, n.Pinned())
}
