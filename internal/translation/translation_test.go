package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	tr, err := New("")
	require.NoError(t, err)
	assert.Equal(t, "en", tr.Current())
	assert.Equal(t, []string{"en"}, tr.Available())
}

func TestNew_Available(t *testing.T) {
	tr, err := New("fr", "en", "fr")
	require.NoError(t, err)
	assert.Equal(t, "fr", tr.Current())
	assert.Equal(t, []string{"en", "fr"}, tr.Available())
}

func TestNew_Rejects(t *testing.T) {
	_, err := New("de", "en", "fr")
	assert.Error(t, err, "current must be available")

	_, err = New("en", "en", "not a language!")
	assert.Error(t, err)
}

func TestSetCurrent(t *testing.T) {
	tr := MustNew("en", "en", "fr")

	require.NoError(t, tr.SetCurrent("FR"))
	assert.Equal(t, "fr", tr.Current())

	require.NoError(t, tr.SetCurrent("fr-CA"))
	assert.Equal(t, "fr", tr.Current(), "regional variant selects the base language")

	assert.Error(t, tr.SetCurrent("ja"))
	assert.Equal(t, "fr", tr.Current(), "unchanged on error")
}

func TestHas(t *testing.T) {
	tr := MustNew("en", "en", "fr")
	assert.True(t, tr.Has("en"))
	assert.True(t, tr.Has("en-GB"))
	assert.False(t, tr.Has("ja"))
	assert.False(t, tr.Has(""))
}

func TestIdent(t *testing.T) {
	tr := MustNew("fr", "en", "fr")
	assert.Equal(t, "title_fr", tr.Ident("title"))
	assert.Equal(t, []string{"title_en", "title_fr"}, tr.Idents("title"))
	assert.Equal(t, "title_de", LocalizedIdent("title", "de"))
}

func TestRegionalCode(t *testing.T) {
	tr := MustNew("pt-BR", "pt-BR", "en")
	assert.Equal(t, "pt_br", tr.Current())
	assert.Equal(t, "name_pt_br", tr.Ident("name"))
}
