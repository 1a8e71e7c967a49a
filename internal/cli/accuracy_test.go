package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayerFlag(t *testing.T) {
	grid, cats, name, err := parseLayerFlag("cls2020.asc,cls2020.json")
	require.NoError(t, err)
	assert.Equal(t, "cls2020.asc", grid)
	assert.Equal(t, "cls2020.json", cats)
	assert.Empty(t, name)

	grid, cats, name, err = parseLayerFlag("data/cls.asc,data/cats.json,mining 2020")
	require.NoError(t, err)
	assert.Equal(t, "data/cls.asc", grid)
	assert.Equal(t, "data/cats.json", cats)
	assert.Equal(t, "mining 2020", name)

	_, _, _, err = parseLayerFlag("just-a-grid.asc")
	assert.Error(t, err)

	_, _, _, err = parseLayerFlag("a,b,c,d")
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["accuracy"])
	assert.True(t, names["area"])
	assert.True(t, names["runs"])
}
