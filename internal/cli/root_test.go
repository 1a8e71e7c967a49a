package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Config-file values must back the styling and worker flags as defaults,
// while an explicitly set flag still wins.
func TestConfigFileBacksFlagDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spatialval.yaml")
	cfg := "facet-cols: 3\nopacity: 0.25\nworkers: 4\npolygon-overlay: false\ndb: custom.db\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	cfgFile = path
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})
	require.NoError(t, initConfig())

	st := styleFromFlags()
	assert.Equal(t, 3, st.FacetCols)
	assert.InDelta(t, 0.25, st.Opacity, 1e-9)
	assert.False(t, st.PolygonOverlay)
	assert.Equal(t, 4, viper.GetInt("workers"))
	assert.Equal(t, "custom.db", viper.GetString("db"))

	// Untouched keys keep their flag defaults.
	assert.Equal(t, 24, st.CellPixels)
	assert.Equal(t, "#222222", st.PolygonColor)

	// An explicit flag overrides the config file.
	require.NoError(t, accuracyCmd.Flags().Set("facet-cols", "5"))
	assert.Equal(t, 5, styleFromFlags().FacetCols)
	require.NoError(t, accuracyCmd.Flags().Set("facet-cols", "2"))
}

func TestConfigZeroOpacityHonored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spatialval.yaml")
	require.NoError(t, os.WriteFile(path, []byte("opacity: 0\n"), 0o644))

	cfgFile = path
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})
	require.NoError(t, initConfig())

	assert.Equal(t, 0.0, styleFromFlags().Opacity)
}

func TestInitConfigMissingExplicitFile(t *testing.T) {
	cfgFile = filepath.Join(t.TempDir(), "absent.yaml")
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})
	assert.Error(t, initConfig())
}
