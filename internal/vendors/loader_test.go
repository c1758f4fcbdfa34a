package vendors

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescout/farescout/internal/model"
)

func writeOverrides(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vendors.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadOverrides(t *testing.T) {
	reg := Default()

	path := writeOverrides(t, `
vendors:
  - vendor: "99"
    markers:
      - '\b99\s?top\b'
    crop_start_fraction: 0.6
`)
	require.NoError(t, reg.LoadOverrides(path))

	assert.Equal(t, model.Vendor99, reg.Detect("99Top chamando"))
	assert.Equal(t, model.VendorUnknown, reg.Detect("99Pop"), "replaced markers no longer match")

	p, ok := reg.Profile(model.Vendor99)
	require.True(t, ok)
	assert.Equal(t, 0.6, p.CropStartFraction)
	assert.NotEmpty(t, p.AcceptPhrases, "untouched fields keep defaults")
}

func TestLoadOverridesUnknownVendor(t *testing.T) {
	reg := Default()

	path := writeOverrides(t, `
vendors:
  - vendor: "cabify"
    crop_start_fraction: 0.5
`)
	assert.Error(t, reg.LoadOverrides(path))
}

func TestLoadOverridesBadMarker(t *testing.T) {
	reg := Default()

	path := writeOverrides(t, `
vendors:
  - vendor: "uber"
    markers:
      - '[unclosed'
`)
	assert.Error(t, reg.LoadOverrides(path))
}

func TestLoadOverridesMissingFile(t *testing.T) {
	reg := Default()
	assert.Error(t, reg.LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml")))
}
