package vendors

import (
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/farescout/farescout/internal/model"
)

// profileOverride is the YAML shape for adjusting a built-in profile.
// Only non-zero fields replace the defaults; layouts change with app updates
// more often than code ships.
type profileOverride struct {
	Vendor            string   `yaml:"vendor"`
	Markers           []string `yaml:"markers"`
	AcceptPhrases     []string `yaml:"accept_phrases"`
	RejectPhrases     []string `yaml:"reject_phrases"`
	NavigationPhrases []string `yaml:"navigation_phrases"`
	ExpiryPhrases     []string `yaml:"expiry_phrases"`
	PerUnitSuffixes   []string `yaml:"per_unit_suffixes"`
	SourceHints       []string `yaml:"source_hints"`
	CropStartFraction float64  `yaml:"crop_start_fraction"`
}

type overrideFile struct {
	Vendors []profileOverride `yaml:"vendors"`
}

// LoadOverrides applies profile overrides from a YAML file on top of the
// registry. Unknown vendor names are an error; a missing file is not the
// caller's concern and should be checked before calling.
func (r *Registry) LoadOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrap(err, "vendor: read overrides")
	}

	var f overrideFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return eris.Wrap(err, "vendor: parse overrides")
	}

	for _, ov := range f.Vendors {
		idx := -1
		for i, p := range r.profiles {
			if p.Vendor == model.Vendor(ov.Vendor) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return eris.Errorf("vendor: override for unknown vendor %q", ov.Vendor)
		}

		p := &r.profiles[idx]
		if len(ov.Markers) > 0 {
			markers := make([]*regexp.Regexp, 0, len(ov.Markers))
			for _, m := range ov.Markers {
				re, err := regexp.Compile("(?i)" + m)
				if err != nil {
					return eris.Wrapf(err, "vendor: marker %q for %s", m, ov.Vendor)
				}
				markers = append(markers, re)
			}
			p.Markers = markers
		}
		if len(ov.AcceptPhrases) > 0 {
			p.AcceptPhrases = ov.AcceptPhrases
		}
		if len(ov.RejectPhrases) > 0 {
			p.RejectPhrases = ov.RejectPhrases
		}
		if len(ov.NavigationPhrases) > 0 {
			p.NavigationPhrases = ov.NavigationPhrases
		}
		if len(ov.ExpiryPhrases) > 0 {
			p.ExpiryPhrases = ov.ExpiryPhrases
		}
		if len(ov.PerUnitSuffixes) > 0 {
			p.PerUnitSuffixes = ov.PerUnitSuffixes
		}
		if len(ov.SourceHints) > 0 {
			p.SourceHints = ov.SourceHints
		}
		if ov.CropStartFraction > 0 {
			p.CropStartFraction = ov.CropStartFraction
		}
	}

	return nil
}
