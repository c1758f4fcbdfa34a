package vendors

import (
	"regexp"
	"strings"

	"github.com/farescout/farescout/internal/model"
)

// Profile holds everything layout-specific about one vendor's offer card:
// the textual markers that identify it, the phrases that signal acceptance or
// rejection, the rows to exclude from price matching, and where the card
// anchors on screen for the raster fallback.
type Profile struct {
	Vendor model.Vendor

	// Markers are layout phrases that identify the vendor. Matching is
	// regex-based and tolerant of minor OCR noise (optional spaces, case).
	Markers []*regexp.Regexp

	// AcceptPhrases / RejectPhrases match click labels while an offer is
	// pending acceptance. They also appear in the card's own text, so they
	// are deliberately never matched against snapshots.
	AcceptPhrases []string
	RejectPhrases []string

	// NavigationPhrases indicate navigation has started; seeing one in a
	// snapshot within the acceptance window counts as acceptance.
	NavigationPhrases []string

	// ExpiryPhrases in a snapshot signal the offer expired or was withdrawn.
	ExpiryPhrases []string

	// PerUnitSuffixes mark trailing "average per km" price rows that must
	// never be mistaken for the ride price.
	PerUnitSuffixes []string

	// SourceHints are substrings of the host platform's source identifier
	// (typically an app package name) for this vendor. Unlike Markers, they
	// identify the app even when its screen carries no readable text.
	SourceHints []string

	// CropStartFraction is the vertical fraction of the screen where the
	// raster crop begins; offer cards anchor near the bottom.
	CropStartFraction float64

	// Monitored vendors may trigger the raster fallback when their window is
	// visible but no readable text elements exist.
	Monitored bool
}

// Matches reports whether any layout marker appears in the text.
func (p Profile) Matches(text string) bool {
	for _, re := range p.Markers {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// MatchesPhrase reports whether any phrase in set appears in text,
// case-insensitively.
func MatchesPhrase(text string, set []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range set {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Registry is an ordered set of vendor profiles. Order is significant:
// detection returns the first profile whose markers match.
type Registry struct {
	profiles []Profile
}

// Default returns the built-in registry for the two supported Brazilian
// ride-hailing layouts.
func Default() *Registry {
	return &Registry{profiles: []Profile{
		{
			Vendor: model.VendorUber,
			Markers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\buber\s?x\b`),
				regexp.MustCompile(`(?i)\buber\s?(comfort|black|moto|flash)\b`),
				regexp.MustCompile(`(?i)viagem\s+exclusiva`),
				regexp.MustCompile(`(?i)tarifa\s+din[aâ]mica`),
			},
			AcceptPhrases:     []string{"aceitar", "accept"},
			RejectPhrases:     []string{"recusar", "rejeitar", "decline"},
			NavigationPhrases: []string{"iniciar navegação", "a caminho de", "dirija até"},
			ExpiryPhrases:     []string{"oferta expirada", "não está mais disponível"},
			PerUnitSuffixes:   []string{"/km", "por km", "/ km"},
			SourceHints:       []string{"ubercab", "uber.driver"},
			CropStartFraction: 0.45,
			Monitored:         true,
		},
		{
			Vendor: model.Vendor99,
			Markers: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b99\s?(pop|comfort|taxi|moto)\b`),
				regexp.MustCompile(`(?i)nova\s+corrida`),
				regexp.MustCompile(`(?i)ganho\s+por\s+corrida`),
			},
			AcceptPhrases:     []string{"aceitar", "pegar corrida", "accept"},
			RejectPhrases:     []string{"recusar", "dispensar"},
			NavigationPhrases: []string{"iniciar rota", "a caminho do passageiro"},
			ExpiryPhrases:     []string{"corrida expirou", "corrida indisponível"},
			PerUnitSuffixes:   []string{"/km", "por km"},
			SourceHints:       []string{"taxis99", "app99.driver"},
			CropStartFraction: 0.5,
			Monitored:         true,
		},
	}}
}

// Detect returns the vendor of the first profile whose markers match the
// text, or VendorUnknown.
func (r *Registry) Detect(text string) model.Vendor {
	for _, p := range r.profiles {
		if p.Matches(text) {
			return p.Vendor
		}
	}
	return model.VendorUnknown
}

// DetectSource returns the vendor whose source hints match the platform
// source identifier, or VendorUnknown.
func (r *Registry) DetectSource(source string) model.Vendor {
	lower := strings.ToLower(source)
	for _, p := range r.profiles {
		for _, hint := range p.SourceHints {
			if strings.Contains(lower, hint) {
				return p.Vendor
			}
		}
	}
	return model.VendorUnknown
}

// Profile returns the profile for a vendor.
func (r *Registry) Profile(v model.Vendor) (Profile, bool) {
	for _, p := range r.profiles {
		if p.Vendor == v {
			return p, true
		}
	}
	return Profile{}, false
}

// Profiles returns all registered profiles in detection order.
func (r *Registry) Profiles() []Profile {
	return r.profiles
}
