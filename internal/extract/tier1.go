package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/farescout/farescout/internal/model"
)

// category classifies what a structured node holds. Classification keys off
// the node's label, never its value: labels are stable across renders while
// values are what we are trying to read.
type category int

const (
	catUnknown category = iota
	catPrice
	catPickupDistance
	catPickupTime
	catRideDistance
	catRideTime
	catAddress
	catRating
	catAction
)

// labelKeywords maps label substrings to categories, tried in order. More
// specific entries come first: "pickup distance" must not fall through to a
// generic distance rule.
var labelKeywords = []struct {
	words []string
	cat   category
}{
	{[]string{"pickup dist", "dist. embarque", "distância de embarque", "distancia de embarque", "coleta dist"}, catPickupDistance},
	{[]string{"pickup time", "tempo de embarque", "tempo até", "tempo ate", "chegada em"}, catPickupTime},
	{[]string{"trip dist", "ride dist", "distância da corrida", "distancia da corrida", "distância da viagem", "distancia da viagem"}, catRideDistance},
	{[]string{"trip time", "ride time", "duração", "duracao", "tempo de corrida", "tempo de viagem"}, catRideTime},
	{[]string{"price", "fare", "valor", "ganho", "pagamento", "earning"}, catPrice},
	{[]string{"rating", "avaliação", "avaliacao", "nota", "estrela", "star"}, catRating},
	{[]string{"origem", "embarque", "pickup", "destino", "dropoff", "endereço", "endereco", "address", "local"}, catAddress},
	{[]string{"aceitar", "accept", "recusar", "decline", "button", "botão", "botao"}, catAction},
}

func labelCategory(label string) category {
	lower := strings.ToLower(label)
	if lower == "" {
		return catUnknown
	}
	for _, rule := range labelKeywords {
		for _, w := range rule.words {
			if strings.Contains(lower, w) {
				return rule.cat
			}
		}
	}
	return catUnknown
}

// Tier1 extracts a candidate from structured (label, text) pairs. Labeled
// nodes resolve directly; unlabeled numeric nodes are attributed by position
// relative to the price node — before it belongs to the pickup leg, after it
// to the ride leg. Returns nil when no price is found.
func Tier1(nodes []model.Node, v model.Vendor) *model.Candidate {
	if len(nodes) == 0 {
		return nil
	}

	c := &model.Candidate{Vendor: v, Source: model.SourceLabeledNodes}
	priceIdx := -1
	var labeledAddrs []string

	for i, node := range nodes {
		switch labelCategory(node.Label) {
		case catPrice:
			if c.Price == 0 {
				if m := reCurrency.FindStringSubmatch(node.Text); m != nil {
					if p, ok := parseAmount(m[1]); ok {
						c.Price = p
						priceIdx = i
						c.Confidence += 0.3
					}
				}
			}
		case catPickupDistance:
			if c.PickupDistanceKm == 0 {
				if m := reDistance.FindStringSubmatch(node.Text); m != nil {
					if km, ok := parseDistanceKm(m[1], m[2]); ok {
						c.PickupDistanceKm = km
						c.Confidence += 0.1
					}
				}
			}
		case catPickupTime:
			if c.PickupMinutes == 0 {
				if min, ok := parseDuration(node.Text); ok {
					c.PickupMinutes = min
					c.Confidence += 0.1
				}
			}
		case catRideDistance:
			if c.RideDistanceKm == 0 {
				if m := reDistance.FindStringSubmatch(node.Text); m != nil {
					if km, ok := parseDistanceKm(m[1], m[2]); ok {
						c.RideDistanceKm = km
						c.Confidence += 0.1
					}
				}
			}
		case catRideTime:
			if c.RideMinutes == 0 {
				if min, ok := parseDuration(node.Text); ok {
					c.RideMinutes = min
					c.Confidence += 0.1
				}
			}
		case catRating:
			if c.Rating == 0 {
				if r, ok := parseRating(node.Text); ok {
					c.Rating = r
					c.Confidence += 0.05
				}
			}
		case catAddress:
			if strings.TrimSpace(node.Text) != "" && len(labeledAddrs) < 2 {
				labeledAddrs = append(labeledAddrs, strings.TrimSpace(node.Text))
			}
		}
	}

	if c.Price == 0 {
		// No classifiable price label; look for a bare currency node.
		for i, node := range nodes {
			if m := reCurrency.FindStringSubmatch(node.Text); m != nil {
				if p, ok := parseAmount(m[1]); ok {
					c.Price = p
					priceIdx = i
					c.Confidence += 0.2
					break
				}
			}
		}
	}
	if c.Price == 0 {
		return nil
	}

	// Attribute unlabeled distance/time nodes by position relative to the
	// price node.
	for i, node := range nodes {
		if labelCategory(node.Label) != catUnknown || i == priceIdx {
			continue
		}
		if m := reDistance.FindStringSubmatch(node.Text); m != nil {
			if km, ok := parseDistanceKm(m[1], m[2]); ok {
				if i < priceIdx && c.PickupDistanceKm == 0 {
					c.PickupDistanceKm = km
					c.Confidence += 0.1
				} else if i > priceIdx && c.RideDistanceKm == 0 {
					c.RideDistanceKm = km
					c.Confidence += 0.1
				}
			}
		}
		if min, ok := parseDuration(node.Text); ok {
			if i < priceIdx && c.PickupMinutes == 0 {
				c.PickupMinutes = min
				c.Confidence += 0.1
			} else if i > priceIdx && c.RideMinutes == 0 {
				c.RideMinutes = min
				c.Confidence += 0.1
			}
		}
		if c.Rating == 0 {
			if r, ok := parseRating(node.Text); ok {
				c.Rating = r
				c.Confidence += 0.05
			}
		}
		if looksLikeAddress(node.Text) && len(labeledAddrs) < 2 {
			labeledAddrs = append(labeledAddrs, strings.TrimSpace(node.Text))
		}
	}

	if len(labeledAddrs) >= 1 {
		c.PickupAddress = labeledAddrs[0]
		c.Confidence += 0.1
	}
	if len(labeledAddrs) >= 2 {
		c.DropoffAddress = labeledAddrs[1]
		c.Confidence += 0.1
		c.Source = model.SourceRoutePair
	}
	if c.Confidence > 1 {
		c.Confidence = 1
	}

	zap.L().Debug("extract: tier 1 candidate",
		zap.Float64("price", c.Price),
		zap.Float64("confidence", c.Confidence),
		zap.String("source", string(c.Source)),
	)
	return c
}
