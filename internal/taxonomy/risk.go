package taxonomy

import (
	"fmt"
	"strings"
)

// RiskTier is the three-level severity attached to geo entities.
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// ParseRiskTier normalises case and rejects unknown tiers.
func ParseRiskTier(s string) (RiskTier, error) {
	switch t := RiskTier(strings.ToUpper(strings.TrimSpace(s))); t {
	case RiskLow, RiskMedium, RiskHigh:
		return t, nil
	default:
		return "", fmt.Errorf("unknown risk tier %q", s)
	}
}

// Key is the lower-case form used in style identifiers.
func (r RiskTier) Key() string { return strings.ToLower(string(r)) }

// PreviewType says how the portal renders a file inline.
type PreviewType string

const (
	PreviewPDF   PreviewType = "pdf"
	PreviewDocx  PreviewType = "docx"
	PreviewImage PreviewType = "image"
	PreviewKML   PreviewType = "kml"
	PreviewOther PreviewType = "other"
)
