package tryon

import "strings"

// Garment classes accepted by the remote synthesis API.
const (
	ClothTypeUpper   = "upper"
	ClothTypeFullSet = "full_set"
)

// fullSetHints are catalog cloth-type fragments that demand a full-body pass.
var fullSetHints = []string{
	"traditional",
	"blazer",
	"chudi",
	"modern",
	"fullbody",
	"full",
}

// ClothType maps a free-text catalog hint onto the remote API's garment
// vocabulary. Total and deterministic; unknown hints fall back to upper.
func ClothType(hint string) string {
	lower := strings.ToLower(hint)
	for _, h := range fullSetHints {
		if strings.Contains(lower, h) {
			return ClothTypeFullSet
		}
	}
	return ClothTypeUpper
}
