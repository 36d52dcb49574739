package identifier

// countryPrefixes holds the ISO 3166-1 alpha-2 codes that appear as ISIN
// prefixes, plus the special allocations used for international securities
// (XS, EU). Read-only after init; shared across documents.
var countryPrefixes = map[string]struct{}{}

func init() {
	codes := []string{
		"AD", "AE", "AR", "AT", "AU", "BE", "BG", "BH", "BM", "BR",
		"BS", "CA", "CH", "CL", "CN", "CO", "CR", "CY", "CZ", "DE",
		"DK", "EE", "EG", "ES", "FI", "FR", "GB", "GG", "GI", "GR",
		"HK", "HR", "HU", "ID", "IE", "IL", "IM", "IN", "IS", "IT",
		"JE", "JP", "KR", "KW", "KY", "LB", "LI", "LT", "LU", "LV",
		"MA", "MC", "MT", "MU", "MX", "MY", "NG", "NL", "NO", "NZ",
		"OM", "PA", "PE", "PH", "PK", "PL", "PT", "QA", "RO", "RS",
		"RU", "SA", "SE", "SG", "SI", "SK", "TH", "TN", "TR", "TW",
		"UA", "US", "UY", "VG", "VN", "ZA",
		// Supranational allocations
		"XS", "EU",
	}
	for _, c := range codes {
		countryPrefixes[c] = struct{}{}
	}
}

// IsCountryPrefix reports whether the 2-letter prefix is a recognized
// country or supranational ISIN allocation.
func IsCountryPrefix(prefix string) bool {
	_, ok := countryPrefixes[prefix]
	return ok
}
