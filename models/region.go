package models

// Region is the country scope driving catalog availability and provider
// queries. Immutable reference data; exactly one is selected at a time.
type Region struct {
	Code     string `json:"code"` // ISO 3166-1 alpha-2
	Name     string `json:"name"`
	Flag     string `json:"flag"`
	Currency string `json:"currency"`
}

// PopularRegions is the built-in region reference list. The first entry is
// the default for fresh or expired preferences.
var PopularRegions = []Region{
	{Code: "US", Name: "United States", Flag: "\U0001F1FA\U0001F1F8", Currency: "USD"},
	{Code: "GB", Name: "United Kingdom", Flag: "\U0001F1EC\U0001F1E7", Currency: "GBP"},
	{Code: "CA", Name: "Canada", Flag: "\U0001F1E8\U0001F1E6", Currency: "CAD"},
	{Code: "AU", Name: "Australia", Flag: "\U0001F1E6\U0001F1FA", Currency: "AUD"},
	{Code: "DE", Name: "Germany", Flag: "\U0001F1E9\U0001F1EA", Currency: "EUR"},
	{Code: "FR", Name: "France", Flag: "\U0001F1EB\U0001F1F7", Currency: "EUR"},
	{Code: "JP", Name: "Japan", Flag: "\U0001F1EF\U0001F1F5", Currency: "JPY"},
	{Code: "BR", Name: "Brazil", Flag: "\U0001F1E7\U0001F1F7", Currency: "BRL"},
	{Code: "IN", Name: "India", Flag: "\U0001F1EE\U0001F1F3", Currency: "INR"},
	{Code: "ES", Name: "Spain", Flag: "\U0001F1EA\U0001F1F8", Currency: "EUR"},
	{Code: "IT", Name: "Italy", Flag: "\U0001F1EE\U0001F1F9", Currency: "EUR"},
	{Code: "MX", Name: "Mexico", Flag: "\U0001F1F2\U0001F1FD", Currency: "MXN"},
}

// RegionByCode returns the reference region with the given code, or the
// default region if the code is unknown.
func RegionByCode(code string) Region {
	for _, r := range PopularRegions {
		if r.Code == code {
			return r
		}
	}
	return PopularRegions[0]
}
