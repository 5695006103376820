// internal/profile/countries.go
//
// Country option list for the profile page, derived from the CLDR region
// data in x/text rather than a hand-maintained table.  Computed once; the
// list is stable for the process lifetime.
package profile

import (
	"sort"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// CountryOption pairs an ISO 3166-1 alpha-2 code with its English display
// name.
type CountryOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var (
	countryOnce sync.Once
	countryList []CountryOption
)

// CountryOptions returns every known country sorted by display name.
func CountryOptions() []CountryOption {
	countryOnce.Do(buildCountryList)
	return countryList
}

func buildCountryList() {
	namer := display.Regions(language.English)

	out := make([]CountryOption, 0, 260)
	for a := 'A'; a <= 'Z'; a++ {
		for b := 'A'; b <= 'Z'; b++ {
			code := string([]rune{a, b})
			region, err := language.ParseRegion(code)
			if err != nil || !region.IsCountry() {
				continue
			}
			// ParseRegion canonicalizes deprecated codes; keep only exact hits
			// so aliases do not produce duplicates.
			if region.String() != code {
				continue
			}
			name := namer.Name(region)
			if name == "" {
				continue
			}
			out = append(out, CountryOption{Code: code, Name: name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	countryList = out
}
