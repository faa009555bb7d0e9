package athlete

import "strings"

// RegionOf extracts the last comma-separated segment of a location, which
// is the state in the "City, District, State" form profiles use.
func RegionOf(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return ""
	}
	if i := strings.LastIndex(location, ","); i >= 0 {
		return strings.TrimSpace(location[i+1:])
	}
	return location
}
