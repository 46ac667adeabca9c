// internal/geo/maps.go
package geo

import "net/url"

// MapLinks builds a search link and an embeddable map URL for a free-text
// pickup location. The service never interprets the location itself; it only
// forwards these affordances. An empty location yields no links.
func MapLinks(location string) (link, embed string) {
	if location == "" {
		return "", ""
	}

	q := url.QueryEscape(location)
	link = "https://www.google.com/maps/search/?api=1&query=" + q
	embed = "https://www.google.com/maps?q=" + q + "&output=embed"
	return link, embed
}
