package analysis

import (
	"net/url"
	"sort"
	"strings"
)

const (
	MaxRankedDoctors = 5
	mapsSearchURL    = "https://www.google.com/maps/search/?api=1"
)

// PlaceRecord mirrors the subset of a places nearby-search result we use.
type PlaceRecord struct {
	Name                     string        `json:"name"`
	Vicinity                 string        `json:"vicinity"`
	FormattedAddress         string        `json:"formatted_address"`
	PlaceID                  string        `json:"place_id"`
	Rating                   *float64      `json:"rating"`
	OpeningHours             *OpeningHours `json:"opening_hours"`
	InternationalPhoneNumber string        `json:"international_phone_number"`
	FormattedPhoneNumber     string        `json:"formatted_phone_number"`
}

type OpeningHours struct {
	OpenNow *bool `json:"open_now"`
}

func (p PlaceRecord) openNow() bool {
	return p.OpeningHours != nil && p.OpeningHours.OpenNow != nil && *p.OpeningHours.OpenNow
}

func (p PlaceRecord) address() string {
	if v := strings.TrimSpace(p.Vicinity); v != "" {
		return v
	}
	return strings.TrimSpace(p.FormattedAddress)
}

func (p PlaceRecord) phone() *string {
	for _, candidate := range []string{p.InternationalPhoneNumber, p.FormattedPhoneNumber} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return &trimmed
		}
	}
	return nil
}

// RankDoctors drops unrated places, orders the rest by rating then open-now
// (both descending, input order kept on ties) and keeps the first five.
func RankDoctors(places []PlaceRecord) []Doctor {
	rated := make([]PlaceRecord, 0, len(places))
	for _, place := range places {
		if place.Rating != nil {
			rated = append(rated, place)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		ri, rj := *rated[i].Rating, *rated[j].Rating
		if ri != rj {
			return ri > rj
		}
		return boolRank(rated[i].openNow()) > boolRank(rated[j].openNow())
	})
	if len(rated) > MaxRankedDoctors {
		rated = rated[:MaxRankedDoctors]
	}

	doctors := make([]Doctor, 0, len(rated))
	for _, place := range rated {
		rating := *place.Rating
		doctors = append(doctors, Doctor{
			Name:     place.Name,
			Address:  place.address(),
			Rating:   &rating,
			OpenNow:  place.openNow(),
			Phone:    place.phone(),
			MapsLink: MapsLink(place.Name, place.address(), place.PlaceID),
		})
	}
	return doctors
}

func MapsLink(name, address, placeID string) string {
	query := strings.ReplaceAll(url.QueryEscape(name+", "+address), "+", "%20")
	link := mapsSearchURL + "&query=" + query
	if strings.TrimSpace(placeID) != "" {
		link += "&query_place_id=" + url.QueryEscape(placeID)
	}
	return link
}

func boolRank(value bool) int {
	if value {
		return 1
	}
	return 0
}
