// Package tmdb provides a client for The Movie Database API.
package tmdb

import "strconv"

// SearchResult is one entry from a title search. Movie results carry
// Title/ReleaseDate; TV results carry Name/FirstAirDate.
type SearchResult struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
}

// DisplayTitle returns the title regardless of media type.
func (r *SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Year extracts the year from the release or first-air date.
func (r *SearchResult) Year() int {
	return yearOf(r.ReleaseDate, r.FirstAirDate)
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// Details is the localized detail record for a movie or TV show.
type Details struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   string  `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
}

// Year extracts the year from the release or first-air date.
func (d *Details) Year() int {
	return yearOf(d.ReleaseDate, d.FirstAirDate)
}

// PosterURL returns the full poster image URL.
// Size can be: w92, w154, w185, w342, w500, w780, original
func (d *Details) PosterURL(size string) string {
	if d.PosterPath == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + d.PosterPath
}

func yearOf(dates ...string) int {
	for _, date := range dates {
		if len(date) < 4 {
			continue
		}
		if year, err := strconv.Atoi(date[:4]); err == nil {
			return year
		}
	}
	return 0
}
