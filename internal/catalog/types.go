// Package catalog fetches items from an Emby/Jellyfin-compatible
// server and normalizes them into the canonical media model.
package catalog

// itemsResponse is the paginated response from the /Items endpoint.
type itemsResponse struct {
	Items            []rawItem `json:"Items"`
	TotalRecordCount int       `json:"TotalRecordCount"`
}

// rawItem is a single media item as returned by the server.
type rawItem struct {
	ID                string      `json:"Id"`
	Name              string      `json:"Name"`
	Type              string      `json:"Type"` // "Movie", "Episode"
	Path              string      `json:"Path"`
	ProductionYear    int         `json:"ProductionYear"`
	SeriesName        string      `json:"SeriesName"`
	ParentIndexNumber *int        `json:"ParentIndexNumber"` // season
	IndexNumber       *int        `json:"IndexNumber"`       // episode
	DateCreated       string      `json:"DateCreated"`
	MediaSources      []rawSource `json:"MediaSources"`
}

// rawSource is one media source (file/stream variant) of an item.
type rawSource struct {
	ID           string      `json:"Id"`
	Path         string      `json:"Path"`
	Name         string      `json:"Name"`
	DateCreated  string      `json:"DateCreated"`
	MediaStreams []rawStream `json:"MediaStreams"`
}

// rawStream is a video or audio stream within a source.
type rawStream struct {
	Type     string `json:"Type"` // "Video", "Audio"
	Height   int    `json:"Height"`
	Channels int    `json:"Channels"`
}
