package model

import "time"

// TaxonomyEntry is a row in the 'ranks' or 'verwaltungen' table. Both
// taxonomies share the same shape: a stable slug (Name) referenced from
// team_members, a display name for the UI, a listing flag and a sort order.
// Lower SortOrder means higher in the hierarchy. Entries live in the
// database rather than a fixed enum so admins can grow the taxonomy.
type TaxonomyEntry struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	IsListed    bool      `json:"isListed"`
	SortOrder   int       `json:"sortOrder"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
