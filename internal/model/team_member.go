package model

import "time"

// Activity statuses for roster members. Stored as a MySQL enum.
const (
	ActivityAktiv           = "aktiv"
	ActivityInaktiv         = "inaktiv"
	ActivityAbgemeldet      = "abgemeldet"
	ActivityGespraechNoetig = "gespraech_noetig"
)

// ValidActivityStatus reports whether s is one of the known statuses.
func ValidActivityStatus(s string) bool {
	switch s {
	case ActivityAktiv, ActivityInaktiv, ActivityAbgemeldet, ActivityGespraechNoetig:
		return true
	}
	return false
}

// TeamMember mirrors the 'team_members' table. Ranks and Verwaltungen are
// stored as JSON string arrays; their values reference the taxonomy tables
// by name but are not foreign keys, matching the flexible roster model.
type TeamMember struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Ranks          []string  `json:"ranks"`
	Verwaltungen   []string  `json:"verwaltungen"`
	DiscordID      *string   `json:"discordId"`
	AvatarURL      *string   `json:"avatarUrl"`
	ActivityStatus string    `json:"activityStatus"`
	Notes          *string   `json:"notes"`
	JoinDate       time.Time `json:"joinDate"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
