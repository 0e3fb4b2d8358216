package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/syndikat/teamliste/internal/model"
)

// TeamMemberRepo manages roster rows in 'team_members'.
type TeamMemberRepo struct{ DB *sql.DB }

func NewTeamMemberRepo(db *sql.DB) *TeamMemberRepo { return &TeamMemberRepo{DB: db} }

const memberColumns = "id,name,ranks,verwaltungen,discord_id,avatar_url,activity_status,notes,join_date,created_at,updated_at"

// MemberInput carries the writable fields of a team member. Pointer fields
// are nullable columns; Ranks must contain at least one entry on create.
type MemberInput struct {
	Name           string
	Ranks          []string
	Verwaltungen   []string
	DiscordID      *string
	AvatarURL      *string
	ActivityStatus string
	Notes          *string
	JoinDate       time.Time
}

func marshalList(v []string) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (model.TeamMember, error) {
	var (
		m            model.TeamMember
		ranks        []byte
		verwaltungen []byte
		discordID    sql.NullString
		avatarURL    sql.NullString
		notes        sql.NullString
	)
	err := row.Scan(&m.ID, &m.Name, &ranks, &verwaltungen, &discordID, &avatarURL,
		&m.ActivityStatus, &notes, &m.JoinDate, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.TeamMember{}, ErrMemberNotFound
	}
	if err != nil {
		return model.TeamMember{}, err
	}
	m.Ranks = unmarshalList(ranks)
	m.Verwaltungen = unmarshalList(verwaltungen)
	if discordID.Valid {
		m.DiscordID = &discordID.String
	}
	if avatarURL.Valid {
		m.AvatarURL = &avatarURL.String
	}
	if notes.Valid {
		m.Notes = &notes.String
	}
	return m, nil
}

// Create inserts a member and returns the stored row.
func (r *TeamMemberRepo) Create(ctx context.Context, in MemberInput) (model.TeamMember, error) {
	ranks, err := marshalList(in.Ranks)
	if err != nil {
		return model.TeamMember{}, err
	}
	verw, err := marshalList(in.Verwaltungen)
	if err != nil {
		return model.TeamMember{}, err
	}
	if in.ActivityStatus == "" {
		in.ActivityStatus = model.ActivityAktiv
	}
	if in.JoinDate.IsZero() {
		in.JoinDate = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO team_members (name, ranks, verwaltungen, discord_id, avatar_url, activity_status, notes, join_date) VALUES (?,?,?,?,?,?,?,?)",
		in.Name, ranks, verw, in.DiscordID, in.AvatarURL, in.ActivityStatus, in.Notes, in.JoinDate)
	if err != nil {
		return model.TeamMember{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.TeamMember{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches a member by id.
func (r *TeamMemberRepo) GetByID(ctx context.Context, id uint64) (model.TeamMember, error) {
	return scanMember(r.DB.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM team_members WHERE id=? LIMIT 1", id))
}

// List returns all members in insertion order. Rank ordering is applied by
// SortByRank once the caller has loaded the rank taxonomy.
func (r *TeamMemberRepo) List(ctx context.Context) ([]model.TeamMember, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+memberColumns+" FROM team_members")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []model.TeamMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// MemberUpdate lists optional changes for Update. A nil field is left
// untouched; ClearVerwaltungen/ClearNotes/... distinguish "set to null"
// from "no change" for nullable columns.
type MemberUpdate struct {
	Name              *string
	Ranks             []string
	Verwaltungen      []string
	ClearVerwaltungen bool
	DiscordID         *string
	ClearDiscordID    bool
	AvatarURL         *string
	ClearAvatarURL    bool
	ActivityStatus    *string
	Notes             *string
	ClearNotes        bool
	JoinDate          *time.Time
}

// Update applies the given changes and returns the fresh row.
func (r *TeamMemberRepo) Update(ctx context.Context, id uint64, upd MemberUpdate) (model.TeamMember, error) {
	set := make([]string, 0, 8)
	args := make([]any, 0, 8)
	add := func(col string, v any) {
		set = append(set, col+"=?")
		args = append(args, v)
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Ranks != nil {
		ranks, err := marshalList(upd.Ranks)
		if err != nil {
			return model.TeamMember{}, err
		}
		add("ranks", ranks)
	}
	if upd.ClearVerwaltungen {
		add("verwaltungen", nil)
	} else if upd.Verwaltungen != nil {
		verw, err := marshalList(upd.Verwaltungen)
		if err != nil {
			return model.TeamMember{}, err
		}
		add("verwaltungen", verw)
	}
	if upd.ClearDiscordID {
		add("discord_id", nil)
	} else if upd.DiscordID != nil {
		add("discord_id", *upd.DiscordID)
	}
	if upd.ClearAvatarURL {
		add("avatar_url", nil)
	} else if upd.AvatarURL != nil {
		add("avatar_url", *upd.AvatarURL)
	}
	if upd.ActivityStatus != nil {
		add("activity_status", *upd.ActivityStatus)
	}
	if upd.ClearNotes {
		add("notes", nil)
	} else if upd.Notes != nil {
		add("notes", *upd.Notes)
	}
	if upd.JoinDate != nil {
		add("join_date", *upd.JoinDate)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id)
	query := "UPDATE team_members SET " + strings.Join(set, ", ") + " WHERE id=?"
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return model.TeamMember{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Distinguish "missing" from "no-op update on identical values".
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.TeamMember{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a member. Deleting an unknown id yields ErrMemberNotFound.
func (r *TeamMemberRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM team_members WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// SortByRank orders members by their highest rank: the lowest position in
// rankOrder among a member's ranks wins. Members with only unknown ranks
// sort last. The sort is stable so equal members keep insertion order.
func SortByRank(members []model.TeamMember, rankOrder []string) {
	pos := make(map[string]int, len(rankOrder))
	for i, name := range rankOrder {
		pos[name] = i
	}
	const unranked = 1 << 20
	best := func(m model.TeamMember) int {
		b := unranked
		for _, r := range m.Ranks {
			if p, ok := pos[r]; ok && p < b {
				b = p
			}
		}
		return b
	}
	sort.SliceStable(members, func(i, j int) bool {
		return best(members[i]) < best(members[j])
	})
}
