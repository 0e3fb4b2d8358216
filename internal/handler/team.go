package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/syndikat/teamliste/internal/model"
	"github.com/syndikat/teamliste/internal/repository"
)

// TeamHandler serves the roster endpoints. Reads are open to every
// authenticated user; mutations are registered behind the admin guard.
type TeamHandler struct {
	Members      *repository.TeamMemberRepo
	Ranks        *repository.TaxonomyRepo
	Verwaltungen *repository.TaxonomyRepo
}

func NewTeamHandler(members *repository.TeamMemberRepo, ranks, verwaltungen *repository.TaxonomyRepo) *TeamHandler {
	return &TeamHandler{Members: members, Ranks: ranks, Verwaltungen: verwaltungen}
}

// ----- validation -----

func validMemberName(name string) bool {
	return name != "" && len(name) <= 100
}

func validRanks(ranks []string) bool {
	if len(ranks) == 0 {
		return false
	}
	for _, r := range ranks {
		if r == "" || len(r) > 100 {
			return false
		}
	}
	return true
}

func validVerwaltungen(v []string) bool {
	for _, s := range v {
		if s == "" || len(s) > 100 {
			return false
		}
	}
	return true
}

func validAvatarURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// rankOrder loads the full rank taxonomy and returns the slugs in hierarchy
// order for sorting the roster.
func (h *TeamHandler) rankOrder(ctx context.Context) ([]string, error) {
	entries, err := h.Ranks.List(ctx, false)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

// List handles GET /v1/team and returns all members ordered by their
// highest rank.
func (h *TeamHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	order, err := h.rankOrder(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	members, err := h.Members.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	repository.SortByRank(members, order)
	if members == nil {
		members = []model.TeamMember{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": members})
}

// Get handles GET /v1/team/:id.
func (h *TeamHandler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	m, err := h.Members.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "team member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, m)
}

// ListedRanks handles GET /v1/team/ranks: the rank choices offered when
// editing a member.
func (h *TeamHandler) ListedRanks(c echo.Context) error {
	entries, err := h.Ranks.List(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if entries == nil {
		entries = []model.TaxonomyEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries})
}

// ListedVerwaltungen handles GET /v1/team/verwaltungen.
func (h *TeamHandler) ListedVerwaltungen(c echo.Context) error {
	entries, err := h.Verwaltungen.List(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if entries == nil {
		entries = []model.TaxonomyEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries})
}

// ----- mutations (admin only) -----

type memberCreateReq struct {
	Name           string     `json:"name"`
	Ranks          []string   `json:"ranks"`
	Verwaltungen   []string   `json:"verwaltungen"`
	DiscordID      *string    `json:"discordId"`
	AvatarURL      *string    `json:"avatarUrl"`
	ActivityStatus *string    `json:"activityStatus"`
	Notes          *string    `json:"notes"`
	JoinDate       *time.Time `json:"joinDate"`
}

// Create handles POST /v1/team.
func (h *TeamHandler) Create(c echo.Context) error {
	var req memberCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if !validMemberName(req.Name) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be 1-100 characters"})
	}
	if !validRanks(req.Ranks) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one rank is required"})
	}
	if !validVerwaltungen(req.Verwaltungen) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid verwaltungen"})
	}
	if req.DiscordID != nil && len(*req.DiscordID) > 64 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "discordId too long"})
	}
	if req.AvatarURL != nil && !validAvatarURL(*req.AvatarURL) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "avatarUrl must be a valid url"})
	}
	status := model.ActivityAktiv
	if req.ActivityStatus != nil {
		if !model.ValidActivityStatus(*req.ActivityStatus) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid activity status"})
		}
		status = *req.ActivityStatus
	}

	in := repository.MemberInput{
		Name:           req.Name,
		Ranks:          req.Ranks,
		Verwaltungen:   req.Verwaltungen,
		DiscordID:      req.DiscordID,
		AvatarURL:      req.AvatarURL,
		ActivityStatus: status,
		Notes:          req.Notes,
	}
	if req.JoinDate != nil {
		in.JoinDate = *req.JoinDate
	}

	m, err := h.Members.Create(c.Request().Context(), in)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, m)
}

type memberUpdateReq struct {
	Name           *string         `json:"name"`
	Ranks          []string        `json:"ranks"`
	Verwaltungen   json.RawMessage `json:"verwaltungen"`
	DiscordID      json.RawMessage `json:"discordId"`
	AvatarURL      json.RawMessage `json:"avatarUrl"`
	ActivityStatus *string         `json:"activityStatus"`
	Notes          json.RawMessage `json:"notes"`
	JoinDate       *time.Time      `json:"joinDate"`
}

// Update handles PATCH /v1/team/:id. Absent fields stay untouched; an
// explicit null clears the nullable columns.
func (h *TeamHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req memberUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	var upd repository.MemberUpdate
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !validMemberName(name) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be 1-100 characters"})
		}
		upd.Name = &name
	}
	if req.Ranks != nil {
		if !validRanks(req.Ranks) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one rank is required"})
		}
		upd.Ranks = req.Ranks
	}
	if verw, clear, err := nullableStringList(req.Verwaltungen); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid verwaltungen"})
	} else if clear {
		upd.ClearVerwaltungen = true
	} else if verw != nil {
		if !validVerwaltungen(verw) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid verwaltungen"})
		}
		upd.Verwaltungen = verw
	}
	if v, clear, err := nullableString(req.DiscordID); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid discordId"})
	} else if clear {
		upd.ClearDiscordID = true
	} else if v != nil {
		if len(*v) > 64 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "discordId too long"})
		}
		upd.DiscordID = v
	}
	if v, clear, err := nullableString(req.AvatarURL); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid avatarUrl"})
	} else if clear {
		upd.ClearAvatarURL = true
	} else if v != nil {
		if !validAvatarURL(*v) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "avatarUrl must be a valid url"})
		}
		upd.AvatarURL = v
	}
	if req.ActivityStatus != nil {
		if !model.ValidActivityStatus(*req.ActivityStatus) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid activity status"})
		}
		upd.ActivityStatus = req.ActivityStatus
	}
	if v, clear, err := nullableString(req.Notes); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notes"})
	} else if clear {
		upd.ClearNotes = true
	} else if v != nil {
		upd.Notes = v
	}
	upd.JoinDate = req.JoinDate

	m, err := h.Members.Update(c.Request().Context(), id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "team member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /v1/team/:id.
func (h *TeamHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Members.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "team member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// UpdateActivityStatus handles PATCH /v1/team/:id/activity-status, a
// targeted update driven from the roster overview.
func (h *TeamHandler) UpdateActivityStatus(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		ActivityStatus string `json:"activityStatus"`
	}
	if err := c.Bind(&req); err != nil || !model.ValidActivityStatus(req.ActivityStatus) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid activity status"})
	}
	m, err := h.Members.Update(c.Request().Context(), id,
		repository.MemberUpdate{ActivityStatus: &req.ActivityStatus})
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "team member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// UpdateNotes handles PATCH /v1/team/:id/notes. A null body value clears
// the notes.
func (h *TeamHandler) UpdateNotes(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Notes json.RawMessage `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var upd repository.MemberUpdate
	if v, clear, err := nullableString(req.Notes); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notes"})
	} else if clear {
		upd.ClearNotes = true
	} else if v != nil {
		upd.Notes = v
	}
	m, err := h.Members.Update(c.Request().Context(), id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "team member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// UpdateVerwaltungen handles PATCH /v1/team/:id/verwaltungen. A null body
// value removes the member from every Verwaltung.
func (h *TeamHandler) UpdateVerwaltungen(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req struct {
		Verwaltungen json.RawMessage `json:"verwaltungen"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var upd repository.MemberUpdate
	if verw, clear, err := nullableStringList(req.Verwaltungen); err != nil || (verw != nil && !validVerwaltungen(verw)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid verwaltungen"})
	} else if clear {
		upd.ClearVerwaltungen = true
	} else if verw != nil {
		upd.Verwaltungen = verw
	}
	m, err := h.Members.Update(c.Request().Context(), id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "team member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, m)
}
