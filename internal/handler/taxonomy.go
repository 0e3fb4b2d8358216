package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/syndikat/teamliste/internal/model"
	"github.com/syndikat/teamliste/internal/repository"
)

// TaxonomyHandler serves the CRUD endpoints for one taxonomy table. The
// same handler type backs /v1/ranks and /v1/verwaltungen; listing is public
// (the login screen shows the hierarchy), mutations are admin only.
type TaxonomyHandler struct {
	Repo *repository.TaxonomyRepo
}

func NewTaxonomyHandler(repo *repository.TaxonomyRepo) *TaxonomyHandler {
	return &TaxonomyHandler{Repo: repo}
}

// List handles GET and returns every entry ordered by sort order, including
// unlisted ones so admins can manage them.
func (h *TaxonomyHandler) List(c echo.Context) error {
	entries, err := h.Repo.List(c.Request().Context(), false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if entries == nil {
		entries = []model.TaxonomyEntry{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": entries})
}

type entryCreateReq struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	IsListed    *bool  `json:"isListed"`
	SortOrder   int    `json:"sortOrder"`
}

// Create handles POST.
func (h *TaxonomyHandler) Create(c echo.Context) error {
	var req entryCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.Name == "" || len(req.Name) > 100 || req.DisplayName == "" || len(req.DisplayName) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and displayName must be 1-100 characters"})
	}
	isListed := true
	if req.IsListed != nil {
		isListed = *req.IsListed
	}

	id, err := h.Repo.Create(c.Request().Context(), req.Name, req.DisplayName, isListed, req.SortOrder)
	if err != nil {
		if errors.Is(err, repository.ErrNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

type entryUpdateReq struct {
	Name        *string `json:"name"`
	DisplayName *string `json:"displayName"`
	IsListed    *bool   `json:"isListed"`
	SortOrder   *int    `json:"sortOrder"`
}

// Update handles PATCH /:id.
func (h *TaxonomyHandler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req entryUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	var upd repository.EntryUpdate
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be 1-100 characters"})
		}
		upd.Name = &name
	}
	if req.DisplayName != nil {
		dn := strings.TrimSpace(*req.DisplayName)
		if dn == "" || len(dn) > 100 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "displayName must be 1-100 characters"})
		}
		upd.DisplayName = &dn
	}
	upd.IsListed = req.IsListed
	upd.SortOrder = req.SortOrder

	if err := h.Repo.Update(c.Request().Context(), id, upd); err != nil {
		if errors.Is(err, repository.ErrNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Delete handles DELETE /:id. Roster rows referencing the deleted entry
// keep the name; it simply stops being offered for new assignments.
func (h *TaxonomyHandler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Repo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
