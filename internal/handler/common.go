package handler // handler package contains the HTTP handlers for the roster API

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/syndikat/teamliste/internal/middleware"
	"github.com/syndikat/teamliste/internal/model"
)

// currentUser returns the user SessionAuth stored in the request context.
func currentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(middleware.CtxUser).(model.User)
	return u, ok
}

// paramID parses the :id route parameter.
func paramID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

var errInvalidJSON = errors.New("invalid json value")

// nullableString decodes a JSON field that distinguishes three states:
// absent (no change), null (clear the column) and a string value.
func nullableString(raw json.RawMessage) (val *string, clear bool, err error) {
	if raw == nil {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, errInvalidJSON
	}
	return &s, false, nil
}

// nullableStringList is nullableString for string-array fields.
func nullableStringList(raw json.RawMessage) (val []string, clear bool, err error) {
	if raw == nil {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false, errInvalidJSON
	}
	if list == nil {
		list = []string{}
	}
	return list, false, nil
}
