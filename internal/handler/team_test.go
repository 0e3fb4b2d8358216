package handler

import (
	"database/sql/driver"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syndikat/teamliste/internal/model"
	"github.com/syndikat/teamliste/internal/repository"
)

var memberCols = []string{
	"id", "name", "ranks", "verwaltungen", "discord_id", "avatar_url",
	"activity_status", "notes", "join_date", "created_at", "updated_at",
}

var taxonomyCols = []string{
	"id", "name", "display_name", "is_listed", "sort_order", "created_at", "updated_at",
}

func newTeamHandler(t *testing.T) (*TeamHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTeamHandler(
		repository.NewTeamMemberRepo(db),
		repository.NewRankRepo(db),
		repository.NewVerwaltungRepo(db),
	), mock
}

func memberRow(id uint64, name, ranks string) []driver.Value {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return []driver.Value{id, name, []byte(ranks), nil, nil, nil, model.ActivityAktiv, nil, now, now, now}
}

func TestTeamListSortedByRank(t *testing.T) {
	h, mock := newTeamHandler(t)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM ranks ORDER BY sort_order").
		WillReturnRows(sqlmock.NewRows(taxonomyCols).
			AddRow(1, "Projektleitung", "Projektleitung", true, 0, now, now).
			AddRow(2, "Moderator", "Moderator", true, 5, now, now))
	mock.ExpectQuery("SELECT (.+) FROM team_members").
		WillReturnRows(sqlmock.NewRows(memberCols).
			AddRow(memberRow(1, "mod", `["Moderator"]`)...).
			AddRow(memberRow(2, "lead", `["Moderator","Projektleitung"]`)...))

	c, rec := jsonContext(http.MethodGet, "/v1/team", "")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	// The Projektleitung member sorts ahead of the plain Moderator.
	assert.Less(t, strings.Index(body, `"lead"`), strings.Index(body, `"mod"`))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamListEmpty(t *testing.T) {
	h, mock := newTeamHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM ranks ORDER BY sort_order").
		WillReturnRows(sqlmock.NewRows(taxonomyCols))
	mock.ExpectQuery("SELECT (.+) FROM team_members").
		WillReturnRows(sqlmock.NewRows(memberCols))

	c, rec := jsonContext(http.MethodGet, "/v1/team", "")
	require.NoError(t, h.List(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	// Always an array, never null.
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

func TestTeamGetNotFound(t *testing.T) {
	h, mock := newTeamHandler(t)

	mock.ExpectQuery("SELECT (.+) FROM team_members WHERE id=").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(memberCols))

	c, rec := jsonContext(http.MethodGet, "/v1/team/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeamCreateValidation(t *testing.T) {
	h, mock := newTeamHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"ranks":["Moderator"]}`},
		{"blank name", `{"name":"   ","ranks":["Moderator"]}`},
		{"no ranks", `{"name":"Lena","ranks":[]}`},
		{"empty rank entry", `{"name":"Lena","ranks":[""]}`},
		{"bad avatar url", `{"name":"Lena","ranks":["Moderator"],"avatarUrl":"ftp://x"}`},
		{"bad activity status", `{"name":"Lena","ranks":["Moderator"],"activityStatus":"urlaub"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := jsonContext(http.MethodPost, "/v1/team", tt.body)
			require.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamCreate(t *testing.T) {
	h, mock := newTeamHandler(t)

	mock.ExpectExec("INSERT INTO team_members").
		WithArgs("Lena", `["Moderator"]`, `["Eventverwaltung"]`, nil, nil, model.ActivityAktiv, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT (.+) FROM team_members WHERE id=").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows(memberCols).AddRow(memberRow(5, "Lena", `["Moderator"]`)...))

	c, rec := jsonContext(http.MethodPost, "/v1/team",
		`{"name":"Lena","ranks":["Moderator"],"verwaltungen":["Eventverwaltung"]}`)
	require.NoError(t, h.Create(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Lena"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamUpdateNullClearsVerwaltungen(t *testing.T) {
	h, mock := newTeamHandler(t)

	mock.ExpectExec("UPDATE team_members SET verwaltungen=(.+) WHERE id=").
		WithArgs(nil, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM team_members WHERE id=").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(memberCols).AddRow(memberRow(3, "Lena", `["Moderator"]`)...))

	c, rec := jsonContext(http.MethodPatch, "/v1/team/3", `{"verwaltungen":null}`)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamUpdateAbsentFieldsUntouched(t *testing.T) {
	h, mock := newTeamHandler(t)

	// An empty patch body issues no UPDATE, only the re-read.
	mock.ExpectQuery("SELECT (.+) FROM team_members WHERE id=").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(memberCols).AddRow(memberRow(3, "Lena", `["Moderator"]`)...))

	c, rec := jsonContext(http.MethodPatch, "/v1/team/3", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.Update(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamUpdateActivityStatus(t *testing.T) {
	h, mock := newTeamHandler(t)

	mock.ExpectExec("UPDATE team_members SET activity_status=(.+) WHERE id=").
		WithArgs(model.ActivityInaktiv, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM team_members WHERE id=").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(memberCols).AddRow(memberRow(3, "Lena", `["Moderator"]`)...))

	c, rec := jsonContext(http.MethodPatch, "/v1/team/3/activity-status",
		`{"activityStatus":"inaktiv"}`)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.UpdateActivityStatus(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamUpdateActivityStatusRejectsUnknown(t *testing.T) {
	h, mock := newTeamHandler(t)

	c, rec := jsonContext(http.MethodPatch, "/v1/team/3/activity-status",
		`{"activityStatus":"urlaub"}`)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.UpdateActivityStatus(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamDelete(t *testing.T) {
	h, mock := newTeamHandler(t)

	mock.ExpectExec("DELETE FROM team_members WHERE id=").
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := jsonContext(http.MethodDelete, "/v1/team/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestTeamBadIDParam(t *testing.T) {
	h, mock := newTeamHandler(t)

	c, rec := jsonContext(http.MethodGet, "/v1/team/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.Get(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
