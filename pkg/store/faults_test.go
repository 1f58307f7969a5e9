package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db, time.Second, nil), mock
}

func TestGetUserQueryFailure(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("FROM users").WillReturnError(errors.New("connection reset"))

	_, err := s.GetUser(context.Background(), "u-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetTeamMembershipsQueryFailure(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("FROM team_members").WillReturnError(errors.New("connection reset"))

	_, err := s.GetTeamMemberships(context.Background(), "u-1")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetTeamMembershipsRowError(t *testing.T) {
	s, mock := mockStore(t)
	rows := sqlmock.NewRows([]string{"team_id", "role"}).
		AddRow("team-1", "member").
		RowError(0, errors.New("stream interrupted"))
	mock.ExpectQuery("FROM team_members").WillReturnRows(rows)

	_, err := s.GetTeamMemberships(context.Background(), "u-1")
	if err == nil {
		t.Fatal("expected error from interrupted row stream")
	}
}

func TestGetProjectQueryFailure(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("FROM projects").WillReturnError(errors.New("connection reset"))

	_, err := s.GetProject(context.Background(), "proj-1")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGetProjectsQueryFailure(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("FROM projects").WillReturnError(errors.New("connection reset"))

	_, err := s.GetProjects(context.Background(), []string{"proj-1", "proj-2"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestFindCredentialCandidatesQueryFailure(t *testing.T) {
	s, mock := mockStore(t)
	mock.ExpectQuery("FROM api_keys").WillReturnError(errors.New("connection reset"))

	_, err := s.FindCredentialCandidates(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestQueryTimeoutIsApplied(t *testing.T) {
	s, mock := mockStore(t)
	s.queryTimeout = time.Nanosecond

	mock.ExpectQuery("FROM users").
		WillDelayFor(50 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "organization_id", "org_role", "is_active"}))

	_, err := s.GetUser(context.Background(), "u-1")
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
