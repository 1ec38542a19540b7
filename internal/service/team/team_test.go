package team_test

import (
	"context"
	"testing"

	"github.com/campusboard/taskboard/internal/apperrors"
	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/models"
	"github.com/campusboard/taskboard/internal/service/team"
	"github.com/campusboard/taskboard/internal/testutil"
)

func TestCreate_InsertsLeaderMembership(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := team.New(db, logger.NewNop())
	ctx := context.Background()

	alice := testutil.InsertUser(t, db, "Alice", "alice@example.com")

	created, err := svc.Create(ctx, alice, "Alpha", "first team")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Name != "Alpha" {
		t.Errorf("name = %q, want Alpha", created.Name)
	}
	if created.CreatedBy != alice {
		t.Errorf("created_by = %d, want %d", created.CreatedBy, alice)
	}

	// Exactly one membership, role leader, held by the creator.
	if n := testutil.CountRows(t, db, "team_members", "team_id = ?", created.ID); n != 1 {
		t.Fatalf("membership count = %d, want 1", n)
	}
	var userID int64
	var role models.Role
	err = db.QueryRow(`SELECT user_id, role FROM team_members WHERE team_id = ?`, created.ID).
		Scan(&userID, &role)
	if err != nil {
		t.Fatalf("load membership: %v", err)
	}
	if userID != alice || role != models.RoleLeader {
		t.Errorf("membership = (%d, %s), want (%d, leader)", userID, role, alice)
	}
}

func TestCreate_EmptyNameRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := team.New(db, logger.NewNop())
	alice := testutil.InsertUser(t, db, "Alice", "alice@example.com")

	for _, name := range []string{"", "   ", "<script>alert(1)</script>"} {
		_, err := svc.Create(context.Background(), alice, name, "")
		if apperrors.KindOf(err) != apperrors.KindValidation {
			t.Errorf("Create(%q): kind = %v, want validation", name, apperrors.KindOf(err))
		}
	}
}

func TestUpdate_LeaderOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := team.New(db, logger.NewNop())
	ctx := context.Background()

	alice := testutil.InsertUser(t, db, "Alice", "alice@example.com")
	bob := testutil.InsertUser(t, db, "Bob", "bob@example.com")
	carol := testutil.InsertUser(t, db, "Carol", "carol@example.com")

	created, err := svc.Create(ctx, alice, "Alpha", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Join(ctx, bob, created.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	// Plain member cannot edit.
	if _, err := svc.Update(ctx, bob, created.ID, "Beta", ""); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Errorf("member update: kind = %v, want permission", apperrors.KindOf(err))
	}
	// Non-member cannot edit.
	if _, err := svc.Update(ctx, carol, created.ID, "Beta", ""); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Errorf("non-member update: kind = %v, want permission", apperrors.KindOf(err))
	}
	// Leader with empty name is rejected after the permission gate.
	if _, err := svc.Update(ctx, alice, created.ID, "", ""); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("empty name: kind = %v, want validation", apperrors.KindOf(err))
	}

	updated, err := svc.Update(ctx, alice, created.ID, "Beta", "renamed")
	if err != nil {
		t.Fatalf("leader update failed: %v", err)
	}
	if updated.Name != "Beta" || updated.Description != "renamed" {
		t.Errorf("updated = (%q, %q), want (Beta, renamed)", updated.Name, updated.Description)
	}
}

func TestDelete_CascadesAndRequiresLeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := team.New(db, logger.NewNop())
	ctx := context.Background()

	alice := testutil.InsertUser(t, db, "Alice", "alice@example.com")
	bob := testutil.InsertUser(t, db, "Bob", "bob@example.com")

	created, err := svc.Create(ctx, alice, "Alpha", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Join(ctx, bob, created.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	testutil.InsertTask(t, db, testutil.TaskRow{TeamID: created.ID, Title: "one", CreatedBy: alice})
	testutil.InsertTask(t, db, testutil.TaskRow{TeamID: created.ID, Title: "two", CreatedBy: bob})

	if err := svc.Delete(ctx, bob, created.ID); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Errorf("member delete: kind = %v, want permission", apperrors.KindOf(err))
	}

	if err := svc.Delete(ctx, alice, created.ID); err != nil {
		t.Fatalf("leader delete failed: %v", err)
	}

	for _, table := range []string{"teams", "team_members", "tasks"} {
		where := "team_id = ?"
		if table == "teams" {
			where = "id = ?"
		}
		if n := testutil.CountRows(t, db, table, where, created.ID); n != 0 {
			t.Errorf("%s rows after delete = %d, want 0", table, n)
		}
	}
}

func TestJoin_DuplicateAndMissingTeam(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := team.New(db, logger.NewNop())
	ctx := context.Background()

	alice := testutil.InsertUser(t, db, "Alice", "alice@example.com")
	bob := testutil.InsertUser(t, db, "Bob", "bob@example.com")

	created, err := svc.Create(ctx, alice, "Alpha", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Join(ctx, bob, 9999); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("join missing team: kind = %v, want not found", apperrors.KindOf(err))
	}

	if err := svc.Join(ctx, bob, created.ID); err != nil {
		t.Fatalf("first join failed: %v", err)
	}

	var role models.Role
	err = db.QueryRow(`SELECT role FROM team_members WHERE team_id = ? AND user_id = ?`,
		created.ID, bob).Scan(&role)
	if err != nil {
		t.Fatalf("load membership: %v", err)
	}
	if role != models.RoleMember {
		t.Errorf("joined role = %s, want member", role)
	}

	if err := svc.Join(ctx, bob, created.ID); apperrors.KindOf(err) != apperrors.KindConflict {
		t.Errorf("second join: kind = %v, want conflict", apperrors.KindOf(err))
	}
}

func TestLeave_LeaderRules(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := team.New(db, logger.NewNop())
	ctx := context.Background()

	alice := testutil.InsertUser(t, db, "Alice", "alice@example.com")
	bob := testutil.InsertUser(t, db, "Bob", "bob@example.com")
	carol := testutil.InsertUser(t, db, "Carol", "carol@example.com")

	created, err := svc.Create(ctx, alice, "Alpha", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Join(ctx, bob, created.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	// Non-member cannot leave.
	if err := svc.Leave(ctx, carol, created.ID); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Errorf("non-member leave: kind = %v, want permission", apperrors.KindOf(err))
	}

	// Leader with a peer remaining cannot leave.
	if err := svc.Leave(ctx, alice, created.ID); apperrors.KindOf(err) != apperrors.KindConflict {
		t.Errorf("leader leave with peers: kind = %v, want conflict", apperrors.KindOf(err))
	}

	// Plain member can always leave.
	if err := svc.Leave(ctx, bob, created.ID); err != nil {
		t.Fatalf("member leave failed: %v", err)
	}

	// Sole leader can leave, removing the last membership.
	if err := svc.Leave(ctx, alice, created.ID); err != nil {
		t.Fatalf("sole leader leave failed: %v", err)
	}
	if n := testutil.CountRows(t, db, "team_members", "team_id = ?", created.ID); n != 0 {
		t.Errorf("memberships after leave = %d, want 0", n)
	}
}

func TestGet_MemberGateAndDetail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := team.New(db, logger.NewNop())
	ctx := context.Background()

	alice := testutil.InsertUser(t, db, "Alice", "alice@example.com")
	bob := testutil.InsertUser(t, db, "Bob", "bob@example.com")

	created, err := svc.Create(ctx, alice, "Alpha", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Get(ctx, bob, created.ID); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Errorf("non-member get: kind = %v, want permission", apperrors.KindOf(err))
	}

	if err := svc.Join(ctx, bob, created.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	detail, err := svc.Get(ctx, bob, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if detail.CreatedByName != "Alice" {
		t.Errorf("created_by_name = %q, want Alice", detail.CreatedByName)
	}
	if len(detail.Members) != 2 {
		t.Fatalf("member count = %d, want 2", len(detail.Members))
	}
	if detail.Members[0].Role != models.RoleLeader {
		t.Errorf("first member role = %s, want leader", detail.Members[0].Role)
	}
}

func TestListForUser_RoleAndMemberCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := team.New(db, logger.NewNop())
	ctx := context.Background()

	alice := testutil.InsertUser(t, db, "Alice", "alice@example.com")
	bob := testutil.InsertUser(t, db, "Bob", "bob@example.com")

	alpha, err := svc.Create(ctx, alice, "Alpha", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, bob, "Beta", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Join(ctx, bob, alpha.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	teams, err := svc.ListForUser(ctx, bob)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("team count = %d, want 2", len(teams))
	}

	byName := map[string]models.TeamSummary{}
	for _, tm := range teams {
		byName[tm.Name] = tm
	}
	if byName["Alpha"].Role != models.RoleMember || byName["Alpha"].MemberCount != 2 {
		t.Errorf("Alpha = (%s, %d), want (member, 2)", byName["Alpha"].Role, byName["Alpha"].MemberCount)
	}
	if byName["Beta"].Role != models.RoleLeader || byName["Beta"].MemberCount != 1 {
		t.Errorf("Beta = (%s, %d), want (leader, 1)", byName["Beta"].Role, byName["Beta"].MemberCount)
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListAll count = %d, want 2", len(all))
	}
}
