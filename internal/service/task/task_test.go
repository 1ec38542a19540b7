package task_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/campusboard/taskboard/internal/apperrors"
	"github.com/campusboard/taskboard/internal/logger"
	"github.com/campusboard/taskboard/internal/models"
	"github.com/campusboard/taskboard/internal/service/task"
	"github.com/campusboard/taskboard/internal/testutil"
)

type fixture struct {
	svc    *task.Service
	ctx    context.Context
	teamID int64
	leader int64 // team leader
	member int64 // plain member
	outer  int64 // not a member
}

func setup(t *testing.T) (*fixture, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	f := &fixture{
		svc: task.New(db, logger.NewNop(), nil),
		ctx: context.Background(),
	}
	f.leader = testutil.InsertUser(t, db, "Alice", "alice@example.com")
	f.member = testutil.InsertUser(t, db, "Bob", "bob@example.com")
	f.outer = testutil.InsertUser(t, db, "Carol", "carol@example.com")
	f.teamID = testutil.InsertTeam(t, db, "Alpha", f.leader)
	testutil.InsertMembership(t, db, f.teamID, f.leader, models.RoleLeader)
	testutil.InsertMembership(t, db, f.teamID, f.member, models.RoleMember)

	return f, db
}

func TestCreate_Defaults(t *testing.T) {
	f, _ := setup(t)

	created, err := f.svc.Create(f.ctx, f.leader, task.CreateRequest{
		Title:  "Write spec",
		TeamID: f.teamID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", created.Status)
	}
	if created.CreatedBy != f.leader {
		t.Errorf("created_by = %d, want %d", created.CreatedBy, f.leader)
	}
	if created.AssignedTo != nil {
		t.Errorf("assigned_to = %v, want nil", created.AssignedTo)
	}
}

func TestCreate_Validation(t *testing.T) {
	f, _ := setup(t)

	cases := []struct {
		name string
		req  task.CreateRequest
		kind apperrors.Kind
	}{
		{"missing title", task.CreateRequest{TeamID: f.teamID}, apperrors.KindValidation},
		{"missing team", task.CreateRequest{Title: "x"}, apperrors.KindValidation},
		{"bad due date", task.CreateRequest{Title: "x", TeamID: f.teamID, DueDate: ptr("tomorrow")}, apperrors.KindValidation},
	}
	for _, tc := range cases {
		if _, err := f.svc.Create(f.ctx, f.leader, tc.req); apperrors.KindOf(err) != tc.kind {
			t.Errorf("%s: kind = %v, want %v", tc.name, apperrors.KindOf(err), tc.kind)
		}
	}
}

func TestCreate_MembershipRules(t *testing.T) {
	f, _ := setup(t)

	// Non-member caller is rejected before payload validation matters.
	_, err := f.svc.Create(f.ctx, f.outer, task.CreateRequest{Title: "x", TeamID: f.teamID})
	if apperrors.KindOf(err) != apperrors.KindPermission {
		t.Errorf("non-member create: kind = %v, want permission", apperrors.KindOf(err))
	}

	// Assigning to a non-member fails validation even for the leader.
	_, err = f.svc.Create(f.ctx, f.leader, task.CreateRequest{
		Title: "x", TeamID: f.teamID, AssignedTo: &f.outer,
	})
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("non-member assignee: kind = %v, want validation", apperrors.KindOf(err))
	}

	created, err := f.svc.Create(f.ctx, f.leader, task.CreateRequest{
		Title: "x", TeamID: f.teamID, AssignedTo: &f.member,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.AssignedTo == nil || *created.AssignedTo != f.member {
		t.Errorf("assigned_to = %v, want %d", created.AssignedTo, f.member)
	}
}

func TestUpdate_PatchSemantics(t *testing.T) {
	f, db := setup(t)

	due := "2030-01-15"
	taskID := testutil.InsertTask(t, db, testutil.TaskRow{
		TeamID:     f.teamID,
		Title:      "original",
		AssignedTo: &f.member,
		CreatedBy:  f.leader,
		DueDate:    &due,
		UpdatedAt:  time.Now().UTC().Unix() - 100,
	})

	// Only status present: title, assignee and due date survive.
	var patch task.Patch
	if err := json.Unmarshal([]byte(`{"status":"completed"}`), &patch); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}
	updated, err := f.svc.Update(f.ctx, f.member, taskID, patch)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != models.StatusCompleted {
		t.Errorf("status = %s, want completed", updated.Status)
	}
	if updated.Title != "original" {
		t.Errorf("title = %q, want original", updated.Title)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != f.member {
		t.Errorf("assigned_to = %v, want %d", updated.AssignedTo, f.member)
	}
	if updated.DueDate == nil || *updated.DueDate != due {
		t.Errorf("due_date = %v, want %s", updated.DueDate, due)
	}
	if updated.UpdatedAt <= time.Now().UTC().Unix()-100 {
		t.Errorf("updated_at did not advance: %d", updated.UpdatedAt)
	}

	// Present null clears the assignment.
	patch = task.Patch{}
	if err := json.Unmarshal([]byte(`{"assigned_to":null}`), &patch); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}
	updated, err = f.svc.Update(f.ctx, f.member, taskID, patch)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.AssignedTo != nil {
		t.Errorf("assigned_to = %v, want nil after explicit null", updated.AssignedTo)
	}
}

func TestUpdate_Rejections(t *testing.T) {
	f, db := setup(t)

	taskID := testutil.InsertTask(t, db, testutil.TaskRow{
		TeamID: f.teamID, Title: "x", CreatedBy: f.leader,
	})

	statusPatch := func(s string) task.Patch {
		var p task.Patch
		raw, _ := json.Marshal(map[string]string{"status": s})
		json.Unmarshal(raw, &p)
		return p
	}

	// Missing task.
	if _, err := f.svc.Update(f.ctx, f.leader, 9999, statusPatch("completed")); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("missing task: kind = %v, want not found", apperrors.KindOf(err))
	}
	// Non-member caller, even with an invalid payload, gets permission.
	if _, err := f.svc.Update(f.ctx, f.outer, taskID, statusPatch("archived")); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Errorf("non-member update: kind = %v, want permission", apperrors.KindOf(err))
	}
	// Empty patch.
	if _, err := f.svc.Update(f.ctx, f.leader, taskID, task.Patch{}); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("empty patch: kind = %v, want validation", apperrors.KindOf(err))
	}
	// Out-of-enum status.
	if _, err := f.svc.Update(f.ctx, f.leader, taskID, statusPatch("archived")); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("bad status: kind = %v, want validation", apperrors.KindOf(err))
	}
	// Reassignment to a non-member.
	var p task.Patch
	raw, _ := json.Marshal(map[string]int64{"assigned_to": f.outer})
	json.Unmarshal(raw, &p)
	if _, err := f.svc.Update(f.ctx, f.leader, taskID, p); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("non-member assignee: kind = %v, want validation", apperrors.KindOf(err))
	}
}

func TestDelete_PermissionMatrix(t *testing.T) {
	f, db := setup(t)

	// Created by the plain member.
	byMember := testutil.InsertTask(t, db, testutil.TaskRow{
		TeamID: f.teamID, Title: "member's", CreatedBy: f.member,
	})
	// Created by the leader.
	byLeader := testutil.InsertTask(t, db, testutil.TaskRow{
		TeamID: f.teamID, Title: "leader's", CreatedBy: f.leader,
	})

	// Non-member cannot delete anything.
	if err := f.svc.Delete(f.ctx, f.outer, byMember); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Errorf("non-member delete: kind = %v, want permission", apperrors.KindOf(err))
	}
	// A member who is neither creator nor leader cannot delete.
	if err := f.svc.Delete(f.ctx, f.member, byLeader); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Errorf("uninvolved member delete: kind = %v, want permission", apperrors.KindOf(err))
	}
	// The creator can delete their own task.
	if err := f.svc.Delete(f.ctx, f.member, byMember); err != nil {
		t.Errorf("creator delete failed: %v", err)
	}
	// The leader can delete any team task.
	if err := f.svc.Delete(f.ctx, f.leader, byLeader); err != nil {
		t.Errorf("leader delete failed: %v", err)
	}
	// Deleting a missing task reports not found.
	if err := f.svc.Delete(f.ctx, f.leader, byLeader); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("double delete: kind = %v, want not found", apperrors.KindOf(err))
	}
}

func TestListForTeam_FilterAndGate(t *testing.T) {
	f, db := setup(t)

	testutil.InsertTask(t, db, testutil.TaskRow{TeamID: f.teamID, Title: "a", CreatedBy: f.leader})
	testutil.InsertTask(t, db, testutil.TaskRow{
		TeamID: f.teamID, Title: "b", Status: models.StatusCompleted, CreatedBy: f.leader,
	})

	if _, err := f.svc.ListForTeam(f.ctx, f.outer, f.teamID, ""); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Errorf("non-member list: kind = %v, want permission", apperrors.KindOf(err))
	}

	all, err := f.svc.ListForTeam(f.ctx, f.member, f.teamID, "")
	if err != nil {
		t.Fatalf("ListForTeam failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered count = %d, want 2", len(all))
	}

	completed, err := f.svc.ListForTeam(f.ctx, f.member, f.teamID, "completed")
	if err != nil {
		t.Fatalf("ListForTeam failed: %v", err)
	}
	if len(completed) != 1 || completed[0].Title != "b" {
		t.Errorf("filtered = %v, want single task b", completed)
	}
}

func TestListAssigned(t *testing.T) {
	f, db := setup(t)

	testutil.InsertTask(t, db, testutil.TaskRow{
		TeamID: f.teamID, Title: "mine", AssignedTo: &f.member, CreatedBy: f.leader,
	})
	testutil.InsertTask(t, db, testutil.TaskRow{
		TeamID: f.teamID, Title: "theirs", AssignedTo: &f.leader, CreatedBy: f.leader,
	})

	mine, err := f.svc.ListAssigned(f.ctx, f.member, "")
	if err != nil {
		t.Fatalf("ListAssigned failed: %v", err)
	}
	if len(mine) != 1 || mine[0].Title != "mine" {
		t.Fatalf("assigned = %v, want single task mine", mine)
	}
	if mine[0].TeamName != "Alpha" {
		t.Errorf("team_name = %q, want Alpha", mine[0].TeamName)
	}
}

func TestTeamStats_OverdueCount(t *testing.T) {
	f, db := setup(t)

	past := "2020-01-01"
	future := "2099-01-01"
	testutil.InsertTask(t, db, testutil.TaskRow{
		TeamID: f.teamID, Title: "overdue", DueDate: &past, CreatedBy: f.leader,
	})
	testutil.InsertTask(t, db, testutil.TaskRow{
		TeamID: f.teamID, Title: "done late", Status: models.StatusCompleted, DueDate: &past, CreatedBy: f.leader,
	})
	testutil.InsertTask(t, db, testutil.TaskRow{
		TeamID: f.teamID, Title: "future", Status: models.StatusInProgress, DueDate: &future, CreatedBy: f.leader,
	})

	if _, err := f.svc.TeamStats(f.ctx, f.outer, f.teamID); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Errorf("non-member stats: kind = %v, want permission", apperrors.KindOf(err))
	}

	stats, err := f.svc.TeamStats(f.ctx, f.member, f.teamID)
	if err != nil {
		t.Fatalf("TeamStats failed: %v", err)
	}
	if stats.Total != 3 || stats.Pending != 1 || stats.InProgress != 1 || stats.Completed != 1 {
		t.Errorf("stats = %+v, want total 3, one per status", stats)
	}
	if stats.Overdue != 1 {
		t.Errorf("overdue = %d, want 1 (completed tasks never count)", stats.Overdue)
	}
}

func ptr(s string) *string { return &s }
