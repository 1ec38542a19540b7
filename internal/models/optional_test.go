package models_test

import (
	"encoding/json"
	"testing"

	"github.com/campusboard/taskboard/internal/models"
)

type patchShape struct {
	Title      models.OptString `json:"title"`
	AssignedTo models.OptInt64  `json:"assigned_to"`
}

func TestOptionalFields_AbsentNullValue(t *testing.T) {
	var absent patchShape
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatal(err)
	}
	if absent.Title.Set || absent.AssignedTo.Set {
		t.Error("absent keys must not be marked set")
	}

	var null patchShape
	if err := json.Unmarshal([]byte(`{"title":null,"assigned_to":null}`), &null); err != nil {
		t.Fatal(err)
	}
	if !null.Title.Set || null.Title.Value != nil {
		t.Errorf("null title = %+v, want set with nil value", null.Title)
	}
	if !null.AssignedTo.Set || null.AssignedTo.Value != nil {
		t.Errorf("null assigned_to = %+v, want set with nil value", null.AssignedTo)
	}

	var set patchShape
	if err := json.Unmarshal([]byte(`{"title":"hello","assigned_to":7}`), &set); err != nil {
		t.Fatal(err)
	}
	if !set.Title.Set || set.Title.Value == nil || *set.Title.Value != "hello" {
		t.Errorf("title = %+v, want set to hello", set.Title)
	}
	if !set.AssignedTo.Set || set.AssignedTo.Value == nil || *set.AssignedTo.Value != 7 {
		t.Errorf("assigned_to = %+v, want set to 7", set.AssignedTo)
	}
}

func TestEnums(t *testing.T) {
	for _, s := range []models.TaskStatus{models.StatusPending, models.StatusInProgress, models.StatusCompleted} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if models.TaskStatus("archived").Valid() {
		t.Error("archived should be invalid")
	}
	if !models.RoleLeader.Valid() || !models.RoleMember.Valid() {
		t.Error("defined roles should be valid")
	}
	if models.Role("owner").Valid() {
		t.Error("owner should be invalid")
	}
}
