package game

import "testing"

func TestRoom_Membership(t *testing.T) {
	r := NewRoom("R1", "lobby", "", ModeJava, DifficultyEasy, 2)
	r.HostName = "alice"

	r.AddPlayer("alice")
	r.AddPlayer("alice") // duplicate ignored
	if r.PlayerCount() != 1 {
		t.Fatalf("PlayerCount = %d, want 1", r.PlayerCount())
	}
	if r.IsFull() {
		t.Error("room with one of two seats should not be full")
	}
	if !r.HasPlayer("alice") {
		t.Error("alice should be a member")
	}

	r.AddPlayer("bob")
	if !r.IsFull() {
		t.Error("room should be full")
	}
	if !r.CanStart() {
		t.Error("full idle room should be startable")
	}

	r.InGame = true
	if r.CanStart() {
		t.Error("room with a live match should not be startable")
	}

	r.RemovePlayer("alice")
	got := r.Players()
	if len(got) != 1 || got[0] != "bob" {
		t.Errorf("Players = %v, want [bob]", got)
	}
}

func TestRoom_Password(t *testing.T) {
	open := NewRoom("R1", "open", "", ModeC, DifficultyHard, 4)
	if open.PasswordRequired() {
		t.Error("room without password should not require one")
	}
	if !open.PasswordValid("anything") {
		t.Error("open room should accept any password")
	}

	locked := NewRoom("R2", "locked", "hunter2", ModeC, DifficultyHard, 4)
	if !locked.PasswordRequired() {
		t.Error("room with password should require it")
	}
	if locked.PasswordValid("wrong") {
		t.Error("wrong password should be rejected")
	}
	if !locked.PasswordValid("hunter2") {
		t.Error("correct password should be accepted")
	}
}
