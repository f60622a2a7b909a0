package chat

import (
	"reflect"
	"testing"
)

func TestPresenceFirstAndLastConnection(t *testing.T) {
	p := NewPresenceTracker()

	// 首条连接上线才返回 true
	if !p.UserConnected("alice", "c1") {
		t.Fatal("first connection should report user coming online")
	}
	if p.UserConnected("alice", "c2") {
		t.Fatal("second connection should not report user coming online")
	}

	// 末条连接断开才返回 true
	if p.UserDisconnected("alice", "c1") {
		t.Fatal("alice still has c2, should not be offline")
	}
	if !p.UserDisconnected("alice", "c2") {
		t.Fatal("last connection gone, alice should be offline")
	}
}

func TestPresenceUnknownDisconnect(t *testing.T) {
	p := NewPresenceTracker()
	if p.UserDisconnected("ghost", "c1") {
		t.Fatal("unknown user disconnect should be a no-op")
	}
}

func TestGetOnlineUsersSorted(t *testing.T) {
	p := NewPresenceTracker()
	p.UserConnected("carol", "c3")
	p.UserConnected("alice", "c1")
	p.UserConnected("bob", "c2")

	got := p.GetOnlineUsers()
	want := []string{"alice", "bob", "carol"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGetConnIdsForUser(t *testing.T) {
	p := NewPresenceTracker()
	p.UserConnected("alice", "c1")
	p.UserConnected("alice", "c2")

	connIds := p.GetConnIdsForUser("alice")
	if len(connIds) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(connIds))
	}
	if len(p.GetConnIdsForUser("ghost")) != 0 {
		t.Fatal("unknown user should have no connections")
	}
}
