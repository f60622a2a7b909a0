package chat

import (
	"fmt"
	"sync"
	"testing"
)

func TestGroupNameDeterministic(t *testing.T) {
	// 参数顺序不影响房间名
	if GroupName("alice", "bob") != GroupName("bob", "alice") {
		t.Fatal("group name should not depend on argument order")
	}
	if GroupName("alice", "bob") != "alice-bob" {
		t.Fatalf("unexpected group name: %s", GroupName("alice", "bob"))
	}
	if GroupName("zoe", "bob") != "bob-zoe" {
		t.Fatalf("unexpected group name: %s", GroupName("zoe", "bob"))
	}
}

func TestAddAndGetConnection(t *testing.T) {
	r := NewConnRegistry()
	groupName := GroupName("alice", "bob")
	r.AddConnection(groupName, &Connection{Id: "c1", Username: "alice"})
	r.AddConnection(groupName, &Connection{Id: "c2", Username: "bob"})

	group, ok := r.GetMessageGroup(groupName)
	if !ok {
		t.Fatal("group should exist")
	}
	if len(group.Connections) != 2 {
		t.Fatalf("expected 2 connections, got %d", len(group.Connections))
	}
	if !group.HasUser("alice") || !group.HasUser("bob") {
		t.Fatal("both users should be in the group")
	}

	conn, ok := r.GetConnection("c1")
	if !ok || conn.Username != "alice" {
		t.Fatal("connection c1 should resolve to alice")
	}
}

func TestAddConnectionIdempotent(t *testing.T) {
	r := NewConnRegistry()
	groupName := GroupName("alice", "bob")
	conn := &Connection{Id: "c1", Username: "alice"}
	r.AddConnection(groupName, conn)
	r.AddConnection(groupName, conn)

	group, _ := r.GetMessageGroup(groupName)
	if len(group.Connections) != 1 {
		t.Fatalf("duplicate join should be ignored, got %d connections", len(group.Connections))
	}
}

func TestRemoveConnection(t *testing.T) {
	r := NewConnRegistry()
	groupName := GroupName("alice", "bob")
	r.AddConnection(groupName, &Connection{Id: "c1", Username: "alice"})
	r.AddConnection(groupName, &Connection{Id: "c2", Username: "bob"})

	removed := r.RemoveConnection("c1")
	if removed == nil || removed.Username != "alice" {
		t.Fatal("removed connection should be alice's")
	}
	group, ok := r.GetMessageGroup(groupName)
	if !ok {
		t.Fatal("group should still exist while bob stays")
	}
	if group.HasUser("alice") {
		t.Fatal("alice should be gone from the group")
	}

	// 最后一个成员退出后房间被删除
	r.RemoveConnection("c2")
	if _, ok := r.GetMessageGroup(groupName); ok {
		t.Fatal("empty group should be dropped")
	}
}

func TestGetGroupForConnection(t *testing.T) {
	r := NewConnRegistry()
	groupName := GroupName("alice", "bob")
	r.AddConnection(groupName, &Connection{Id: "c1", Username: "alice"})

	group, ok := r.GetGroupForConnection("c1")
	if !ok {
		t.Fatal("connection should resolve to its group")
	}
	if group.Name != groupName {
		t.Fatalf("expected group %s, got %s", groupName, group.Name)
	}
	if !group.HasUser("alice") {
		t.Fatal("resolved group should contain the connection's user")
	}

	if _, ok := r.GetGroupForConnection("nope"); ok {
		t.Fatal("unknown connection should not resolve")
	}

	// 退出后不再可解析
	r.RemoveConnection("c1")
	if _, ok := r.GetGroupForConnection("c1"); ok {
		t.Fatal("removed connection should not resolve")
	}
}

func TestRemoveUnknownConnectionIsNoop(t *testing.T) {
	r := NewConnRegistry()
	if conn := r.RemoveConnection("nope"); conn != nil {
		t.Fatal("removing unknown connection should return nil")
	}
}

func TestConcurrentJoinSameGroup(t *testing.T) {
	r := NewConnRegistry()
	groupName := GroupName("alice", "bob")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			username := "alice"
			if i%2 == 1 {
				username = "bob"
			}
			r.AddConnection(groupName, &Connection{
				Id:       fmt.Sprintf("conn-%d", i),
				Username: username,
			})
		}(i)
	}
	wg.Wait()

	group, ok := r.GetMessageGroup(groupName)
	if !ok {
		t.Fatal("group should exist")
	}
	// 并发加入不丢失更新
	if len(group.Connections) != 50 {
		t.Fatalf("expected 50 connections, got %d", len(group.Connections))
	}
	if !group.HasUser("alice") || !group.HasUser("bob") {
		t.Fatal("both users should be members after concurrent joins")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	r := NewConnRegistry()
	groupName := GroupName("alice", "bob")
	r.AddConnection(groupName, &Connection{Id: "c1", Username: "alice"})

	group, _ := r.GetMessageGroup(groupName)
	r.AddConnection(groupName, &Connection{Id: "c2", Username: "bob"})

	// 快照不受后续加入影响
	if len(group.Connections) != 1 {
		t.Fatalf("snapshot should keep 1 connection, got %d", len(group.Connections))
	}
}
