// Package chat 实现实时私信的核心服务层
// registry.go
// 核心职责：连接注册表
// 维护"谁在线、在哪个房间"的内存映射，进程重启后由活跃会话重建，不落库
package chat

import (
	"strings"
	"sync"
)

// Connection 一条活跃 WebSocket 会话的元数据
// 每个传输会话一个唯一 Id，一个用户可同时持有多条连接（多标签页/多设备）
type Connection struct {
	Id       string // 连接唯一标识 (uuid)
	Username string // 归属用户名
}

// Group 双人会话房间
// 名称由两个参与者用户名排序拼接而成，是参与者对的纯函数
type Group struct {
	Name        string
	Connections []*Connection
}

// HasUser 判断房间内是否有指定用户的活跃连接
func (g *Group) HasUser(username string) bool {
	for _, conn := range g.Connections {
		if conn.Username == username {
			return true
		}
	}
	return false
}

// GroupName 计算双人房间的确定性名称
// 不变式: GroupName(a, b) == GroupName(b, a)
func GroupName(userA, userB string) string {
	if strings.Compare(userA, userB) < 0 {
		return userA + "-" + userB
	}
	return userB + "-" + userA
}

// ConnRegistry 连接注册表
// 所有成员变更由同一把互斥锁串行化，并发加入同一房间不会丢失更新
// 生命周期：进程启动时创建，随 Gateway 关闭而清空
type ConnRegistry struct {
	mu     sync.Mutex
	groups map[string]*Group      // 房间名 -> 房间
	byConn map[string]string      // 连接ID -> 房间名
	conns  map[string]*Connection // 连接ID -> 连接元数据
}

// NewConnRegistry 创建连接注册表
func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{
		groups: make(map[string]*Group),
		byConn: make(map[string]string),
		conns:  make(map[string]*Connection),
	}
}

// AddConnection 将连接加入指定房间，房间不存在则懒创建
// 幂等：同一连接重复加入不会重复记录
func (r *ConnRegistry) AddConnection(groupName string, conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn.Id]; ok {
		return
	}

	group, ok := r.groups[groupName]
	if !ok {
		group = &Group{Name: groupName}
		r.groups[groupName] = group
	}
	group.Connections = append(group.Connections, conn)
	r.byConn[conn.Id] = groupName
	r.conns[conn.Id] = conn
}

// RemoveConnection 把连接从其所在房间移除
// 连接不属于任何房间时为 no-op；房间空了就删除房间，避免无限增长
func (r *ConnRegistry) RemoveConnection(connId string) *Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connId]
	if !ok {
		return nil
	}
	groupName := r.byConn[connId]
	if group, ok := r.groups[groupName]; ok {
		for i, c := range group.Connections {
			if c.Id == connId {
				group.Connections = append(group.Connections[:i], group.Connections[i+1:]...)
				break
			}
		}
		if len(group.Connections) == 0 {
			delete(r.groups, groupName)
		}
	}
	delete(r.byConn, connId)
	delete(r.conns, connId)
	return conn
}

// GetConnection 查找连接元数据，未找到返回 ok=false
func (r *ConnRegistry) GetConnection(connId string) (*Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[connId]
	return conn, ok
}

// GetGroupForConnection 解析连接当前所在的房间，未找到返回 ok=false
func (r *ConnRegistry) GetGroupForConnection(connId string) (*Group, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	groupName, ok := r.byConn[connId]
	if !ok {
		return nil, false
	}
	return r.snapshotLocked(groupName)
}

// GetMessageGroup 按确定性名称解析房间，未找到返回 ok=false
// 发消息时用于判断接收者是否正盯着这个会话（决定是否创建即已读）
func (r *ConnRegistry) GetMessageGroup(groupName string) (*Group, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(groupName)
}

// snapshotLocked 返回房间的成员快照，调用方持锁
// 返回副本，调用方遍历时不受后续加入/退出影响
func (r *ConnRegistry) snapshotLocked(groupName string) (*Group, bool) {
	group, ok := r.groups[groupName]
	if !ok {
		return nil, false
	}
	snapshot := &Group{
		Name:        group.Name,
		Connections: make([]*Connection, len(group.Connections)),
	}
	copy(snapshot.Connections, group.Connections)
	return snapshot, true
}

// Close 清空注册表
func (r *ConnRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = make(map[string]*Group)
	r.byConn = make(map[string]string)
	r.conns = make(map[string]*Connection)
}
