// Package chat 实现实时私信的核心服务层
// presence.go
// 核心职责：在线状态跟踪
// 一个用户可能同时有多条连接，首条连接上线、末条连接下线才触发广播
package chat

import (
	"sort"
	"sync"
)

// PresenceTracker 在线状态跟踪器
type PresenceTracker struct {
	mu     sync.Mutex
	online map[string][]string // 用户名 -> 该用户所有活跃连接ID
}

// NewPresenceTracker 创建在线状态跟踪器
func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{
		online: make(map[string][]string),
	}
}

// UserConnected 记录一条新连接
// 返回该用户是否因此从离线变为在线（首条连接）
func (p *PresenceTracker) UserConnected(username, connId string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	connIds, ok := p.online[username]
	p.online[username] = append(connIds, connId)
	return !ok
}

// UserDisconnected 移除一条连接
// 返回该用户是否因此完全离线（末条连接断开）
func (p *PresenceTracker) UserDisconnected(username, connId string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	connIds, ok := p.online[username]
	if !ok {
		return false
	}
	for i, id := range connIds {
		if id == connId {
			connIds = append(connIds[:i], connIds[i+1:]...)
			break
		}
	}
	if len(connIds) == 0 {
		delete(p.online, username)
		return true
	}
	p.online[username] = connIds
	return false
}

// GetOnlineUsers 获取当前在线用户名列表（字典序）
func (p *PresenceTracker) GetOnlineUsers() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	users := make([]string, 0, len(p.online))
	for username := range p.online {
		users = append(users, username)
	}
	sort.Strings(users)
	return users
}

// GetConnIdsForUser 获取指定用户的所有活跃连接ID快照
func (p *PresenceTracker) GetConnIdsForUser(username string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	connIds := p.online[username]
	snapshot := make([]string, len(connIds))
	copy(snapshot, connIds)
	return snapshot
}
