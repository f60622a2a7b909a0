// Package container_enum 定义消息查询的视图容器
// 容器决定分页查询使用的过滤谓词
package container_enum

const (
	Inbox  = "Inbox"  // 收件箱：我是接收者且接收侧未删除
	Outbox = "Outbox" // 发件箱：我是发送者且发送侧未删除
	Unread = "Unread" // 未读（默认）：收件箱中 read_at 为空的消息
)
