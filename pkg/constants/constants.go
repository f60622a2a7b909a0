package constants

const (
	CHANNEL_SIZE      = 100 // 通道大小
	REDIS_TIMEOUT     = 1   // redis timeout (分钟)
	DEFAULT_PAGE_SIZE = 10  // 默认分页大小
	MAX_PAGE_SIZE     = 50  // 最大分页大小

	ONLINE_USERS_KEY = "online_users"  // 在线用户集合的 redis key
	UNREAD_COUNT_KEY = "unread_count_" // 未读数缓存 key 前缀
)
