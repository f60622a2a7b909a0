package respond

// PagedMessagesRespond 分页消息响应信封
// 不变式: TotalPages = ceil(TotalItems / ItemsPerPage)
// 请求超出总页数的页码得到空 Items，而不是错误
// 使用位置:
//   - internal/service/thread/service.go: GetMessagesForUser
type PagedMessagesRespond struct {
	Items        []MessageRespond `json:"items"`
	CurrentPage  int              `json:"current_page"`
	ItemsPerPage int              `json:"items_per_page"`
	TotalItems   int64            `json:"total_items"`
	TotalPages   int              `json:"total_pages"`
}

// NewPagedMessagesRespond 构造分页信封并计算总页数
func NewPagedMessagesRespond(items []MessageRespond, page, pageSize int, total int64) *PagedMessagesRespond {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if items == nil {
		items = []MessageRespond{}
	}
	return &PagedMessagesRespond{
		Items:        items,
		CurrentPage:  page,
		ItemsPerPage: pageSize,
		TotalItems:   total,
		TotalPages:   totalPages,
	}
}
