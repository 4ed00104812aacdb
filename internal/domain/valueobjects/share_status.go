package valueobjects

// ShareStatus 分享状态
type ShareStatus string

const (
	ShareStatusActive  ShareStatus = "active"  // 有效
	ShareStatusInvalid ShareStatus = "invalid" // 失效
	ShareStatusDeleted ShareStatus = "deleted" // 已删除
)
