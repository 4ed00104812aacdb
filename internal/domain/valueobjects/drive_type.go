package valueobjects

import "strings"

// DriveType 网盘类型
type DriveType string

const (
	DriveTypeTianyi DriveType = "tianyi" // 天翼云盘
	DriveTypeAliyun DriveType = "aliyun" // 阿里云盘
	DriveTypeQuark  DriveType = "quark"  // 夸克网盘
)

func (d DriveType) String() string {
	return string(d)
}

// NewDriveType 规范化网盘类型，空值默认为天翼云盘
func NewDriveType(value string) DriveType {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return DriveTypeTianyi
	}
	return DriveType(v)
}
