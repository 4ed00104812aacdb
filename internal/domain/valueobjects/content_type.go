package valueobjects

// ContentType 文件内容类型，由扩展名决定
type ContentType string

const (
	ContentTypeVideo    ContentType = "video"
	ContentTypeSubtitle ContentType = "subtitle"
	ContentTypeAudio    ContentType = "audio"
	ContentTypeImage    ContentType = "image"
	ContentTypeOther    ContentType = "other"
)

func (c ContentType) String() string {
	return string(c)
}

// IsVideo 是否为视频文件
func (c ContentType) IsVideo() bool {
	return c == ContentTypeVideo
}
