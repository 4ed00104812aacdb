package valueobjects

// MediaType 元数据目录中的媒体类型
// 同一个 TMDB ID 在 movie 和 tv 下可能指向不同作品，因此媒体类型是缓存主键的一部分
type MediaType string

const (
	MediaTypeMovie MediaType = "movie" // 电影
	MediaTypeTV    MediaType = "tv"    // 电视剧
)

// String 返回媒体类型的字符串表示
func (m MediaType) String() string {
	return string(m)
}

// IsValid 检查媒体类型是否有效
func (m MediaType) IsValid() bool {
	return m == MediaTypeMovie || m == MediaTypeTV
}

// NewMediaType 创建媒体类型值对象，未知值按电影处理
func NewMediaType(value string) MediaType {
	if value == string(MediaTypeTV) {
		return MediaTypeTV
	}
	return MediaTypeMovie
}
