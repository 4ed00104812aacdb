package valueobjects

// ShareKind 分享内容类型
type ShareKind string

const (
	ShareKindTV              ShareKind = "tv"               // 剧集
	ShareKindMovie           ShareKind = "movie"            // 单部电影
	ShareKindMovieCollection ShareKind = "movie_collection" // 电影合集
)

func (k ShareKind) String() string {
	return string(k)
}

// IsValid 检查分享类型是否有效
func (k ShareKind) IsValid() bool {
	switch k {
	case ShareKindTV, ShareKindMovie, ShareKindMovieCollection:
		return true
	default:
		return false
	}
}

// MediaType 分享类型对应的刮削媒体类型：剧集查 tv，其余查 movie
func (k ShareKind) MediaType() MediaType {
	if k == ShareKindTV {
		return MediaTypeTV
	}
	return MediaTypeMovie
}
