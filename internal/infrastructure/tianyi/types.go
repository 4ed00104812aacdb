package tianyi

import (
	"github.com/spf13/cast"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
)

// 天翼接口的字段类型并不稳定（数字和字符串混用），统一按 map 解码后用 cast 取值
type payload map[string]any

// resultCode 非空且不为 "0" 的 res_code 视为业务失败
func (p payload) resultCode() (string, string, bool) {
	raw, ok := p["res_code"]
	if !ok || raw == nil {
		return "", "", true
	}
	code := cast.ToString(raw)
	if code == "" || code == "0" {
		return code, "", true
	}
	return code, cast.ToString(p["res_message"]), false
}

func (p payload) str(key string) string {
	return cast.ToString(p[key])
}

func (p payload) object(key string) payload {
	if m, ok := p[key].(map[string]any); ok {
		return payload(m)
	}
	return payload{}
}

func (p payload) list(key string) []payload {
	items, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]payload, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, payload(m))
		}
	}
	return out
}

// toRemoteShare getShareInfoByCodeV2 响应
func (p payload) toRemoteShare(shareCode string) *entities.RemoteShare {
	creator := p.object("creator")
	return &entities.RemoteShare{
		ShareCode: shareCode,
		ShareID:   p.str("shareId"),
		FileID:    p.str("fileId"),
		FileName:  p.str("fileName"),
		FileSize:  cast.ToInt64(p["fileSize"]),
		IsFolder:  cast.ToInt(p["isFolder"]) == 1 || p["isFolder"] == true,
		ShareMode: cast.ToInt(p["shareMode"]),
		Creator: entities.SharerInfo{
			SharerID:  creator.str("ownerAccount"),
			Nickname:  creator.str("nickName"),
			AvatarURL: creator.str("iconURL"),
		},
	}
}

// dirPage listShareDir 响应中的一页
type dirPage struct {
	Entries []entities.RemoteEntry
	// Count 服务端声明的总条目数，未提供时为 -1
	Count int
	// Returned 本页实际条目数
	Returned int
}

func (p payload) toDirPage() dirPage {
	ao := p.object("fileListAO")
	folders := ao.list("folderList")
	files := ao.list("fileList")

	page := dirPage{Count: -1, Returned: len(folders) + len(files)}
	if raw, ok := ao["count"]; ok && raw != nil {
		page.Count = cast.ToInt(raw)
	}

	for _, f := range folders {
		page.Entries = append(page.Entries, entities.RemoteEntry{
			ID:       f.str("id"),
			Name:     f.str("name"),
			IsFolder: true,
		})
	}
	for _, f := range files {
		page.Entries = append(page.Entries, entities.RemoteEntry{
			ID:   f.str("id"),
			Name: f.str("name"),
			Size: cast.ToInt64(f["size"]),
		})
	}
	return page
}
