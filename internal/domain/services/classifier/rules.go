package classifier

import "regexp"

// rule 一条有序的替换规则；RE2 不支持环视，需要保留的边界字符通过捕获组放回
type rule struct {
	pattern *regexp.Regexp
	replace string
}

func r(expr, replace string) rule {
	return rule{pattern: regexp.MustCompile(expr), replace: replace}
}

func applyRules(s string, rules []rule) string {
	for _, rl := range rules {
		s = rl.pattern.ReplaceAllString(s, rl.replace)
	}
	return s
}

// tmdbIDRules 外部ID标签，先匹配带括号的写法，最后匹配裸写法
var tmdbIDRules = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\{tmdb[:\s\-]+(\d+)\}`),    // {tmdb 156201} {tmdb:156201} {tmdb-156201}
	regexp.MustCompile(`(?i)\[tmdb[:\s\-]+(\d+)\]`),    // [tmdb 156201]
	regexp.MustCompile(`(?i)\[tmdbid[=:\s\-]+(\d+)\]`), // [tmdbid=18674]
	regexp.MustCompile(`(?i)\{tmdbid[=:\s\-]+(\d+)\}`), // {tmdbid=18674}
	regexp.MustCompile(`(?i)tmdb[id]*[=:\s\-]+(\d+)`),  // tmdb 156201 / tmdbid=18674
}

// tagRules 站点标识与括号标签
var tagRules = []rule{
	r(`〖[^〗]*〗`, ""), // 〖海绵小站 www.hmxz.org〗
	r(`〔[^〕]*〕`, ""),
	r(`\[[^\]]*\]`, ""),
	r(`【[^】]*】`, ""),
	r(`《[^》]*》(\s)`, "$1"), // 《国漫》 后跟空格
	r(`@[A-Za-z0-9]+`, ""),
}

// technicalRules 分辨率、编码、片源、音轨等技术信息
// HDR10+ 必须先于 HDR10，HDR10 先于 HDR；片源先于 DV，避免 DVDRip 被拆开
var technicalRules = []rule{
	r(`(?i)(?:Ma)?10p[_\-]?\d{3,4}p?`, ""), // Ma10p_2160p
	r(`(?i)\d{1,2}bit`, ""),
	r(`(?i)\d{3,4}p`, ""),
	r(`(?i)4k`, ""),
	r(`(?i)(?:UHD|FHD|HD|SD)([^a-zA-Z]|$)`, "$1"),
	r(`(?i)(?:HEVC|AVC|H\.?264|H\.?265|x264|x265|AV1)`, ""),
	r(`(?i)(?:REMUX|WEB-?DL|WEBRip|BluRay|BDRip|DVDRip|HDTV)`, ""),
	r(`(?i)(?:HDR10\+|HDR10|HDR|Dolby\s*Vision|DoVi)`, ""),
	r(`(?i)(^|[^a-zA-Z])DV([^a-zA-Z]|$)`, "$1$2"),
	r(`(?i)(?:DTS[\d\.\-]*(?:HD)?(?:\.MA)?|AAC[\d\.]*|FLAC|AC3|TrueHD|Atmos|DDP[\d\.]*)`, ""),
	r(`(?:5\.1|7\.1|2\.0)`, ""),
	r(`(?i)HQ`, ""),
	r(`\d+帧`, ""),
	r(`(?i)\d+fps`, ""),
}

// releaseRules 发布组、体积、集数进度、附加说明、语言字幕
var releaseRules = []rule{
	r(`(?i)-[A-Za-z0-9]+$`, ""), // -ParkHD
	r(`(?i)\d+(?:\.\d+)?\s*[TGMK]B`, ""),
	r(`(?i)\d+[TGMK]([^a-zA-Z]|$)`, "$1"), // 339G
	r(`全\d+集`, ""),
	r(`共\d+集`, ""),
	r(`完结`, ""),
	r(`更新至.*`, ""),
	r(`附带.*`, ""),
	r(`高码`, ""),
	r(`纯银版`, ""),
	r(`整轨`, ""),
	r(`内嵌.*字.*`, ""),
	r(`内封.*`, ""),
	r(`外挂.*`, ""),
	r(`简[中繁]`, ""),
	r(`繁[中简]`, ""),
	r(`中[英日韩]`, ""),
	r(`双语`, ""),
	r(`国[语粤]`, ""),
	r(`粤语`, ""),
	r(`(?i)(\d{4}[)）])\s*4k`, "$1"),
	r(`(?i)\.(?:Chronicles|Story|Movie|Film|Series)\..*$`, ""),
}

// titleRemoveRules 标题清洗的完整有序规则
var titleRemoveRules = concatRules(tagRules[:5], releaseRules[:1], tagRules[5:], technicalRules, releaseRules[1:])

// prefixRules 序号和分类前缀
var prefixRules = []rule{
	r(`^\d+[\.、\-\s]+`, ""),                            // 44. 44、 44-
	r(`^[#＃]\d+\s*`, ""),                               // #44
	r(`^《[^》]*》\s*`, ""),                               // 《国漫》
	r(`^【[^】]*】\s*`, ""),                               // 【动漫】
	r(`^\[[^\]]*\]\s*`, ""),                            // [动漫]
	r(`^[A-Z]([^\w]|[A-Z]?[\x{4e00}-\x{9fa5}])`, "$1"), // D斗罗大陆
}

var (
	seasonPatterns = []*regexp.Regexp{
		regexp.MustCompile(`第([一二三四五六七八九十\d]+)季`),
		regexp.MustCompile(`(?i)season\s*(\d+)`),
		regexp.MustCompile(`(?i)s(\d+)`),
	}

	yearPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[（(](\d{4})[）)]`),   // (2026) （2026）
		regexp.MustCompile(`[.\s](\d{4})[.\s]`), // .2026. 或空格分隔
	}

	collectionKeywords = []string{"合集", "全集", "系列", "部电影", "部.电影"}

	tvKeywords = []string{
		"第一季", "第二季", "第三季", "第四季", "第五季",
		"Season", "S01", "S02", "S03",
		"连续剧", "电视剧", "番剧",
	}

	tvPatterns = []*regexp.Regexp{
		regexp.MustCompile(`第[一二三四五六七八九十\d]+季`),
		regexp.MustCompile(`(?i)S\d{1,2}E\d{1,3}`),
	}

	resolution4K    = regexp.MustCompile(`4[kK]|2160[pP]|UHD`)
	resolution1080P = regexp.MustCompile(`(?i)1080p|FHD`)
	resolution720P  = regexp.MustCompile(`(?i)720p|(?:^|[^a-z])HD(?:[^a-z]|$)`)

	parenYearPattern     = regexp.MustCompile(`[（(]\d{4}[）)]`)
	delimitedYearPattern = regexp.MustCompile(`[.\s]\d{4}[.\s]`)
	latinTailPattern     = regexp.MustCompile(`\.[A-Za-z][A-Za-z0-9.\-']+$`)
	separatorPattern     = regexp.MustCompile(`[\s_\-.·]+`)
	edgeJunkPattern      = regexp.MustCompile(`^[\s\-_.·&]+|[\s\-_.·&]+$`)
	cjkLeadPattern       = regexp.MustCompile(`^[A-Z]?[\x{4e00}-\x{9fa5}]+[\d\x{4e00}-\x{9fa5}]*`)
)

func concatRules(groups ...[]rule) []rule {
	var out []rule
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
