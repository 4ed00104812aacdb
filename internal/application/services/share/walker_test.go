package share

import (
	"context"
	"errors"
	"testing"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	apperrors "github.com/Aijiaobin/video-api/internal/shared/errors"
)

// fakeDrive 内存中的分享，dirs 以目录 fileId 为键
type fakeDrive struct {
	info       entities.RemoteShare
	infoErr    error
	accessCode string
	dirs       map[string][]entities.RemoteEntry
	listErr    error
	folderErrs map[string]error

	listed     []string
	checked    int
	gotAccess  string
	gotShareID string
}

func (f *fakeDrive) GetShareInfo(ctx context.Context, shareCode string) (*entities.RemoteShare, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	info := f.info
	info.ShareCode = shareCode
	return &info, nil
}

func (f *fakeDrive) CheckAccessCode(ctx context.Context, shareCode, accessCode string) (string, error) {
	f.checked++
	if accessCode != f.accessCode {
		return "", apperrors.New(apperrors.ErrorCodeAuthFailed, "wrong access code")
	}
	return "verified-share-id", nil
}

func (f *fakeDrive) ListDir(ctx context.Context, share *entities.RemoteShare, folderID string) ([]entities.RemoteEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if err := f.folderErrs[folderID]; err != nil {
		return nil, err
	}
	f.listed = append(f.listed, folderID)
	f.gotAccess = share.AccessCode
	f.gotShareID = share.ShareID
	return f.dirs[folderID], nil
}

func newTestWalker(d Drive, cfg Config) *Walker {
	w := NewWalker(cfg)
	w.Register(valueobjects.DriveTypeTianyi, d)
	return w
}

func folderShare(name string) entities.RemoteShare {
	return entities.RemoteShare{ShareID: "100", FileID: "root", FileName: name, IsFolder: true,
		Creator: entities.SharerInfo{SharerID: "owner", Nickname: "分享者"}}
}

func TestWalkTVFolder(t *testing.T) {
	drive := &fakeDrive{
		info: folderShare("剑来第二季4K高码附带第一季"),
		dirs: map[string][]entities.RemoteEntry{
			"root": {
				{ID: "1", Name: "S02E01.mkv", Size: 100},
				{ID: "2", Name: "S02E02.mkv", Size: 100},
				{ID: "3", Name: "字幕.ass", Size: 1},
			},
		},
	}
	w := newTestWalker(drive, Config{})

	got, err := w.Walk(context.Background(), "链接：https://cloud.189.cn/t/abcDEF（访问码：1234）", "", valueobjects.DriveTypeTianyi)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if got.CleanTitle != "剑来" || got.Kind != valueobjects.ShareKindTV {
		t.Errorf("title/kind = %q/%q", got.CleanTitle, got.Kind)
	}
	if got.SeasonNumber == nil || *got.SeasonNumber != 2 || got.Resolution != "4K" {
		t.Errorf("season/resolution = %v/%q", got.SeasonNumber, got.Resolution)
	}
	if got.ShareCode != "abcDEF" || got.Sharer.SharerID != "owner" {
		t.Errorf("share code/sharer = %q/%q", got.ShareCode, got.Sharer.SharerID)
	}
	if got.FileCount != 3 || len(got.Files) != 3 {
		t.Fatalf("FileCount = %d", got.FileCount)
	}
	if ep := got.Files[1].EpisodeNumber; ep == nil || *ep != 2 {
		t.Errorf("episode of second file = %v", ep)
	}
	if got.Files[0].ParentID != "root" {
		t.Errorf("ParentID = %q, want root", got.Files[0].ParentID)
	}
	if drive.checked != 0 {
		t.Error("public share should not check access code")
	}
}

func TestWalkSingleFileShare(t *testing.T) {
	drive := &fakeDrive{info: entities.RemoteShare{ShareID: "9", FileID: "f9", FileName: "霸王别姬.1993.1080p.mkv", FileSize: 2048}}
	w := newTestWalker(drive, Config{})

	got, err := w.Walk(context.Background(), "https://cloud.189.cn/t/single", "", valueobjects.DriveTypeTianyi)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(drive.listed) != 0 {
		t.Errorf("file share should not list dirs, listed %v", drive.listed)
	}
	if len(got.Files) != 1 || got.Files[0].FileID != "f9" || got.Files[0].FileSize != 2048 {
		t.Fatalf("Files = %+v", got.Files)
	}
	if got.Kind != valueobjects.ShareKindMovie {
		t.Errorf("Kind = %q, want movie", got.Kind)
	}
	if got.Year == nil || *got.Year != 1993 {
		t.Errorf("Year = %v, want 1993", got.Year)
	}
}

func TestWalkAccessCode(t *testing.T) {
	newDrive := func() *fakeDrive {
		info := folderShare("阿凡达")
		info.ShareMode = 1
		return &fakeDrive{
			info:       info,
			accessCode: "ab12",
			dirs:       map[string][]entities.RemoteEntry{"root": {{ID: "1", Name: "阿凡达.mkv"}}},
		}
	}

	tests := []struct {
		name     string
		rawURL   string
		password string
		wantCode apperrors.ErrorCode
	}{
		{name: "显式密码", rawURL: "https://cloud.189.cn/t/enc", password: "ab12"},
		{name: "从文案中提取密码", rawURL: "https://cloud.189.cn/t/enc 提取码:ab12"},
		{name: "缺少密码", rawURL: "https://cloud.189.cn/t/enc", wantCode: apperrors.ErrorCodeAuthFailed},
		{name: "密码错误", rawURL: "https://cloud.189.cn/t/enc", password: "zzzz", wantCode: apperrors.ErrorCodeAuthFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drive := newDrive()
			w := newTestWalker(drive, Config{})
			got, err := w.Walk(context.Background(), tt.rawURL, tt.password, valueobjects.DriveTypeTianyi)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("Walk() error = %v, want %s", err, tt.wantCode)
				}
				if got != nil {
					t.Error("failed walk must not return a partial result")
				}
				if len(drive.listed) != 0 {
					t.Error("should not list before authentication")
				}
				return
			}
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if got.ShareID != "verified-share-id" || drive.gotShareID != "verified-share-id" {
				t.Errorf("share id = %q / list used %q", got.ShareID, drive.gotShareID)
			}
			if drive.gotAccess != "ab12" {
				t.Errorf("listing access code = %q, want ab12", drive.gotAccess)
			}
		})
	}
}

func TestWalkShallowProbe(t *testing.T) {
	drive := &fakeDrive{
		info: folderShare("白夜行"),
		dirs: map[string][]entities.RemoteEntry{
			"root": {
				{ID: "d1", Name: "第一部分", IsFolder: true},
				{ID: "d2", Name: "第二部分", IsFolder: true},
				{ID: "d3", Name: "第三部分", IsFolder: true},
			},
			"d1": {{ID: "a", Name: "01.mkv"}, {ID: "b", Name: "02.mkv"}, {ID: "c", Name: "03.mkv"}},
			"d2": {{ID: "d", Name: "04.mkv"}, {ID: "e", Name: "05.mkv"}},
			"d3": {{ID: "f", Name: "06.mkv"}},
		},
	}
	w := newTestWalker(drive, Config{ProbeFolderLimit: 10, ProbeVideoTarget: 4})

	got, err := w.Walk(context.Background(), "https://cloud.189.cn/t/probe", "", valueobjects.DriveTypeTianyi)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	// 探测到4个视频后停止，d3 不再请求
	wantListed := []string{"root", "d1", "d2"}
	if len(drive.listed) != len(wantListed) {
		t.Fatalf("listed = %v, want %v", drive.listed, wantListed)
	}
	for i := range wantListed {
		if drive.listed[i] != wantListed[i] {
			t.Errorf("listed[%d] = %q, want %q", i, drive.listed[i], wantListed[i])
		}
	}
	if got.FileCount != 3 || len(got.Files) != 3 {
		t.Errorf("probe samples must not be part of the file list: %d", got.FileCount)
	}
	if len(got.ProbeFiles) != 5 {
		t.Errorf("len(ProbeFiles) = %d, want 5", len(got.ProbeFiles))
	}
	if got.Kind != valueobjects.ShareKindTV {
		t.Errorf("Kind = %q, want tv", got.Kind)
	}
}

func TestWalkProbeFolderLimit(t *testing.T) {
	drive := &fakeDrive{
		info: folderShare("资料"),
		dirs: map[string][]entities.RemoteEntry{
			"root": {
				{ID: "d1", Name: "a", IsFolder: true},
				{ID: "d2", Name: "b", IsFolder: true},
				{ID: "d3", Name: "c", IsFolder: true},
			},
		},
	}
	w := newTestWalker(drive, Config{ProbeFolderLimit: 2, ProbeVideoTarget: 4})
	if _, err := w.Walk(context.Background(), "https://cloud.189.cn/t/limit", "", valueobjects.DriveTypeTianyi); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(drive.listed) != 3 {
		t.Errorf("listed = %v, want root plus 2 probes", drive.listed)
	}
}

func TestWalkSubfolderFailureAbortsWalk(t *testing.T) {
	drive := &fakeDrive{
		info: folderShare("白夜行"),
		dirs: map[string][]entities.RemoteEntry{
			"root": {
				{ID: "d1", Name: "第一部分", IsFolder: true},
				{ID: "d2", Name: "第二部分", IsFolder: true},
			},
			"d1": {{ID: "a", Name: "01.mkv"}},
		},
		folderErrs: map[string]error{"d2": apperrors.New(apperrors.ErrorCodeTransport, "connection reset")},
	}
	w := newTestWalker(drive, Config{ProbeFolderLimit: 10, ProbeVideoTarget: 4})

	got, err := w.Walk(context.Background(), "https://cloud.189.cn/t/subfail", "", valueobjects.DriveTypeTianyi)
	if !apperrors.HasCode(err, apperrors.ErrorCodeTransport) {
		t.Fatalf("Walk() error = %v, want TRANSPORT_ERROR", err)
	}
	if got != nil {
		t.Errorf("Walk() = %+v, want nil when a subfolder fails", got)
	}
	if len(drive.listed) != 2 {
		t.Errorf("listed = %v, want root and d1 before the failing folder", drive.listed)
	}
}

func TestWalkCollectionTitleIsSticky(t *testing.T) {
	drive := &fakeDrive{
		info: folderShare("周星驰电影合集"),
		dirs: map[string][]entities.RemoteEntry{"root": {{ID: "1", Name: "功夫.mkv"}}},
	}
	w := newTestWalker(drive, Config{})
	got, err := w.Walk(context.Background(), "https://cloud.189.cn/t/coll", "", valueobjects.DriveTypeTianyi)
	if err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if got.Kind != valueobjects.ShareKindMovieCollection {
		t.Errorf("Kind = %q, want movie_collection", got.Kind)
	}
}

func TestWalkErrors(t *testing.T) {
	transport := apperrors.New(apperrors.ErrorCodeTransport, "boom")

	tests := []struct {
		name     string
		drive    *fakeDrive
		driveTyp valueobjects.DriveType
		rawURL   string
		wantCode apperrors.ErrorCode
	}{
		{"未注册的网盘", &fakeDrive{}, valueobjects.DriveTypeQuark, "https://pan.quark.cn/s/abc", apperrors.ErrorCodeUnsupportedDrive},
		{"无法识别的链接", &fakeDrive{}, valueobjects.DriveTypeTianyi, "随便一段文字", apperrors.ErrorCodeInvalidRequest},
		{"分享信息请求失败", &fakeDrive{infoErr: transport}, valueobjects.DriveTypeTianyi, "https://cloud.189.cn/t/x", apperrors.ErrorCodeTransport},
		{"列目录失败", &fakeDrive{info: folderShare("x"), listErr: transport}, valueobjects.DriveTypeTianyi, "https://cloud.189.cn/t/x", apperrors.ErrorCodeTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWalker(tt.drive, Config{})
			got, err := w.Walk(context.Background(), tt.rawURL, "", tt.driveTyp)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("Walk() error = %v, want %s", err, tt.wantCode)
			}
			if got != nil {
				t.Error("failed walk must not return a result")
			}
		})
	}

	if !errors.Is(transport, apperrors.New(apperrors.ErrorCodeTransport, "")) {
		t.Error("errors.Is should match by code")
	}
}
