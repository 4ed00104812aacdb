package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/repositories"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	svcerrors "github.com/Aijiaobin/video-api/internal/shared/errors"
)

func intPtr(v int) *int { return &v }

func newShare(t *testing.T, repo *ShareRepository, url string) *entities.Share {
	t.Helper()
	share, created, err := repo.CreateIfAbsent(context.Background(), &entities.Share{
		DriveType: "tianyi",
		ShareURL:  url,
	})
	if err != nil {
		t.Fatalf("CreateIfAbsent(%q) error = %v", url, err)
	}
	if !created {
		t.Fatalf("CreateIfAbsent(%q) created = false", url)
	}
	return share
}

func parsedWithSharer(sharerID, nickname string, files ...entities.FileEntry) *entities.ParsedShare {
	return &entities.ParsedShare{
		RawTitle:   "剑来第二季4K",
		CleanTitle: "剑来",
		Kind:       valueobjects.ShareKindTV,
		ShareCode:  "abc",
		ShareID:    "12345678901234567",
		Sharer:     entities.SharerInfo{SharerID: sharerID, Nickname: nickname},
		FileCount:  len(files),
		Files:      files,
	}
}

func videoFile(id, name string) entities.FileEntry {
	return entities.FileEntry{FileID: id, FileName: name, CleanName: name, ContentType: valueobjects.ContentTypeVideo}
}

func TestCreateIfAbsentIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewShareRepository(openTestDB(t))

	first := newShare(t, repo, "https://cloud.189.cn/t/abc")
	if first.Kind != valueobjects.ShareKindMovie || first.Status != valueobjects.ShareStatusActive {
		t.Errorf("defaults = %q/%q", first.Kind, first.Status)
	}
	if first.IsParsed() {
		t.Error("new share should not be parsed")
	}

	again, created, err := repo.CreateIfAbsent(ctx, &entities.Share{DriveType: "tianyi", ShareURL: "https://cloud.189.cn/t/abc"})
	if err != nil {
		t.Fatalf("CreateIfAbsent() error = %v", err)
	}
	if created {
		t.Error("second CreateIfAbsent should not create")
	}
	if again.ID != first.ID {
		t.Errorf("ID = %d, want %d", again.ID, first.ID)
	}

	if _, _, err := repo.CreateIfAbsent(ctx, &entities.Share{}); !svcerrors.HasCode(err, svcerrors.ErrorCodeInvalidRequest) {
		t.Errorf("empty url error = %v, want INVALID_REQUEST", err)
	}
}

func TestCreateIfAbsentConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewShareRepository(openTestDB(t))

	const workers = 8
	ids := make([]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			share, _, err := repo.CreateIfAbsent(ctx, &entities.Share{DriveType: "tianyi", ShareURL: "https://cloud.189.cn/t/same"})
			if err != nil {
				t.Errorf("CreateIfAbsent() error = %v", err)
				return
			}
			ids[i] = share.ID
		}(i)
	}
	wg.Wait()

	for i, id := range ids {
		if id != ids[0] {
			t.Errorf("worker %d got id %d, want %d", i, id, ids[0])
		}
	}
	_, total, err := repo.List(ctx, repositories.ShareFilter{}, 0, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewShareRepository(openTestDB(t))
	if _, err := repo.GetByID(context.Background(), 42); !svcerrors.HasCode(err, svcerrors.ErrorCodeNotFound) {
		t.Errorf("GetByID() error = %v, want NOT_FOUND", err)
	}
	share, err := repo.FindByURL(context.Background(), "https://cloud.189.cn/t/none")
	if err != nil || share != nil {
		t.Errorf("FindByURL() = %v, %v, want nil, nil", share, err)
	}
}

func TestSaveParseResultSharerCount(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewShareRepository(db)
	sharers := NewSharerRepository(db)

	a := newShare(t, repo, "https://cloud.189.cn/t/a")
	b := newShare(t, repo, "https://cloud.189.cn/t/b")

	count := func(sharerID string) int {
		t.Helper()
		s, err := sharers.FindBySharerID(ctx, sharerID)
		if err != nil {
			t.Fatalf("FindBySharerID(%q) error = %v", sharerID, err)
		}
		if s == nil {
			return -1
		}
		return s.ShareCount
	}

	steps := []struct {
		name    string
		shareID int64
		parsed  *entities.ParsedShare
		want    map[string]int
	}{
		{"首次归属计数加一", a.ID, parsedWithSharer("u1", "小明"), map[string]int{"u1": 1}},
		{"重复解析不重复计数", a.ID, parsedWithSharer("u1", "小明"), map[string]int{"u1": 1}},
		{"同一分享人的另一个分享", b.ID, parsedWithSharer("u1", ""), map[string]int{"u1": 2}},
		{"改归属时原分享人减一", a.ID, parsedWithSharer("u2", "小红"), map[string]int{"u1": 1, "u2": 1}},
		{"没有分享人时保留原归属", a.ID, parsedWithSharer("", ""), map[string]int{"u1": 1, "u2": 1}},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			if err := repo.SaveParseResult(ctx, step.shareID, step.parsed); err != nil {
				t.Fatalf("SaveParseResult() error = %v", err)
			}
			for id, want := range step.want {
				if got := count(id); got != want {
					t.Errorf("share_count(%s) = %d, want %d", id, got, want)
				}
			}
		})
	}

	u1, err := sharers.FindBySharerID(ctx, "u1")
	if err != nil || u1 == nil {
		t.Fatalf("FindBySharerID(u1) = %v, %v", u1, err)
	}
	if u1.Nickname != "小明" {
		t.Errorf("empty nickname should not overwrite, got %q", u1.Nickname)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.SharerRef == nil {
		t.Fatal("share should keep its sharer")
	}
	owner, err := sharers.GetByID(ctx, *got.SharerRef)
	if err != nil {
		t.Fatalf("sharers.GetByID() error = %v", err)
	}
	if owner.SharerID != "u2" {
		t.Errorf("owner = %q, want u2", owner.SharerID)
	}
	if !got.IsParsed() || got.Kind != valueobjects.ShareKindTV || got.CleanTitle != "剑来" || got.RemoteShareID != "12345678901234567" {
		t.Errorf("parsed fields not saved: %+v", got)
	}
}

func TestSaveParseResultReplacesFiles(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewShareRepository(db)
	meta := NewMetadataRepository(db)

	share := newShare(t, repo, "https://cloud.189.cn/t/files")
	first := parsedWithSharer("u1", "",
		videoFile("f1", "阿凡达.mkv"),
		videoFile("f2", "泰坦尼克号.mkv"),
		entities.FileEntry{FileID: "d1", FileName: "花絮", IsDirectory: true, ContentType: valueobjects.ContentTypeOther},
	)
	if err := repo.SaveParseResult(ctx, share.ID, first); err != nil {
		t.Fatalf("SaveParseResult() error = %v", err)
	}
	files, err := repo.Files(ctx, share.ID)
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("len(files) = %d, want 3", len(files))
	}
	if !files[2].IsDirectory {
		t.Error("directory flag lost")
	}

	rec, err := meta.Insert(ctx, &entities.MetadataRecord{TMDBID: 19995, MediaType: valueobjects.MediaTypeMovie, Title: "阿凡达"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := repo.BindFileMedia(ctx, files[0].ID, rec.ID, "poster"); err != nil {
		t.Fatalf("BindFileMedia() error = %v", err)
	}

	second := parsedWithSharer("u1", "", videoFile("f1", "阿凡达.mkv"), videoFile("f3", "星际穿越.mkv"))
	if err := repo.SaveParseResult(ctx, share.ID, second); err != nil {
		t.Fatalf("SaveParseResult() error = %v", err)
	}
	files, err = repo.Files(ctx, share.ID)
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if files[0].MediaID == nil || *files[0].MediaID != rec.ID || files[0].PosterURL != "poster" {
		t.Errorf("binding of f1 not kept: %+v", files[0])
	}
	if files[1].MediaID != nil {
		t.Errorf("new file should be unbound")
	}
}

func TestSaveParseResultUnknownShare(t *testing.T) {
	repo := NewShareRepository(openTestDB(t))
	err := repo.SaveParseResult(context.Background(), 99, parsedWithSharer("u1", ""))
	if !svcerrors.HasCode(err, svcerrors.ErrorCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestCountersAndOverride(t *testing.T) {
	ctx := context.Background()
	repo := NewShareRepository(openTestDB(t))
	share := newShare(t, repo, "https://cloud.189.cn/t/count")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := repo.IncrementViewCount(ctx, share.ID); err != nil {
				t.Errorf("IncrementViewCount() error = %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := repo.IncrementSaveCount(ctx, share.ID); err != nil {
				t.Errorf("IncrementSaveCount() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if err := repo.SetOverride(ctx, share.ID, " 霸王别姬 ", intPtr(10997)); err != nil {
		t.Fatalf("SetOverride() error = %v", err)
	}
	got, err := repo.GetByID(ctx, share.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ViewCount != 10 || got.SaveCount != 10 {
		t.Errorf("counts = %d/%d, want 10/10", got.ViewCount, got.SaveCount)
	}
	if got.ManualTitle != "霸王别姬" || got.ManualTMDBID == nil || *got.ManualTMDBID != 10997 {
		t.Errorf("override = %q/%v", got.ManualTitle, got.ManualTMDBID)
	}

	if err := repo.IncrementViewCount(ctx, 404); !svcerrors.HasCode(err, svcerrors.ErrorCodeNotFound) {
		t.Errorf("IncrementViewCount(404) error = %v, want NOT_FOUND", err)
	}
}

func TestBatchCandidates(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewShareRepository(db)
	meta := NewMetadataRepository(db)

	unparsed := newShare(t, repo, "https://cloud.189.cn/t/u")
	tv := newShare(t, repo, "https://cloud.189.cn/t/tv")
	collection := newShare(t, repo, "https://cloud.189.cn/t/c")

	if err := repo.SaveParseResult(ctx, tv.ID, parsedWithSharer("", "")); err != nil {
		t.Fatalf("SaveParseResult(tv) error = %v", err)
	}
	cp := parsedWithSharer("", "", videoFile("m1", "阿凡达.mkv"))
	cp.Kind = valueobjects.ShareKindMovieCollection
	if err := repo.SaveParseResult(ctx, collection.ID, cp); err != nil {
		t.Fatalf("SaveParseResult(collection) error = %v", err)
	}

	ids := func(shares []*entities.Share) []int64 {
		var out []int64
		for _, s := range shares {
			out = append(out, s.ID)
		}
		return out
	}

	got, err := repo.ListUnparsed(ctx, 10)
	if err != nil || len(got) != 1 || got[0].ID != unparsed.ID {
		t.Errorf("ListUnparsed() = %v, %v", ids(got), err)
	}
	got, err = repo.ListUnresolved(ctx, 10)
	if err != nil || len(got) != 1 || got[0].ID != tv.ID {
		t.Errorf("ListUnresolved() = %v, %v", ids(got), err)
	}
	got, err = repo.ListCollectionsWithUnboundFiles(ctx, 10)
	if err != nil || len(got) != 1 || got[0].ID != collection.ID {
		t.Errorf("ListCollectionsWithUnboundFiles() = %v, %v", ids(got), err)
	}

	rec, err := meta.Insert(ctx, &entities.MetadataRecord{TMDBID: 1, MediaType: valueobjects.MediaTypeTV, Title: "剑来"})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := repo.BindMedia(ctx, tv.ID, rec.ID, "p"); err != nil {
		t.Fatalf("BindMedia() error = %v", err)
	}
	files, _ := repo.Files(ctx, collection.ID)
	if err := repo.BindFileMedia(ctx, files[0].ID, rec.ID, ""); err != nil {
		t.Fatalf("BindFileMedia() error = %v", err)
	}

	if got, _ := repo.ListUnresolved(ctx, 10); len(got) != 0 {
		t.Errorf("ListUnresolved() after bind = %v", ids(got))
	}
	if got, _ := repo.ListCollectionsWithUnboundFiles(ctx, 10); len(got) != 0 {
		t.Errorf("ListCollectionsWithUnboundFiles() after bind = %v", ids(got))
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewShareRepository(openTestDB(t))

	for i, title := range []string{"剑来", "庆余年", "100%纯爱"} {
		s := newShare(t, repo, "https://cloud.189.cn/t/l"+string(rune('a'+i)))
		p := parsedWithSharer("", "")
		p.CleanTitle = title
		if i == 1 {
			p.Kind = valueobjects.ShareKindMovie
		}
		if err := repo.SaveParseResult(ctx, s.ID, p); err != nil {
			t.Fatalf("SaveParseResult() error = %v", err)
		}
	}

	tests := []struct {
		name   string
		filter repositories.ShareFilter
		want   int
	}{
		{"全部", repositories.ShareFilter{}, 3},
		{"按类型", repositories.ShareFilter{Kind: valueobjects.ShareKindTV}, 2},
		{"关键字", repositories.ShareFilter{Keyword: "余"}, 1},
		{"百分号按字面匹配", repositories.ShareFilter{Keyword: "100%"}, 1},
		{"没有匹配", repositories.ShareFilter{Keyword: "不存在"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, total, err := repo.List(ctx, tt.filter, 0, 10)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if total != tt.want || len(shares) != tt.want {
				t.Errorf("List() = %d rows / total %d, want %d", len(shares), total, tt.want)
			}
		})
	}
}
