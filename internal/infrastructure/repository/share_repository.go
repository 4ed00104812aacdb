package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Aijiaobin/video-api/internal/domain/entities"
	"github.com/Aijiaobin/video-api/internal/domain/repositories"
	"github.com/Aijiaobin/video-api/internal/domain/valueobjects"
	svcerrors "github.com/Aijiaobin/video-api/internal/shared/errors"
	"github.com/Aijiaobin/video-api/pkg/logger"
)

const shareColumns = `id, drive_type, share_url, share_code, remote_share_id, password,
	raw_title, clean_title, manual_title, manual_tmdb_id, extracted_tmdb_id,
	year, season_number, resolution, share_type, media_id, poster_url, sharer_ref,
	file_count, view_count, save_count, status, parsed_at, created_at, updated_at`

const shareFileColumns = `id, share_id, file_id, file_name, clean_name, file_size, is_directory,
	file_type, parent_id, season_number, episode_number, resolution, video_codec, audio_codec,
	media_id, poster_url`

// ShareRepository 分享存储库的 SQL 实现
type ShareRepository struct {
	db *DB
}

// NewShareRepository 创建分享存储库
func NewShareRepository(db *DB) *ShareRepository {
	return &ShareRepository{db: db}
}

var _ repositories.ShareRepository = (*ShareRepository)(nil)

func scanShare(row rowScanner) (*entities.Share, error) {
	var (
		s                                   entities.Share
		manualID, extractedID, year, season sql.NullInt64
		mediaID, sharerRef                  sql.NullInt64
		kind, status                        string
		parsedAt                            sql.NullTime
	)
	err := row.Scan(
		&s.ID, &s.DriveType, &s.ShareURL, &s.ShareCode, &s.RemoteShareID, &s.Password,
		&s.RawTitle, &s.CleanTitle, &s.ManualTitle, &manualID, &extractedID,
		&year, &season, &s.Resolution, &kind, &mediaID, &s.PosterURL, &sharerRef,
		&s.FileCount, &s.ViewCount, &s.SaveCount, &status, &parsedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.ManualTMDBID = intPtrOf(manualID)
	s.ExtractedTMDBID = intPtrOf(extractedID)
	s.Year = intPtrOf(year)
	s.SeasonNumber = intPtrOf(season)
	s.MediaID = int64PtrOf(mediaID)
	s.SharerRef = int64PtrOf(sharerRef)
	s.Kind = valueobjects.ShareKind(kind)
	s.Status = valueobjects.ShareStatus(status)
	s.ParsedAt = timePtrOf(parsedAt)
	return &s, nil
}

func scanShares(rows *sql.Rows) ([]*entities.Share, error) {
	defer rows.Close()
	var shares []*entities.Share
	for rows.Next() {
		s, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

func scanShareFile(row rowScanner) (entities.ShareFile, error) {
	var (
		f               entities.ShareFile
		contentType     string
		season, episode sql.NullInt64
		mediaID         sql.NullInt64
	)
	err := row.Scan(
		&f.ID, &f.ShareID, &f.FileID, &f.FileName, &f.CleanName, &f.FileSize, &f.IsDirectory,
		&contentType, &f.ParentID, &season, &episode, &f.Resolution, &f.VideoCodec, &f.AudioCodec,
		&mediaID, &f.PosterURL,
	)
	if err != nil {
		return f, err
	}
	f.ContentType = valueobjects.ContentType(contentType)
	f.SeasonNumber = intPtrOf(season)
	f.EpisodeNumber = intPtrOf(episode)
	f.MediaID = int64PtrOf(mediaID)
	return f, nil
}

// CreateIfAbsent 按 share_url 去重插入
func (r *ShareRepository) CreateIfAbsent(ctx context.Context, share *entities.Share) (*entities.Share, bool, error) {
	if share.ShareURL == "" {
		return nil, false, svcerrors.New(svcerrors.ErrorCodeInvalidRequest, "share url is required")
	}
	kind := share.Kind
	if kind == "" {
		kind = valueobjects.ShareKindMovie
	}
	status := share.Status
	if status == "" {
		status = valueobjects.ShareStatusActive
	}
	now := time.Now().UTC()

	var id int64
	err := retryOnBusy(ctx, func() error {
		return r.db.queryRow(ctx, r.db, `
			INSERT INTO shares (drive_type, share_url, share_code, password, raw_title, clean_title,
				share_type, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (share_url) DO NOTHING
			RETURNING id`,
			share.DriveType, share.ShareURL, share.ShareCode, share.Password, share.RawTitle, share.CleanTitle,
			string(kind), string(status), now, now,
		).Scan(&id)
	})

	switch {
	case errors.Is(err, sql.ErrNoRows):
		existing, findErr := r.FindByURL(ctx, share.ShareURL)
		if findErr != nil {
			return nil, false, findErr
		}
		if existing == nil {
			return nil, false, svcerrors.New(svcerrors.ErrorCodeInternalError, "share vanished after conflict").
				WithDetail("share_url", share.ShareURL)
		}
		return existing, false, nil
	case err != nil:
		return nil, false, fmt.Errorf("insert share: %w", err)
	}

	created, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// GetByID 按主键读取分享
func (r *ShareRepository) GetByID(ctx context.Context, id int64) (*entities.Share, error) {
	row := r.db.queryRow(ctx, r.db, "SELECT "+shareColumns+" FROM shares WHERE id = ?", id)
	share, err := scanShare(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, svcerrors.New(svcerrors.ErrorCodeNotFound, "share not found").WithDetail("share_id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get share %d: %w", id, err)
	}
	return share, nil
}

// FindByURL 按规范化链接查找，找不到返回 nil, nil
func (r *ShareRepository) FindByURL(ctx context.Context, shareURL string) (*entities.Share, error) {
	row := r.db.queryRow(ctx, r.db, "SELECT "+shareColumns+" FROM shares WHERE share_url = ?", shareURL)
	share, err := scanShare(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find share by url: %w", err)
	}
	return share, nil
}

// List 分页列出有效分享，按创建时间倒序
func (r *ShareRepository) List(ctx context.Context, filter repositories.ShareFilter, offset, limit int) ([]*entities.Share, int, error) {
	where := []string{"status = ?"}
	args := []any{string(valueobjects.ShareStatusActive)}
	if filter.Kind != "" {
		where = append(where, "share_type = ?")
		args = append(args, string(filter.Kind))
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		op := r.db.likeOperator()
		pattern := "%" + escapeLike(kw) + "%"
		where = append(where, fmt.Sprintf(`(clean_title %s ? ESCAPE '\' OR manual_title %s ? ESCAPE '\')`, op, op))
		args = append(args, pattern, pattern)
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.queryRow(ctx, r.db, "SELECT COUNT(*) FROM shares"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count shares: %w", err)
	}

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.query(ctx, r.db,
		"SELECT "+shareColumns+" FROM shares"+clause+" ORDER BY id DESC LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list shares: %w", err)
	}
	shares, err := scanShares(rows)
	if err != nil {
		return nil, 0, err
	}
	return shares, total, nil
}

// SaveParseResult 写入一次遍历的结果
// 分享首次归属到某个分享人时该分享人计数加一，改归属时原分享人计数减一；文件列表整体替换
func (r *ShareRepository) SaveParseResult(ctx context.Context, shareID int64, parsed *entities.ParsedShare) error {
	if parsed == nil {
		return svcerrors.New(svcerrors.ErrorCodeInvalidRequest, "parse result is required")
	}
	now := time.Now().UTC()

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		var (
			driveType string
			oldRef    sql.NullInt64
		)
		err := r.db.queryRow(ctx, tx, "SELECT drive_type, sharer_ref FROM shares WHERE id = ?", shareID).
			Scan(&driveType, &oldRef)
		if errors.Is(err, sql.ErrNoRows) {
			return svcerrors.New(svcerrors.ErrorCodeNotFound, "share not found").WithDetail("share_id", shareID)
		}
		if err != nil {
			return fmt.Errorf("load share %d: %w", shareID, err)
		}

		newRef := oldRef
		if parsed.Sharer.SharerID != "" {
			var sharerID int64
			err := r.db.queryRow(ctx, tx, `
				INSERT INTO sharers (sharer_id, nickname, avatar_url, drive_type, share_count, created_at, updated_at)
				VALUES (?, ?, ?, ?, 0, ?, ?)
				ON CONFLICT (sharer_id) DO UPDATE SET
					nickname = CASE WHEN excluded.nickname <> '' THEN excluded.nickname ELSE sharers.nickname END,
					avatar_url = CASE WHEN excluded.avatar_url <> '' THEN excluded.avatar_url ELSE sharers.avatar_url END,
					updated_at = excluded.updated_at
				RETURNING id`,
				parsed.Sharer.SharerID, parsed.Sharer.Nickname, parsed.Sharer.AvatarURL, driveType, now, now,
			).Scan(&sharerID)
			if err != nil {
				return fmt.Errorf("upsert sharer %s: %w", parsed.Sharer.SharerID, err)
			}
			newRef = sql.NullInt64{Int64: sharerID, Valid: true}

			if !oldRef.Valid || oldRef.Int64 != sharerID {
				if oldRef.Valid {
					if _, err := r.db.exec(ctx, tx,
						"UPDATE sharers SET share_count = share_count - 1 WHERE id = ? AND share_count > 0", oldRef.Int64); err != nil {
						return fmt.Errorf("decrement sharer count: %w", err)
					}
				}
				if _, err := r.db.exec(ctx, tx,
					"UPDATE sharers SET share_count = share_count + 1 WHERE id = ?", sharerID); err != nil {
					return fmt.Errorf("increment sharer count: %w", err)
				}
			}
		}

		kind := parsed.Kind
		if kind == "" {
			kind = valueobjects.ShareKindMovie
		}
		_, err = r.db.exec(ctx, tx, `
			UPDATE shares SET
				share_code = ?, remote_share_id = ?, raw_title = ?, clean_title = ?,
				extracted_tmdb_id = ?, year = ?, season_number = ?, resolution = ?, share_type = ?,
				sharer_ref = ?, file_count = ?, status = ?, parsed_at = ?, updated_at = ?
			WHERE id = ?`,
			parsed.ShareCode, parsed.ShareID, parsed.RawTitle, parsed.CleanTitle,
			nullInt(parsed.ExtractedTMDBID), nullInt(parsed.Year), nullInt(parsed.SeasonNumber), parsed.Resolution, string(kind),
			newRef, parsed.FileCount, string(valueobjects.ShareStatusActive), now, now,
			shareID,
		)
		if err != nil {
			return fmt.Errorf("update share %d: %w", shareID, err)
		}

		return r.replaceFiles(ctx, tx, shareID, parsed.Files)
	})
}

type fileBinding struct {
	mediaID   sql.NullInt64
	posterURL string
}

// replaceFiles 替换文件列表，同一 file_id 的元数据绑定保留下来
func (r *ShareRepository) replaceFiles(ctx context.Context, tx *sql.Tx, shareID int64, files []entities.FileEntry) error {
	rows, err := r.db.query(ctx, tx,
		"SELECT file_id, media_id, poster_url FROM share_files WHERE share_id = ? AND media_id IS NOT NULL", shareID)
	if err != nil {
		return fmt.Errorf("load file bindings: %w", err)
	}
	bindings := make(map[string]fileBinding)
	for rows.Next() {
		var (
			fileID string
			b      fileBinding
		)
		if err := rows.Scan(&fileID, &b.mediaID, &b.posterURL); err != nil {
			rows.Close()
			return fmt.Errorf("scan file binding: %w", err)
		}
		bindings[fileID] = b
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if _, err := r.db.exec(ctx, tx, "DELETE FROM share_files WHERE share_id = ?", shareID); err != nil {
		return fmt.Errorf("clear files: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, r.db.rebind(`
		INSERT INTO share_files (share_id, file_id, file_name, clean_name, file_size, is_directory,
			file_type, parent_id, season_number, episode_number, resolution, video_codec, audio_codec,
			media_id, poster_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("prepare file insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		b := bindings[f.FileID]
		contentType := f.ContentType
		if contentType == "" {
			contentType = valueobjects.ContentTypeOther
		}
		_, err := stmt.ExecContext(ctx,
			shareID, f.FileID, f.FileName, f.CleanName, f.FileSize, f.IsDirectory,
			string(contentType), f.ParentID, nullInt(f.SeasonNumber), nullInt(f.EpisodeNumber),
			f.Resolution, f.VideoCodec, f.AudioCodec, b.mediaID, b.posterURL,
		)
		if err != nil {
			return fmt.Errorf("insert file %s: %w", f.FileID, err)
		}
	}
	logger.Debug("文件列表已替换", "share_id", shareID, "files", len(files), "kept_bindings", len(bindings))
	return nil
}

// Files 分享的文件列表，按写入顺序
func (r *ShareRepository) Files(ctx context.Context, shareID int64) ([]entities.ShareFile, error) {
	rows, err := r.db.query(ctx, r.db,
		"SELECT "+shareFileColumns+" FROM share_files WHERE share_id = ? ORDER BY id", shareID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []entities.ShareFile
	for rows.Next() {
		f, err := scanShareFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// BindMedia 把元数据绑定到分享
func (r *ShareRepository) BindMedia(ctx context.Context, shareID, mediaID int64, posterURL string) error {
	return r.updateShare(ctx, shareID,
		"UPDATE shares SET media_id = ?, poster_url = ?, updated_at = ? WHERE id = ?",
		mediaID, posterURL, time.Now().UTC(), shareID)
}

// BindFileMedia 把元数据绑定到合集中的单个文件
func (r *ShareRepository) BindFileMedia(ctx context.Context, fileID, mediaID int64, posterURL string) error {
	res, err := r.db.exec(ctx, r.db,
		"UPDATE share_files SET media_id = ?, poster_url = ? WHERE id = ?", mediaID, posterURL, fileID)
	if err != nil {
		return fmt.Errorf("bind file media: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return svcerrors.New(svcerrors.ErrorCodeNotFound, "share file not found").WithDetail("file_id", fileID)
	}
	return nil
}

// SetOverride 设置人工标题和 TMDB ID，空标题和 nil 表示清除
func (r *ShareRepository) SetOverride(ctx context.Context, shareID int64, title string, tmdbID *int) error {
	return r.updateShare(ctx, shareID,
		"UPDATE shares SET manual_title = ?, manual_tmdb_id = ?, updated_at = ? WHERE id = ?",
		strings.TrimSpace(title), nullInt(tmdbID), time.Now().UTC(), shareID)
}

// MarkStatus 更新分享状态
func (r *ShareRepository) MarkStatus(ctx context.Context, shareID int64, status valueobjects.ShareStatus) error {
	return r.updateShare(ctx, shareID,
		"UPDATE shares SET status = ?, updated_at = ? WHERE id = ?",
		string(status), time.Now().UTC(), shareID)
}

// IncrementViewCount 浏览数原子加一
func (r *ShareRepository) IncrementViewCount(ctx context.Context, shareID int64) error {
	return r.updateShare(ctx, shareID, "UPDATE shares SET view_count = view_count + 1 WHERE id = ?", shareID)
}

// IncrementSaveCount 转存数原子加一
func (r *ShareRepository) IncrementSaveCount(ctx context.Context, shareID int64) error {
	return r.updateShare(ctx, shareID, "UPDATE shares SET save_count = save_count + 1 WHERE id = ?", shareID)
}

func (r *ShareRepository) updateShare(ctx context.Context, shareID int64, query string, args ...any) error {
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := r.db.exec(ctx, r.db, query, args...)
		if err != nil {
			return err
		}
		affected, _ = res.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("update share %d: %w", shareID, err)
	}
	if affected == 0 {
		return svcerrors.New(svcerrors.ErrorCodeNotFound, "share not found").WithDetail("share_id", shareID)
	}
	return nil
}

// ListUnparsed 从未成功解析过的有效分享
func (r *ShareRepository) ListUnparsed(ctx context.Context, limit int) ([]*entities.Share, error) {
	return r.listWhere(ctx, "parsed_at IS NULL AND status = ?", limit, string(valueobjects.ShareStatusActive))
}

// ListUnresolved 已解析但还没有绑定元数据的剧集和电影
func (r *ShareRepository) ListUnresolved(ctx context.Context, limit int) ([]*entities.Share, error) {
	return r.listWhere(ctx,
		"parsed_at IS NOT NULL AND media_id IS NULL AND status = ? AND share_type <> ?", limit,
		string(valueobjects.ShareStatusActive), string(valueobjects.ShareKindMovieCollection))
}

// ListCollectionsWithUnboundFiles 还有视频文件未绑定元数据的电影合集
func (r *ShareRepository) ListCollectionsWithUnboundFiles(ctx context.Context, limit int) ([]*entities.Share, error) {
	return r.listWhere(ctx, `
		status = ? AND share_type = ? AND EXISTS (
			SELECT 1 FROM share_files f
			WHERE f.share_id = shares.id AND f.media_id IS NULL AND f.is_directory = ? AND f.file_type = ?
		)`, limit,
		string(valueobjects.ShareStatusActive), string(valueobjects.ShareKindMovieCollection),
		false, string(valueobjects.ContentTypeVideo))
}

func (r *ShareRepository) listWhere(ctx context.Context, where string, limit int, args ...any) ([]*entities.Share, error) {
	query := "SELECT " + shareColumns + " FROM shares WHERE " + where + " ORDER BY id"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.query(ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return scanShares(rows)
}

// SharerRepository 分享人存储库的 SQL 实现
type SharerRepository struct {
	db *DB
}

// NewSharerRepository 创建分享人存储库
func NewSharerRepository(db *DB) *SharerRepository {
	return &SharerRepository{db: db}
}

var _ repositories.SharerRepository = (*SharerRepository)(nil)

const sharerColumns = "id, sharer_id, nickname, avatar_url, drive_type, share_count, created_at, updated_at"

func scanSharer(row rowScanner) (*entities.Sharer, error) {
	var s entities.Sharer
	err := row.Scan(&s.ID, &s.SharerID, &s.Nickname, &s.AvatarURL, &s.DriveType, &s.ShareCount, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID 按主键读取分享人
func (r *SharerRepository) GetByID(ctx context.Context, id int64) (*entities.Sharer, error) {
	s, err := scanSharer(r.db.queryRow(ctx, r.db, "SELECT "+sharerColumns+" FROM sharers WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, svcerrors.New(svcerrors.ErrorCodeNotFound, "sharer not found").WithDetail("id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get sharer %d: %w", id, err)
	}
	return s, nil
}

// FindBySharerID 按网盘侧 ID 查找，找不到返回 nil, nil
func (r *SharerRepository) FindBySharerID(ctx context.Context, sharerID string) (*entities.Sharer, error) {
	s, err := scanSharer(r.db.queryRow(ctx, r.db, "SELECT "+sharerColumns+" FROM sharers WHERE sharer_id = ?", sharerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find sharer %s: %w", sharerID, err)
	}
	return s, nil
}
