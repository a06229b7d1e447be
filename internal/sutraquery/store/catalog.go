package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
	"github.com/ISHANT57/Gita-Chatbot/internal/pkg/rag/docutil"
)

// ErrVerseNotFound 诗节不存在。
var ErrVerseNotFound = errors.New("verse not found")

// catalogBatchSize 单次批量写入的诗节数上限。
const catalogBatchSize = 500

// VerseCatalog 基于 SQLite 的诗节目录,支持按章节号精确查询。
type VerseCatalog struct {
	db *gorm.DB
}

// NewVerseCatalog 打开或创建诗节目录数据库并自动建表。
func NewVerseCatalog(path string) (*VerseCatalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := docutil.EnsureDir(dir); err != nil {
			return nil, fmt.Errorf("failed to create catalog dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog db %s: %w", path, err)
	}

	if err := db.AutoMigrate(&model.Verse{}); err != nil {
		return nil, fmt.Errorf("failed to migrate catalog schema: %w", err)
	}

	return &VerseCatalog{db: db}, nil
}

// UpsertBatch 批量写入诗节,按 VerseID 冲突时更新。
func (c *VerseCatalog) UpsertBatch(ctx context.Context, verses []model.Verse) error {
	if len(verses) == 0 {
		return nil
	}

	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "verse_id"}},
			UpdateAll: true,
		}).
		CreateInBatches(verses, catalogBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to upsert verses: %w", err)
	}
	return nil
}

// GetVerse 按章节号查询诗节。source 为空时在全部语料中查找,
// 同一章节号存在于多部经文时优先返回薄伽梵歌。
func (c *VerseCatalog) GetVerse(ctx context.Context, source string, chapter, verse int) (*model.Verse, error) {
	q := c.db.WithContext(ctx).Where("chapter = ? AND verse = ?", chapter, verse)
	if source != "" {
		q = q.Where("source = ?", source)
	} else {
		q = q.Order("CASE WHEN source = 'bhagavad_gita' THEN 0 ELSE 1 END")
	}

	var v model.Verse
	if err := q.First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerseNotFound
		}
		return nil, fmt.Errorf("failed to query verse: %w", err)
	}
	return &v, nil
}

// GetByVerseID 按诗节 ID 精确查询。
func (c *VerseCatalog) GetByVerseID(ctx context.Context, verseID string) (*model.Verse, error) {
	var v model.Verse
	err := c.db.WithContext(ctx).Where("verse_id = ?", verseID).First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerseNotFound
		}
		return nil, fmt.Errorf("failed to query verse by id: %w", err)
	}
	return &v, nil
}

// Count 返回目录中的诗节总数。
func (c *VerseCatalog) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := c.db.WithContext(ctx).Model(&model.Verse{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count verses: %w", err)
	}
	return count, nil
}

// CountBySource 返回各语料来源的诗节数量。
func (c *VerseCatalog) CountBySource(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Source string
		Count  int64
	}
	var rows []row
	err := c.db.WithContext(ctx).Model(&model.Verse{}).
		Select("source, count(*) as count").
		Group("source").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count verses by source: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Source] = r.Count
	}
	return counts, nil
}

// Clear 清空目录。
func (c *VerseCatalog) Clear(ctx context.Context) error {
	if err := c.db.WithContext(ctx).Where("1 = 1").Delete(&model.Verse{}).Error; err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}
	return nil
}

// Close 关闭数据库连接。
func (c *VerseCatalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
