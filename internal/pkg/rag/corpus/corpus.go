// Package corpus 解析印度教经文语料文件,将其归一化为统一的诗节模型。
// 支持的格式:带问答的诗节 CSV、罗摩衍那 JSON(多种结构)、
// 人物数据库 JSON 以及 Gita 纯文本版。
package corpus

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kart-io/logger"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
	"github.com/ISHANT57/Gita-Chatbot/internal/pkg/rag/docutil"
)

// DataFiles 返回语料来源到文件名的映射。键作为 source 标识写入向量库。
func DataFiles() map[string]string {
	return map[string]string{
		"bhagavad_gita": "bhagavad_gita_verses.csv",
		"gita_edition":  "bhagavad_gita_edition.txt",
		"ramayana":      "valmiki_ramayana_verses.json",
		"ramayana_iyd":  "ramayana_dataset.json",
		"characters":    "mahabharata_characters.json",
	}
}

// Parser 将多种格式的语料文件解析为诗节列表。
type Parser struct{}

// NewParser 创建语料解析器。
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile 按扩展名分发解析。source 标识写入每条诗节。
func (p *Parser) ParseFile(path, source string) ([]model.Verse, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return p.ParseVerseCSV(path, source)
	case ".json":
		return p.ParseJSON(path, source)
	case ".txt":
		return p.ParseGitaTXT(path, source)
	default:
		return nil, fmt.Errorf("unsupported corpus file format: %s", path)
	}
}

// ProcessResult 记录一次全量解析的结果。
type ProcessResult struct {
	Verses      []model.Verse
	PerSource   map[string]int
	FailedFiles []string
}

// ProcessAll 解析数据目录下的全部语料文件。
// 单个文件解析失败不中断整体流程,失败文件记录在结果中。
func (p *Parser) ProcessAll(dataDir string) *ProcessResult {
	result := &ProcessResult{PerSource: make(map[string]int)}

	for source, filename := range DataFiles() {
		path := filepath.Join(dataDir, filename)
		if !docutil.FileExists(path) {
			logger.Warnw("语料文件不存在,跳过", "path", path, "source", source)
			continue
		}

		verses, err := p.ParseFile(path, source)
		if err != nil {
			logger.Errorw("语料文件解析失败", "path", path, "error", err)
			result.FailedFiles = append(result.FailedFiles, filename)
			continue
		}

		result.Verses = append(result.Verses, verses...)
		result.PerSource[source] = len(verses)
		logger.Infow("语料文件解析完成", "source", source, "verses", len(verses))
	}

	return result
}

// makeVerseID 生成诗节的唯一标识,如 "bhagavad_gita_2_47"。
func makeVerseID(source string, chapter, verse int, fallback string) string {
	if chapter > 0 && verse > 0 {
		return fmt.Sprintf("%s_%d_%d", source, chapter, verse)
	}
	slug := strings.ToLower(strings.Join(strings.Fields(fallback), "_"))
	if len(slug) > 80 {
		slug = slug[:80]
	}
	return fmt.Sprintf("%s_%s", source, slug)
}
