// Package textutil 提供经文文本的切分、归一化与相似度计算工具。
package textutil

import (
	"crypto/md5"
	"encoding/hex"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

const (
	// DefaultChunkSize 默认分块长度(按 rune 计)。
	DefaultChunkSize = 400
	// DefaultChunkOverlap 相邻分块之间的默认重叠长度。
	DefaultChunkOverlap = 100
)

// sentenceEnders 句子边界字符。'।' 与 '॥' 是梵文的单竖线与双竖线标点。
var sentenceEnders = []rune{'.', '!', '?', '।', '॥'}

// clauseEnders 从句边界字符,在找不到句子边界时作为次选切分点。
var clauseEnders = []rune{',', ';'}

// Chunker 将长文本按句子边界切分为带重叠的片段。
type Chunker struct {
	ChunkSize int
	Overlap   int
}

// NewChunker 创建分块器。非法参数回落到默认值。
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 4
		}
	}
	return &Chunker{ChunkSize: chunkSize, Overlap: overlap}
}

// Split 切分文本。优先在句号/叹号/问号/danda 处断开,
// 其次是段落换行,最后是逗号分号;都找不到时硬切。
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.ChunkSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.ChunkSize
		if end >= len(runes) {
			chunk := strings.TrimSpace(string(runes[start:]))
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := c.findBoundary(runes, start, end)
		chunk := strings.TrimSpace(string(runes[start:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - c.Overlap
		if next <= start {
			next = cut
		}
		// 重叠起点对齐到空白,避免从词中间开始。
		for next > start && next < len(runes) && !unicode.IsSpace(runes[next]) {
			next--
		}
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// findBoundary 在 [start+size/2, end) 区间内从后向前找最佳切分点。
// 返回切分位置(不含),保证不小于窗口中点,避免产生过短分块。
func (c *Chunker) findBoundary(runes []rune, start, end int) int {
	floor := start + c.ChunkSize/2

	for i := end - 1; i > floor; i-- {
		if isOneOf(runes[i], sentenceEnders) {
			return i + 1
		}
	}
	for i := end - 1; i > floor; i-- {
		if runes[i] == '\n' && i > 0 && runes[i-1] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i > floor; i-- {
		if isOneOf(runes[i], clauseEnders) {
			return i + 1
		}
	}
	for i := end - 1; i > floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}

func isOneOf(r rune, set []rune) bool {
	for _, s := range set {
		if r == s {
			return true
		}
	}
	return false
}

// sanskritVariants 常见人名/术语的拉丁转写变体,统一为检索用拼写。
var sanskritVariants = map[string]string{
	"krsna":      "krishna",
	"kṛṣṇa":      "krishna",
	"krishn":     "krishna",
	"arjun":      "arjuna",
	"raam":       "rama",
	"raama":      "rama",
	"seeta":      "sita",
	"seetha":     "sita",
	"hanumaan":   "hanuman",
	"yudhistira": "yudhishthira",
	"yudhisthir": "yudhishthira",
	"draupathi":  "draupadi",
	"bheema":     "bhima",
	"bheem":      "bhima",
	"karn":       "karna",
	"duryodhan":  "duryodhana",
	"ravan":      "ravana",
	"raavan":     "ravana",
	"laxman":     "lakshmana",
	"lakshman":   "lakshmana",
	"geeta":      "gita",
	"gitaa":      "gita",
	"mahabharat": "mahabharata",
	"ramayan":    "ramayana",
	"shlok":      "shloka",
	"adhyay":     "adhyaya",
	"dharm":      "dharma",
	"karm":       "karma",
	"yog":        "yoga",
	"moksh":      "moksha",
	"atma":       "atman",
	"aatma":      "atman",
}

// NormalizeQuery 归一化用户提问:小写、压缩空白、统一梵文转写变体。
func NormalizeQuery(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.Join(strings.Fields(q), " ")
	words := strings.Fields(q)
	for i, w := range words {
		stripped := strings.TrimFunc(w, func(r rune) bool {
			return unicode.IsPunct(r) && r != '।' && r != '॥'
		})
		if canon, ok := sanskritVariants[stripped]; ok {
			words[i] = strings.Replace(w, stripped, canon, 1)
		}
	}
	return strings.Join(words, " ")
}

// NormalizeSanskrit 统一单个词的梵文拼写变体。未知词原样返回(小写)。
func NormalizeSanskrit(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if canon, ok := sanskritVariants[w]; ok {
		return canon
	}
	return w
}

var verseRefPatterns = []*regexp.Regexp{
	// "chapter 2 verse 47" / "chapter 2, verse 47"
	regexp.MustCompile(`(?i)chapter\s+(\d+)[\s,]+verse\s+(\d+)`),
	// "adhyaya 2 shloka 47"
	regexp.MustCompile(`(?i)adhyaya?\s+(\d+)[\s,]+shloka?\s+(\d+)`),
	// "BG 2.47" / "bg 2:47"
	regexp.MustCompile(`(?i)\bbg\s*(\d+)[.:](\d+)`),
	// 裸 "2.47" / "2:47"
	regexp.MustCompile(`\b(\d{1,2})[.:](\d{1,3})\b`),
}

// ExtractVerseReference 从提问中提取章节/诗节编号。
// 支持 "chapter 2 verse 47"、"adhyaya 2 shloka 47"、"BG 2.47"、"2.47" 等写法。
func ExtractVerseReference(q string) (chapter, verse int, ok bool) {
	for _, pat := range verseRefPatterns {
		m := pat.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		c, err1 := strconv.Atoi(m[1])
		v, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || c <= 0 || v <= 0 {
			continue
		}
		return c, v, true
	}
	return 0, 0, false
}

// ContainsDevanagari 判断文本是否含有天城文字符。
func ContainsDevanagari(s string) bool {
	for _, r := range s {
		if r >= 0x0900 && r <= 0x097F {
			return true
		}
	}
	return false
}

// CosineSimilarity 计算两个向量的余弦相似度,范围 [-1, 1]。
// 维度不一致或零向量返回 0。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// NormalizeScore 将余弦相似度从 [-1, 1] 映射到 [0, 1]。
func NormalizeScore(score float64) float64 {
	n := (score + 1) / 2
	if n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

// TruncateString 按 rune 截断字符串并追加省略号。
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// HashString 返回字符串的 MD5 十六进制摘要,用于缓存键与去重。
func HashString(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
