package corpus

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/kart-io/logger"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
	"github.com/ISHANT57/Gita-Chatbot/pkg/utils/json"
)

// ParseJSON 解析 JSON 语料。自动识别四种结构:
//   - 数组,条目含 Kanda/Sarga/Shloka(瓦尔米基罗摩衍那诗节)
//   - 数组,条目含 "Book Name"/Chapter/Verse/Content(整理版数据集)
//   - 对象,含 text 字段(按分隔线组织的篇章文本)
//   - 对象,含 allowed_entities 字段(人物数据库)
func (p *Parser) ParseJSON(path, source string) ([]model.Verse, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json %s: %w", path, err)
	}

	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var entries []map[string]any
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("decode json array %s: %w", path, err)
		}
		return p.parseJSONArray(entries, source), nil
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode json object %s: %w", path, err)
	}
	if text, ok := obj["text"].(string); ok {
		return p.parseSectionedText(text, source), nil
	}
	if entities, ok := obj["allowed_entities"].(map[string]any); ok {
		return p.parseCharacterDB(entities, source), nil
	}
	return nil, fmt.Errorf("unrecognized json structure in %s", path)
}

func (p *Parser) parseJSONArray(entries []map[string]any, source string) []model.Verse {
	var verses []model.Verse
	for i, entry := range entries {
		switch {
		case hasKey(entry, "Kanda"):
			if v, ok := p.parseKandaEntry(entry, source); ok {
				verses = append(verses, v)
			}
		case hasKey(entry, "Book Name"):
			if v, ok := p.parseBookEntry(entry, source); ok {
				verses = append(verses, v)
			}
		default:
			logger.Warnw("无法识别的 JSON 数组条目,跳过", "source", source, "index", i)
		}
	}
	return verses
}

// parseKandaEntry 解析 Kanda/Sarga/Shloka 形式的诗节条目。
func (p *Parser) parseKandaEntry(entry map[string]any, source string) (model.Verse, bool) {
	kanda := asString(entry["Kanda"])
	sarga := asInt(entry["Sarga"])
	shloka := asInt(entry["Shloka"])
	text := asString(entry["Original_Text"])
	vectorInput := asString(entry["Vector_Input"])

	if text == "" {
		text = vectorInput
	}
	if text == "" {
		return model.Verse{}, false
	}

	meaning := ""
	if vectorInput != "" && !strings.EqualFold(vectorInput, text) {
		meaning = vectorInput
	}

	fallback := fmt.Sprintf("%s_%d_%d", kanda, sarga, shloka)
	return model.Verse{
		VerseID: makeVerseID(source, sarga, shloka, fallback),
		Source:  source,
		Book:    kanda,
		Chapter: sarga,
		Verse:   shloka,
		Text:    text,
		Meaning: meaning,
	}, true
}

// parseBookEntry 解析 "Book Name"/Chapter/Verse/Content 形式的条目。
func (p *Parser) parseBookEntry(entry map[string]any, source string) (model.Verse, bool) {
	book := asString(entry["Book Name"])
	chapter := asInt(entry["Chapter"])
	verse := asInt(entry["Verse"])
	content := asString(entry["Content"])
	if content == "" {
		return model.Verse{}, false
	}

	fallback := fmt.Sprintf("%s_%d_%d", book, chapter, verse)
	return model.Verse{
		VerseID: makeVerseID(source, chapter, verse, fallback),
		Source:  source,
		Book:    book,
		Chapter: chapter,
		Verse:   verse,
		Text:    content,
	}, true
}

// sectionSeparator 篇章文本文件中的小节分隔线。
const sectionSeparator = "----------------------------------------"

// parseSectionedText 解析按分隔线组织的篇章文本,
// 每节含 Chapter:/Verse:/Content: 三个标记行。
func (p *Parser) parseSectionedText(text, source string) []model.Verse {
	var verses []model.Verse
	for _, section := range strings.Split(text, sectionSeparator) {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}

		var chapter, verse, content string
		for _, line := range strings.Split(section, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "Chapter:"):
				chapter = strings.TrimSpace(strings.TrimPrefix(line, "Chapter:"))
			case strings.HasPrefix(line, "Verse:"):
				verse = strings.TrimSpace(strings.TrimPrefix(line, "Verse:"))
			case strings.HasPrefix(line, "Content:"):
				content = strings.TrimSpace(strings.TrimPrefix(line, "Content:"))
			}
		}
		if content == "" {
			continue
		}

		chapterNum, _ := strconv.Atoi(chapter)
		verseNum, _ := strconv.Atoi(verse)
		fallback := fmt.Sprintf("%s_%s", chapter, verse)
		verses = append(verses, model.Verse{
			VerseID: makeVerseID(source, chapterNum, verseNum, fallback),
			Source:  source,
			Chapter: chapterNum,
			Verse:   verseNum,
			Text:    content,
		})
	}
	return verses
}

// parseCharacterDB 解析人物数据库。每个人物生成一条可检索的条目,
// 别名与补充说明并入正文,便于按别名检索。
func (p *Parser) parseCharacterDB(entities map[string]any, source string) []model.Verse {
	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	sort.Strings(names)

	var verses []model.Verse
	for _, name := range names {
		info, ok := entities[name].(map[string]any)
		if !ok {
			continue
		}

		description := asString(info["description"])
		notes := asString(info["notes"])
		category := asString(info["category"])

		var aliases []string
		if raw, ok := info["aliases"].([]any); ok {
			for _, a := range raw {
				if s := asString(a); s != "" {
					aliases = append(aliases, s)
				}
			}
		}

		var parts []string
		parts = append(parts, "Character: "+name)
		if len(aliases) > 0 {
			parts = append(parts, "Also known as: "+strings.Join(aliases, ", "))
		}
		if category != "" {
			parts = append(parts, "Category: "+category)
		}
		if description != "" {
			parts = append(parts, "Description: "+description)
		}
		if notes != "" {
			parts = append(parts, "Notes: "+notes)
		}
		if len(parts) == 1 {
			continue
		}

		verses = append(verses, model.Verse{
			VerseID: makeVerseID(source, 0, 0, name),
			Source:  source,
			Book:    category,
			Text:    strings.Join(parts, "\n"),
			Meaning: notes,
		})
	}
	return verses
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		// 诗节号可能写成 "47" 或 "47-48",取首个数字。
		s := strings.TrimSpace(n)
		for i, r := range s {
			if r < '0' || r > '9' {
				s = s[:i]
				break
			}
		}
		i, _ := strconv.Atoi(s)
		return i
	default:
		return 0
	}
}
