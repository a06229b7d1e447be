package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kart-io/logger"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
)

// ParseVerseCSV 解析带表头的诗节 CSV。
// 识别的列:chapter、verse、sanskrit、translation、explanation、question。
// 缺列按空值处理,单行损坏跳过不中断。
func (p *Parser) ParseVerseCSV(path, source string) ([]model.Verse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header %s: %w", path, err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var verses []model.Verse
	line := 1
	for {
		row, err := r.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warnw("跳过损坏的 CSV 行", "path", path, "line", line, "error", err)
			continue
		}

		chapter, _ := strconv.Atoi(field(row, "chapter"))
		verseNum, _ := strconv.Atoi(field(row, "verse"))
		translation := field(row, "translation")
		explanation := field(row, "explanation")
		question := field(row, "question")

		text := translation
		if text == "" {
			text = explanation
		}
		if text == "" {
			continue
		}

		meaning := explanation
		if question != "" {
			if meaning != "" {
				meaning += "\n"
			}
			meaning += "Related question: " + question
		}

		verses = append(verses, model.Verse{
			VerseID:  makeVerseID(source, chapter, verseNum, fmt.Sprintf("row_%d", line)),
			Source:   source,
			Chapter:  chapter,
			Verse:    verseNum,
			Sanskrit: field(row, "sanskrit"),
			Text:     text,
			Meaning:  meaning,
		})
	}
	return verses, nil
}
