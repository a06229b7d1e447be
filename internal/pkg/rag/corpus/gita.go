package corpus

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
)

var (
	chapterNumRe = regexp.MustCompile(`(\d+)`)
	verseNumRe   = regexp.MustCompile(`TEXT\s+(\d+)`)
)

// ParseGitaTXT 解析 Gita 纯文本版。文件结构:
//
//	Chapter-N 或 CHAPTER N 起始章节;
//	TEXT n 之后是梵文原文,直到 TRANSLATION 行;
//	TRANSLATION 之后是译文与注释,直到下一个 TEXT。
func (p *Parser) ParseGitaTXT(path, source string) ([]model.Verse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open txt %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan txt %s: %w", path, err)
	}

	var verses []model.Verse
	chapter := 0

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])

		if strings.HasPrefix(line, "Chapter-") || strings.HasPrefix(line, "CHAPTER") {
			if m := chapterNumRe.FindStringSubmatch(line); m != nil {
				chapter, _ = strconv.Atoi(m[1])
			}
			i++
			continue
		}

		if strings.HasPrefix(line, "TEXT ") {
			verseNum := 0
			if m := verseNumRe.FindStringSubmatch(line); m != nil {
				verseNum, _ = strconv.Atoi(m[1])
			}
			i++

			// 梵文原文,直到 TRANSLATION。
			var sanskritLines []string
			for i < len(lines) {
				l := strings.TrimSpace(lines[i])
				if strings.HasPrefix(l, "TRANSLATION") {
					break
				}
				if l != "" && !strings.HasPrefix(l, "TEXT") {
					sanskritLines = append(sanskritLines, l)
				}
				i++
			}
			sanskrit := strings.Join(sanskritLines, " ")

			if i >= len(lines) || !strings.HasPrefix(strings.TrimSpace(lines[i]), "TRANSLATION") {
				continue
			}
			i++

			// 译文与注释,直到下一个 TEXT。
			var contentLines []string
			for i < len(lines) {
				l := strings.TrimSpace(lines[i])
				if strings.HasPrefix(l, "TEXT ") {
					break
				}
				if l != "" {
					contentLines = append(contentLines, l)
				}
				i++
			}
			text := strings.Join(contentLines, " ")

			if text != "" && chapter > 0 && verseNum > 0 {
				verses = append(verses, model.Verse{
					VerseID:  makeVerseID(source, chapter, verseNum, ""),
					Source:   source,
					Chapter:  chapter,
					Verse:    verseNum,
					Sanskrit: sanskrit,
					Text:     text,
				})
			}
			continue
		}

		i++
	}

	return verses, nil
}
