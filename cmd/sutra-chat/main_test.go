package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ISHANT57/Gita-Chatbot/internal/model"
)

func TestParseVerseArgs(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantChapter int
		wantVerse   int
		wantOK      bool
	}{
		{"空格分隔", "2 47", 2, 47, true},
		{"点号写法", "2.47", 2, 47, true},
		{"冒号写法", "18:66", 18, 66, true},
		{"完整写法", "chapter 2 verse 47", 2, 47, true},
		{"梵语写法", "adhyaya 4 shloka 7", 4, 7, true},
		{"零章号", "0 47", 0, 0, false},
		{"非数字", "two fortyseven", 0, 0, false},
		{"空参数", "", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chapter, verse, ok := parseVerseArgs(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantChapter, chapter)
				assert.Equal(t, tt.wantVerse, verse)
			}
		})
	}
}

// verseStub 只实现 SearchByVerse,记录收到的参数。
type verseStub struct {
	gotSource  string
	gotChapter int
	gotVerse   int
}

func (s *verseStub) Query(context.Context, string, string) (*model.QueryResult, error) {
	return nil, nil
}

func (s *verseStub) SearchByVerse(_ context.Context, source string, chapter, verse int) (*model.Verse, error) {
	s.gotSource = source
	s.gotChapter = chapter
	s.gotVerse = verse
	return &model.Verse{Source: "bhagavad_gita", Chapter: chapter, Verse: verse, Text: "text"}, nil
}

func (s *verseStub) Initialize(context.Context, bool) (*model.LoadReport, error) {
	return nil, nil
}

func (s *verseStub) GetStats(context.Context) (map[string]any, error) {
	return nil, nil
}

func TestLookupVerse(t *testing.T) {
	stub := &verseStub{}

	lookupVerse(context.Background(), stub, "bhagavad_gita", "2.47")

	assert.Equal(t, "bhagavad_gita", stub.gotSource)
	assert.Equal(t, 2, stub.gotChapter)
	assert.Equal(t, 47, stub.gotVerse)
}
