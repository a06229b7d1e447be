package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkerShortText(t *testing.T) {
	c := NewChunker(400, 100)
	chunks := c.Split("You have a right to perform your prescribed duty.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "You have a right to perform your prescribed duty.", chunks[0])
}

func TestChunkerEmpty(t *testing.T) {
	c := NewChunker(400, 100)
	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\t  "))
}

func TestChunkerSentenceBoundary(t *testing.T) {
	c := NewChunker(80, 20)
	text := strings.Repeat("The soul is eternal and indestructible. ", 10)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)
	// 每块都应在句子边界结束,而不是从词中间截断。
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, "."), "chunk should end at sentence boundary: %q", chunk)
	}
}

func TestChunkerDandaBoundary(t *testing.T) {
	c := NewChunker(60, 10)
	text := strings.Repeat("कर्मण्येवाधिकारस्ते मा फलेषु कदाचन। ", 8)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks[:len(chunks)-1] {
		assert.True(t, strings.HasSuffix(chunk, "।"), "chunk should end at danda: %q", chunk)
	}
}

func TestChunkerOverlap(t *testing.T) {
	c := NewChunker(100, 30)
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("Dharma protects those who protect it. ")
	}
	chunks := c.Split(sb.String())
	require.Greater(t, len(chunks), 1)
	// 重叠意味着总 rune 数大于原文。
	total := 0
	for _, chunk := range chunks {
		total += len([]rune(chunk))
	}
	assert.Greater(t, total, len([]rune(strings.TrimSpace(sb.String()))))
}

func TestChunkerNoBoundary(t *testing.T) {
	c := NewChunker(50, 10)
	text := strings.Repeat("a", 200)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 50)
	}
}

func TestChunkerInvalidParams(t *testing.T) {
	c := NewChunker(0, -5)
	assert.Equal(t, DefaultChunkSize, c.ChunkSize)
	assert.Equal(t, DefaultChunkOverlap, c.Overlap)

	c = NewChunker(40, 100)
	assert.Equal(t, 10, c.Overlap)
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  What did  KRISHNA say? ", "what did krishna say?"},
		{"teachings of krsna", "teachings of krishna"},
		{"who was Raam", "who was rama"},
		{"explain the Geeta", "explain the gita"},
		{"what is karm yoga", "what is karma yoga"},
		{"plain question", "plain question"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuery(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeSanskrit(t *testing.T) {
	assert.Equal(t, "krishna", NormalizeSanskrit("Krsna"))
	assert.Equal(t, "lakshmana", NormalizeSanskrit("Laxman"))
	assert.Equal(t, "unknown", NormalizeSanskrit("Unknown"))
}

func TestExtractVerseReference(t *testing.T) {
	tests := []struct {
		in      string
		chapter int
		verse   int
		ok      bool
	}{
		{"what does chapter 2 verse 47 say", 2, 47, true},
		{"explain chapter 2, verse 47", 2, 47, true},
		{"adhyaya 2 shloka 47", 2, 47, true},
		{"BG 2.47 meaning", 2, 47, true},
		{"bg 18:66", 18, 66, true},
		{"tell me about 2.47", 2, 47, true},
		{"what is dharma", 0, 0, false},
		{"year 2024 was good", 0, 0, false},
	}
	for _, tt := range tests {
		c, v, ok := ExtractVerseReference(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.chapter, c, "input %q", tt.in)
			assert.Equal(t, tt.verse, v, "input %q", tt.in)
		}
	}
}

func TestContainsDevanagari(t *testing.T) {
	assert.True(t, ContainsDevanagari("कर्मण्येवाधिकारस्ते"))
	assert.True(t, ContainsDevanagari("mixed धर्म text"))
	assert.False(t, ContainsDevanagari("pure latin"))
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{1, 0, 0}
	c := []float32{0, 1, 0}
	d := []float32{-1, 0, 0}

	assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity(a, c), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity(a, d), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity(a, []float32{1, 2}))
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity(a, []float32{0, 0, 0}))
}

func TestNormalizeScore(t *testing.T) {
	assert.InDelta(t, 1.0, NormalizeScore(1.0), 1e-9)
	assert.InDelta(t, 0.5, NormalizeScore(0.0), 1e-9)
	assert.InDelta(t, 0.0, NormalizeScore(-1.0), 1e-9)
	assert.Equal(t, 0.0, NormalizeScore(-2.0))
	assert.Equal(t, 1.0, NormalizeScore(2.0))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "long te...", TruncateString("long text truncated", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
}

func TestHashString(t *testing.T) {
	h1 := HashString("what is dharma")
	h2 := HashString("what is dharma")
	h3 := HashString("what is karma")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 32)
}
