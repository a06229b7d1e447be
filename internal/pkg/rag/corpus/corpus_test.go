package corpus_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ISHANT57/Gita-Chatbot/internal/pkg/rag/corpus"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseVerseCSV(t *testing.T) {
	csvContent := `chapter,verse,sanskrit,translation,explanation,question
2,47,कर्मण्येवाधिकारस्ते,"You have a right to perform your duty, but not to the fruits.",Focus on action without attachment to results.,What does Krishna say about duty?
2,48,,"Perform your duty equipoised, abandoning all attachment.",,
,,,,,
18,66,,"Abandon all varieties of religion and surrender unto Me.",Krishna's final instruction to Arjuna.,`

	dir := t.TempDir()
	path := writeFixture(t, dir, "gita.csv", csvContent)

	verses, err := corpus.NewParser().ParseVerseCSV(path, "bhagavad_gita")
	require.NoError(t, err)
	require.Len(t, verses, 3)

	assert.Equal(t, "bhagavad_gita_2_47", verses[0].VerseID)
	assert.Equal(t, 2, verses[0].Chapter)
	assert.Equal(t, 47, verses[0].Verse)
	assert.Equal(t, "कर्मण्येवाधिकारस्ते", verses[0].Sanskrit)
	assert.Contains(t, verses[0].Text, "right to perform your duty")
	assert.Contains(t, verses[0].Meaning, "Related question:")

	assert.Equal(t, "bhagavad_gita_18_66", verses[2].VerseID)
	assert.Equal(t, 18, verses[2].Chapter)
}

func TestParseVerseCSVMissingColumns(t *testing.T) {
	csvContent := `chapter,verse,translation
1,1,"Dhritarashtra said: assembled in the place of pilgrimage"`

	dir := t.TempDir()
	path := writeFixture(t, dir, "minimal.csv", csvContent)

	verses, err := corpus.NewParser().ParseVerseCSV(path, "bhagavad_gita")
	require.NoError(t, err)
	require.Len(t, verses, 1)
	assert.Empty(t, verses[0].Sanskrit)
	assert.Empty(t, verses[0].Meaning)
}

func TestParseJSONKandaArray(t *testing.T) {
	jsonContent := `[
  {"Kanda": "Bala Kanda", "Sarga": 1, "Shloka": 1, "Original_Text": "Narada, the preeminent sage, is questioned by Valmiki.", "Vector_Input": "narada sage valmiki question"},
  {"Kanda": "Bala Kanda", "Sarga": "1", "Shloka": "2", "Original_Text": "Thus asked, the sage replied."},
  {"Kanda": "Bala Kanda", "Sarga": 1, "Shloka": 3, "Original_Text": ""}
]`

	dir := t.TempDir()
	path := writeFixture(t, dir, "ramayana.json", jsonContent)

	verses, err := corpus.NewParser().ParseJSON(path, "ramayana")
	require.NoError(t, err)
	require.Len(t, verses, 2)

	assert.Equal(t, "ramayana_1_1", verses[0].VerseID)
	assert.Equal(t, "Bala Kanda", verses[0].Book)
	assert.Equal(t, 1, verses[0].Chapter)
	assert.Equal(t, 1, verses[0].Verse)
	assert.Contains(t, verses[0].Meaning, "narada sage")

	// 字符串形式的编号也应被解析
	assert.Equal(t, 1, verses[1].Chapter)
	assert.Equal(t, 2, verses[1].Verse)
}

func TestParseJSONBookArray(t *testing.T) {
	jsonContent := `[
  {"Book Name": "Ayodhya Kanda", "Chapter": 2, "Verse": 10, "Content": "Rama agreed to go into exile for fourteen years."}
]`

	dir := t.TempDir()
	path := writeFixture(t, dir, "iyd.json", jsonContent)

	verses, err := corpus.NewParser().ParseJSON(path, "ramayana_iyd")
	require.NoError(t, err)
	require.Len(t, verses, 1)
	assert.Equal(t, "Ayodhya Kanda", verses[0].Book)
	assert.Equal(t, 2, verses[0].Chapter)
	assert.Equal(t, 10, verses[0].Verse)
	assert.Contains(t, verses[0].Text, "fourteen years")
}

func TestParseJSONSectionedText(t *testing.T) {
	jsonContent := `{"text": "Chapter: 1\nVerse: 5\nContent: Hanuman leaped across the ocean.\n----------------------------------------\nChapter: 1\nVerse: 6\nContent: He reached the shores of Lanka.\n----------------------------------------\n\n"}`

	dir := t.TempDir()
	path := writeFixture(t, dir, "kanda.json", jsonContent)

	verses, err := corpus.NewParser().ParseJSON(path, "ramayana")
	require.NoError(t, err)
	require.Len(t, verses, 2)
	assert.Equal(t, "ramayana_1_5", verses[0].VerseID)
	assert.Contains(t, verses[1].Text, "Lanka")
}

func TestParseJSONCharacterDB(t *testing.T) {
	jsonContent := `{
  "allowed_entities": {
    "Arjuna": {
      "aliases": ["Partha", "Dhananjaya"],
      "category": "Pandava",
      "description": "Third of the Pandava brothers, the greatest archer.",
      "notes": "Recipient of the Bhagavad Gita."
    },
    "Krishna": {
      "aliases": ["Vasudeva"],
      "category": "Avatar",
      "description": "Eighth avatar of Vishnu."
    }
  }
}`

	dir := t.TempDir()
	path := writeFixture(t, dir, "characters.json", jsonContent)

	verses, err := corpus.NewParser().ParseJSON(path, "characters")
	require.NoError(t, err)
	require.Len(t, verses, 2)

	// 按名字排序,Arjuna 在前
	assert.Equal(t, "characters_arjuna", verses[0].VerseID)
	assert.Contains(t, verses[0].Text, "Also known as: Partha, Dhananjaya")
	assert.Contains(t, verses[0].Text, "greatest archer")
	assert.Equal(t, "Pandava", verses[0].Book)
	assert.Contains(t, verses[1].Text, "Character: Krishna")
}

func TestParseJSONUnrecognized(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "odd.json", `{"unexpected": true}`)

	_, err := corpus.NewParser().ParseJSON(path, "x")
	assert.Error(t, err)
}

func TestParseGitaTXT(t *testing.T) {
	txtContent := `Chapter-2 Contents of the Gita Summarized

TEXT 47
karmany evadhikaras te
ma phalesu kadacana

TRANSLATION
You have a right to perform your prescribed duty, but you are not entitled
to the fruits of action.

TEXT 48
yoga-sthah kuru karmani

TRANSLATION
Perform your duty equipoised, O Arjuna.
`

	dir := t.TempDir()
	path := writeFixture(t, dir, "gita.txt", txtContent)

	verses, err := corpus.NewParser().ParseGitaTXT(path, "gita_edition")
	require.NoError(t, err)
	require.Len(t, verses, 2)

	assert.Equal(t, "gita_edition_2_47", verses[0].VerseID)
	assert.Equal(t, 2, verses[0].Chapter)
	assert.Equal(t, 47, verses[0].Verse)
	assert.Contains(t, verses[0].Sanskrit, "karmany evadhikaras te")
	assert.Contains(t, verses[0].Text, "not entitled")

	assert.Equal(t, 48, verses[1].Verse)
	assert.Contains(t, verses[1].Text, "equipoised")
}

func TestParseFileDispatch(t *testing.T) {
	dir := t.TempDir()
	p := corpus.NewParser()

	_, err := p.ParseFile(filepath.Join(dir, "data.xml"), "x")
	assert.Error(t, err)
}

func TestProcessAllMissingFiles(t *testing.T) {
	// 空目录:所有语料文件缺失,不报错,也无结果
	result := corpus.NewParser().ProcessAll(t.TempDir())
	assert.Empty(t, result.Verses)
	assert.Empty(t, result.FailedFiles)
}

func TestProcessAllWithFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "bhagavad_gita_verses.csv",
		"chapter,verse,translation\n2,47,\"You have a right to perform your duty.\"\n")
	writeFixture(t, dir, "valmiki_ramayana_verses.json",
		`[{"Kanda": "Bala Kanda", "Sarga": 1, "Shloka": 1, "Original_Text": "The sage asked."}]`)
	// 损坏的 JSON 不应中断其他文件的解析
	writeFixture(t, dir, "ramayana_dataset.json", `{not json`)

	result := corpus.NewParser().ProcessAll(dir)
	assert.Len(t, result.Verses, 2)
	assert.Equal(t, 1, result.PerSource["bhagavad_gita"])
	assert.Equal(t, 1, result.PerSource["ramayana"])
	assert.Equal(t, []string{"ramayana_dataset.json"}, result.FailedFiles)
}
