package dictionary

import (
	"strings"
	"testing"
)

const sampleDict = `
{
  "words": [
    {
      "id": "1",
      "kanji": [{"text": "犬", "common": true}],
      "kana": [{"text": "いぬ", "common": true}],
      "sense": [{"gloss": [{"text": "dog"}, {"text": "Hund", "lang": "ger"}], "partOfSpeech": ["n"]}]
    },
    {
      "id": "2",
      "kanji": [{"text": "走る", "common": true}],
      "kana": [{"text": "はしる", "common": true}],
      "sense": [{"gloss": [{"text": "to run"}], "partOfSpeech": ["v5r"]}, {"gloss": [{"text": "to travel"}, {"text": "to run"}]}]
    },
    {
      "id": "3",
      "kanji": [{"text": "猫", "common": true}],
      "kana": [{"text": "ねこ", "common": true}],
      "sense": [{"gloss": [{"text": "cat"}], "partOfSpeech": ["n"]}]
    },
     {
      "id": "4",
      "kanji": [],
      "kana": [{"text": "テスト", "common": true}],
      "sense": [{"gloss": [{"text": "test"}], "partOfSpeech": ["n", "vs"]}]
    }
  ]
}
`

func loadSample(t *testing.T) *Index {
	t.Helper()
	entries, err := ReadJMdictSimplified(strings.NewReader(sampleDict))
	if err != nil {
		t.Fatalf("load dict: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	return NewIndex(entries)
}

func TestReadBareArray(t *testing.T) {
	entries, err := ReadJMdictSimplified(strings.NewReader(`[{"id":"9","kana":[{"text":"あ"}]}]`))
	if err != nil {
		t.Fatalf("read array: %v", err)
	}
	if len(entries) != 1 || entries[0].Id != "9" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if _, err := ReadJMdictSimplified(strings.NewReader(`nope`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLookup(t *testing.T) {
	ix := loadSample(t)

	tests := []struct {
		word, lemma, reading string
		wantID               string
	}{
		{"犬", "犬", "イヌ", "1"},
		{"走っ", "走る", "ハシッ", ""},
		{"走っ", "走る", "", "2"},
		{"走る", "走る", "はしる", "2"},
		{"猫", "猫", "ネコ", "3"},
		{"テスト", "テスト", "テスト", "4"},
		{"未知", "未知", "ミチ", ""},
	}
	for _, tt := range tests {
		got := ix.Lookup(tt.word, tt.lemma, tt.reading)
		if tt.wantID == "" {
			if len(got) != 0 {
				t.Errorf("Lookup(%q, %q, %q) = %v; want none", tt.word, tt.lemma, tt.reading, got)
			}
			continue
		}
		if len(got) != 1 || got[0].Id != tt.wantID {
			t.Errorf("Lookup(%q, %q, %q) = %v; want id %s", tt.word, tt.lemma, tt.reading, got, tt.wantID)
		}
	}
}

func TestGlosses(t *testing.T) {
	ix := loadSample(t)

	if got := Glosses(ix.Lookup("走る", "", ""), 0); strings.Join(got, "|") != "to run|to travel" {
		t.Errorf("unexpected glosses %v", got)
	}
	if got := Glosses(ix.Lookup("走る", "", ""), 1); len(got) != 1 {
		t.Errorf("expected limit to apply, got %v", got)
	}
	if got := Glosses(ix.Lookup("犬", "", ""), 0); strings.Join(got, "|") != "dog" {
		t.Errorf("non-English glosses must be skipped, got %v", got)
	}

	defs, err := FormatDefinitions(ix.Lookup("テスト", "", ""))
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if defs != `[{"senses":["test"],"pos":["n","vs"]}]` {
		t.Errorf("unexpected definitions %s", defs)
	}
}

func TestToHiragana(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"ア", "あ"},
		{"イ", "い"},
		{"カ", "か"},
		{"ガ", "が"},
		{"パ", "ぱ"},
		{"ン", "ん"},
		{"ー", "ー"},
		{"abc", "abc"},
		{"あいう", "あいう"},
	}
	for _, tt := range tests {
		if got := ToHiragana(tt.in); got != tt.out {
			t.Errorf("ToHiragana(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}
