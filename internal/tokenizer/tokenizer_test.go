package tokenizer

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeStopwords(t *testing.T, words string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stopwords.txt")
	if err := os.WriteFile(path, []byte(words), 0644); err != nil {
		t.Fatalf("writing stopwords file: %v", err)
	}
	return path
}

func TestNormalizeLowercasesAndStems(t *testing.T) {
	n := New("")
	got := n.Normalize("Dreams")
	want := []string{"dream"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize(%q) = %v, want %v", "Dreams", got, want)
	}
}

func TestNormalizePreservesOrderAndDuplicates(t *testing.T) {
	n := New("")
	got := n.Normalize("dream hacker dream")
	want := []string{"dream", "hacker", "dream"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalizeStripsPunctuation(t *testing.T) {
	n := New("")
	// Punctuation is deleted, not turned into a separator.
	got := n.Normalize("don't")
	want := []string{"dont"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize(%q) = %v, want %v", "don't", got, want)
	}
}

func TestNormalizeRemovesStopwords(t *testing.T) {
	path := writeStopwords(t, "the\na\nis\n")
	n := New(path)
	got := n.Normalize("The hacker is a thief")
	want := []string{"hacker", "thief"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalizeStopwordsOnlyYieldsNothing(t *testing.T) {
	path := writeStopwords(t, "the\na\n")
	n := New(path)
	if got := n.Normalize("the a The A"); got != nil {
		t.Errorf("Normalize = %v, want nil", got)
	}
}

func TestNormalizeMissingStopwordFileIsNonFatal(t *testing.T) {
	n := New(filepath.Join(t.TempDir(), "nope.txt"))
	got := n.Normalize("dreams")
	want := []string{"dream"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalizeBlankInput(t *testing.T) {
	n := New("")
	for _, input := range []string{"", "   ", "\t\n", "!!! ... ???"} {
		if got := n.Normalize(input); got != nil {
			t.Errorf("Normalize(%q) = %v, want nil", input, got)
		}
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	path := writeStopwords(t, "the\na\n")
	n := New(path)
	input := "The Matrix: a hacker discovers reality-is a simulation!"
	first := n.Normalize(input)
	second := n.Normalize(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Normalize not deterministic: %v vs %v", first, second)
	}
}

func TestNormalizeStemsVariantsTogether(t *testing.T) {
	n := New("")
	variants := [][]string{
		n.Normalize("dream"),
		n.Normalize("dreams"),
		n.Normalize("dreaming"),
	}
	for i := 1; i < len(variants); i++ {
		if !reflect.DeepEqual(variants[i], variants[0]) {
			t.Errorf("variant %d normalised to %v, want %v", i, variants[i], variants[0])
		}
	}
}
