package searcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/onslaught7/RAG-Systems-BootDev/internal/index"
	"github.com/onslaught7/RAG-Systems-BootDev/internal/tokenizer"
	apperrors "github.com/onslaught7/RAG-Systems-BootDev/pkg/errors"
)

type testDoc struct {
	id    int
	title string
	desc  string
}

// buildAndReload indexes docs into a temp data dir the way the builder
// does, persists them, and returns a Searcher over a fresh store so the
// load path is exercised.
func buildAndReload(t *testing.T, docs []testDoc) *Searcher {
	t.Helper()
	dir := t.TempDir()
	stopwords := filepath.Join(dir, "stopwords.txt")
	if err := os.WriteFile(stopwords, []byte("the\na\nis\n"), 0644); err != nil {
		t.Fatalf("writing stopwords: %v", err)
	}
	dataDir := filepath.Join(dir, "cache")

	norm := tokenizer.New(stopwords)
	store := index.NewStore(norm, dataDir)
	for _, d := range docs {
		store.AddDocument(d.id, d.title+" "+d.desc)
		store.SetRecord(index.Document{ID: d.id, Title: d.title, Description: d.desc})
	}
	if err := store.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fresh := index.NewStore(tokenizer.New(stopwords), dataDir)
	return New(fresh, tokenizer.New(stopwords), nil)
}

func specCollection() []testDoc {
	return []testDoc{
		{0, "The Matrix", "A hacker discovers reality is a simulation"},
		{1, "Inception", "A thief enters dreams"},
	}
}

func TestSearchSingleTerm(t *testing.T) {
	s := buildAndReload(t, specCollection())

	result, err := s.Search(context.Background(), "matrix")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := result.Titles(); !reflect.DeepEqual(got, []string{"The Matrix"}) {
		t.Errorf("Search(matrix) titles = %v, want [The Matrix]", got)
	}
}

func TestSearchMatchesStemmedVariant(t *testing.T) {
	s := buildAndReload(t, specCollection())

	result, err := s.Search(context.Background(), "dream")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := result.Titles(); !reflect.DeepEqual(got, []string{"Inception"}) {
		t.Errorf("Search(dream) titles = %v, want [Inception]", got)
	}
}

func TestSearchStopwordsOnly(t *testing.T) {
	s := buildAndReload(t, specCollection())

	result, err := s.Search(context.Background(), "the a")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Docs) != 0 {
		t.Errorf("Search(the a) returned %v, want no results", result.Titles())
	}
}

func TestSearchUnknownToken(t *testing.T) {
	s := buildAndReload(t, specCollection())

	result, err := s.Search(context.Background(), "zzzznotaword")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(result.Docs) != 0 {
		t.Errorf("Search(unknown) returned %v, want no results", result.Titles())
	}
}

func TestSearchUnionAcrossTokens(t *testing.T) {
	s := buildAndReload(t, specCollection())

	result, err := s.Search(context.Background(), "hacker thief")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"The Matrix", "Inception"}
	if got := result.Titles(); !reflect.DeepEqual(got, want) {
		t.Errorf("Search(hacker thief) titles = %v, want %v", got, want)
	}
}

func TestSearchQueryTokenCap(t *testing.T) {
	// One document per query word; words six and seven must be ignored.
	words := []string{"alpha", "bravo", "delta", "echo", "foxtrot", "golf", "hotel"}
	docs := make([]testDoc, len(words))
	for i, w := range words {
		docs[i] = testDoc{id: i, title: fmt.Sprintf("Movie %d", i), desc: w}
	}
	s := buildAndReload(t, docs)

	result, err := s.Search(context.Background(), "alpha bravo delta echo foxtrot golf hotel")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 5 {
		t.Errorf("Total = %d, want 5 (tokens beyond the fifth ignored)", result.Total)
	}
	want := []string{"Movie 0", "Movie 1", "Movie 2", "Movie 3", "Movie 4"}
	if got := result.Titles(); !reflect.DeepEqual(got, want) {
		t.Errorf("titles = %v, want %v", got, want)
	}
}

func TestSearchResultCap(t *testing.T) {
	docs := make([]testDoc, 12)
	for i := range docs {
		docs[i] = testDoc{id: i, title: fmt.Sprintf("Movie %d", i), desc: "dragon"}
	}
	s := buildAndReload(t, docs)

	result, err := s.Search(context.Background(), "dragon")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 12 {
		t.Errorf("Total = %d, want 12", result.Total)
	}
	// Five lowest-numbered IDs, ascending, not any ranked "best" five.
	want := []string{"Movie 0", "Movie 1", "Movie 2", "Movie 3", "Movie 4"}
	if got := result.Titles(); !reflect.DeepEqual(got, want) {
		t.Errorf("titles = %v, want %v", got, want)
	}
}

func TestSearchResultsSortedByID(t *testing.T) {
	docs := []testDoc{
		{9, "Movie 9", "dragon"},
		{2, "Movie 2", "dragon"},
		{5, "Movie 5", "dragon"},
	}
	s := buildAndReload(t, docs)

	result, err := s.Search(context.Background(), "dragon")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"Movie 2", "Movie 5", "Movie 9"}
	if got := result.Titles(); !reflect.DeepEqual(got, want) {
		t.Errorf("titles = %v, want %v", got, want)
	}
}

func TestSearchBeforeBuild(t *testing.T) {
	store := index.NewStore(tokenizer.New(""), t.TempDir())
	s := New(store, tokenizer.New(""), nil)

	result, err := s.Search(context.Background(), "matrix")
	if !errors.Is(err, apperrors.ErrIndexNotBuilt) {
		t.Errorf("Search before build = %v, want ErrIndexNotBuilt", err)
	}
	if result == nil || len(result.Docs) != 0 {
		t.Errorf("Search before build result = %+v, want empty result", result)
	}
}
