package services

import (
	"context"
	"strings"
	"testing"

	"github.com/turnuplagos/turnup-backend/internal/models"
	pgrepo "github.com/turnuplagos/turnup-backend/internal/repositories/postgres"
)

func TestSearchEmptyStoreReturnsEmpty(t *testing.T) {
	svc := NewRetrievalService(&fakeProvider{}, &fakeDocumentRepo{})

	docs, err := svc.Search(context.Background(), "refund policy", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("empty store should return no results, got %d", len(docs))
	}
}

func TestSearchReturnsAtMostK(t *testing.T) {
	repo := &fakeDocumentRepo{hits: []pgrepo.SearchHit{
		{Content: "a", Source: "Faq", Similarity: 0.9},
		{Content: "b", Source: "Faq", Similarity: 0.8},
		{Content: "c", Source: "Guide", Similarity: 0.7},
	}}
	svc := NewRetrievalService(&fakeProvider{}, repo)

	docs, err := svc.Search(context.Background(), "anything", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 results, got %d", len(docs))
	}
	if docs[0].Similarity < docs[1].Similarity {
		t.Errorf("results must be ordered by similarity descending")
	}
}

func TestSearchIdempotent(t *testing.T) {
	repo := &fakeDocumentRepo{hits: []pgrepo.SearchHit{
		{Content: "a", Source: "Faq", Similarity: 0.9},
		{Content: "b", Source: "Guide", Similarity: 0.5},
	}}
	svc := NewRetrievalService(&fakeProvider{}, repo)

	first, err := svc.Search(context.Background(), "same query", 5)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		again, err := svc.Search(context.Background(), "same query", 5)
		if err != nil {
			t.Fatal(err)
		}
		if len(again) != len(first) {
			t.Fatalf("result count changed between identical queries")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("result %d changed between identical queries", j)
			}
		}
	}
}

func TestFormatContextEmpty(t *testing.T) {
	svc := NewRetrievalService(&fakeProvider{}, &fakeDocumentRepo{})

	got := svc.FormatContext(nil)
	if got != "No relevant documentation found." {
		t.Errorf("FormatContext(nil) = %q", got)
	}
}

func TestFormatContextNumbersAndSources(t *testing.T) {
	svc := NewRetrievalService(&fakeProvider{}, &fakeDocumentRepo{})

	got := svc.FormatContext([]models.RetrievedDocument{
		{Content: "Events are approved by admins.", Source: "Faq"},
		{Content: "Post from your dashboard.", Source: ""},
	})

	if !strings.HasPrefix(got, "1. Events are approved by admins. (from: Faq)") {
		t.Errorf("first entry malformed:\n%s", got)
	}
	if !strings.Contains(got, "2. Post from your dashboard.") {
		t.Errorf("second entry missing:\n%s", got)
	}
	if strings.Contains(got, "(from: )") {
		t.Errorf("empty source must not render a from suffix:\n%s", got)
	}
}
