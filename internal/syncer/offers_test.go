package syncer

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// scriptedPager plays back a fixed page sequence, recording the cursors it
// was asked for.
type scriptedPager struct {
	pages   []OfferPage
	cursors []string
	failAt  int // 1-based call index that errors, 0 = never
	calls   int
}

var errPageDown = errors.New("page down")

func (p *scriptedPager) FetchPage(_ context.Context, cursor string) (OfferPage, error) {
	p.calls++
	p.cursors = append(p.cursors, cursor)
	if p.failAt > 0 && p.calls == p.failAt {
		return OfferPage{}, errPageDown
	}
	return p.pages[p.calls-1], nil
}

func TestListOfferIDsCursorTermination(t *testing.T) {
	pager := &scriptedPager{pages: []OfferPage{
		{IDs: []string{"a", "b"}, NextCursor: "t1"},
		{IDs: []string{"c"}, NextCursor: "t2"},
		{IDs: []string{"d"}, Done: true},
	}}
	ids, err := ListOfferIDs(context.Background(), pager)
	if err != nil {
		t.Fatalf("ListOfferIDs: %v", err)
	}
	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	if want := []string{"", "t1", "t2"}; !reflect.DeepEqual(pager.cursors, want) {
		t.Fatalf("cursors: got %v, want %v", pager.cursors, want)
	}
}

func TestListOfferIDsFirstPageDone(t *testing.T) {
	pager := &scriptedPager{pages: []OfferPage{{IDs: []string{"only"}, Done: true}}}
	ids, err := ListOfferIDs(context.Background(), pager)
	if err != nil || len(ids) != 1 {
		t.Fatalf("got %v, %v", ids, err)
	}
	if pager.calls != 1 {
		t.Fatalf("expected single fetch, got %d", pager.calls)
	}
}

func TestListOfferIDsKeepsDuplicates(t *testing.T) {
	pager := &scriptedPager{pages: []OfferPage{
		{IDs: []string{"x", "x"}, NextCursor: "n"},
		{IDs: []string{"x"}, Done: true},
	}}
	ids, err := ListOfferIDs(context.Background(), pager)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 3 {
		t.Fatalf("expected duplicates preserved, got %v", ids)
	}
}

func TestListOfferIDsPropagatesFetchError(t *testing.T) {
	pager := &scriptedPager{
		pages:  []OfferPage{{IDs: []string{"a"}, NextCursor: "t1"}, {}},
		failAt: 2,
	}
	_, err := ListOfferIDs(context.Background(), pager)
	if !errors.Is(err, errPageDown) {
		t.Fatalf("expected fetch error to propagate, got %v", err)
	}
}
