package settings

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/hazyhaar/passmed2anki/internal/dbopen"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Settings
		want Settings
	}{
		{"empty", Settings{}, Defaults()},
		{"blank", Settings{DeckName: "   ", NoteType: "\t", Tags: " "}, Defaults()},
		{"trimmed", Settings{DeckName: " Cardio ", NoteType: "Cloze", Tags: " a,b "},
			Settings{DeckName: "Cardio", NoteType: "Cloze", Tags: "a,b"}},
		{"partial", Settings{NoteType: "Basic (and reversed card)"},
			Settings{DeckName: DefaultDeckName, NoteType: "Basic (and reversed card)", Tags: DefaultTags}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	got := ParseTags(" a, ,b ,, c")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if ParseTags("") != nil {
		t.Error("empty string should yield no tags")
	}
}

func TestStore_LoadEmptyReturnsDefaults(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	s := NewStore(db, nil)

	if got := s.Load(context.Background()); got != Defaults() {
		t.Errorf("got %+v", got)
	}
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	s := NewStore(db, nil)

	if err := s.Save(ctx, Settings{DeckName: " Renal ", NoteType: "", Tags: "renal,nephro"}); err != nil {
		t.Fatal(err)
	}
	got := s.Load(ctx)
	want := Settings{DeckName: "Renal", NoteType: DefaultNoteType, Tags: "renal,nephro"}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// Overwrite keeps one row per key.
	if err := s.Save(ctx, Settings{DeckName: "Cardio"}); err != nil {
		t.Fatal(err)
	}
	var n int
	db.QueryRow(`SELECT COUNT(*) FROM preferences`).Scan(&n)
	if n != 3 {
		t.Errorf("rows: got %d, want 3", n)
	}
	if got := s.Load(ctx); got.DeckName != "Cardio" || got.Tags != DefaultTags {
		t.Errorf("after overwrite: %+v", got)
	}
}

func TestStore_LoadFailureFallsBack(t *testing.T) {
	// No schema: the SELECT fails.
	db := dbopen.OpenMemory(t)
	s := NewStore(db, nil)

	if got := s.Load(context.Background()); got != Defaults() {
		t.Errorf("got %+v, want defaults", got)
	}

	var nilStore *Store
	if got := nilStore.Load(context.Background()); got != Defaults() {
		t.Errorf("nil store: got %+v", got)
	}
}

func TestStore_WatchReloadsOnSave(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := dbopen.OpenMemory(t, dbopen.WithSchema(Schema))
	s := NewStore(db, nil)

	got := make(chan Settings, 1)
	go s.Watch(ctx, 5*time.Millisecond, func(v Settings) {
		select {
		case got <- v:
		default:
		}
	})

	// Let the watcher seed its version first.
	time.Sleep(20 * time.Millisecond)
	if err := s.Save(ctx, Settings{DeckName: "Neuro"}); err != nil {
		t.Fatal(err)
	}

	select {
	case v := <-got:
		if v.DeckName != "Neuro" {
			t.Errorf("reloaded: %+v", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not report the save")
	}
}
