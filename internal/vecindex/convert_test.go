package vecindex

import (
	"strings"
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func TestFromNote_RoundTrip(t *testing.T) {
	note, err := models.NewNote(models.Note{
		GUID:  "guid-1",
		Front: "What is a goroutine?",
		Back:  "A lightweight thread managed by the runtime",
		Tags:  []string{"go", "concurrency"},
		Kind:  models.KindBasic,
		Deck:  "Programming",
	})
	if err != nil {
		t.Fatalf("NewNote: %v", err)
	}

	got, err := ToNote(FromNote(note))
	if err != nil {
		t.Fatalf("ToNote: %v", err)
	}
	if got.GUID != note.GUID {
		t.Errorf("guid = %q, want %q", got.GUID, note.GUID)
	}
	if got.Front != note.Front || got.Back != note.Back {
		t.Errorf("content = %q/%q, want %q/%q", got.Front, got.Back, note.Front, note.Back)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" || got.Tags[1] != "concurrency" {
		t.Errorf("tags = %v, want %v", got.Tags, note.Tags)
	}
	if got.Kind != models.KindBasic {
		t.Errorf("kind = %q, want %q", got.Kind, models.KindBasic)
	}
	if got.Deck != "Programming" {
		t.Errorf("deck = %q, want %q", got.Deck, "Programming")
	}
}

func TestFromNote_TagsAreSpaceJoined(t *testing.T) {
	note, _ := models.NewNote(models.Note{
		Front: "Q",
		Back:  "A",
		Tags:  []string{"python", "programming"},
	})
	doc := FromNote(note)
	if !strings.Contains(doc.Content, "python programming") {
		t.Errorf("content %q missing space-joined tags", doc.Content)
	}
	if strings.Contains(doc.Content, "pythonprogramming") {
		t.Errorf("content %q has run-together tags", doc.Content)
	}
}

func TestFromNote_StableIDForSameGUID(t *testing.T) {
	note, _ := models.NewNote(models.Note{GUID: "g", Front: "Q", Back: "A"})
	a := FromNote(note)
	b := FromNote(note)
	if a.ID != b.ID {
		t.Errorf("ids differ for same guid: %q vs %q", a.ID, b.ID)
	}
	if a.ID == note.GUID {
		t.Error("document id must not be the note guid itself")
	}
}

func TestToNote_MissingFieldsFails(t *testing.T) {
	_, err := ToNote(Document{ID: "d", Metadata: map[string]string{"front": "only front"}})
	if err == nil {
		t.Fatal("expected error for metadata without back")
	}
}
