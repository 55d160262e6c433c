package vecindex

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/models"
)

// noteSource marks documents that originate from the flashcard collection.
const noteSource = "collection"

// Metadata keys used to round-trip a note through a document.
const (
	metaGUID  = "guid"
	metaFront = "front"
	metaBack  = "back"
	metaTags  = "tags"
	metaKind  = "kind"
	metaDeck  = "deck"
)

// idNamespace derives stable document ids from note guids, so that
// re-indexing the same collection upserts instead of accumulating duplicates.
var idNamespace = uuid.MustParse("8f3c1d52-9a6b-4c36-b1de-5a41c7d0f9e2")

// FromNote converts a note into its indexable document. The content joins
// front, back, and tags with single spaces so that tag boundaries survive in
// the embedded text. Host tags cannot contain spaces, which lets metadata
// store them space-joined as well.
func FromNote(n models.Note) Document {
	parts := []string{n.Front, n.Back}
	if len(n.Tags) > 0 {
		parts = append(parts, strings.Join(n.Tags, " "))
	}

	meta := map[string]string{
		metaGUID:  n.GUID,
		metaFront: n.Front,
		metaBack:  n.Back,
		metaTags:  strings.Join(n.Tags, " "),
		metaKind:  string(n.Kind),
		metaDeck:  n.Deck,
	}

	id := uuid.NewString()
	if n.GUID != "" {
		id = uuid.NewSHA1(idNamespace, []byte(n.GUID)).String()
	}
	return Document{
		ID:       id,
		Content:  strings.Join(parts, " "),
		Source:   noteSource,
		Metadata: meta,
	}
}

// ToNote reconstructs the note a document was built from.
func ToNote(d Document) (models.Note, error) {
	front, ok := d.Metadata[metaFront]
	if !ok {
		return models.Note{}, fmt.Errorf("vecindex: document %s metadata missing front", d.ID)
	}
	back, ok := d.Metadata[metaBack]
	if !ok {
		return models.Note{}, fmt.Errorf("vecindex: document %s metadata missing back", d.ID)
	}
	var tags []string
	if raw := d.Metadata[metaTags]; raw != "" {
		tags = strings.Fields(raw)
	}
	return models.NewNote(models.Note{
		GUID:  d.Metadata[metaGUID],
		Front: front,
		Back:  back,
		Tags:  tags,
		Kind:  models.Kind(d.Metadata[metaKind]),
		Deck:  d.Metadata[metaDeck],
	})
}
