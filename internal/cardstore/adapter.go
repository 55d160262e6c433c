package cardstore

import (
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// TagsKey is the synthetic key under which a note's tags appear in field
// snapshots, space joined. Host field names can never collide with it.
const TagsKey = "__tags__"

// Field names per note model. Cloze notes carry their prompt in Text and any
// extra context in "Back Extra"; everything else uses Front/Back.
const (
	fieldFront     = "Front"
	fieldBack      = "Back"
	fieldText      = "Text"
	fieldBackExtra = "Back Extra"
)

// ToDomain maps a host note onto the domain representation, picking the
// field pair that matches its model.
func ToDomain(n *Note) models.Note {
	dn := models.Note{
		GUID: n.GUID,
		Tags: append([]string(nil), n.Tags...),
		Deck: n.Deck,
	}
	if n.Model == ModelCloze {
		dn.Kind = models.KindCloze
		dn.Front = n.Fields[fieldText]
		dn.Back = n.Fields[fieldBackExtra]
	} else {
		dn.Kind = models.KindBasic
		dn.Front = n.Fields[fieldFront]
		dn.Back = n.Fields[fieldBack]
	}
	return dn
}

// Snapshot flattens a note into a single map: every field verbatim plus the
// tags under TagsKey.
func Snapshot(n *Note) map[string]string {
	snap := make(map[string]string, len(n.Fields)+1)
	for k, v := range n.Fields {
		snap[k] = v
	}
	snap[TagsKey] = strings.Join(n.Tags, " ")
	return snap
}

// ApplyDomain writes a domain note's content back into the host note's
// fields. Tags stay untouched: the host owns them.
func ApplyDomain(n *Note, dn models.Note) {
	if n.Fields == nil {
		n.Fields = make(map[string]string)
	}
	if n.Model == ModelCloze {
		n.Fields[fieldText] = dn.Front
		n.Fields[fieldBackExtra] = dn.Back
	} else {
		n.Fields[fieldFront] = dn.Front
		n.Fields[fieldBack] = dn.Back
	}
}
