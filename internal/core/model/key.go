package model

import (
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var keyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/albertus-andito/fake-news-detection/triple"))

// KeyFor derives the row key of a triple extracted from sentence. Identical
// inputs always produce the same key; object order does not matter. Every
// field is length-prefixed so no field content can pass for a separator.
func KeyFor(sentence string, t Triple) string {
	objs := slices.Clone(t.Objects)
	slices.Sort(objs)

	var b strings.Builder
	writeField(&b, sentence)
	writeField(&b, t.Subject)
	writeField(&b, t.Relation)
	b.WriteString(strconv.Itoa(len(objs)))
	b.WriteByte('#')
	for _, o := range objs {
		writeField(&b, o)
	}
	return uuid.NewSHA1(keyNamespace, []byte(b.String())).String()
}

func writeField(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}
