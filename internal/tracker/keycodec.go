package tracker

import (
	"strings"

	"github.com/pbaille/studytrack/internal/domain"
)

const (
	keySep        = "::"
	listKeyPrefix = "__customList" + keySep
)

// Components are escaped so that they never contain an unescaped ':'.
// Plain names (the common case) encode unchanged, giving keys like
// "Math::Algebra::reviewed".
var keyEscaper = strings.NewReplacer(`\`, `\\`, `:`, `\:`)

// FieldKey is the storage key of one field of one topic.
func FieldKey(subject, topic string, field domain.Field) string {
	return keyEscaper.Replace(subject) + keySep + keyEscaper.Replace(topic) + keySep + string(field)
}

// ListKey is the storage key of a subject's topic-list snapshot. A list key
// holds one unescaped separator while field keys hold two, so the two key
// spaces never meet.
func ListKey(subject string) string {
	return listKeyPrefix + keyEscaper.Replace(subject)
}
