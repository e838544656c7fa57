package tracker

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pbaille/studytrack/internal/domain"
	"github.com/pbaille/studytrack/internal/store"
)

const dateLayout = "2006-01-02"

// LoadTopic reads a topic's fields from ks. Missing flags are false and a
// missing or empty date is absent.
func LoadTopic(ks store.KeyStore, subject, topic string) *domain.TopicRecord {
	rec := &domain.TopicRecord{Subject: subject, Topic: topic}
	rec.Reviewed = loadFlag(ks, FieldKey(subject, topic, domain.FieldReviewed))
	rec.Studied = loadFlag(ks, FieldKey(subject, topic, domain.FieldStudied))
	if d, ok := ks.Get(FieldKey(subject, topic, domain.FieldDate)); ok {
		rec.Date = d
	}
	return rec
}

func loadFlag(ks store.KeyStore, key string) bool {
	v, ok := ks.Get(key)
	return ok && v == "true"
}

// SetField updates one field in memory and writes it through to ks.
// Flag values are parsed with strconv.ParseBool. An empty date removes the
// stored date.
func SetField(ks store.KeyStore, rec *domain.TopicRecord, field domain.Field, value string) error {
	key := FieldKey(rec.Subject, rec.Topic, field)
	switch field {
	case domain.FieldReviewed, domain.FieldStudied:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", field, err)
		}
		if field == domain.FieldReviewed {
			rec.Reviewed = b
		} else {
			rec.Studied = b
		}
		ks.Set(key, strconv.FormatBool(b))
	case domain.FieldDate:
		rec.Date = value
		if value == "" {
			ks.Remove(key)
		} else {
			ks.Set(key, value)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// DeleteTopic removes every persisted key of the topic. Absent keys are fine.
func DeleteTopic(ks store.KeyStore, subject, topic string) {
	for _, f := range domain.Fields {
		ks.Remove(FieldKey(subject, topic, f))
	}
}

// ParseField maps user-facing names onto fields ("studied" and "class" both
// mean the studied flag).
func ParseField(name string) (domain.Field, error) {
	switch name {
	case "reviewed":
		return domain.FieldReviewed, nil
	case "studied", "class":
		return domain.FieldStudied, nil
	case "date":
		return domain.FieldDate, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// ValidDate checks the ISO calendar date format used by date inputs. The
// empty string is valid and means "no date".
func ValidDate(date string) error {
	if date == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}
