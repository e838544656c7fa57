package tracker

import (
	"encoding/json"
	"strings"

	"github.com/pbaille/studytrack/internal/domain"
	"github.com/pbaille/studytrack/internal/store"
)

// SubjectState is the ordered list of topics of one subject. Topic names
// are unique within a subject.
type SubjectState struct {
	Name   string
	store  store.KeyStore
	topics []*domain.TopicRecord
}

// InitFromDefaults loads one record per default topic name. Repeated names
// keep their first position.
func InitFromDefaults(ks store.KeyStore, subject string, names []string) *SubjectState {
	s := &SubjectState{Name: subject, store: ks}
	for _, name := range names {
		if _, i := s.find(name); i >= 0 {
			continue
		}
		s.topics = append(s.topics, LoadTopic(ks, subject, name))
	}
	return s
}

// FromView rebuilds a subject from a rendered view. Only the topic names are
// taken from the view; field values always come from the store.
func FromView(ks store.KeyStore, v domain.SubjectView) *SubjectState {
	names := make([]string, len(v.Topics))
	for i, t := range v.Topics {
		names[i] = t.Name
	}
	return InitFromDefaults(ks, v.Name, names)
}

// Topics returns the records in display order.
func (s *SubjectState) Topics() []*domain.TopicRecord {
	out := make([]*domain.TopicRecord, len(s.topics))
	copy(out, s.topics)
	return out
}

// Names returns topic names in display order.
func (s *SubjectState) Names() []string {
	names := make([]string, len(s.topics))
	for i, t := range s.topics {
		names[i] = t.Topic
	}
	return names
}

// Topic looks a record up by name.
func (s *SubjectState) Topic(name string) (*domain.TopicRecord, bool) {
	rec, i := s.find(name)
	return rec, i >= 0
}

func (s *SubjectState) find(name string) (*domain.TopicRecord, int) {
	for i, t := range s.topics {
		if t.Topic == name {
			return t, i
		}
	}
	return nil, -1
}

// Add appends a fresh topic and persists the snapshot. The name is trimmed;
// empty and duplicate names are rejected without touching any state.
func (s *SubjectState) Add(text string) (*domain.TopicRecord, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return nil, ErrEmptyTopic
	}
	if _, i := s.find(name); i >= 0 {
		return nil, ErrDuplicateTopic
	}

	// Keys left over from a topic hidden by reconcile would otherwise
	// resurface on the next load.
	DeleteTopic(s.store, s.Name, name)
	rec := &domain.TopicRecord{Subject: s.Name, Topic: name}
	s.topics = append(s.topics, rec)
	s.persistSnapshot()
	return rec, nil
}

// Remove deletes the topic, its persisted fields, and updates the snapshot.
func (s *SubjectState) Remove(name string) error {
	_, i := s.find(name)
	if i < 0 {
		return ErrUnknownTopic
	}
	DeleteTopic(s.store, s.Name, name)
	s.topics = append(s.topics[:i], s.topics[i+1:]...)
	s.persistSnapshot()
	return nil
}

// ReorderToMatch makes the topic sequence equal to names. Existing records
// are moved, missing ones are loaded from the store (all defaults when
// nothing is stored), and records not named are dropped from the sequence
// while their field keys stay in the store. Repeated names count once.
func (s *SubjectState) ReorderToMatch(names []string) {
	next := make([]*domain.TopicRecord, 0, len(names))
	placed := make(map[string]bool, len(names))
	for _, name := range names {
		if placed[name] {
			continue
		}
		placed[name] = true
		if rec, i := s.find(name); i >= 0 {
			next = append(next, rec)
			continue
		}
		next = append(next, LoadTopic(s.store, s.Name, name))
	}
	s.topics = next
	s.persistSnapshot()
}

func (s *SubjectState) persistSnapshot() {
	b, err := json.Marshal(s.Names())
	if err != nil {
		// a []string always marshals
		return
	}
	s.store.Set(ListKey(s.Name), string(b))
}

// View projects the subject for rendering.
func (s *SubjectState) View() domain.SubjectView {
	v := domain.SubjectView{
		Name:     s.Name,
		Topics:   make([]domain.TopicView, len(s.topics)),
		Progress: SubjectProgress(s),
	}
	for i, t := range s.topics {
		v.Topics[i] = domain.TopicView{
			Name:     t.Topic,
			Reviewed: t.Reviewed,
			Studied:  t.Studied,
			Date:     t.Date,
			Complete: t.Complete(),
		}
	}
	return v
}
