package tracker

import (
	"fmt"
	"strconv"

	"github.com/pbaille/studytrack/internal/catalog"
	"github.com/pbaille/studytrack/internal/domain"
	"github.com/pbaille/studytrack/internal/logger"
	"github.com/pbaille/studytrack/internal/store"
)

// Controller applies user actions to the subjects it owns. Every action
// mutates, persists, and recomputes progress before it returns. A
// Controller is not safe for concurrent use; callers serialize actions.
type Controller struct {
	store      store.KeyStore
	log        *logger.Logger
	reconciler *Reconciler
	subjects   []*SubjectState
}

// NewController builds every subject from its default topics and then
// restores the persisted topic lists.
func NewController(ks store.KeyStore, defaults []catalog.Subject, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.NewNop()
	}
	c := &Controller{
		store:      ks,
		log:        log,
		reconciler: NewReconciler(ks, log),
	}
	for _, d := range defaults {
		if c.subject(d.Name) != nil {
			log.Warn("duplicate subject in catalog", "subject", d.Name)
			continue
		}
		c.subjects = append(c.subjects, InitFromDefaults(ks, d.Name, d.Topics))
	}
	c.ReconcileAll()
	return c
}

func (c *Controller) subject(name string) *SubjectState {
	for _, s := range c.subjects {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (c *Controller) lookup(subject, topic string) (*SubjectState, *domain.TopicRecord, error) {
	s := c.subject(subject)
	if s == nil {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSubject, subject)
	}
	rec, ok := s.Topic(topic)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q in %q", ErrUnknownTopic, topic, subject)
	}
	return s, rec, nil
}

// Subjects lists subject names in display order.
func (c *Controller) Subjects() []string {
	names := make([]string, len(c.subjects))
	for i, s := range c.subjects {
		names[i] = s.Name
	}
	return names
}

// Subject returns the state of one subject.
func (c *Controller) Subject(name string) (*SubjectState, error) {
	s := c.subject(name)
	if s == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubject, name)
	}
	return s, nil
}

func (c *Controller) SetReviewed(subject, topic string, v bool) (domain.Update, error) {
	return c.setField(subject, topic, domain.FieldReviewed, strconv.FormatBool(v))
}

func (c *Controller) SetStudied(subject, topic string, v bool) (domain.Update, error) {
	return c.setField(subject, topic, domain.FieldStudied, strconv.FormatBool(v))
}

// SetDate stores the review date as given; an empty date clears it.
func (c *Controller) SetDate(subject, topic, date string) (domain.Update, error) {
	return c.setField(subject, topic, domain.FieldDate, date)
}

// Toggle flips the reviewed or studied flag.
func (c *Controller) Toggle(subject, topic string, field domain.Field) (domain.Update, error) {
	_, rec, err := c.lookup(subject, topic)
	if err != nil {
		return domain.Update{}, err
	}
	switch field {
	case domain.FieldReviewed:
		return c.SetReviewed(subject, topic, !rec.Reviewed)
	case domain.FieldStudied:
		return c.SetStudied(subject, topic, !rec.Studied)
	}
	return domain.Update{}, fmt.Errorf("%w: cannot toggle %q", ErrUnknownField, field)
}

func (c *Controller) setField(subject, topic string, field domain.Field, value string) (domain.Update, error) {
	s, rec, err := c.lookup(subject, topic)
	if err != nil {
		return domain.Update{}, err
	}
	if err := SetField(c.store, rec, field, value); err != nil {
		return domain.Update{}, err
	}
	c.log.Debug("field updated", "op", "set", "subject", subject, "topic", topic, "field", string(field), "value", value)
	return c.update(s), nil
}

// Add appends a topic to a subject.
func (c *Controller) Add(subject, text string) (domain.Update, error) {
	s, err := c.Subject(subject)
	if err != nil {
		return domain.Update{}, err
	}
	rec, err := s.Add(text)
	if err != nil {
		return domain.Update{}, err
	}
	c.log.Debug("topic added", "op", "add", "subject", subject, "topic", rec.Topic)
	return c.update(s), nil
}

// Remove deletes a topic and its stored fields.
func (c *Controller) Remove(subject, topic string) (domain.Update, error) {
	s, err := c.Subject(subject)
	if err != nil {
		return domain.Update{}, err
	}
	if err := s.Remove(topic); err != nil {
		return domain.Update{}, fmt.Errorf("%w: %q in %q", err, topic, subject)
	}
	c.log.Debug("topic removed", "op", "remove", "subject", subject, "topic", topic)
	return c.update(s), nil
}

// Reconcile re-applies the stored snapshot of one subject.
func (c *Controller) Reconcile(subject string) (domain.Update, error) {
	s, err := c.Subject(subject)
	if err != nil {
		return domain.Update{}, err
	}
	c.reconciler.Reconcile(s)
	return c.update(s), nil
}

// ReconcileAll re-applies the stored snapshot of every subject.
func (c *Controller) ReconcileAll() {
	for _, s := range c.subjects {
		c.reconciler.Reconcile(s)
	}
}

func (c *Controller) SubjectProgress(subject string) (domain.Progress, error) {
	s, err := c.Subject(subject)
	if err != nil {
		return domain.Progress{}, err
	}
	return SubjectProgress(s), nil
}

func (c *Controller) GlobalProgress() domain.Progress {
	return GlobalProgress(c.subjects)
}

// Board projects every subject for rendering.
func (c *Controller) Board() domain.BoardView {
	b := domain.BoardView{
		Subjects: make([]domain.SubjectView, len(c.subjects)),
		Global:   c.GlobalProgress(),
	}
	for i, s := range c.subjects {
		b.Subjects[i] = s.View()
	}
	return b
}

func (c *Controller) update(s *SubjectState) domain.Update {
	return domain.Update{Subject: s.View(), Global: c.GlobalProgress()}
}
