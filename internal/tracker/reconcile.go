package tracker

import (
	"encoding/json"
	"errors"

	"github.com/pbaille/studytrack/internal/logger"
	"github.com/pbaille/studytrack/internal/store"
)

var errNullSnapshot = errors.New("snapshot is null")

// Reconciler aligns a subject with its persisted topic-list snapshot.
type Reconciler struct {
	store store.KeyStore
	log   *logger.Logger
}

func NewReconciler(ks store.KeyStore, log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Reconciler{store: ks, log: log}
}

// Reconcile applies the stored snapshot to s and reports whether one was
// applied. Without a snapshot the default topics stay as they are. A
// snapshot that does not decode to a list of strings is ignored.
func (r *Reconciler) Reconcile(s *SubjectState) bool {
	raw, ok := r.store.Get(ListKey(s.Name))
	if !ok {
		return false
	}
	names, err := decodeSnapshot(raw)
	if err != nil {
		r.log.Warn("ignoring malformed topic snapshot", "subject", s.Name, "error", err)
		return false
	}
	s.ReorderToMatch(names)
	r.log.Debug("reconciled subject", "subject", s.Name, "topics", len(names))
	return true
}

func decodeSnapshot(raw string) ([]string, error) {
	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, err
	}
	if names == nil {
		return nil, errNullSnapshot
	}
	return names, nil
}
