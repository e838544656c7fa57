package domain

// Field names one persisted attribute of a topic
type Field string

const (
	FieldReviewed Field = "reviewed"
	// FieldStudied is stored as "class" for compatibility with existing page data.
	FieldStudied Field = "class"
	FieldDate    Field = "date"
)

// Fields lists every persisted field of a topic
var Fields = []Field{FieldReviewed, FieldStudied, FieldDate}

// TopicRecord is the in-memory state of one topic row
type TopicRecord struct {
	Subject  string `json:"subject"`
	Topic    string `json:"topic"`
	Reviewed bool   `json:"reviewed"`
	Studied  bool   `json:"studied"`
	// Date is empty when absent
	Date string `json:"date,omitempty"`
}

// Complete reports whether both flags are set. The date plays no part.
func (r *TopicRecord) Complete() bool {
	return r.Reviewed && r.Studied
}

// Progress is a completion summary
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
	Pct   int `json:"pct"`
}

// TopicView is what a renderer needs for one topic row
type TopicView struct {
	Name     string `json:"name"`
	Reviewed bool   `json:"reviewed"`
	Studied  bool   `json:"studied"`
	Date     string `json:"date,omitempty"`
	Complete bool   `json:"complete"`
}

// SubjectView is a subject with its rows and progress
type SubjectView struct {
	Name     string      `json:"name"`
	Topics   []TopicView `json:"topics"`
	Progress Progress    `json:"progress"`
}

// BoardView is the whole page
type BoardView struct {
	Subjects []SubjectView `json:"subjects"`
	Global   Progress      `json:"global"`
}

// Update is returned after every mutation: the affected subject and the
// recomputed global progress.
type Update struct {
	Subject SubjectView `json:"subject"`
	Global  Progress    `json:"global"`
}
