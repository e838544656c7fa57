package tracker

import "github.com/pbaille/studytrack/internal/domain"

// SubjectProgress counts complete topics of one subject.
func SubjectProgress(s *SubjectState) domain.Progress {
	done := 0
	for _, t := range s.topics {
		if t.Complete() {
			done++
		}
	}
	return newProgress(done, len(s.topics))
}

// GlobalProgress is computed over all topics of all subjects together, so
// larger subjects weigh more.
func GlobalProgress(states []*SubjectState) domain.Progress {
	done, total := 0, 0
	for _, s := range states {
		p := SubjectProgress(s)
		done += p.Done
		total += p.Total
	}
	return newProgress(done, total)
}

func newProgress(done, total int) domain.Progress {
	return domain.Progress{Done: done, Total: total, Pct: percent(done, total)}
}

// percent is round(100*done/total) with halves rounded up, in integers.
func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*done + total) / (2 * total)
}
