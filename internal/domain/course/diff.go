package course

// CompletionDelta - прирост завершений между двумя версиями курса.
// Учитываются только увеличения: завершение - это событие, снятие
// отметки не отменяет уже записанную активность.
type CompletionDelta struct {
	Lessons int
	Exams   int
}

// HasNew сообщает, появились ли новые завершения.
func (d CompletionDelta) HasNew() bool {
	return d.Lessons > 0 || d.Exams > 0
}

// DiffCompletions сравнивает число завершений до и после обновления.
// Отрицательные приросты обнуляются.
func DiffCompletions(before, after *Course) CompletionDelta {
	d := CompletionDelta{
		Lessons: after.CompletedLessons() - before.CompletedLessons(),
		Exams:   after.CompletedExams() - before.CompletedExams(),
	}
	if d.Lessons < 0 {
		d.Lessons = 0
	}
	if d.Exams < 0 {
		d.Exams = 0
	}
	return d
}
