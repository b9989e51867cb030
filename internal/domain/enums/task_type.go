package enums

import "strings"

type TaskType string

const (
	TaskTypeSubscribe TaskType = "subscribe"
	TaskTypeWatch     TaskType = "watch"
	TaskTypeVisit     TaskType = "visit"
)

func ParseTaskType(raw string) (TaskType, bool) {
	switch TaskType(strings.ToLower(strings.TrimSpace(raw))) {
	case TaskTypeSubscribe:
		return TaskTypeSubscribe, true
	case TaskTypeWatch:
		return TaskTypeWatch, true
	case TaskTypeVisit:
		return TaskTypeVisit, true
	default:
		return "", false
	}
}

func (t TaskType) Valid() bool {
	_, ok := ParseTaskType(string(t))
	return ok
}
