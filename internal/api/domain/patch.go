package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Optional is a JSON field that distinguishes "absent" from "null" from a value.
// Absent leaves the target unchanged; null clears it.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional explicitly set to null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Present reports whether a non-null value was supplied
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// JobPatch is a partial update of the mutable job fields
type JobPatch struct {
	JobTitle        Optional[string]
	Company         Optional[string]
	Status          Optional[Status]
	JobLink         Optional[string]
	Notes           Optional[string]
	Salary          Optional[string]
	Location        Optional[string]
	ApplicationDate Optional[time.Time]
	Deadline        Optional[time.Time]
	ContactPerson   Optional[ContactPerson]
	InterviewDates  Optional[[]Interview]
	Tags            Optional[[]string]
	Priority        Optional[Priority]
}

// StatusPatch builds a patch that only touches the status
func StatusPatch(s Status) JobPatch {
	return JobPatch{Status: Some(s)}
}

// Apply writes every set field of p onto j. Null clears the field.
func (p JobPatch) Apply(j *Job) {
	applyValue(&j.JobTitle, p.JobTitle)
	applyValue(&j.Company, p.Company)
	applyValue(&j.Status, p.Status)
	applyValue(&j.JobLink, p.JobLink)
	applyValue(&j.Notes, p.Notes)
	applyValue(&j.Salary, p.Salary)
	applyValue(&j.Location, p.Location)
	applyValue(&j.Priority, p.Priority)
	applyPointer(&j.ApplicationDate, p.ApplicationDate)
	applyPointer(&j.Deadline, p.Deadline)
	applyPointer(&j.ContactPerson, p.ContactPerson)

	if p.InterviewDates.Set {
		j.InterviewDates = make([]Interview, 0, len(p.InterviewDates.Value))
		for _, iv := range p.InterviewDates.Value {
			iv.applyDefaults()
			j.InterviewDates = append(j.InterviewDates, iv)
		}
	}
	if p.Tags.Set {
		j.Tags = append([]string{}, p.Tags.Value...)
	}
}

func applyValue[T any](dst *T, o Optional[T]) {
	if o.Set {
		*dst = o.Value
	}
}

func applyPointer[T any](dst **T, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Null {
		*dst = nil
		return
	}
	v := o.Value
	*dst = &v
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate accepts the ISO-8601 forms clients send: full timestamps with
// offset, local timestamps (read as UTC) and calendar dates.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
