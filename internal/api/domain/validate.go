package domain

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the job enum rules registered
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(JSONFieldName)
		mustRegister(v, "jobstatus", func(fl validator.FieldLevel) bool {
			return Status(fl.Field().String()).IsValid()
		})
		mustRegister(v, "priority", func(fl validator.FieldLevel) bool {
			return Priority(fl.Field().String()).IsValid()
		})
		mustRegister(v, "interviewtype", func(fl validator.FieldLevel) bool {
			return InterviewType(fl.Field().String()).IsValid()
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// JSONFieldName reports a struct field by its json name in validation errors
func JSONFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Normalize trims user supplied strings and lowercases the contact email
func (j *Job) Normalize() {
	j.UserID = strings.TrimSpace(j.UserID)
	j.JobTitle = strings.TrimSpace(j.JobTitle)
	j.Company = strings.TrimSpace(j.Company)
	j.JobLink = strings.TrimSpace(j.JobLink)
	j.Notes = strings.TrimSpace(j.Notes)
	j.Salary = strings.TrimSpace(j.Salary)
	j.Location = strings.TrimSpace(j.Location)

	if j.ContactPerson != nil {
		j.ContactPerson.Name = strings.TrimSpace(j.ContactPerson.Name)
		j.ContactPerson.Email = strings.ToLower(strings.TrimSpace(j.ContactPerson.Email))
		j.ContactPerson.Phone = strings.TrimSpace(j.ContactPerson.Phone)
	}

	for i := range j.InterviewDates {
		j.InterviewDates[i].Round = strings.TrimSpace(j.InterviewDates[i].Round)
		j.InterviewDates[i].Notes = strings.TrimSpace(j.InterviewDates[i].Notes)
	}

	for i := range j.Tags {
		j.Tags[i] = strings.TrimSpace(j.Tags[i])
	}
}

// Validate checks the whole document against the job invariants. It must be
// run on the final state of every write, partial updates included.
func (j *Job) Validate() error {
	err := Validator().Struct(j)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		out.Add(fieldPath(fe), FieldMessage(fe.Field(), fe.Tag()), fe.Value())
	}
	return out
}

// fieldPath drops the struct name prefix: "Job.interviewDates[0].type" -> "interviewDates[0].type"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// FieldMessage returns the user facing message for a failed rule on a job field
func FieldMessage(field, tag string) string {
	switch field {
	case "userId":
		return "User ID is required"
	case "jobTitle":
		if tag == "max" {
			return "Job title must be between 1 and 200 characters"
		}
		return "Job title is required"
	case "company":
		if tag == "max" {
			return "Company name must be between 1 and 100 characters"
		}
		return "Company name is required"
	case "status":
		if tag == "required" {
			return "Status is required"
		}
		return "Status must be one of: Saved, Applied, Interviewing, Offer, Rejected"
	case "jobLink":
		return "Please provide a valid URL"
	case "notes":
		return "Notes cannot exceed 1000 characters"
	case "priority":
		return "Priority must be one of: Low, Medium, High"
	case "type":
		return "Interview type must be one of: Phone, Video, In-Person, Technical, HR, Final"
	}
	return field + " failed on the '" + tag + "' rule"
}
