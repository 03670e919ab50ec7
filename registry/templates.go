package registry

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"tideland.dev/go/slices"

	"github.com/go-certichain/certichain/storage/model"
)

// DefaultTemplates returns the built-in certificate templates
func DefaultTemplates() []model.Template {
	return []model.Template{
		{
			Key:  "degree",
			Name: "Degree Certificate",
			Fields: []model.FieldName{
				model.FieldRecipientName, model.FieldDegree, model.FieldField, model.FieldInstitution,
				model.FieldGraduationDate, model.FieldGPA,
			},
			Required: []model.FieldName{
				model.FieldRecipientName, model.FieldDegree, model.FieldField, model.FieldInstitution,
				model.FieldGraduationDate,
			},
		},
		{
			Key:  "diploma",
			Name: "Diploma Certificate",
			Fields: []model.FieldName{
				model.FieldRecipientName, model.FieldProgram, model.FieldInstitution, model.FieldCompletionDate,
				model.FieldGrade,
			},
			Required: []model.FieldName{
				model.FieldRecipientName, model.FieldProgram, model.FieldInstitution, model.FieldCompletionDate,
			},
		},
		{
			Key:  "course",
			Name: "Course Completion",
			Fields: []model.FieldName{
				model.FieldRecipientName, model.FieldCourseName, model.FieldInstitution, model.FieldCompletionDate,
				model.FieldScore,
			},
			Required: []model.FieldName{
				model.FieldRecipientName, model.FieldCourseName, model.FieldInstitution, model.FieldCompletionDate,
			},
		},
		{
			Key:  "achievement",
			Name: "Achievement Certificate",
			Fields: []model.FieldName{
				model.FieldRecipientName, model.FieldAchievement, model.FieldOrganization, model.FieldDate,
				model.FieldDescription,
			},
			Required: []model.FieldName{
				model.FieldRecipientName, model.FieldAchievement, model.FieldOrganization, model.FieldDate,
			},
		},
	}
}

// TemplateSet is the immutable set of templates loaded at start.
type TemplateSet struct {
	templates map[string]model.Template
	keys      []string
}

// NewTemplateSet checks the passed templates and returns a TemplateSet
func NewTemplateSet(templates []model.Template) (*TemplateSet, error) {
	if len(templates) == 0 {
		return nil, errors.New("no certificate templates configured")
	}
	set := &TemplateSet{templates: make(map[string]model.Template, len(templates))}
	for _, t := range templates {
		if t.Key == "" {
			return nil, errors.New("template without key")
		}
		if !fitsIndexKey(templateIndexPrefix(t.Key)) {
			return nil, errors.Errorf("template key '%s' is too long", t.Key)
		}
		if _, dup := set.templates[t.Key]; dup {
			return nil, errors.Errorf("template '%s' defined twice", t.Key)
		}
		if len(t.Fields) == 0 {
			return nil, errors.Errorf("template '%s' has no fields", t.Key)
		}
		seen := make(map[model.FieldName]struct{}, len(t.Fields))
		for _, f := range t.Fields {
			if strings.TrimSpace(string(f)) == "" {
				return nil, errors.Errorf("template '%s' has an empty field name", t.Key)
			}
			if _, dup := seen[f]; dup {
				return nil, errors.Errorf("template '%s' lists field '%s' twice", t.Key, f)
			}
			seen[f] = struct{}{}
		}
		if extra := slices.Subtract(t.Required, t.Fields); len(extra) > 0 {
			return nil, errors.Errorf("template '%s' requires undefined field(s): %s", t.Key, joinFields(extra))
		}
		set.templates[t.Key] = model.Template{
			Key:      t.Key,
			Name:     t.Name,
			Fields:   append([]model.FieldName(nil), t.Fields...),
			Required: append([]model.FieldName(nil), t.Required...),
		}
		set.keys = append(set.keys, t.Key)
	}
	sort.Strings(set.keys)
	return set, nil
}

// Get returns the template for key
func (s *TemplateSet) Get(key string) (model.Template, bool) {
	t, ok := s.templates[key]
	if !ok {
		return model.Template{}, false
	}
	return copyTemplate(t), true
}

// List returns all templates ordered by key
func (s *TemplateSet) List() []model.Template {
	out := make([]model.Template, len(s.keys))
	for i, k := range s.keys {
		out[i] = copyTemplate(s.templates[k])
	}
	return out
}

// Validate checks fields against the template key. It reports every unknown
// field and every missing required field, not just the first one.
func (s *TemplateSet) Validate(key string, fields model.Fields) error {
	t, ok := s.templates[key]
	if !ok {
		return errors.Wrapf(ErrUnknownTemplate, "'%s'", key)
	}
	names := fields.Names()
	if unknown := slices.Subtract(names, t.Fields); len(unknown) > 0 {
		sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
		return UnknownFieldError{
			Template: key,
			Fields:   unknown,
		}
	}
	present := make([]model.FieldName, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(fields[n]) != "" {
			present = append(present, n)
		}
	}
	if missing := slices.Subtract(t.Required, present); len(missing) > 0 {
		return MissingRequiredFieldsError{
			Template: key,
			Fields:   missing,
		}
	}
	return nil
}

func copyTemplate(t model.Template) model.Template {
	t.Fields = append([]model.FieldName(nil), t.Fields...)
	t.Required = append([]model.FieldName(nil), t.Required...)
	return t
}
