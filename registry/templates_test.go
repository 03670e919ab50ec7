package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-certichain/certichain/storage/model"
)

func defaultSet(t *testing.T) *TemplateSet {
	t.Helper()
	set, err := NewTemplateSet(DefaultTemplates())
	require.NoError(t, err)
	return set
}

func TestTemplateSetList(t *testing.T) {
	set := defaultSet(t)
	list := set.List()
	keys := make([]string, len(list))
	for i, tmpl := range list {
		keys[i] = tmpl.Key
	}
	assert.Equal(t, []string{"achievement", "course", "degree", "diploma"}, keys)

	// callers cannot mutate the set
	list[0].Required = nil
	again, ok := set.Get(list[0].Key)
	require.True(t, ok)
	assert.NotEmpty(t, again.Required)
}

func TestValidate(t *testing.T) {
	set := defaultSet(t)
	tests := []struct {
		name     string
		template string
		fields   model.Fields
		wantErr  error
		want     []model.FieldName
	}{
		{
			name:     "complete",
			template: "degree",
			fields:   degreeFields(),
		},
		{
			name:     "optional field set",
			template: "course",
			fields: model.Fields{
				model.FieldRecipientName:  "a",
				model.FieldCourseName:     "b",
				model.FieldInstitution:    "c",
				model.FieldCompletionDate: "d",
				model.FieldScore:          "98",
			},
		},
		{
			name:     "unknown template",
			template: "transcript",
			fields:   degreeFields(),
			wantErr:  ErrUnknownTemplate,
		},
		{
			name:     "all missing fields reported",
			template: "achievement",
			fields: model.Fields{
				model.FieldRecipientName: "a",
			},
			wantErr: ErrMissingRequiredFields,
			want:    []model.FieldName{model.FieldAchievement, model.FieldOrganization, model.FieldDate},
		},
		{
			name:     "whitespace counts as missing",
			template: "diploma",
			fields: model.Fields{
				model.FieldRecipientName:  "a",
				model.FieldProgram:        "b",
				model.FieldInstitution:    " \t",
				model.FieldCompletionDate: "d",
			},
			wantErr: ErrMissingRequiredFields,
			want:    []model.FieldName{model.FieldInstitution},
		},
		{
			name:     "unknown fields before missing ones",
			template: "diploma",
			fields: model.Fields{
				model.FieldRecipientName: "a",
				model.FieldGPA:           "4.0",
				model.FieldDegree:        "BSc",
			},
			wantErr: ErrUnknownField,
			want:    []model.FieldName{model.FieldDegree, model.FieldGPA},
		},
	}
	for _, tt := range tests {
		t.Run(
			tt.name, func(t *testing.T) {
				err := set.Validate(tt.template, tt.fields)
				if tt.wantErr == nil {
					require.NoError(t, err)
					return
				}
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.want, FieldsOf(err))
			},
		)
	}
}

func TestNewTemplateSetRejectsBrokenTemplates(t *testing.T) {
	tests := map[string][]model.Template{
		"empty":         nil,
		"no key":        {{Fields: []model.FieldName{"a"}}},
		"no fields":     {{Key: "x"}},
		"long key":      {{Key: strings.Repeat("k", 250), Fields: []model.FieldName{"a"}}},
		"empty field":   {{Key: "x", Fields: []model.FieldName{"a", " "}}},
		"dup field":     {{Key: "x", Fields: []model.FieldName{"a", "a"}}},
		"extra require": {{Key: "x", Fields: []model.FieldName{"a"}, Required: []model.FieldName{"b"}}},
		"dup key": {
			{Key: "x", Fields: []model.FieldName{"a"}},
			{Key: "x", Fields: []model.FieldName{"b"}},
		},
	}
	for name, templates := range tests {
		t.Run(
			name, func(t *testing.T) {
				_, err := NewTemplateSet(templates)
				assert.Error(t, err)
			},
		)
	}
}
