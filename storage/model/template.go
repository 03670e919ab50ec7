package model

// FieldName names a certificate field. The set of valid names is the union
// of the fields of all loaded templates.
type FieldName string

// Field names used by the built-in templates
const (
	FieldRecipientName  FieldName = "recipientName"
	FieldDegree         FieldName = "degree"
	FieldField          FieldName = "field"
	FieldInstitution    FieldName = "institution"
	FieldGraduationDate FieldName = "graduationDate"
	FieldGPA            FieldName = "gpa"
	FieldProgram        FieldName = "program"
	FieldCompletionDate FieldName = "completionDate"
	FieldGrade          FieldName = "grade"
	FieldCourseName     FieldName = "courseName"
	FieldScore          FieldName = "score"
	FieldAchievement    FieldName = "achievement"
	FieldOrganization   FieldName = "organization"
	FieldDate           FieldName = "date"
	FieldDescription    FieldName = "description"
)

// Fields maps field names to their values
type Fields map[FieldName]string

// Names returns the field names present in f
func (f Fields) Names() []FieldName {
	names := make([]FieldName, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	return names
}

// Template is a named schema of allowed and required certificate fields.
// Templates are static configuration.
type Template struct {
	Key      string      `yaml:"-" json:"key"`
	Name     string      `yaml:"name" json:"name"`
	Fields   []FieldName `yaml:"fields" json:"fields"`
	Required []FieldName `yaml:"required" json:"required"`
}
