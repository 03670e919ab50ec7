package config

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/go-certichain/certichain/registry"
	"github.com/go-certichain/certichain/storage/model"
)

// registryConf configures the certificate registry
//
// YAML example:
//
//	registry:
//	  hash_algorithm: sha2-256
//	  max_document_size: 10485760
//	  revocation:
//	    mode: issuer_or_admin
//	    admins: [registrar]
//	  default_templates: true
//	  templates:
//	    transcript:
//	      name: Transcript of Records
//	      fields: [recipientName, institution, date]
//	      required: [recipientName, institution]
type registryConf struct {
	HashAlgorithm    string                    `yaml:"hash_algorithm"`
	MaxDocumentSize  int                       `yaml:"max_document_size"`
	Revocation       registry.RevocationPolicy `yaml:"revocation"`
	DefaultTemplates bool                      `yaml:"default_templates"`
	// Templates are added to the default templates; a template with the
	// key of a default template replaces it
	Templates map[string]model.Template `yaml:"templates"`

	templateSet *registry.TemplateSet
}

func defaultRegistryConf() registryConf {
	return registryConf{
		HashAlgorithm:    registry.DefaultHashAlgorithm,
		MaxDocumentSize:  registry.DefaultMaxDocumentSize,
		DefaultTemplates: true,
	}
}

func (c *registryConf) validate() error {
	if !slices.Contains(registry.SupportedHashAlgorithms, c.HashAlgorithm) {
		return errors.Errorf(
			"unsupported hash algorithm '%s', must be one of %v", c.HashAlgorithm, registry.SupportedHashAlgorithms,
		)
	}
	if c.MaxDocumentSize <= 0 {
		return errors.New("max_document_size must be positive")
	}
	if err := c.Revocation.Validate(); err != nil {
		return err
	}
	var templates []model.Template
	if c.DefaultTemplates {
		for _, t := range registry.DefaultTemplates() {
			if _, overridden := c.Templates[t.Key]; !overridden {
				templates = append(templates, t)
			}
		}
	}
	for key, t := range c.Templates {
		t.Key = key
		templates = append(templates, t)
	}
	if len(templates) == 0 {
		return errors.New("no templates configured")
	}
	set, err := registry.NewTemplateSet(templates)
	if err != nil {
		return err
	}
	c.templateSet = set
	return nil
}

// TemplateSet returns the templates built from the config
func (c registryConf) TemplateSet() *registry.TemplateSet {
	return c.templateSet
}

// EngineConfig returns the registry.Config for the configured values
func (c registryConf) EngineConfig() registry.Config {
	return registry.Config{
		HashAlgorithm:   c.HashAlgorithm,
		MaxDocumentSize: c.MaxDocumentSize,
		Revocation:      c.Revocation,
	}
}
