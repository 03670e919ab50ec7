package registry

import (
	"time"

	"github.com/pkg/errors"

	"github.com/go-certichain/certichain/storage/model"
)

// Config configures an Engine
type Config struct {
	HashAlgorithm   string
	MaxDocumentSize int
	Revocation      RevocationPolicy
	// Clock defaults to time.Now
	Clock func() time.Time
}

// Engine bundles the registry components that share one ledger and one
// content store.
type Engine struct {
	Directory *Directory
	Templates *TemplateSet
	Content   *ContentAddresser
	Registry  *Registry
	Verifier  *Verifier
}

// NewEngine wires the components on top of the passed backends. If
// templates is nil the default templates are used.
func NewEngine(ledger model.LedgerStore, content model.ContentStore, templates *TemplateSet, cfg Config) (
	*Engine, error,
) {
	if ledger == nil {
		return nil, errors.New("no ledger configured")
	}
	if content == nil {
		return nil, errors.New("no content store configured")
	}
	if templates == nil {
		var err error
		templates, err = NewTemplateSet(DefaultTemplates())
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.Revocation.Validate(); err != nil {
		return nil, err
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	clock := func() time.Time { return now().UTC() }

	addresser, err := NewContentAddresser(content, cfg.HashAlgorithm, cfg.MaxDocumentSize)
	if err != nil {
		return nil, err
	}
	directory := &Directory{
		ledger: ledger,
		now:    clock,
	}
	registry := &Registry{
		ledger:    ledger,
		directory: directory,
		templates: templates,
		content:   addresser,
		policy:    cfg.Revocation,
		now:       clock,
	}
	return &Engine{
		Directory: directory,
		Templates: templates,
		Content:   addresser,
		Registry:  registry,
		Verifier: &Verifier{
			registry: registry,
			content:  addresser,
			now:      clock,
		},
	}, nil
}
