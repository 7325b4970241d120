package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"emd/internal/structures"
)

// CnfValidator checks a loaded Config section by section against the
// validate struct tags.
type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	sections := map[string]any{
		"webServer":   &cv.conf.WebServer,
		"persistence": &cv.conf.Persistence,
		"logger":      &cv.conf.Logger,
		"ingest":      &cv.conf.Ingest,
	}
	for name, section := range sections {
		v := validate.Struct(section)
		if !v.Validate() {
			return fmt.Errorf("invalid %s config: %s", name, v.Errors.One())
		}
	}
	return nil
}
