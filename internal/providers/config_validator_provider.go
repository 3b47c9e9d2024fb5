package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"github.com/aidengarrett501/tr3-vrcrawler/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("config validation failed: %s", v.Errors.One())
	}
	return nil
}
