package export

import (
	"errors"
	"fmt"

	"github.com/unidoc/unipdf/v3/common/license"
)

// LoadPDFLicense registers the unipdf metered license key. unipdf refuses to
// write documents without one, so this must run before any PDF export; HTML
// rendering does not need it.
func LoadPDFLicense(apiKey string) error {
	if apiKey == "" {
		return errors.New("PDF rendering requires a unipdf license key; set UNIDOC_LICENSE_API_KEY")
	}
	if err := license.SetMeteredKey(apiKey); err != nil {
		return fmt.Errorf("register PDF license key: %w", err)
	}
	return nil
}
