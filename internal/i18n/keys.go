// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// License requests
	KeyLicenseTermsNotAccepted = "license.terms_not_accepted"
	KeyLicenseSubmitted        = "license.submitted"
	KeyLicenseNotFound         = "license.not_found"
	KeyLicenseAlreadyReviewed  = "license.already_reviewed"
	KeyLicenseApproved         = "license.approved"
	KeyLicenseRejected         = "license.rejected"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// Store
	KeyStoreUnavailable = "store.unavailable"
)
