package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslations(t *testing.T) {
	require.NoError(t, Initialize("en"))

	assert.Equal(t, "You must accept the license terms to proceed.", T("en", KeyLicenseTermsNotAccepted))
	assert.Equal(t, "您必須接受授權條款才能繼續。", T("zh_TW", KeyLicenseTermsNotAccepted))
	assert.Equal(t, "Invalid index.", T("en", KeyValidationInvalid, "index"))

	// Unknown languages fall back to the default, unknown keys to the key.
	assert.Equal(t, "License request approved.", T("fr", KeyLicenseApproved))
	assert.Equal(t, "missing.key", T("en", "missing.key"))

	assert.ElementsMatch(t, []string{"en", "zh_TW"}, GetSupportedLanguages())
}
