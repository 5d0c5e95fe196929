// internal/services/license_generator.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/ip-licensing-portal/internal/models"
)

const (
	inventionSummary = "The licensed invention is a blockchain‑based dynamic consent management system for synthetic media. " +
		"It uses smart contracts, hierarchical consent structures, zero‑knowledge proofs and decentralized oracles " +
		"to ensure secure and flexible governance of synthetic media lifecycle."

	grantOfRights = "Grant of Rights: The licensor hereby grants the licensee a non‑exclusive, non‑transferable license to use the " +
		"invention described above for the stated intended use during the specified duration. All other rights are reserved."

	closingTerms = "By accepting this license you agree to abide by any additional terms and conditions set forth by the licensor."

	promptInvention = "The licensed invention is a blockchain‑based dynamic consent management system for synthetic media that uses smart contracts, hierarchical consent structures, zero‑knowledge proofs and decentralized oracles."

	promptInstruction = "The agreement should summarise the invention, specify the grant of rights, and be clear and concise."
)

// LicenseGenerator drafts agreement text through an LLM gateway.
type LicenseGenerator struct {
	dispatcher Dispatcher
}

func NewLicenseGenerator(dispatcher Dispatcher) *LicenseGenerator {
	return &LicenseGenerator{dispatcher: dispatcher}
}

// BuildLicensePrompt embeds the four form fields and the invention summary.
func BuildLicensePrompt(req models.LicenseRequest) string {
	var sb strings.Builder
	sb.WriteString("Draft a formal licensing agreement based on the following details:\n")
	sb.WriteString("Name: " + req.Name + "\n")
	sb.WriteString("Email: " + req.Email + "\n")
	sb.WriteString("Intended use: " + req.Use + "\n")
	sb.WriteString("Duration: " + req.Duration + "\n")
	sb.WriteString(promptInvention + "\n")
	sb.WriteString(promptInstruction)
	return sb.String()
}

// Generate returns the provider's text and true, or "" and false when the
// provider key is unknown, the call fails, or nothing was generated. It
// never returns an error; callers fall back to GenerateStaticLicense.
func (g *LicenseGenerator) Generate(ctx context.Context, req models.LicenseRequest, providerKey string) (string, bool) {
	logger := logrus.WithField("provider", providerKey)

	if !IsKnownProvider(providerKey) {
		logger.Warn("Skipping generation for unknown provider")
		return "", false
	}

	text, err := g.dispatcher.Dispatch(ctx, providerKey, BuildLicensePrompt(req))
	if err != nil {
		var gwErr *GatewayError
		if errors.As(err, &gwErr) {
			logger.WithField("gateway_error", gwErr.Message).Info("Gateway reported an error, using static template")
		} else {
			logger.WithError(err).Warn("License generation failed, using static template")
		}
		return "", false
	}
	if text == "" {
		logger.Info("Provider returned no text, using static template")
		return "", false
	}

	return text, true
}

// GenerateStaticLicense is the deterministic fallback agreement.
func GenerateStaticLicense(req models.LicenseRequest) string {
	var sb strings.Builder
	sb.WriteString("LICENSE AGREEMENT\n")
	sb.WriteString("Issued to: " + req.Name + " <" + req.Email + ">\n")
	sb.WriteString("Duration: " + req.Duration + "\n")
	sb.WriteString("Intended use: " + req.Use + "\n\n")
	sb.WriteString("Summary of the invention:\n" + inventionSummary + "\n\n")
	sb.WriteString(grantOfRights + "\n\n")
	sb.WriteString(closingTerms)
	return sb.String()
}
