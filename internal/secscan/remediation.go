package secscan

// baseRemediation applies to every leaked credential.
var baseRemediation = []string{
	"Revoke or rotate the exposed credential immediately",
	"Remove the secret from source code",
	"Move the value to an environment variable or secrets manager",
	"Update .gitignore so local configuration stays out of commits",
	"Clean git history with BFG or git filter-repo if the secret was committed",
}

// providerRemediation adds provider console steps where we know them.
var providerRemediation = map[string][]string{
	"AWS": {
		"AWS console: IAM > Users > Security credentials > deactivate or delete the key",
		"Create a new access key and update applications",
		"Review CloudTrail for unauthorized access",
		"Prefer IAM roles over long-lived access keys",
	},
	"GitHub": {
		"GitHub: Settings > Developer settings > Personal access tokens > revoke",
		"Generate a new token with minimal scopes",
		"Review repository access and audit logs",
	},
	"Stripe": {
		"Stripe dashboard: Developers > API keys > roll key",
		"Update every application using the key",
		"Review Stripe logs for suspicious activity",
	},
	"Slack": {
		"Slack: app settings > OAuth & Permissions > regenerate token",
		"Review bot activity and workspace access logs",
	},
	"OpenAI": {
		"OpenAI: API keys > delete and create a new key",
		"Review usage logs for unexpected calls",
		"Set usage limits and alerts",
	},
}

// remediationFor returns the rotation checklist for a provider.
func remediationFor(provider string) []string {
	steps := make([]string, 0, len(baseRemediation)+4)
	steps = append(steps, baseRemediation...)
	steps = append(steps, providerRemediation[provider]...)
	return steps
}
