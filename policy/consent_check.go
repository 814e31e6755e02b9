package policy

import (
	"strings"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// evaluateConsentTriggers runs the ordered consent check. It is only
// meaningful once the effective permission and target checks have both
// passed. It returns true, with st.consentReasons populated, if a consent
// request must be issued.
func evaluateConsentTriggers(st *evalState) bool {
	dest := st.uc.Target.Destination

	if st.uc.DataUsage == mcpptype.UsageDisplay && st.uc.Target.Type == mcpptype.TargetClient {
		return false
	}

	overrides := toolConsentOverrides(st.tool)
	if overrides != nil {
		if overrides.Never {
			return false
		}
		if overrides.Always {
			st.consentReasons = []string{"always_require_consent"}
			return true
		}
		if containsString(overrides.AllowedWithoutConsent, dest) {
			return false
		}
	}

	if containsString(st.cfg.TrustedTargets, dest) {
		return false
	}
	if matchesTrustedDomain(st.cfg.TrustedDomains, dest) {
		return false
	}

	category, hasCategory := st.cfg.TargetCategories[dest]
	if hasCategory && !category.RequiresConsent {
		return false
	}

	var reasons []string
	triggers := st.cfg.RequireConsentFor

	if triggers.AnyTransfer && st.uc.DataUsage == mcpptype.UsageTransfer {
		reasons = append(reasons, "any_transfer")
	}
	if triggers.SensitiveDataTransfer && st.tool != nil && st.tool.IsSensitive {
		reasons = append(reasons, "sensitive_data_transfer")
	}
	if triggers.LLMDataAccess && st.uc.Target.Type == mcpptype.TargetLLM {
		reasons = append(reasons, "llm_data_access")
	}
	if st.uc.Target.Type == mcpptype.TargetLLM && hasCategory && category.DataRetentionPermanent() {
		reasons = append(reasons, "permanent_data_retention")
	}
	if triggers.ExternalServerTransfer && st.uc.Target.Type == mcpptype.TargetServer &&
		hasCategory && category.Category == mcpptype.CategoryExternal {
		reasons = append(reasons, "external_server_transfer")
	}

	if len(reasons) == 0 {
		return false
	}
	st.consentReasons = reasons
	return true
}

func toolConsentOverrides(tool *mcpptype.Tool) *mcpptype.ConsentOverrides {
	if tool == nil || tool.DataPolicy == nil {
		return nil
	}
	return &tool.DataPolicy.ConsentOverrides
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// matchesTrustedDomain reports whether dest matches a literal entry or a
// "*.suffix" wildcard entry in domains.
func matchesTrustedDomain(domains []string, dest string) bool {
	for _, d := range domains {
		if d == dest {
			return true
		}
		if suffix, ok := strings.CutPrefix(d, "*."); ok {
			if strings.HasSuffix(dest, "."+suffix) || dest == suffix {
				return true
			}
		}
	}
	return false
}
