package mcpptype

// TargetList models a target allow/deny list that can also be the
// sentinel "none" (deny everything of this type).
type TargetList struct {
	// None, when true, means "no targets of this type are permitted",
	// overriding List.
	None bool
	List []string
}

// Contains reports whether destination appears in the list. It does not
// interpret None; callers must check None first.
func (t *TargetList) Contains(destination string) bool {
	if t == nil {
		return false
	}
	for _, d := range t.List {
		if d == destination {
			return true
		}
	}
	return false
}

// TargetPermissions carries a tool's unified and legacy target allow/deny
// configuration.
type TargetPermissions struct {
	BlockedTargets *TargetList
	AllowedTargets *TargetList

	// Legacy per-type lists, applied only when target.type matches and the
	// unified fields above did not already decide.
	BlockedServers *TargetList
	AllowedServers *TargetList
	AllowedClients *TargetList
}

// ConsentOverrides carries a tool's consent-requirement shortcuts.
type ConsentOverrides struct {
	Always                bool
	Never                 bool
	AllowedWithoutConsent []string
	CustomMessage         string
}

// DataPolicy is a tool's full data-handling policy.
type DataPolicy struct {
	DataUsagePermissions map[UsageLevel]Decision
	TargetPermissions    TargetPermissions
	ConsentOverrides     ConsentOverrides
}

// Tool describes a callable tool and, optionally, its data policy.
type Tool struct {
	Name        string
	InputSchema []byte // raw JSON schema document, validated via jsonschema/v6
	IsSensitive bool
	DataPolicy  *DataPolicy
}

// Target is the endpoint data may flow to.
type Target struct {
	Type        TargetType
	Destination string
	Purpose     string
	LLMMetadata map[string]any
}

// Requester identifies who is asking for data and when.
type Requester struct {
	HostID    string
	SessionID string
	Timestamp int64
}

// UsageContext is the full context of an attempted read or resolution.
type UsageContext struct {
	DataUsage UsageLevel
	Requester Requester
	Target    Target
}

// TargetCategory is configuration (not per-request state) describing a
// known destination.
type TargetCategory struct {
	Type            TargetType
	Category        TargetCategoryKind
	TrustLevel      TrustLevel
	RequiresConsent bool
	Metadata        map[string]any
}

// DataRetentionPermanent reports whether this category's metadata marks
// the destination as retaining data permanently.
func (c TargetCategory) DataRetentionPermanent() bool {
	v, ok := c.Metadata["data_retention"]
	if !ok {
		return false
	}
	s, _ := v.(string)
	return s == "permanent"
}

// RequireConsentFor lists the global consent trigger flags.
type RequireConsentFor struct {
	AnyTransfer            bool
	SensitiveDataTransfer  bool
	LLMDataAccess          bool
	ExternalServerTransfer bool
}

// DefaultTargetPolicy is the global fallback target policy.
type DefaultTargetPolicy struct {
	// Server restricts server-type targets; nil means unrestricted.
	Server *TargetList
	// LLM, when exactly "deny", denies every llm-type target globally.
	LLM string
}

// ServerConfig is the snapshot of server-wide policy configuration the
// Policy Evaluator consults when a tool doesn't decide something itself.
type ServerConfig struct {
	DefaultDataUsagePolicy      map[UsageLevel]Decision
	DefaultTargetPolicy         DefaultTargetPolicy
	TrustedTargets              []string
	TrustedDomains              []string
	TargetCategories            map[string]TargetCategory // keyed by destination
	RequireConsentFor           RequireConsentFor
	DefaultOnTimeout            Decision
	ConsentTimeoutSeconds       int
	CacheConsentDurationMinutes int
}

// ConsentDecisionRecord is a remembered consent decision with its expiry.
type ConsentDecisionRecord struct {
	Decision        Decision
	InsertedAt      int64
	DurationMinutes int
}
