package policy

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// Result is the outcome of Evaluate. Callers must not infer an allow from
// the absence of an error code; only Allowed == true authorizes action.
type Result struct {
	Allowed           bool
	ErrorCode         *mcpptype.ErrorCode
	ErrorMessage      string
	ConsentRequest    *mcpptype.ConsentRequest
	ValidationDetails mcpptype.ValidationDetails
}

// Evaluator decides allow/deny/prompt for a (tool, usage context) pair
// against a server-wide configuration snapshot.
type Evaluator struct {
	Config mcpptype.ServerConfig
}

// NewEvaluator builds an Evaluator over the given configuration snapshot.
func NewEvaluator(cfg mcpptype.ServerConfig) *Evaluator {
	return &Evaluator{Config: cfg}
}

// evalState carries the mutable working state a chain of steps builds up
// over the course of one Evaluate call.
type evalState struct {
	tool *mcpptype.Tool
	uc   mcpptype.UsageContext
	cfg  mcpptype.ServerConfig

	effective      mcpptype.Decision
	targetCheck    string
	consentReasons []string
}

// step is one ordered check in the evaluation chain. Returning a non-nil
// error short-circuits every later step with a deny.
type step func(*evalState) *mcpptype.RPCError

// now is overridable in tests; production code always uses time.Now.
var now = time.Now

// newRequestID is overridable in tests for deterministic assertions.
var newRequestID = func() string { return uuid.NewString() }

// Evaluate runs the full ordered chain: effective-permission resolution,
// target-permission short-circuit chain, then (if both passed) the
// consent-trigger evaluation, combining the results into a final
// allow/deny/prompt decision.
func (e *Evaluator) Evaluate(tool *mcpptype.Tool, uc mcpptype.UsageContext) Result {
	st := &evalState{tool: tool, uc: uc, cfg: e.Config, targetCheck: "passed"}

	// resolveEffectivePermission never itself short-circuits (it only
	// resolves a Decision); an effective deny stops the chain here so a
	// usage-level denial is reported before any target check runs.
	_ = resolveEffectivePermission(st)
	if st.effective == mcpptype.DecisionDeny {
		return denyResult(st, mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, "data usage denied by policy"))
	}

	if rerr := checkTargetPermissions(st); rerr != nil {
		return denyResult(st, rerr)
	}

	triggered := evaluateConsentTriggers(st)

	// The prompt literal is itself a trigger, independent of whether any
	// individual consent check fired.
	if st.effective == mcpptype.DecisionPrompt || triggered {
		return promptResult(st)
	}

	return Result{
		Allowed: true,
		ValidationDetails: mcpptype.ValidationDetails{
			EffectivePermission: mcpptype.DecisionAllow,
			TargetCheck:         st.targetCheck,
		},
	}
}

func denyResult(st *evalState, rerr *mcpptype.RPCError) Result {
	details := mcpptype.ValidationDetails{
		EffectivePermission: st.effective,
		TargetCheck:         st.targetCheck,
	}
	return Result{
		Allowed:           false,
		ErrorCode:         &rerr.Code,
		ErrorMessage:      rerr.Message,
		ValidationDetails: details,
	}
}

func promptResult(st *evalState) Result {
	code := mcpptype.ErrConsentRequired
	deadline := now().Add(time.Duration(st.cfg.ConsentTimeoutSeconds) * time.Second)

	req := &mcpptype.ConsentRequest{
		RequestID:     newRequestID(),
		ToolName:      toolName(st.tool),
		Reasons:       st.consentReasons,
		Message:       consentMessage(st),
		Target:        st.uc.Target,
		DataUsage:     st.uc.DataUsage,
		DataUsageWire: st.uc.DataUsage.String(),
		CreatedAt:     now(),
		Deadline:      deadline,
	}

	return Result{
		Allowed:        false,
		ErrorCode:      &code,
		ErrorMessage:   "consent required",
		ConsentRequest: req,
		ValidationDetails: mcpptype.ValidationDetails{
			EffectivePermission: st.effective,
			TargetCheck:         st.targetCheck,
			ConsentTriggers:     st.consentReasons,
		},
	}
}

func consentMessage(st *evalState) string {
	if st.tool != nil && st.tool.DataPolicy != nil && st.tool.DataPolicy.ConsentOverrides.CustomMessage != "" {
		return st.tool.DataPolicy.ConsentOverrides.CustomMessage
	}
	return ""
}

func toolName(tool *mcpptype.Tool) string {
	if tool == nil {
		return ""
	}
	return tool.Name
}

// resolveEffectivePermission implements the ordered effective-permission
// resolution: a tool-level entry wins over the server default, and an
// "allow" set at a stricter level implicitly covers the requested level
// (usage hierarchy monotonicity applies only to allow).
func resolveEffectivePermission(st *evalState) *mcpptype.RPCError {
	if perms := toolDataUsagePermissions(st.tool); perms != nil {
		if d, ok := lookupWithHierarchy(perms, st.uc.DataUsage); ok {
			st.effective = d
			return nil
		}
	}

	if d, ok := lookupWithHierarchy(st.cfg.DefaultDataUsagePolicy, st.uc.DataUsage); ok {
		st.effective = d
		return nil
	}

	st.effective = mcpptype.DecisionDeny
	return nil
}

func toolDataUsagePermissions(tool *mcpptype.Tool) map[mcpptype.UsageLevel]mcpptype.Decision {
	if tool == nil || tool.DataPolicy == nil {
		return nil
	}
	return tool.DataPolicy.DataUsagePermissions
}

// lookupWithHierarchy returns the exact entry at requested if present;
// otherwise it scans stricter levels for an explicit "allow", which
// implicitly grants every less restrictive level. deny and prompt never
// propagate this way: they apply strictly at the level they were set.
func lookupWithHierarchy(perms map[mcpptype.UsageLevel]mcpptype.Decision, requested mcpptype.UsageLevel) (mcpptype.Decision, bool) {
	if perms == nil {
		return "", false
	}
	if d, ok := perms[requested]; ok {
		return d, true
	}
	for level := requested + 1; level <= mcpptype.UsageTransfer; level++ {
		if d, ok := perms[level]; ok && d == mcpptype.DecisionAllow {
			return mcpptype.DecisionAllow, true
		}
	}
	return "", false
}
