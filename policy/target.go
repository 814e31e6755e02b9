package policy

import (
	"fmt"

	"github.com/mcpp-dev/mcpp-core/mcpptype"
)

// checkTargetPermissions runs the ordered, short-circuit-on-first-denial
// target permission chain: tool-level unified lists, tool-level legacy
// per-type lists, then the global default target policy.
func checkTargetPermissions(st *evalState) *mcpptype.RPCError {
	dest := st.uc.Target.Destination
	targetType := string(st.uc.Target.Type)

	if tp := toolTargetPermissions(st.tool); tp != nil {
		if tp.BlockedTargets != nil && !tp.BlockedTargets.None && tp.BlockedTargets.Contains(dest) {
			st.targetCheck = fmt.Sprintf("%s_blocked_by_tool", targetType)
			return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, st.targetCheck)
		}

		if tp.AllowedTargets != nil {
			if tp.AllowedTargets.None {
				st.targetCheck = "no_targets_allowed"
				return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, st.targetCheck)
			}
			if !tp.AllowedTargets.Contains(dest) {
				st.targetCheck = fmt.Sprintf("%s_not_in_allowlist", targetType)
				return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, st.targetCheck)
			}
		}

		if rerr := checkLegacyTargetLists(st, tp, dest); rerr != nil {
			return rerr
		}
	}

	return checkDefaultTargetPolicy(st, dest)
}

// checkLegacyTargetLists applies the legacy per-type lists, which only
// apply when target.type matches and the unified fields above did not
// already decide.
func checkLegacyTargetLists(st *evalState, tp *mcpptype.TargetPermissions, dest string) *mcpptype.RPCError {
	switch st.uc.Target.Type {
	case mcpptype.TargetServer:
		if tp.BlockedServers != nil && !tp.BlockedServers.None && tp.BlockedServers.Contains(dest) {
			st.targetCheck = "server_blocked_by_tool"
			return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, st.targetCheck)
		}
		if tp.AllowedServers != nil {
			if tp.AllowedServers.None {
				st.targetCheck = "no_targets_allowed"
				return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, st.targetCheck)
			}
			if !tp.AllowedServers.Contains(dest) {
				st.targetCheck = "server_not_in_allowlist"
				return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, st.targetCheck)
			}
		}
	case mcpptype.TargetClient:
		if tp.AllowedClients != nil {
			if tp.AllowedClients.None {
				st.targetCheck = "no_targets_allowed"
				return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, st.targetCheck)
			}
			if !tp.AllowedClients.Contains(dest) {
				st.targetCheck = "client_not_in_allowlist"
				return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, st.targetCheck)
			}
		}
	}
	return nil
}

// checkDefaultTargetPolicy applies the global fallback: server targets
// must be in the configured list (if any), llm targets are globally
// blocked when LLM == "deny", and every other type passes by default.
func checkDefaultTargetPolicy(st *evalState, dest string) *mcpptype.RPCError {
	pol := st.cfg.DefaultTargetPolicy

	switch st.uc.Target.Type {
	case mcpptype.TargetServer:
		if pol.Server != nil {
			if pol.Server.None {
				st.targetCheck = "no_targets_allowed"
				return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, st.targetCheck)
			}
			if !pol.Server.Contains(dest) {
				st.targetCheck = "server_not_in_allowlist"
				return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, st.targetCheck)
			}
		}
	case mcpptype.TargetLLM:
		if pol.LLM == string(mcpptype.DecisionDeny) {
			st.targetCheck = "llm_denied_by_default_policy"
			return mcpptype.NewRPCError(mcpptype.ErrInsufficientPerms, st.targetCheck)
		}
	}

	st.targetCheck = "passed"
	return nil
}

func toolTargetPermissions(tool *mcpptype.Tool) *mcpptype.TargetPermissions {
	if tool == nil || tool.DataPolicy == nil {
		return nil
	}
	return &tool.DataPolicy.TargetPermissions
}
