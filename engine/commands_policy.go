package engine

import "strings"

func handleCMakePolicy(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "cmake_policy", "cmake_policy() requires a subcommand"))
		return nil
	}
	switch strings.ToUpper(args[0]) {
	case "PUSH":
		ctx.Policies.Push()
	case "POP":
		if !ctx.Policies.Pop() {
			ctx.Diag(policyConflict(ctx, node, "cmake_policy", "cmake_policy(POP) without matching PUSH"))
		}
	case "SET":
		if len(args) < 3 {
			ctx.Diag(inputError(ctx, node, "cmake_policy", "cmake_policy(SET id NEW|OLD) requires an id and a value"))
			return nil
		}
		status := parsePolicyStatus(args[2])
		if !ctx.Policies.Set(args[1], status) {
			ctx.Diag(inputError(ctx, node, "cmake_policy", "invalid policy id or value: "+args[1]))
		}
	case "GET":
		if len(args) < 3 {
			ctx.Diag(inputError(ctx, node, "cmake_policy", "cmake_policy(GET id outvar) requires an id and an output variable"))
			return nil
		}
		ctx.Env.Set(args[2], ctx.Policies.GetEffective(args[1]).String())
	default:
		ctx.Diag(inputError(ctx, node, "cmake_policy", "unrecognized subcommand "+args[0]))
	}
	return nil
}

func handleCMakeMinimumRequired(ctx *Context, node *Node, args []string) error {
	if len(args) < 2 || !strings.EqualFold(args[0], "VERSION") {
		ctx.Diag(inputError(ctx, node, "cmake_minimum_required", "cmake_minimum_required(VERSION ...) requires a version"))
		return nil
	}
	versionExpr := args[1]
	minStr, maxStr := versionExpr, ""
	if idx := strings.Index(versionExpr, "..."); idx >= 0 {
		minStr, maxStr = versionExpr[:idx], versionExpr[idx+3:]
	}
	minVer, ok := parseSemver(minStr)
	if !ok {
		ctx.Diag(inputError(ctx, node, "cmake_minimum_required", "malformed version "+minStr))
		return nil
	}
	ctx.Env.Set("CMAKE_MINIMUM_REQUIRED_VERSION", minVer.String())

	policyVer := minVer
	if maxStr != "" {
		if v, ok := parseSemver(maxStr); ok {
			policyVer = v
		}
	}
	if policyVer.compare(flooredMinimumPolicyVersion) < 0 {
		policyVer = flooredMinimumPolicyVersion
	}
	ctx.Env.Set("CMAKE_POLICY_VERSION", policyVer.String())
	ctx.Policies.SweepToVersion(policyVer)
	return nil
}
