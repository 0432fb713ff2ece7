package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

func handleList(ctx *Context, node *Node, args []string) error {
	if len(args) < 2 {
		ctx.Diag(inputError(ctx, node, "list", "list() requires a subcommand and a variable"))
		return nil
	}
	sub := strings.ToUpper(args[0])
	varName := args[1]
	rest := args[2:]
	items := SplitSemicolonList(ctx.Env.Get(varName))

	switch sub {
	case "LENGTH":
		if len(rest) < 1 {
			return nil
		}
		ctx.Env.Set(rest[0], strconv.Itoa(len(items)))
	case "GET":
		if len(rest) < 1 {
			return nil
		}
		outVar := rest[len(rest)-1]
		var out []string
		for _, idxStr := range rest[:len(rest)-1] {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				continue
			}
			if idx < 0 {
				idx += len(items)
			}
			if idx >= 0 && idx < len(items) {
				out = append(out, items[idx])
			}
		}
		ctx.Env.Set(outVar, JoinSemicolonList(out))
	case "APPEND":
		items = append(items, rest...)
		ctx.Env.Set(varName, JoinSemicolonList(items))
	case "PREPEND":
		items = append(append([]string{}, rest...), items...)
		ctx.Env.Set(varName, JoinSemicolonList(items))
	case "INSERT":
		if len(rest) < 1 {
			return nil
		}
		idx, _ := strconv.Atoi(rest[0])
		if idx < 0 || idx > len(items) {
			idx = len(items)
		}
		out := append([]string{}, items[:idx]...)
		out = append(out, rest[1:]...)
		out = append(out, items[idx:]...)
		ctx.Env.Set(varName, JoinSemicolonList(out))
	case "POP_BACK":
		if len(items) > 0 {
			last := items[len(items)-1]
			items = items[:len(items)-1]
			if len(rest) > 0 {
				ctx.Env.Set(rest[0], last)
			}
		}
		ctx.Env.Set(varName, JoinSemicolonList(items))
	case "POP_FRONT":
		if len(items) > 0 {
			first := items[0]
			items = items[1:]
			if len(rest) > 0 {
				ctx.Env.Set(rest[0], first)
			}
		}
		ctx.Env.Set(varName, JoinSemicolonList(items))
	case "FIND":
		if len(rest) < 2 {
			return nil
		}
		idx := -1
		for i, v := range items {
			if v == rest[0] {
				idx = i
				break
			}
		}
		ctx.Env.Set(rest[1], strconv.Itoa(idx))
	case "REMOVE_ITEM":
		items = lo.Filter(items, func(v string, _ int) bool { return !lo.Contains(rest, v) })
		ctx.Env.Set(varName, JoinSemicolonList(items))
	case "REMOVE_AT":
		remove := map[int]bool{}
		for _, idxStr := range rest {
			idx, err := strconv.Atoi(idxStr)
			if err == nil {
				if idx < 0 {
					idx += len(items)
				}
				remove[idx] = true
			}
		}
		var out []string
		for i, v := range items {
			if !remove[i] {
				out = append(out, v)
			}
		}
		ctx.Env.Set(varName, JoinSemicolonList(out))
	case "REMOVE_DUPLICATES":
		ctx.Env.Set(varName, JoinSemicolonList(lo.Uniq(items)))
	case "REVERSE":
		out := append([]string{}, items...)
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
		ctx.Env.Set(varName, JoinSemicolonList(out))
	case "SORT":
		out := append([]string{}, items...)
		desc := false
		caseInsensitive := false
		for _, a := range rest {
			switch strings.ToUpper(a) {
			case "DESCENDING":
				desc = true
			case "CASE":
				caseInsensitive = true
			}
		}
		sort.Slice(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if caseInsensitive {
				a, b = strings.ToLower(a), strings.ToLower(b)
			}
			if desc {
				return a > b
			}
			return a < b
		})
		ctx.Env.Set(varName, JoinSemicolonList(out))
	case "JOIN":
		if len(rest) < 2 {
			return nil
		}
		ctx.Env.Set(rest[1], strings.Join(items, rest[0]))
	case "FILTER":
		if len(rest) < 2 {
			return nil
		}
		include := strings.EqualFold(rest[0], "INCLUDE")
		re, err := compileCMakeRegex(rest[1])
		if err != nil {
			return nil
		}
		items = lo.Filter(items, func(v string, _ int) bool { return re.MatchString(v) == include })
		ctx.Env.Set(varName, JoinSemicolonList(items))
	case "TRANSFORM":
		// Supported action: TOUPPER/TOLOWER/STRIP; other actions are a noop.
		if len(rest) < 1 {
			return nil
		}
		action := strings.ToUpper(rest[0])
		out := make([]string, len(items))
		for i, v := range items {
			switch action {
			case "TOUPPER":
				out[i] = strings.ToUpper(v)
			case "TOLOWER":
				out[i] = strings.ToLower(v)
			case "STRIP":
				out[i] = strings.TrimSpace(v)
			default:
				out[i] = v
			}
		}
		ctx.Env.Set(varName, JoinSemicolonList(out))
	default:
		ctx.Diag(inputError(ctx, node, "list", "unrecognized list() subcommand "+sub))
	}
	return nil
}
