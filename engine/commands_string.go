package engine

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
)

func handleString(ctx *Context, node *Node, args []string) error {
	if len(args) == 0 {
		ctx.Diag(inputError(ctx, node, "string", "string() requires a subcommand"))
		return nil
	}
	sub := strings.ToUpper(args[0])
	rest := args[1:]

	switch sub {
	case "FIND":
		if len(rest) < 3 {
			return nil
		}
		idx := strings.Index(rest[0], rest[1])
		if hasFlag(rest, "REVERSE") {
			idx = strings.LastIndex(rest[0], rest[1])
		}
		ctx.Env.Set(rest[2], strconv.Itoa(idx))
	case "REPLACE":
		if len(rest) < 3 {
			return nil
		}
		outVar := rest[len(rest)-1]
		value := strings.Join(rest[2:len(rest)-1], "")
		ctx.Env.Set(outVar, strings.ReplaceAll(value, rest[0], rest[1]))
	case "REGEX":
		return stringRegex(ctx, node, rest)
	case "TOUPPER":
		if len(rest) < 2 {
			return nil
		}
		ctx.Env.Set(rest[1], strings.ToUpper(rest[0]))
	case "TOLOWER":
		if len(rest) < 2 {
			return nil
		}
		ctx.Env.Set(rest[1], strings.ToLower(rest[0]))
	case "LENGTH":
		if len(rest) < 2 {
			return nil
		}
		ctx.Env.Set(rest[1], strconv.Itoa(len(rest[0])))
	case "SUBSTRING":
		if len(rest) < 3 {
			return nil
		}
		begin, _ := strconv.Atoi(rest[1])
		length, _ := strconv.Atoi(rest[2])
		s := rest[0]
		if begin < 0 {
			begin += len(s)
		}
		if begin > len(s) {
			begin = len(s)
		}
		end := len(s)
		if length >= 0 && begin+length < end {
			end = begin + length
		}
		if len(rest) >= 4 {
			ctx.Env.Set(rest[3], s[begin:end])
		}
	case "STRIP":
		if len(rest) < 2 {
			return nil
		}
		ctx.Env.Set(rest[1], strings.TrimSpace(rest[0]))
	case "APPEND":
		if len(rest) < 1 {
			return nil
		}
		ctx.Env.Set(rest[0], ctx.Env.Get(rest[0])+strings.Join(rest[1:], ""))
	case "PREPEND":
		if len(rest) < 1 {
			return nil
		}
		ctx.Env.Set(rest[0], strings.Join(rest[1:], "")+ctx.Env.Get(rest[0]))
	case "CONCAT":
		if len(rest) < 1 {
			return nil
		}
		ctx.Env.Set(rest[0], strings.Join(rest[1:], ""))
	case "JOIN":
		if len(rest) < 2 {
			return nil
		}
		ctx.Env.Set(rest[1], strings.Join(rest[2:], rest[0]))
	case "REPEAT":
		if len(rest) < 3 {
			return nil
		}
		count, _ := strconv.Atoi(rest[1])
		ctx.Env.Set(rest[2], strings.Repeat(rest[0], count))
	case "COMPARE":
		if len(rest) < 4 {
			return nil
		}
		op, a, b, outVar := strings.ToUpper(rest[0]), rest[1], rest[2], rest[3]
		var result bool
		switch op {
		case "EQUAL":
			result = a == b
		case "NOTEQUAL":
			result = a != b
		case "LESS":
			result = a < b
		case "GREATER":
			result = a > b
		case "LESS_EQUAL":
			result = a <= b
		case "GREATER_EQUAL":
			result = a >= b
		}
		ctx.Env.Set(outVar, boolFlag(result))
	case "MD5":
		if len(rest) < 2 {
			return nil
		}
		ctx.Env.Set(rest[1], fmt.Sprintf("%x", md5.Sum([]byte(rest[0]))))
	case "SHA1":
		if len(rest) < 2 {
			return nil
		}
		ctx.Env.Set(rest[1], fmt.Sprintf("%x", sha1.Sum([]byte(rest[0]))))
	case "SHA256":
		if len(rest) < 2 {
			return nil
		}
		ctx.Env.Set(rest[1], fmt.Sprintf("%x", sha256.Sum256([]byte(rest[0]))))
	default:
		ctx.Diag(inputError(ctx, node, "string", "unrecognized string() subcommand "+sub))
	}
	return nil
}

func stringRegex(ctx *Context, node *Node, rest []string) error {
	if len(rest) < 1 {
		return nil
	}
	mode := strings.ToUpper(rest[0])
	rest = rest[1:]
	switch mode {
	case "MATCH":
		if len(rest) < 3 {
			return nil
		}
		re, err := compileCMakeRegex(rest[0])
		if err != nil {
			return nil
		}
		outVar, input := rest[1], strings.Join(rest[2:], "")
		if m := re.FindString(input); m != "" {
			ctx.Env.Set(outVar, m)
		}
	case "MATCHALL":
		if len(rest) < 3 {
			return nil
		}
		re, err := compileCMakeRegex(rest[0])
		if err != nil {
			return nil
		}
		outVar, input := rest[1], strings.Join(rest[2:], "")
		ctx.Env.Set(outVar, JoinSemicolonList(re.FindAllString(input, -1)))
	case "REPLACE":
		if len(rest) < 4 {
			return nil
		}
		re, err := compileCMakeRegex(rest[0])
		if err != nil {
			return nil
		}
		replacement, outVar := regexReplacementToGo(rest[1]), rest[2]
		input := strings.Join(rest[3:], "")
		ctx.Env.Set(outVar, re.ReplaceAllString(input, replacement))
	}
	return nil
}

// regexReplacementToGo rewrites CMake's \1-style backreferences to Go's
// regexp ${1} form.
func regexReplacementToGo(r string) string {
	var b strings.Builder
	for i := 0; i < len(r); i++ {
		if r[i] == '\\' && i+1 < len(r) && r[i+1] >= '0' && r[i+1] <= '9' {
			b.WriteString("${" + string(r[i+1]) + "}")
			i++
			continue
		}
		b.WriteByte(r[i])
	}
	return b.String()
}
