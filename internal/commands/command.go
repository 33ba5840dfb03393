package commands

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Type string

const (
	TypeAdd       Type = "add"
	TypeToggle    Type = "toggle"
	TypeDelete    Type = "delete"
	TypeBreakdown Type = "breakdown"
	TypeFind      Type = "find"
	TypeTag       Type = "tag"
	TypeRefresh   Type = "refresh"
	TypeRemind    Type = "remind"
	TypeSound     Type = "sound"
	TypeHelp      Type = "help"
)

var aliases = map[string]Type{
	"new":    TypeAdd,
	"done":   TypeToggle,
	"rm":     TypeDelete,
	"del":    TypeDelete,
	"split":  TypeBreakdown,
	"search": TypeFind,
	"filter": TypeTag,
	"sync":   TypeRefresh,
	"?":      TypeHelp,
}

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
	// Due is the raw due: token, resolved later with ParseDue.
	Due string
}

// TargetArgs names a task either by list position ("3") or id prefix.
type TargetArgs struct {
	Target string
}

type FindArgs struct {
	Query string
}

type TagArgs struct {
	Tag string
}

type SoundArgs struct {
	On bool
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Target *TargetArgs
	Find   *FindArgs
	Tag    *TagArgs
	Sound  *SoundArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := Type(strings.ToLower(parts[0]))
	if alias, ok := aliases[string(head)]; ok {
		head = alias
	}
	args := parts[1:]

	switch head {
	case TypeAdd:
		return parseAdd(input, strings.TrimSpace(raw[len(parts[0]):]))
	case TypeToggle, TypeDelete, TypeBreakdown:
		return parseTarget(input, head, args)
	case TypeFind:
		return Command{Type: TypeFind, Raw: input, Find: &FindArgs{Query: strings.Join(args, " ")}}, nil
	case TypeTag:
		return parseTag(input, args)
	case TypeSound:
		return parseSound(input, args)
	case TypeRefresh, TypeRemind, TypeHelp:
		return Command{Type: head, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseAdd keeps the title as typed, spacing included, minus any due:
// tokens. The last due: token wins.
func parseAdd(raw, rest string) (Command, error) {
	title, due := rest, ""
	for {
		i := dueTokenIndex(title)
		if i < 0 {
			break
		}
		end := len(title)
		if j := strings.IndexFunc(title[i:], unicode.IsSpace); j >= 0 {
			end = i + j
		}
		due = strings.TrimSpace(title[i+len("due:") : end])
		start := i
		for start > 0 && isSpaceByte(title[start-1]) {
			start--
		}
		if start == 0 {
			for end < len(title) && isSpaceByte(title[end]) {
				end++
			}
		}
		title = title[:start] + title[end:]
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title, Due: due}}, nil
}

// dueTokenIndex finds a word starting with due:, case-insensitively.
func dueTokenIndex(s string) int {
	for i := 0; i+len("due:") <= len(s); i++ {
		if i > 0 && !isSpaceByte(s[i-1]) {
			continue
		}
		if strings.EqualFold(s[i:i+len("due:")], "due:") {
			return i
		}
	}
	return -1
}

func isSpaceByte(b byte) bool {
	return b < utf8.RuneSelf && unicode.IsSpace(rune(b))
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires exactly one task number or id", typ)}
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{Target: args[0]}}, nil
}

func parseTag(raw string, args []string) (Command, error) {
	if len(args) > 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "tag takes at most one tag"}
	}
	tag := ""
	if len(args) == 1 {
		tag = strings.TrimPrefix(args[0], "#")
	}
	return Command{Type: TypeTag, Raw: raw, Tag: &TagArgs{Tag: tag}}, nil
}

func parseSound(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "sound requires on or off"}
	}
	switch strings.ToLower(args[0]) {
	case "on":
		return Command{Type: TypeSound, Raw: raw, Sound: &SoundArgs{On: true}}, nil
	case "off":
		return Command{Type: TypeSound, Raw: raw, Sound: &SoundArgs{On: false}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("sound expects on or off, got %q", args[0])}
	}
}
