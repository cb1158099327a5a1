package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeProject Type = "project"
	TypeToggle  Type = "toggle"
	TypeStart   Type = "start"
	TypeStop    Type = "stop"
	TypeTheme   Type = "theme"
	TypeRefresh Type = "refresh"
	TypeAll     Type = "all"
	TypeView    Type = "view"
)

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

type ProjectArgs struct {
	ID string
}

// TaskArgs names a task of the current project.
type TaskArgs struct {
	TaskID string
}

type ThemeArgs struct {
	Name string
}

type ViewArgs struct {
	Mode string
}

type Command struct {
	Type    Type
	Raw     string
	Project *ProjectArgs
	Toggle  *TaskArgs
	Start   *TaskArgs
	Theme   *ThemeArgs
	View    *ViewArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeProject:
		id, err := singleArg(head, "a project id", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeProject, Raw: input, Project: &ProjectArgs{ID: id}}, nil
	case TypeToggle:
		id, err := singleArg(head, "a task id", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeToggle, Raw: input, Toggle: &TaskArgs{TaskID: id}}, nil
	case TypeStart:
		id, err := singleArg(head, "a task id", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeStart, Raw: input, Start: &TaskArgs{TaskID: id}}, nil
	case TypeTheme:
		name, err := singleArg(head, "a theme name", args)
		if err != nil {
			return Command{}, err
		}
		return Command{Type: TypeTheme, Raw: input, Theme: &ThemeArgs{Name: strings.ToLower(name)}}, nil
	case TypeView:
		if len(args) == 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "view requires a mode"}
		}
		return Command{Type: TypeView, Raw: input, View: &ViewArgs{Mode: strings.Join(args, " ")}}, nil
	case TypeStop, TypeRefresh, TypeAll:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: Type(head), Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func singleArg(head, what string, args []string) (string, error) {
	if len(args) != 1 {
		return "", &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires %s", head, what)}
	}
	return args[0], nil
}
