package inference

import (
	"strings"
)

func InferCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}

	first := args[0]

	// If contains dot, it's likely a tool path: namespace.operation
	if strings.Contains(first, ".") && !strings.HasPrefix(first, "-") {
		return "show", args
	}

	return "", args
}
