package verify

import (
	"strconv"
	"strings"

	"github.com/hasselmyr/agify-api-tests/agify"
)

// DatabaseErrorPatterns are fragments of database engine error messages. They are specific
// enough not to match ordinary user input echoed back by the service.
var DatabaseErrorPatterns = []string{
	"sql syntax",
	"mysql_",
	"postgres error",
	"database error",
	"query failed",
	"syntax error at",
	"unknown column",
	"unknown table",
	"constraint violation",
	"duplicate entry for key",
	"cannot add or update",
	"foreign key constraint",
	"access denied for user",
}

// SystemInfoPatterns are filesystem paths and host identifiers that a server should not expose.
var SystemInfoPatterns = []string{
	"/usr/",
	"/etc/",
	"/bin/",
	"/home/",
	"root@",
	`c:\`,
	"windows",
	"system32",
}

// RequireNoLeakage fails if the body or any header contains one of the patterns. Matching is
// case-insensitive.
func RequireNoLeakage(env *agify.Envelope, patterns ...string) error {
	body := strings.ToLower(string(env.Body().Raw()))
	for _, p := range patterns {
		if strings.Contains(body, strings.ToLower(p)) {
			return &InformationLeakageError{Pattern: p, Location: "body"}
		}
	}
	for _, name := range env.HeaderNames() {
		value, _ := env.Header(name)
		line := strings.ToLower(name + ": " + value)
		for _, p := range patterns {
			if strings.Contains(line, strings.ToLower(p)) {
				return &InformationLeakageError{Pattern: p, Location: "header " + name}
			}
		}
	}
	return nil
}

// RequireHeader checks that the header is present.
func RequireHeader(env *agify.Envelope, name string) error {
	if _, ok := env.Header(name); !ok {
		return &MissingHeaderError{Header: strings.ToLower(name), Present: env.HeaderNames()}
	}
	return nil
}

// RequireHeaderAbove checks that a numeric header is present and strictly greater than min.
func RequireHeaderAbove(env *agify.Envelope, name string, min int) error {
	return RequireHeaderRange(env, name, Bound{Op: GreaterThan, Limit: float64(min)})
}

// RequireHeaderRange checks that a header is present, holds an integer and satisfies the bound.
func RequireHeaderRange(env *agify.Envelope, name string, bound Bound) error {
	n, err := HeaderInt(env, name)
	if err != nil {
		return err
	}
	if !bound.Allows(float64(n)) {
		return &RangeViolationError{Field: "header " + strings.ToLower(name), Bound: bound, Actual: float64(n)}
	}
	return nil
}

// HeaderInt returns the integer value of a header.
func HeaderInt(env *agify.Envelope, name string) (int, error) {
	value, ok := env.Header(name)
	if !ok {
		return 0, &MissingHeaderError{Header: strings.ToLower(name), Present: env.HeaderNames()}
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		field := "header " + strings.ToLower(name)
		return 0, &TypeMismatchError{Field: field, Expected: "an integer", Actual: "a string", Value: value}
	}
	return n, nil
}
