package torexitpolicy

import (
	"strings"

	"github.com/mmcloughlin/take"
	"github.com/pkg/errors"
)

// ParseRule parses a single "accept exitpattern" or "reject exitpattern"
// line.
func ParseRule(line string) (Rule, error) {
	action, rest, err := parseAction(line)
	if err != nil {
		return Rule{}, err
	}

	_, rest, err = take.ExpectErr(rest, " ", ErrParseBadAction)
	if err != nil {
		return Rule{}, err
	}

	pattern, err := ParsePattern(rest)
	if err != nil {
		return Rule{}, err
	}

	return Rule{
		Action:  action,
		Pattern: pattern,
	}, nil
}

// parseAction consumes the action keyword. A mismatch leaves the input
// untouched, so each keyword is tried in turn.
func parseAction(line string) (Action, string, error) {
	for _, a := range []Action{Accept, Reject} {
		if _, rest, err := take.Expect(line, a.Describe()); err == nil {
			return a, rest, nil
		}
	}
	return Reject, line, ErrParseBadAction
}

// ParsePolicy parses an exit policy given as a sequence of accept/reject
// lines. Blank lines are ignored. Following the directory specification,
// addresses that match no rule are accepted.
func ParsePolicy(b []byte) (*Policy, error) {
	p := NewPolicyWithDefault(Accept)
	rest := b
	for n := 1; len(rest) > 0; n++ {
		line, r, err := take.Until(rest, "\n")
		if err != nil {
			line, r = rest, nil
		} else {
			_, r, _ = take.Exact(r, 1)
		}
		rest = r

		s := strings.TrimRight(string(line), "\r")
		if s == "" {
			continue
		}

		rule, err := ParseRule(s)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", n)
		}
		p.AddRule(rule)
	}
	return p, nil
}
