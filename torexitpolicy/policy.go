// Package torexitpolicy reads and evaluates relay exit policies.
package torexitpolicy

import (
	"net"
	"strings"
)

// Action is the outcome of a rule: whether exit traffic is permitted.
type Action bool

// Possible actions.
const (
	Accept Action = true
	Reject Action = false
)

// Describe returns the keyword for the action, "accept" or "reject".
func (a Action) Describe() string {
	if a == Accept {
		return "accept"
	}
	return "reject"
}

// Pattern selects the destinations a rule applies to.
//
// Reference: https://github.com/torproject/torspec/blob/master/dir-spec.txt#L1186-L1201
type Pattern interface {
	Matches(net.IP, uint16) bool
	Describe() string
}

//go:generate mockery -name=Pattern -case=underscore

// AllPattern is "*:*", matching every destination.
var AllPattern Pattern = wildcard{}

type wildcard struct{}

func (wildcard) Matches(net.IP, uint16) bool { return true }

func (wildcard) Describe() string { return "*:*" }

// Rule applies Action to destinations selected by Pattern.
type Rule struct {
	Action  Action
	Pattern Pattern
}

// Describe renders the rule as a descriptor line, without the newline.
func (r Rule) Describe() string {
	return r.Action.Describe() + " " + r.Pattern.Describe()
}

// Policy is an ordered list of rules. The first matching rule decides; when
// none match the default action applies.
//
// Reference: https://github.com/torproject/torspec/blob/master/dir-spec.txt#L554-L564
type Policy struct {
	rules         []Rule
	defaultAction Action
}

// Fixed policies.
var (
	RejectAllPolicy = NewPolicyWithDefault(Reject)
	AcceptAllPolicy = NewPolicyWithDefault(Accept)
)

// NewPolicy builds an empty policy that rejects everything.
func NewPolicy() *Policy {
	return NewPolicyWithDefault(Reject)
}

// NewPolicyWithDefault builds an empty policy with default action a.
func NewPolicyWithDefault(a Action) *Policy {
	return &Policy{defaultAction: a}
}

// Default returns the action applied when no rule matches.
func (p Policy) Default() Action {
	return p.defaultAction
}

// AddRule appends r. Rules are evaluated in insertion order.
func (p *Policy) AddRule(r Rule) {
	p.rules = append(p.rules, r)
}

// Action appends a rule applying a to pat.
func (p *Policy) Action(a Action, pat Pattern) {
	p.AddRule(Rule{Action: a, Pattern: pat})
}

// Accept appends an accept rule.
func (p *Policy) Accept(pat Pattern) { p.Action(Accept, pat) }

// Reject appends a reject rule.
func (p *Policy) Reject(pat Pattern) { p.Action(Reject, pat) }

// Rules returns the rules of the policy followed by the default rule.
func (p Policy) Rules() []Rule {
	rules := make([]Rule, 0, len(p.rules)+1)
	rules = append(rules, p.rules...)
	return append(rules, Rule{Action: p.defaultAction, Pattern: AllPattern})
}

// Allow reports whether the policy permits exit to ip:port.
func (p Policy) Allow(ip net.IP, port uint16) bool {
	for _, r := range p.rules {
		if r.Pattern.Matches(ip, port) {
			return bool(r.Action)
		}
	}
	return bool(p.defaultAction)
}

// Encode renders the policy, including its default rule, one rule per line.
func (p Policy) Encode() []byte {
	var b strings.Builder
	for _, r := range p.Rules() {
		b.WriteString(r.Describe())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
