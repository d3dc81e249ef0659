package expr

import (
	"fmt"

	"github.com/NunaInc/nudl-analysis/ast"
	"github.com/NunaInc/nudl-analysis/scope"
	"github.com/NunaInc/nudl-analysis/types"
)

// Node is one expression in the analyzed tree (§3 "Expressions"). It
// wraps a (possibly shared, e.g. across specializations) *ast.Expr by
// reference, and owns its own negotiation cache and named-object
// binding, so that re-analyzing the same source under a different scope
// produces an independent Node with independent results.
type Node struct {
	Source *ast.Expr
	Owner  *scope.Scope
	Parent *Node

	Children []*Node
	Named    scope.NamedObject

	cachedType *types.Spec
	cachedHint *types.Spec
	negotiating bool
}

// Build constructs a Node tree rooted at source, owned by owner. No
// negotiation happens here — NegotiateType is the sole entry point for
// that, invoked on demand (§4.4).
func Build(owner *scope.Scope, source *ast.Expr) *Node {
	if source == nil {
		return nil
	}
	n := &Node{Source: source, Owner: owner}
	n.Children = childrenOf(n, owner, source)
	return n
}

func childrenOf(parent *Node, owner *scope.Scope, source *ast.Expr) []*Node {
	var kids []*Node
	add := func(e *ast.Expr) {
		if e == nil {
			return
		}
		c := Build(owner, e)
		c.Parent = parent
		kids = append(kids, c)
	}
	for _, o := range source.Operands {
		add(o)
	}
	add(source.AssignValue)
	add(source.ResultValue)
	for _, e := range source.Elements {
		add(e)
	}
	for _, te := range source.TupleElements {
		add(te.Value)
	}
	for _, me := range source.Entries {
		add(me.Key)
		add(me.Value)
	}
	add(source.IndexObject)
	add(source.IndexValue)
	for _, b := range source.Branches {
		add(b.Condition)
		add(b.Body)
	}
	for _, st := range source.Statements {
		add(st)
	}
	add(source.LambdaBody)
	add(source.DotLeft)
	add(source.CallLeft)
	for _, a := range source.CallArgs {
		add(a.Expr)
	}
	for _, e := range source.FuncBody {
		add(e)
	}
	return kids
}

// CachedType returns n's memoized type from the most recent
// NegotiateType call, or nil if it has never been negotiated.
func (n *Node) CachedType() *types.Spec { return n.cachedType }

// DebugString renders a short human-readable description of the node,
// including its negotiated type if already cached.
func (n *Node) DebugString() string {
	t := "?"
	if n.cachedType != nil {
		t = n.cachedType.String()
	}
	return fmt.Sprintf("Expr(kind=%d, type=%s)", n.Source.Kind, t)
}

// VisitExpressions walks n and its children in preorder, calling visit
// on each node. visit returning false stops descent into that node's
// children (but not its siblings).
func (n *Node) VisitExpressions(visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		c.VisitExpressions(visit)
	}
}

// Clone returns a structural copy of n (and its subtree) with a fresh
// negotiation cache, optionally re-parented to a different owning scope
// (override == nil keeps the same owner), so the copy can be negotiated
// independently of the original. The binding engine does not call it:
// lambda and specialization bodies are rebuilt from the AST with Build.
func (n *Node) Clone(override *scope.Scope) *Node {
	if n == nil {
		return nil
	}
	owner := n.Owner
	if override != nil {
		owner = override
	}
	out := &Node{Source: n.Source, Owner: owner}
	out.Children = make([]*Node, len(n.Children))
	for i, c := range n.Children {
		cc := c.Clone(override)
		cc.Parent = out
		out.Children[i] = cc
	}
	return out
}

// ContainsFunctionExit conservatively reports whether every control path
// through n terminates in a return/yield/pass, per §4.4.
func (n *Node) ContainsFunctionExit() bool {
	if n == nil {
		return false
	}
	switch n.Source.Kind {
	case ast.ExprFunctionResult:
		return true
	case ast.ExprIf:
		branches := n.Source.Branches
		if len(branches) == 0 {
			return false
		}
		hasElse := branches[len(branches)-1].Condition == nil
		if !hasElse {
			return false
		}
		return n.allBranchBodiesExit()
	case ast.ExprBlock:
		for _, c := range n.Children {
			if c.ContainsFunctionExit() {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// allBranchBodiesExit re-walks n.Children, matching condition/body pairs
// in declaration order (see childrenOf: Condition then Body per branch),
// and requires every branch's body to contain a function exit.
func (n *Node) allBranchBodiesExit() bool {
	idx := 0
	for _, b := range n.Source.Branches {
		if b.Condition != nil {
			idx++
		}
		if idx >= len(n.Children) {
			return false
		}
		body := n.Children[idx]
		idx++
		if !body.ContainsFunctionExit() {
			return false
		}
	}
	return true
}
