package main

import "github.com/NunaInc/nudl-analysis/ast"

// Scenario is a canned, pre-parsed NuDL program: since source parsing is
// an external collaborator this repo never implements (§1, §6), the demo
// driver ships a handful of already-built ASTs instead of reading .nudl
// files off disk, the same way the teacher's demo command ships its
// fixtures under demo/fixtures rather than accepting arbitrary input.
type Scenario struct {
	Description string
	// Modules maps every module path involved (including transitively
	// imported ones) to its AST; Entry names the one analyzed directly.
	Modules map[string]*ast.Module
	Entry   string
}

func intType() *ast.TypeExpr { return &ast.TypeExpr{Name: "Int"} }

func scenarios() map[string]Scenario {
	return map[string]Scenario{
		"import": {
			Description: "module B imports module A and calls its function g (§8 scenario 6)",
			Entry:       "B",
			Modules: map[string]*ast.Module{
				"A": {
					Path: "A",
					Elements: []*ast.Expr{
						{
							Kind:     ast.ExprFunctionDef,
							FuncName: "g",
							FuncKind: ast.FuncPlain,
							FuncArgs: []ast.ArgumentDecl{{Name: "x", Type: intType()}},
							FuncBody: []*ast.Expr{
								{
									Kind:       ast.ExprFunctionResult,
									ResultKind: ast.ResultReturn,
									ResultValue: &ast.Expr{
										Kind:     ast.ExprOperator,
										Operator: "+",
										Operands: []*ast.Expr{
											{Kind: ast.ExprIdentifier, Identifier: []string{"x"}},
											{Kind: ast.ExprLiteral, Literal: &ast.Literal{Kind: ast.LitInt, Int: 1}},
										},
									},
								},
							},
						},
					},
				},
				"B": {
					Path: "B",
					Elements: []*ast.Expr{
						{Kind: ast.ExprImport, ImportModule: "A"},
						{
							Kind:       ast.ExprAssignment,
							AssignName: "y",
							AssignValue: &ast.Expr{
								Kind:           ast.ExprFunctionCall,
								CallIdentifier: []string{"A", "g"},
								CallArgs: []ast.CallArgument{
									{Expr: &ast.Expr{Kind: ast.ExprLiteral, Literal: &ast.Literal{Kind: ast.LitInt, Int: 10}}},
								},
							},
						},
					},
				},
			},
		},
		"schema": {
			Description: "module declares a Point schema; the driver synthesizes its constructors (§4.7 \"Schema\")",
			Entry:       "geometry",
			Modules: map[string]*ast.Module{
				"geometry": {
					Path: "geometry",
					Elements: []*ast.Expr{
						{
							Kind:       ast.ExprSchemaDef,
							SchemaName: "Point",
							SchemaFields: []ast.FieldDecl{
								{Name: "x", Type: intType()},
								{Name: "y", Type: intType()},
							},
						},
					},
				},
			},
		},
	}
}
