package compiler

import "testing"

func checkSource(t *testing.T, source string) (*Program, int, []Diagnostic) {
	t.Helper()
	prog, diags := Parse(source)
	if len(diags) > 0 {
		t.Fatalf("Parse(%q) diagnostics: %v", source, diags)
	}
	slots, diags := Check(prog)
	return prog, slots, diags
}

func checkOK(t *testing.T, source string) (*Program, int) {
	t.Helper()
	prog, slots, diags := checkSource(t, source)
	if len(diags) > 0 {
		t.Fatalf("Check(%q) diagnostics: %v", source, diags)
	}
	return prog, slots
}

func wantKinds(t *testing.T, diags []Diagnostic, kinds ...DiagKind) {
	t.Helper()
	if len(diags) != len(kinds) {
		t.Fatalf("got %d diagnostics %v, want %d", len(diags), diags, len(kinds))
	}
	for i, k := range kinds {
		if diags[i].Kind != k {
			t.Errorf("diagnostic %d: kind = %s, want %s", i, diags[i].Kind, k)
		}
	}
}

func TestCheckLiteralTypes(t *testing.T) {
	prog, _ := checkOK(t, `1; 2.5; true; "s";`)

	want := []Type{TypeInt, TypeFloat, TypeBool, TypeString}
	for i, w := range want {
		got := prog.Statements[i].(*ExprStmt).Expr.Type()
		if got != w {
			t.Errorf("statement %d: type = %s, want %s", i, got, w)
		}
	}
}

func TestCheckLetAndUse(t *testing.T) {
	prog, slots := checkOK(t, `let x: int = 1; x + 2;`)

	if slots != 1 {
		t.Errorf("slots = %d, want 1", slots)
	}
	let := prog.Statements[0].(*LetStmt)
	if let.Slot != 0 {
		t.Errorf("let slot = %d, want 0", let.Slot)
	}
	add := prog.Statements[1].(*ExprStmt).Expr.(*BinaryExpr)
	ident := add.Left.(*Identifier)
	if ident.Slot != 0 {
		t.Errorf("identifier slot = %d, want 0", ident.Slot)
	}
	if ident.Typ != TypeInt {
		t.Errorf("identifier type = %s, want int", ident.Typ)
	}
}

func TestCheckInitializerMismatch(t *testing.T) {
	tests := []string{
		`let x: int = "a";`,
		`let y: float = 1;`,
		`let z: bool = 0;`,
		`let s: string = true;`,
	}

	for _, source := range tests {
		_, _, diags := checkSource(t, source)
		if len(diags) == 0 {
			t.Errorf("%q: expected a diagnostic", source)
			continue
		}
		if diags[0].Kind != TypeMismatch {
			t.Errorf("%q: kind = %s, want TypeMismatch", source, diags[0].Kind)
		}
	}
}

func TestCheckNoImplicitWidening(t *testing.T) {
	_, _, diags := checkSource(t, `1 + 2.0;`)
	wantKinds(t, diags, TypeMismatch)
}

func TestCheckOperators(t *testing.T) {
	accepted := []string{
		`1 + 2;`,
		`1.5 * 2.0;`,
		`"a" + "b";`,
		`1 < 2;`,
		`1.0 >= 2.0;`,
		`1 == 2;`,
		`"a" != "b";`,
		`true == false;`,
		`!true;`,
		`-1;`,
		`-2.5;`,
	}
	for _, source := range accepted {
		_, _, diags := checkSource(t, source)
		if len(diags) > 0 {
			t.Errorf("%q: unexpected diagnostics %v", source, diags)
		}
	}

	rejected := []string{
		`true + false;`,
		`"a" - "b";`,
		`"a" < "b";`,
		`true < false;`,
		`1 == "a";`,
		`-true;`,
		`!1;`,
		`1 + true;`,
	}
	for _, source := range rejected {
		_, _, diags := checkSource(t, source)
		if len(diags) == 0 {
			t.Errorf("%q: expected a diagnostic", source)
			continue
		}
		if diags[0].Kind != TypeMismatch {
			t.Errorf("%q: kind = %s, want TypeMismatch", source, diags[0].Kind)
		}
	}
}

func TestCheckComparisonResultIsBool(t *testing.T) {
	prog, _ := checkOK(t, `1 < 2;`)
	if got := prog.Statements[0].(*ExprStmt).Expr.Type(); got != TypeBool {
		t.Errorf("type = %s, want bool", got)
	}
}

func TestCheckAssignment(t *testing.T) {
	prog, _ := checkOK(t, `let x: int = 1; x = 2;`)
	assign := prog.Statements[1].(*ExprStmt).Expr.(*AssignExpr)
	if assign.Typ != TypeUnit {
		t.Errorf("assignment type = %s, want unit", assign.Typ)
	}
	if assign.Slot != 0 {
		t.Errorf("assignment slot = %d, want 0", assign.Slot)
	}
}

func TestCheckAssignmentMismatch(t *testing.T) {
	_, _, diags := checkSource(t, `let x: int = 1; x = "s";`)
	wantKinds(t, diags, TypeMismatch)
}

func TestCheckUndeclared(t *testing.T) {
	_, _, diags := checkSource(t, `y + 1;`)
	wantKinds(t, diags, NameError)
}

func TestCheckAssignToUndeclared(t *testing.T) {
	_, _, diags := checkSource(t, `y = 1;`)
	wantKinds(t, diags, NameError)
}

func TestCheckSelfReferenceInInitializer(t *testing.T) {
	// The name is not in scope until after its own initializer.
	_, _, diags := checkSource(t, `let x: int = x;`)
	wantKinds(t, diags, NameError)
}

func TestCheckRedeclarationSameScope(t *testing.T) {
	_, _, diags := checkSource(t, `let x: int = 1; let x: int = 2;`)
	wantKinds(t, diags, Redeclaration)
}

func TestCheckShadowingAllowed(t *testing.T) {
	prog, slots := checkOK(t, `
let x: int = 1;
{
	let x: string = "s";
	x + "!";
}
x + 1;
`)
	if slots != 2 {
		t.Errorf("slots = %d, want 2", slots)
	}

	// The inner reference resolves to the shadowing string declaration.
	block := prog.Statements[1].(*BlockStmt)
	concat := block.Statements[1].(*ExprStmt).Expr.(*BinaryExpr)
	if inner := concat.Left.(*Identifier); inner.Slot != 1 || inner.Typ != TypeString {
		t.Errorf("inner x: slot=%d type=%s, want slot=1 type=string", inner.Slot, inner.Typ)
	}

	// After the block the outer int declaration is visible again.
	add := prog.Statements[2].(*ExprStmt).Expr.(*BinaryExpr)
	if outer := add.Left.(*Identifier); outer.Slot != 0 || outer.Typ != TypeInt {
		t.Errorf("outer x: slot=%d type=%s, want slot=0 type=int", outer.Slot, outer.Typ)
	}
}

func TestCheckBlockScopeExpiry(t *testing.T) {
	_, _, diags := checkSource(t, `{ let x: int = 1; } x;`)
	wantKinds(t, diags, NameError)
}

func TestCheckIfCondition(t *testing.T) {
	_, _, diags := checkSource(t, `if (1) { 2; }`)
	wantKinds(t, diags, TypeMismatch)

	checkOK(t, `if (1 < 2) { 3; } else { 4; }`)
}

func TestCheckCollectsMultipleErrors(t *testing.T) {
	_, _, diags := checkSource(t, `
let a: int = "one";
let b: bool = 2;
c + 1;
`)
	if len(diags) != 3 {
		t.Fatalf("got %d diagnostics %v, want 3", len(diags), diags)
	}
}

func TestCheckUnitOperandsRejected(t *testing.T) {
	// Assignments have type unit and leave no value, so comparing two of
	// them must be rejected rather than reach emission.
	tests := []string{
		`let x: int = 0; (x = 1) == (x = 2);`,
		`let x: int = 0; (x = 1) != (x = 2);`,
		`let x: int = 0; let y: bool = (x = 1) == (x = 2);`,
	}

	for _, source := range tests {
		_, _, diags := checkSource(t, source)
		if len(diags) == 0 {
			t.Errorf("%q: expected a diagnostic", source)
			continue
		}
		if diags[0].Kind != TypeMismatch {
			t.Errorf("%q: kind = %s, want TypeMismatch", source, diags[0].Kind)
		}
	}
}

func TestCheckUnknownDoesNotCascade(t *testing.T) {
	// The undeclared y poisons the expression but reports only once.
	_, _, diags := checkSource(t, `y + 1 * 2;`)
	wantKinds(t, diags, NameError)
}
