package ast

type (
	// Expr is one of Number, Var, Unary, Binary.
	Expr interface{}

	// Stmt is one of Read, Print, Assign, IfElse, While.
	Stmt interface{}

	// Program is the root of the tree. Statements run top to bottom.
	Program struct {
		Body []Stmt
	}

	Number struct {
		Value int64
	}

	Var struct {
		Name string
	}

	// Unary is negation. Op is always "-".
	Unary struct {
		Op   string
		Expr Expr
	}

	Binary struct {
		Left  Expr
		Op    string
		Right Expr
	}

	Read struct {
		Name string
	}

	Print struct {
		Expr Expr
	}

	Assign struct {
		Name string
		Expr Expr
	}

	// IfElse always carries both branches.
	IfElse struct {
		Cond Expr
		Then []Stmt
		Else []Stmt
	}

	While struct {
		Cond Expr
		Body []Stmt
	}
)
