package grammar

import (
	"fmt"
	"strconv"
	"strings"
)

func indent(level int) string {
	return strings.Repeat("    ", level)
}

func (a *AST) String() string {
	var b strings.Builder
	for _, f := range a.Functions {
		b.WriteString(f.StringWithIndent(0))
	}
	return b.String()
}

func (f *Function) StringWithIndent(level int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%sfn %s(%s) ", indent(level), f.Name, strings.Join(f.Params, ", ")))
	b.WriteString(f.Body.StringWithIndent(level))
	return b.String()
}

func (blk *Block) StringWithIndent(level int) string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, s := range blk.Statements {
		b.WriteString(s.StringWithIndent(level + 1))
	}
	b.WriteString(indent(level) + "}\n")
	return b.String()
}

func (s *Statement) StringWithIndent(level int) string {
	switch {
	case s.Let != nil:
		return indent(level) + s.Let.String() + "\n"
	case s.If != nil:
		return s.If.StringWithIndent(level)
	case s.While != nil:
		return s.While.StringWithIndent(level)
	case s.Return != nil:
		return indent(level) + s.Return.String() + "\n"
	case s.Assign != nil:
		return indent(level) + s.Assign.String() + "\n"
	case s.Expr != nil:
		return indent(level) + s.Expr.String() + "\n"
	}
	return ""
}

func (l *LetStmt) String() string {
	return fmt.Sprintf("let %s = %s;", l.Name, l.Expr.String())
}

func (a *AssignStmt) String() string {
	return fmt.Sprintf("%s = %s;", a.Name, a.Expr.String())
}

func (i *IfStmt) StringWithIndent(level int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%sif (%s) %s", indent(level), i.Cond.String(), i.Then.StringWithIndent(level)))
	if i.Else != nil {
		b.WriteString(indent(level) + "else " + i.Else.StringWithIndent(level))
	}
	return b.String()
}

func (w *WhileStmt) StringWithIndent(level int) string {
	return fmt.Sprintf("%swhile (%s) %s", indent(level), w.Cond.String(), w.Body.StringWithIndent(level))
}

func (r *ReturnStmt) String() string {
	if r.Expr != nil {
		return fmt.Sprintf("return %s;", r.Expr.String())
	}
	return "return;"
}

func (e *ExprStmt) String() string {
	return fmt.Sprintf("%s;", e.Expr.String())
}

func (e *Expr) String() string {
	s := e.Left.String()
	for _, op := range e.Ops {
		s += " " + op.String()
	}
	return s
}

func (b *BinOp) String() string {
	return fmt.Sprintf("%s %s", b.Operator, b.Right.String())
}

func (u *Unary) String() string {
	if u.Operator != nil {
		return *u.Operator + u.Value.String()
	}
	return u.Value.String()
}

func (p *Primary) String() string {
	switch {
	case p.Call != nil:
		return p.Call.String()
	case p.Ident != nil:
		return *p.Ident
	case p.Float != nil:
		return strconv.FormatFloat(*p.Float, 'g', -1, 64)
	case p.Int != nil:
		return strconv.FormatInt(*p.Int, 10)
	case p.True:
		return "true"
	case p.False:
		return "false"
	case p.Parens != nil:
		return "(" + p.Parens.String() + ")"
	}
	return ""
}

func (c *CallExpr) String() string {
	var args []string
	for _, a := range c.Args {
		args = append(args, a.String())
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", "))
}
