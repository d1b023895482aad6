package compiler

import (
	"errors"
	"fmt"
	"strings"

	"goquad/pkg/lexer"
)

var (
	relOps        = map[string]bool{"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true}
	addOps        = map[string]bool{"+": true, "-": true}
	mulOps        = map[string]bool{"*": true, "/": true}
	unaryOps      = map[string]bool{"+": true, "-": true, "!": true}
	incDecOps     = map[string]bool{"++": true, "--": true}
	assignOps     = map[string]bool{"=": true, "+=": true, "-=": true, "*=": true, "/=": true}
	compoundArith = map[string]string{"+=": "+", "-=": "-", "*=": "*", "/=": "/"}
)

// parseError is an internal signal; the statement loop converts it to a
// SyntaxError diagnostic and resynchronizes.
type parseError struct {
	msg  string
	line int
	col  int
}

func (e *parseError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.line, e.col, e.msg)
}

func unexpected(tok SyntaxToken, expected ...string) *parseError {
	got := tok.Terminal
	if tok.Lexeme != "" && tok.Lexeme != tok.Terminal {
		got = fmt.Sprintf("%s %q", tok.Terminal, tok.Lexeme)
	}
	return &parseError{
		msg:  fmt.Sprintf("unexpected %s, expected %s", got, strings.Join(expected, " or ")),
		line: tok.Line,
		col:  tok.Col,
	}
}

// Result is the complete outcome of one translation run. Quads and
// Diagnostics are always populated, even when OK is false.
type Result struct {
	OK          bool // no diagnostics beyond informational notes
	Quads       []Quad
	Diagnostics []Diagnostic
	ParseTrace  []string
	EmitTrace   []string
}

// Translator is a recursive-descent syntax-directed translator. Productions
// are chosen by single-token lookahead against SELECT sets computed once at
// construction; quadruples are emitted as parsing proceeds, with no
// intermediate tree.
type Translator struct {
	s      *TokenStream
	emit   *Emitter
	syms   *SymbolTable
	diags  []Diagnostic
	trace  []string
	indent int

	grammar *Grammar
	sets    *Sets

	selStmtFor    TerminalSet
	selStmtBlock  TerminalSet
	selStmtDecl   TerminalSet
	selStmtIncDec TerminalSet
	firstExpr     TerminalSet
}

// NewTranslator builds the grammar, computes its sets and proves it LL(1).
func NewTranslator() (*Translator, error) {
	g := DefaultGrammar()
	sets := g.ComputeSets()
	if conflicts := g.Validate(sets); len(conflicts) > 0 {
		return nil, fmt.Errorf("grammar is not LL(1): %s", conflicts[0])
	}
	return &Translator{
		grammar:       g,
		sets:          sets,
		selStmtFor:    sets.SelectSet("Stmt", "ForStmt"),
		selStmtBlock:  sets.SelectSet("Stmt", "Block"),
		selStmtDecl:   sets.SelectSet("Stmt", "DeclStmt", ";"),
		selStmtIncDec: sets.SelectSet("Stmt", "PrefixIncDec", ";"),
		firstExpr:     sets.First["Expr"],
	}, nil
}

// Grammar returns the grammar the translator parses.
func (t *Translator) Grammar() *Grammar {
	return t.grammar
}

// Sets returns the FIRST/FOLLOW/SELECT families computed at construction.
func (t *Translator) Sets() *Sets {
	return t.sets
}

// Translate runs one translation over a normalized token slice. Per-run
// state (stream, emitter, symbol table, diagnostics, traces) is fresh, so a
// single Translator can serve many inputs.
func (t *Translator) Translate(tokens []SyntaxToken) Result {
	t.s = NewTokenStream(tokens)
	t.emit = NewEmitter()
	t.syms = NewSymbolTable()
	t.diags = nil
	t.trace = nil
	t.indent = 0

	t.run()

	ok := true
	for _, d := range t.diags {
		if !d.Kind.Informational() {
			ok = false
			break
		}
	}
	return Result{
		OK:          ok,
		Quads:       t.emit.Quads(),
		Diagnostics: t.diags,
		ParseTrace:  t.trace,
		EmitTrace:   t.emit.Trace(),
	}
}

// TranslateSource is the scan-then-translate convenience: lexical ERROR
// tokens are dropped from the parse but the lexer's output is the caller's
// to report separately.
func TranslateSource(src string) (Result, error) {
	lx, err := lexer.New()
	if err != nil {
		return Result{}, err
	}
	t, err := NewTranslator()
	if err != nil {
		return Result{}, err
	}
	return t.Translate(Normalize(lx.Analyze(src), true)), nil
}

func (t *Translator) run() {
	t.enter("Program")
	t.prod("Program", "StmtList EOF")
	t.stmtList(TerminalSet{"EOF": true})
	if !t.s.AtEnd() {
		t.report(unexpected(t.s.Peek(0), "EOF"))
		for !t.s.AtEnd() {
			t.s.Advance()
		}
	}
	t.matched(t.s.Peek(0))
	t.leave("Program")
}

// stmtList parses statements until a token from stop (or EOF) appears.
func (t *Translator) stmtList(stop TerminalSet) {
	t.enter("StmtList")
	for {
		tok := t.s.Peek(0)
		if tok.Terminal == "EOF" || stop[tok.Terminal] {
			t.prod("StmtList", "ε")
			break
		}
		t.prod("StmtList", "Stmt StmtList")
		t.stmt()
	}
	t.leave("StmtList")
}

// stmt dispatches on the SELECT sets of Stmt's alternatives. Errors inside a
// statement are reported here and the stream resynchronized, so one bad
// statement never aborts the run.
func (t *Translator) stmt() {
	t.enter("Stmt")
	defer t.leave("Stmt")

	startIdx := t.s.Index()
	tok := t.s.Peek(0)
	var err error
	switch {
	case t.selStmtFor[tok.Terminal]:
		t.prod("Stmt", "ForStmt")
		err = t.forStmt()
	case t.selStmtBlock[tok.Terminal]:
		t.prod("Stmt", "Block")
		err = t.block()
	case t.selStmtDecl[tok.Terminal]:
		t.prod("Stmt", "DeclStmt ;")
		if err = t.declStmt(); err == nil {
			_, err = t.expect(";")
		}
	case tok.Terminal == ";":
		t.prod("Stmt", ";")
		_, err = t.expect(";")
	case t.selStmtIncDec[tok.Terminal]:
		t.prod("Stmt", "PrefixIncDec ;")
		if err = t.prefixIncDec(); err == nil {
			_, err = t.expect(";")
		}
	case tok.Terminal == "IDENT":
		t.prod("Stmt", "IDENT IdStmtTail ;")
		table := assignAnalysisTable(t.collectStmtTokens())
		if err = t.idTail("IdStmtTail"); err == nil {
			_, err = t.expect(";")
		}
		if err == nil && len(table) > 0 {
			t.trace = append(t.trace, table...)
		}
	default:
		err = unexpected(tok, "statement")
	}
	if err != nil {
		t.report(err)
		t.resync(startIdx)
	}
}

// collectStmtTokens peeks ahead to the statement's closing ";" (inclusive)
// without moving the cursor, feeding the assignment analysis table.
func (t *Translator) collectStmtTokens() []SyntaxToken {
	const limit = 200
	var out []SyntaxToken
	for k := 0; k < limit; k++ {
		tok := t.s.Peek(k)
		out = append(out, tok)
		if tok.Terminal == ";" || tok.Terminal == "EOF" {
			break
		}
	}
	return out
}

// resync skips to the next ";" (consumed) or "}" (left for the enclosing
// block). If no token was consumed since the statement began, one is forced
// so recovery always makes progress.
func (t *Translator) resync(startIdx int) {
	for !t.s.AtEnd() {
		switch t.s.Peek(0).Terminal {
		case ";":
			t.s.Advance()
			return
		case "}":
			if t.s.Index() == startIdx {
				t.s.Advance()
			}
			return
		}
		t.s.Advance()
	}
}

func (t *Translator) block() error {
	t.enter("Block")
	defer t.leave("Block")
	t.prod("Block", "{ StmtList }")
	if _, err := t.expect("{"); err != nil {
		return err
	}
	t.syms.EnterScope()
	defer t.syms.ExitScope()
	t.stmtList(TerminalSet{"}": true})
	_, err := t.expect("}")
	return err
}

// declStmt parses Type IDENT DeclInitOpt, declares the name and emits the
// initializer store if present. A duplicate keeps the first declaration; the
// initializer still parses and stores into it.
func (t *Translator) declStmt() error {
	t.enter("DeclStmt")
	defer t.leave("DeclStmt")
	t.prod("DeclStmt", "Type IDENT DeclInitOpt")

	typeTok := t.s.Advance()
	t.matched(typeTok)
	idTok, err := t.expect("IDENT")
	if err != nil {
		return err
	}

	sym, res := t.syms.Declare(idTok.Lexeme, TypeFromKeyword(typeTok.Terminal), idTok.Line, idTok.Col)
	switch res {
	case DeclDuplicate:
		t.diag(DuplicateDeclaration, idTok.Line, idTok.Col,
			fmt.Sprintf("%q already declared in this scope at line %d, col %d", idTok.Lexeme, sym.Line, sym.Col))
	case DeclShadows:
		t.diag(ShadowedDeclaration, idTok.Line, idTok.Col,
			fmt.Sprintf("%q shadows an outer declaration", idTok.Lexeme))
	}

	if t.s.Peek(0).Terminal != "=" {
		t.prod("DeclInitOpt", "ε")
		return nil
	}
	t.prod("DeclInitOpt", "= Expr")
	t.matched(t.s.Advance())

	place, typ, err := t.expr()
	if err != nil {
		return err
	}
	if !Assignable(sym.Type, typ) {
		t.diag(TypeIncompatible, idTok.Line, idTok.Col,
			fmt.Sprintf("cannot initialize %s %q with %s value", sym.Type, idTok.Lexeme, typ))
	}
	t.emit.Emit("=", place, "", idTok.Lexeme)
	return nil
}

func (t *Translator) prefixIncDec() error {
	t.enter("PrefixIncDec")
	defer t.leave("PrefixIncDec")
	t.prod("PrefixIncDec", "IncDecOp IDENT")

	opTok := t.s.Advance()
	t.matched(opTok)
	idTok, err := t.expect("IDENT")
	if err != nil {
		return err
	}
	t.emitIncDec(idTok, opTok.Terminal)
	return nil
}

// idTail parses the statement tail after a leading identifier: either an
// increment/decrement or an assignment operator with an expression. The same
// shape serves IdStmtTail and ForIdTail; tailName only labels the trace.
func (t *Translator) idTail(tailName string) error {
	idTok := t.s.Advance()
	t.matched(idTok)

	tok := t.s.Peek(0)
	switch {
	case incDecOps[tok.Terminal]:
		t.prod(tailName, "IncDecOp")
		t.matched(t.s.Advance())
		t.emitIncDec(idTok, tok.Terminal)
		return nil
	case assignOps[tok.Terminal]:
		t.prod(tailName, "AssignOp Expr")
		t.matched(t.s.Advance())
		return t.assignTail(idTok, tok.Terminal)
	}
	return unexpected(tok, "=", "+=", "-=", "*=", "/=", "++", "--")
}

// assignTail finishes an assignment once the operator is consumed. Plain "="
// emits one store; a compound operator desugars into the arithmetic op on a
// fresh temporary followed by the store.
func (t *Translator) assignTail(idTok SyntaxToken, op string) error {
	sym := t.lookupVar(idTok)
	place, typ, err := t.expr()
	if err != nil {
		return err
	}

	if op == "=" {
		if !Assignable(sym.Type, typ) {
			t.diag(TypeIncompatible, idTok.Line, idTok.Col,
				fmt.Sprintf("cannot assign %s value to %s %q", typ, sym.Type, idTok.Lexeme))
		}
		t.emit.Emit("=", place, "", idTok.Lexeme)
		return nil
	}

	arith := compoundArith[op]
	if !Assignable(sym.Type, arithResultType(sym.Type, typ)) {
		t.diag(TypeIncompatible, idTok.Line, idTok.Col,
			fmt.Sprintf("cannot apply %s with %s value to %s %q", op, typ, sym.Type, idTok.Lexeme))
	}
	tmp := t.emit.NewTemp()
	t.emit.Emit(arith, idTok.Lexeme, place, tmp)
	t.emit.Emit("=", tmp, "", idTok.Lexeme)
	return nil
}

// emitIncDec expands ++/-- into the add/subtract quad and the store back.
func (t *Translator) emitIncDec(idTok SyntaxToken, op string) {
	t.lookupVar(idTok)
	arith := "+"
	if op == "--" {
		arith = "-"
	}
	tmp := t.emit.NewTemp()
	t.emit.Emit(arith, idTok.Lexeme, "1", tmp)
	t.emit.Emit("=", tmp, "", idTok.Lexeme)
}

// forStmt linearizes the loop as
//
//	init
//	label L_begin
//	cond
//	ifFalse cond goto L_end
//	body
//	iter
//	goto L_begin
//	label L_end
//
// The iteration clause sits before the body in the source but after it in
// the stream, so its token span is recorded and skipped on first contact,
// then revisited after the body: temporaries number in emission order. The
// loop header opens its own scope, so a declaration in the init clause dies
// with the loop.
func (t *Translator) forStmt() error {
	t.enter("ForStmt")
	defer t.leave("ForStmt")
	t.prod("ForStmt", "for ( ForInitOpt ; ForCondOpt ; ForIterOpt ) Stmt")

	if _, err := t.expect("for"); err != nil {
		return err
	}
	if _, err := t.expect("("); err != nil {
		return err
	}

	t.syms.EnterScope()
	defer t.syms.ExitScope()

	tok := t.s.Peek(0)
	switch {
	case t.selStmtDecl[tok.Terminal]:
		t.prod("ForInitOpt", "DeclStmt")
		if err := t.declStmt(); err != nil {
			return err
		}
	case incDecOps[tok.Terminal]:
		t.prod("ForInitOpt", "PrefixIncDec")
		if err := t.prefixIncDec(); err != nil {
			return err
		}
	case tok.Terminal == "IDENT":
		t.prod("ForInitOpt", "IDENT ForIdTail")
		if err := t.idTail("ForIdTail"); err != nil {
			return err
		}
	default:
		t.prod("ForInitOpt", "ε")
	}
	if _, err := t.expect(";"); err != nil {
		return err
	}

	lBegin := t.emit.NewLabel()
	lEnd := t.emit.NewLabel()
	t.emit.EmitLabel(lBegin)

	condPlace := ""
	if t.firstExpr[t.s.Peek(0).Terminal] {
		t.prod("ForCondOpt", "Expr")
		place, _, err := t.expr()
		if err != nil {
			return err
		}
		condPlace = place
	} else {
		t.prod("ForCondOpt", "ε")
	}
	if _, err := t.expect(";"); err != nil {
		return err
	}
	if condPlace != "" {
		t.emit.EmitIfFalse(condPlace, lEnd)
	}

	iterStart := t.s.Index()
	if err := t.skipToLoopClose(); err != nil {
		return err
	}
	iterEnd := t.s.Index()
	if iterEnd > iterStart {
		t.logf("defer iteration clause (tokens %d..%d)", iterStart, iterEnd-1)
	}
	if _, err := t.expect(")"); err != nil {
		return err
	}

	t.stmt()

	if iterEnd > iterStart {
		resume := t.s.Index()
		t.s.SetIndex(iterStart)
		t.logf("resume iteration clause (token %d)", iterStart)
		if err := t.forIter(iterEnd); err != nil {
			t.report(err)
		}
		t.s.SetIndex(resume)
	} else {
		t.prod("ForIterOpt", "ε")
	}

	t.emit.EmitGoto(lBegin)
	t.emit.EmitLabel(lEnd)
	return nil
}

// skipToLoopClose leaves the cursor on the ")" that closes the loop header,
// tracking nested parentheses inside the iteration clause.
func (t *Translator) skipToLoopClose() error {
	depth := 0
	for {
		tok := t.s.Peek(0)
		switch tok.Terminal {
		case "EOF":
			return unexpected(tok, ")")
		case "(":
			depth++
		case ")":
			if depth == 0 {
				return nil
			}
			depth--
		}
		t.s.Advance()
	}
}

// forIter translates the deferred iteration clause and checks it consumed
// exactly the recorded span.
func (t *Translator) forIter(end int) error {
	tok := t.s.Peek(0)
	var err error
	switch {
	case incDecOps[tok.Terminal]:
		t.prod("ForIterOpt", "PrefixIncDec")
		err = t.prefixIncDec()
	case tok.Terminal == "IDENT":
		t.prod("ForIterOpt", "IDENT ForIdTail")
		err = t.idTail("ForIdTail")
	default:
		err = unexpected(tok, "++", "--", "IDENT")
	}
	if err != nil {
		return err
	}
	if t.s.Index() != end {
		return unexpected(t.s.Peek(0), ")")
	}
	return nil
}

// expr parses the relational level. Chained comparisons associate left, each
// producing an int-typed temporary.
func (t *Translator) expr() (string, VarType, error) {
	t.enter("Expr")
	defer t.leave("Expr")
	t.prod("Expr", "AddExpr RelTail")

	place, typ, err := t.addExpr()
	if err != nil {
		return "", TypeUnknown, err
	}
	for relOps[t.s.Peek(0).Terminal] {
		opTok := t.s.Advance()
		t.prod("RelTail", "RelOp AddExpr RelTail")
		t.matched(opTok)
		right, _, err := t.addExpr()
		if err != nil {
			return "", TypeUnknown, err
		}
		tmp := t.emit.NewTemp()
		t.emit.Emit(opTok.Terminal, place, right, tmp)
		place, typ = tmp, TypeInt
	}
	t.prod("RelTail", "ε")
	return place, typ, nil
}

func (t *Translator) addExpr() (string, VarType, error) {
	t.enter("AddExpr")
	defer t.leave("AddExpr")
	t.prod("AddExpr", "MulExpr AddTail")

	place, typ, err := t.mulExpr()
	if err != nil {
		return "", TypeUnknown, err
	}
	for addOps[t.s.Peek(0).Terminal] {
		opTok := t.s.Advance()
		t.prod("AddTail", "AddOp MulExpr AddTail")
		t.matched(opTok)
		right, rtyp, err := t.mulExpr()
		if err != nil {
			return "", TypeUnknown, err
		}
		tmp := t.emit.NewTemp()
		t.emit.Emit(opTok.Terminal, place, right, tmp)
		place, typ = tmp, arithResultType(typ, rtyp)
	}
	t.prod("AddTail", "ε")
	return place, typ, nil
}

func (t *Translator) mulExpr() (string, VarType, error) {
	t.enter("MulExpr")
	defer t.leave("MulExpr")
	t.prod("MulExpr", "Unary MulTail")

	place, typ, err := t.unary()
	if err != nil {
		return "", TypeUnknown, err
	}
	for mulOps[t.s.Peek(0).Terminal] {
		opTok := t.s.Advance()
		t.prod("MulTail", "MulOp Unary MulTail")
		t.matched(opTok)
		right, rtyp, err := t.unary()
		if err != nil {
			return "", TypeUnknown, err
		}
		tmp := t.emit.NewTemp()
		t.emit.Emit(opTok.Terminal, place, right, tmp)
		place, typ = tmp, arithResultType(typ, rtyp)
	}
	t.prod("MulTail", "ε")
	return place, typ, nil
}

// unary handles prefix + - !. Unary plus is a no-op; minus subtracts from
// zero; logical not always yields int.
func (t *Translator) unary() (string, VarType, error) {
	t.enter("Unary")
	defer t.leave("Unary")

	tok := t.s.Peek(0)
	if !unaryOps[tok.Terminal] {
		t.prod("Unary", "Primary")
		return t.primary()
	}
	t.prod("Unary", "UnaryOp Unary")
	t.matched(t.s.Advance())

	place, typ, err := t.unary()
	if err != nil {
		return "", TypeUnknown, err
	}
	switch tok.Terminal {
	case "+":
		return place, typ, nil
	case "-":
		tmp := t.emit.NewTemp()
		t.emit.Emit("-", "0", place, tmp)
		if typ == TypeChar {
			typ = TypeInt
		}
		return tmp, typ, nil
	default:
		tmp := t.emit.NewTemp()
		t.emit.Emit("!", place, "", tmp)
		return tmp, TypeInt, nil
	}
}

func (t *Translator) primary() (string, VarType, error) {
	t.enter("Primary")
	defer t.leave("Primary")

	tok := t.s.Peek(0)
	switch tok.Terminal {
	case "IDENT":
		t.prod("Primary", "IDENT")
		t.matched(t.s.Advance())
		sym := t.lookupVar(tok)
		return tok.Lexeme, sym.Type, nil
	case "NUM":
		t.prod("Primary", "NUM")
		t.matched(t.s.Advance())
		typ := TypeInt
		if tok.RawType == lexer.FLOAT {
			typ = TypeFloat
		}
		return tok.Lexeme, typ, nil
	case "CHAR":
		t.prod("Primary", "CHAR")
		t.matched(t.s.Advance())
		return tok.Lexeme, TypeChar, nil
	case "(":
		t.prod("Primary", "( Expr )")
		t.matched(t.s.Advance())
		place, typ, err := t.expr()
		if err != nil {
			return "", TypeUnknown, err
		}
		if _, err := t.expect(")"); err != nil {
			return "", TypeUnknown, err
		}
		return place, typ, nil
	}
	return "", TypeUnknown, unexpected(tok, "IDENT", "NUM", "CHAR", "(")
}

// arithResultType is the usual widening: double beats float beats int, char
// operands compute as int, unknown swallows everything.
func arithResultType(a, b VarType) VarType {
	if a == TypeUnknown || b == TypeUnknown {
		return TypeUnknown
	}
	if a == TypeDouble || b == TypeDouble {
		return TypeDouble
	}
	if a == TypeFloat || b == TypeFloat {
		return TypeFloat
	}
	return TypeInt
}

// lookupVar resolves an identifier, reporting UndeclaredVariable once at the
// use site. The returned unknown-typed symbol lets translation continue with
// the raw name.
func (t *Translator) lookupVar(tok SyntaxToken) Symbol {
	sym, ok := t.syms.Lookup(tok.Lexeme)
	if !ok {
		t.diag(UndeclaredVariable, tok.Line, tok.Col, fmt.Sprintf("%q used before declaration", tok.Lexeme))
		return Symbol{Name: tok.Lexeme, Type: TypeUnknown}
	}
	return sym
}

func (t *Translator) expect(terminal string) (SyntaxToken, error) {
	tok := t.s.Peek(0)
	if tok.Terminal != terminal {
		return tok, unexpected(tok, terminal)
	}
	t.s.Advance()
	t.matched(tok)
	return tok, nil
}

func (t *Translator) report(err error) {
	var pe *parseError
	if errors.As(err, &pe) {
		t.diag(SyntaxError, pe.line, pe.col, pe.msg)
		return
	}
	t.diag(SyntaxError, 0, 0, err.Error())
}

func (t *Translator) diag(kind DiagKind, line, col int, msg string) {
	t.diags = append(t.diags, Diagnostic{Kind: kind, Message: msg, Line: line, Col: col})
	t.logf("%s: %s", kind, msg)
}

func (t *Translator) enter(nt string) {
	t.logf("enter <%s>", nt)
	t.indent++
}

func (t *Translator) leave(nt string) {
	t.indent--
	t.logf("leave <%s>", nt)
}

func (t *Translator) prod(lhs, rhs string) {
	t.logf("production: %s -> %s", lhs, rhs)
}

func (t *Translator) matched(tok SyntaxToken) {
	t.logf("match %s %q", tok.Terminal, tok.Lexeme)
}

func (t *Translator) logf(format string, args ...any) {
	t.trace = append(t.trace, strings.Repeat("  ", t.indent)+fmt.Sprintf(format, args...))
}
