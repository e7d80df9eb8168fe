package jinja

// Recursive-descent parser for the Jinja expression grammar. Only syntax is
// checked; nothing is resolved or evaluated, so the parse functions return
// just an error position.

type exprParser struct {
	toks []token
	pos  int
}

func newParser(src string, startLine int) (*exprParser, *SyntaxError) {
	toks, err := lexAll(src, startLine)
	if err != nil {
		return nil, err
	}
	return &exprParser{toks: toks}, nil
}

// checkOutputExpression validates the inside of a "{{ ... }}" block. Jinja
// allows a top-level tuple ("{{ a, b }}").
func checkOutputExpression(src string, startLine int) *SyntaxError {
	p, err := newParser(src, startLine)
	if err != nil {
		return err
	}
	if p.cur().typ == tokEOF {
		return errAt(startLine, "empty expression block")
	}
	if err := p.parseTuple(); err != nil {
		return err
	}
	return p.expectEOF()
}

func (p *exprParser) cur() token {
	return p.toks[p.pos]
}

func (p *exprParser) advance() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *exprParser) isOp(val string) bool {
	t := p.cur()
	return t.typ == tokOp && t.val == val
}

func (p *exprParser) acceptOp(val string) bool {
	if p.isOp(val) {
		p.advance()
		return true
	}
	return false
}

func (p *exprParser) expectOp(val string) *SyntaxError {
	if !p.acceptOp(val) {
		return errAt(p.cur().line, "expected %q, got %s", val, p.cur().describe())
	}
	return nil
}

func (p *exprParser) isName(val string) bool {
	t := p.cur()
	return t.typ == tokName && t.val == val
}

func (p *exprParser) acceptName(val string) bool {
	if p.isName(val) {
		p.advance()
		return true
	}
	return false
}

func (p *exprParser) expectName() (token, *SyntaxError) {
	t := p.cur()
	if t.typ != tokName {
		return t, errAt(t.line, "expected name, got %s", t.describe())
	}
	return p.advance(), nil
}

func (p *exprParser) expectEOF() *SyntaxError {
	if t := p.cur(); t.typ != tokEOF {
		return errAt(t.line, "unexpected %s", t.describe())
	}
	return nil
}

// reservedNames are expression keywords that cannot stand alone as values.
var reservedNames = map[string]bool{
	"and": true, "or": true, "not": true,
	"in": true, "is": true, "if": true, "else": true,
}

// parseTuple parses expr (, expr)* with an optional trailing comma.
func (p *exprParser) parseTuple() *SyntaxError {
	if err := p.parseExpr(); err != nil {
		return err
	}
	for p.acceptOp(",") {
		if p.cur().typ == tokEOF || p.isOp(")") || p.isOp("]") || p.isOp("}") {
			return nil
		}
		if err := p.parseExpr(); err != nil {
			return err
		}
	}
	return nil
}

// parseExpr parses a conditional expression: "a if cond else b".
func (p *exprParser) parseExpr() *SyntaxError {
	if err := p.parseOr(); err != nil {
		return err
	}
	if p.acceptName("if") {
		if err := p.parseOr(); err != nil {
			return err
		}
		if p.acceptName("else") {
			return p.parseExpr()
		}
	}
	return nil
}

func (p *exprParser) parseOr() *SyntaxError {
	if err := p.parseAnd(); err != nil {
		return err
	}
	for p.acceptName("or") {
		if err := p.parseAnd(); err != nil {
			return err
		}
	}
	return nil
}

func (p *exprParser) parseAnd() *SyntaxError {
	if err := p.parseNot(); err != nil {
		return err
	}
	for p.acceptName("and") {
		if err := p.parseNot(); err != nil {
			return err
		}
	}
	return nil
}

func (p *exprParser) parseNot() *SyntaxError {
	if p.acceptName("not") {
		return p.parseNot()
	}
	return p.parseComparison()
}

var comparisonOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

func (p *exprParser) parseComparison() *SyntaxError {
	if err := p.parseConcat(); err != nil {
		return err
	}
	for {
		t := p.cur()
		switch {
		case t.typ == tokOp && comparisonOps[t.val]:
			p.advance()
			if err := p.parseConcat(); err != nil {
				return err
			}
		case p.isName("in"):
			p.advance()
			if err := p.parseConcat(); err != nil {
				return err
			}
		case p.isName("not"):
			p.advance()
			if !p.acceptName("in") {
				return errAt(p.cur().line, "expected 'in' after 'not' in comparison")
			}
			if err := p.parseConcat(); err != nil {
				return err
			}
		case p.isName("is"):
			p.advance()
			if err := p.parseTest(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// parseTest handles "x is defined", "x is not none", "x is divisibleby 3",
// "x is search('pat')". Test names are not resolved.
func (p *exprParser) parseTest() *SyntaxError {
	p.acceptName("not")
	t := p.cur()
	if t.typ != tokName {
		return errAt(t.line, "expected test name after 'is', got %s", t.describe())
	}
	p.advance()
	if p.acceptOp("(") {
		return p.parseCallArgs()
	}
	// Bare literal argument form: "is divisibleby 3".
	if p.cur().typ == tokNumber || p.cur().typ == tokString {
		p.advance()
	}
	return nil
}

func (p *exprParser) parseConcat() *SyntaxError {
	if err := p.parseAdd(); err != nil {
		return err
	}
	for p.acceptOp("~") {
		if err := p.parseAdd(); err != nil {
			return err
		}
	}
	return nil
}

func (p *exprParser) parseAdd() *SyntaxError {
	if err := p.parseMul(); err != nil {
		return err
	}
	for p.isOp("+") || p.isOp("-") {
		p.advance()
		if err := p.parseMul(); err != nil {
			return err
		}
	}
	return nil
}

func (p *exprParser) parseMul() *SyntaxError {
	if err := p.parseUnary(); err != nil {
		return err
	}
	for p.isOp("*") || p.isOp("/") || p.isOp("//") || p.isOp("%") {
		p.advance()
		if err := p.parseUnary(); err != nil {
			return err
		}
	}
	return nil
}

func (p *exprParser) parseUnary() *SyntaxError {
	for p.isOp("+") || p.isOp("-") {
		p.advance()
	}
	return p.parsePower()
}

func (p *exprParser) parsePower() *SyntaxError {
	if err := p.parsePostfix(); err != nil {
		return err
	}
	if p.acceptOp("**") {
		return p.parseUnary()
	}
	return nil
}

// parsePostfix parses a primary followed by attribute access, subscripts,
// calls, and filter applications.
func (p *exprParser) parsePostfix() *SyntaxError {
	if err := p.parsePrimary(); err != nil {
		return err
	}
	for {
		switch {
		case p.acceptOp("."):
			t := p.cur()
			if t.typ != tokName && t.typ != tokNumber {
				return errAt(t.line, "expected attribute name after '.', got %s", t.describe())
			}
			p.advance()
		case p.acceptOp("["):
			if err := p.parseSubscript(); err != nil {
				return err
			}
		case p.acceptOp("("):
			if err := p.parseCallArgs(); err != nil {
				return err
			}
		case p.acceptOp("|"):
			t := p.cur()
			if t.typ != tokName {
				return errAt(t.line, "expected filter name after '|', got %s", t.describe())
			}
			p.advance()
			if p.acceptOp("(") {
				if err := p.parseCallArgs(); err != nil {
					return err
				}
			}
		default:
			return nil
		}
	}
}

func (p *exprParser) parsePrimary() *SyntaxError {
	t := p.cur()
	switch {
	case t.typ == tokNumber:
		p.advance()
		return nil
	case t.typ == tokString:
		// Adjacent string literals concatenate.
		for p.cur().typ == tokString {
			p.advance()
		}
		return nil
	case t.typ == tokName:
		if reservedNames[t.val] {
			return errAt(t.line, "unexpected keyword %q", t.val)
		}
		p.advance()
		return nil
	case t.typ == tokOp && t.val == "(":
		p.advance()
		if p.acceptOp(")") {
			return nil
		}
		if err := p.parseTuple(); err != nil {
			return err
		}
		return p.expectOp(")")
	case t.typ == tokOp && t.val == "[":
		p.advance()
		if p.acceptOp("]") {
			return nil
		}
		if err := p.parseTuple(); err != nil {
			return err
		}
		return p.expectOp("]")
	case t.typ == tokOp && t.val == "{":
		p.advance()
		return p.parseDict()
	case t.typ == tokEOF:
		return errAt(t.line, "unexpected end of expression")
	default:
		return errAt(t.line, "unexpected %s", t.describe())
	}
}

func (p *exprParser) parseDict() *SyntaxError {
	if p.acceptOp("}") {
		return nil
	}
	for {
		if err := p.parseExpr(); err != nil {
			return err
		}
		if err := p.expectOp(":"); err != nil {
			return err
		}
		if err := p.parseExpr(); err != nil {
			return err
		}
		if !p.acceptOp(",") {
			break
		}
		if p.isOp("}") {
			break
		}
	}
	return p.expectOp("}")
}

// parseSubscript parses "[expr]" and slice forms like "[1:]", "[:n]",
// "[a:b:c]". The opening bracket is already consumed.
func (p *exprParser) parseSubscript() *SyntaxError {
	sawPart := false
	for {
		if p.isOp("]") {
			break
		}
		if p.acceptOp(":") {
			sawPart = true
			continue
		}
		if err := p.parseExpr(); err != nil {
			return err
		}
		sawPart = true
		if p.acceptOp(":") {
			continue
		}
		break
	}
	if !sawPart {
		return errAt(p.cur().line, "empty subscript")
	}
	return p.expectOp("]")
}

// parseCallArgs parses a call argument list after the opening paren:
// positional and keyword arguments, * and ** splats, trailing commas.
func (p *exprParser) parseCallArgs() *SyntaxError {
	if p.acceptOp(")") {
		return nil
	}
	for {
		switch {
		case p.acceptOp("**"), p.acceptOp("*"):
			if err := p.parseExpr(); err != nil {
				return err
			}
		case p.cur().typ == tokName && !reservedNames[p.cur().val] && p.peekIsKwarg():
			p.advance()
			p.advance() // '='
			if err := p.parseExpr(); err != nil {
				return err
			}
		default:
			if err := p.parseExpr(); err != nil {
				return err
			}
		}
		if !p.acceptOp(",") {
			break
		}
		if p.isOp(")") {
			break
		}
	}
	return p.expectOp(")")
}

// peekIsKwarg reports whether the current name token starts a keyword
// argument ("name=expr").
func (p *exprParser) peekIsKwarg() bool {
	if p.pos+1 >= len(p.toks) {
		return false
	}
	next := p.toks[p.pos+1]
	return next.typ == tokOp && next.val == "="
}
