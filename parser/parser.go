package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bawdo/quarry/nodes"
)

// ParseError reports a syntax error at the earliest mismatched token.
type ParseError struct {
	Pos      int
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at position %d: expected %s, found %s", e.Pos, e.Expected, e.Found)
}

// reservedWords may not be used as implicit aliases.
var reservedWords = map[string]bool{
	"select": true, "from": true, "where": true, "group": true, "by": true,
	"having": true, "order": true, "limit": true, "offset": true, "as": true,
	"join": true, "inner": true, "left": true, "right": true, "full": true,
	"outer": true, "cross": true, "on": true, "and": true, "or": true,
	"not": true, "asc": true, "desc": true, "case": true, "when": true,
	"then": true, "else": true, "end": true, "distinct": true, "all": true,
	"union": true,
}

func isReserved(word string) bool {
	return reservedWords[strings.ToLower(word)]
}

// Parser is a recursive descent parser over the SQL subset.
type Parser struct {
	lexer *Lexer
	cur   Token
	peek  Token
}

// Parse parses a single statement and requires the whole input to be consumed.
func Parse(input string) (nodes.Statement, error) {
	p := newParser(input)
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != TokenEOF {
		return nil, p.errExpected("end of input")
	}
	return stmt, nil
}

// ParseSelect parses a single SELECT statement.
func ParseSelect(input string) (*nodes.Select, error) {
	stmt, err := Parse(input)
	if err != nil {
		return nil, err
	}
	sel, ok := stmt.(*nodes.Select)
	if !ok {
		return nil, &ParseError{Expected: "SELECT statement", Found: fmt.Sprintf("%T", stmt)}
	}
	return sel, nil
}

func newParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) errExpected(expected string) *ParseError {
	found := p.cur.Text
	if p.cur.Kind == TokenEOF {
		found = "end of input"
	}
	return &ParseError{Pos: p.cur.Pos, Expected: expected, Found: found}
}

// expectKeyword consumes the given keyword or fails.
func (p *Parser) expectKeyword(word string) error {
	if !p.cur.Keyword(word) {
		return p.errExpected(strings.ToUpper(word))
	}
	p.next()
	return nil
}

// expect consumes a token of the given kind or fails.
func (p *Parser) expect(kind TokenKind) (Token, error) {
	if p.cur.Kind != kind {
		return Token{}, p.errExpected(kind.String())
	}
	tok := p.cur
	p.next()
	return tok, nil
}

// parseIdent consumes a bare or quoted identifier.
func (p *Parser) parseIdent() (string, error) {
	switch p.cur.Kind {
	case TokenIdent, TokenQuotedIdent:
		text := p.cur.Text
		p.next()
		return text, nil
	default:
		return "", p.errExpected("identifier")
	}
}

func (p *Parser) parseStatement() (nodes.Statement, error) {
	switch {
	case p.cur.Keyword("select"):
		return p.parseSelect()
	case p.cur.Keyword("create"):
		return p.parseCreateTableAs()
	case p.cur.Keyword("drop"):
		return p.parseDropTable()
	case p.cur.Keyword("copy"):
		return p.parseCopy()
	case p.cur.Keyword("show"):
		return p.parseShow()
	default:
		return nil, p.errExpected("statement")
	}
}

// --- SELECT ---

func (p *Parser) parseSelect() (*nodes.Select, error) {
	if err := p.expectKeyword("select"); err != nil {
		return nil, err
	}

	sel := &nodes.Select{Quantifier: nodes.All}
	if p.cur.Keyword("all") {
		p.next()
	} else if p.cur.Keyword("distinct") {
		sel.Quantifier = nodes.Distinct
		p.next()
	}

	if p.cur.Kind == TokenStar {
		sel.SelectStar = true
		p.next()
	} else {
		for {
			col, err := p.parseDerivedColumn()
			if err != nil {
				return nil, err
			}
			sel.SelectList = append(sel.SelectList, col)
			if p.cur.Kind != TokenComma {
				break
			}
			p.next()
		}
	}

	// FROM is optional at parse time; a select without sources is rejected
	// by the compiler, not here.
	if p.cur.Keyword("from") {
		p.next()
		for {
			ref, err := p.parseTableRef()
			if err != nil {
				return nil, err
			}
			sel.From = append(sel.From, ref)
			if p.cur.Kind != TokenComma {
				break
			}
			p.next()
		}
	}

	if p.cur.Keyword("where") {
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Where = expr
	}

	if p.cur.Keyword("group") {
		p.next()
		if err := p.expectKeyword("by"); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			sel.GroupBy = append(sel.GroupBy, expr)
			if p.cur.Kind != TokenComma {
				break
			}
			p.next()
		}
	}

	if p.cur.Keyword("having") {
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Having = expr
	}

	if p.cur.Keyword("order") {
		p.next()
		if err := p.expectKeyword("by"); err != nil {
			return nil, err
		}
		for {
			key, err := p.parseOrderKey()
			if err != nil {
				return nil, err
			}
			sel.OrderBy = append(sel.OrderBy, key)
			if p.cur.Kind != TokenComma {
				break
			}
			p.next()
		}
	}

	if p.cur.Keyword("limit") {
		p.next()
		limit, err := p.parseLimit()
		if err != nil {
			return nil, err
		}
		sel.Limit = limit
	}

	return sel, nil
}

func (p *Parser) parseDerivedColumn() (*nodes.DerivedColumn, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	col := nodes.NewDerivedColumn(expr, "")
	if p.cur.Keyword("as") {
		p.next()
		alias, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		col.Alias = alias
	} else if p.implicitAlias() {
		col.Alias = p.cur.Text
		p.next()
	}
	return col, nil
}

// implicitAlias reports whether the current token can serve as an alias
// without an AS keyword.
func (p *Parser) implicitAlias() bool {
	switch p.cur.Kind {
	case TokenQuotedIdent:
		return true
	case TokenIdent:
		return !isReserved(p.cur.Text)
	default:
		return false
	}
}

func (p *Parser) parseOrderKey() (nodes.OrderKey, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nodes.OrderKey{}, err
	}
	key := nodes.OrderKey{Value: expr, Direction: nodes.Ascending}
	if p.cur.Keyword("asc") {
		p.next()
	} else if p.cur.Keyword("desc") {
		key.Direction = nodes.Descending
		p.next()
	}
	return key, nil
}

// parseLimit handles `LIMIT n`, `LIMIT offset, n`, and `LIMIT n OFFSET m`.
func (p *Parser) parseLimit() (*nodes.LimitClause, error) {
	first, err := p.parseNonNegInt()
	if err != nil {
		return nil, err
	}

	switch {
	case p.cur.Kind == TokenComma:
		p.next()
		count, err := p.parseNonNegInt()
		if err != nil {
			return nil, err
		}
		return &nodes.LimitClause{Offset: first, Count: count}, nil

	case p.cur.Keyword("offset"):
		p.next()
		offset, err := p.parseNonNegInt()
		if err != nil {
			return nil, err
		}
		return &nodes.LimitClause{Offset: offset, Count: first}, nil

	default:
		return &nodes.LimitClause{Offset: 0, Count: first}, nil
	}
}

func (p *Parser) parseNonNegInt() (int, error) {
	tok, err := p.expect(TokenInt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok.Text)
	if err != nil {
		return 0, &ParseError{Pos: tok.Pos, Expected: "integer", Found: tok.Text}
	}
	return n, nil
}

// --- FROM clause ---

func (p *Parser) parseTableRef() (nodes.TableExpr, error) {
	base, err := p.parseBaseTable()
	if err != nil {
		return nil, err
	}

	var joins []nodes.JoinStep
	for {
		step, ok, err := p.parseJoinStep()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		joins = append(joins, step)
	}

	if len(joins) == 0 {
		return base, nil
	}
	return &nodes.JoinedTable{Left: base, Joins: joins}, nil
}

func (p *Parser) parseBaseTable() (nodes.TableExpr, error) {
	if p.cur.Kind == TokenLParen {
		p.next()
		sub, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		// The grammar accepts an alias after a subquery but the AST carries
		// none; resolution happens against the subquery's own columns.
		if p.cur.Keyword("as") {
			p.next()
			if _, err := p.parseIdent(); err != nil {
				return nil, err
			}
		} else if p.implicitAlias() {
			p.next()
		}
		return sub, nil
	}

	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	ref := &nodes.TableName{Table: name}
	if p.cur.Keyword("as") {
		p.next()
		alias, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		ref.Alias = alias
	} else if p.implicitAlias() {
		ref.Alias = p.cur.Text
		p.next()
	}
	return ref, nil
}

// parseJoinStep consumes a single join specification if one starts at the
// current token. ok is false when the current token does not start a join.
func (p *Parser) parseJoinStep() (nodes.JoinStep, bool, error) {
	if p.cur.Keyword("cross") {
		p.next()
		if err := p.expectKeyword("join"); err != nil {
			return nil, false, err
		}
		table, err := p.parseBaseTable()
		if err != nil {
			return nil, false, err
		}
		return &nodes.CrossJoin{Table: table}, true, nil
	}

	how := nodes.InnerJoin
	switch {
	case p.cur.Keyword("join"):
	case p.cur.Keyword("inner"):
		p.next()
	case p.cur.Keyword("left"):
		how = nodes.LeftOuterJoin
		p.next()
		if p.cur.Keyword("outer") {
			p.next()
		}
	case p.cur.Keyword("right"):
		how = nodes.RightOuterJoin
		p.next()
		if p.cur.Keyword("outer") {
			p.next()
		}
	case p.cur.Keyword("full"):
		how = nodes.FullOuterJoin
		p.next()
		if p.cur.Keyword("outer") {
			p.next()
		}
	default:
		return nil, false, nil
	}

	if err := p.expectKeyword("join"); err != nil {
		return nil, false, err
	}
	table, err := p.parseBaseTable()
	if err != nil {
		return nil, false, err
	}
	if err := p.expectKeyword("on"); err != nil {
		return nil, false, err
	}
	on, err := p.parseExpr()
	if err != nil {
		return nil, false, err
	}
	return &nodes.Join{How: how, Table: table, On: on}, true, nil
}

// --- Expressions ---

func (p *Parser) parseExpr() (nodes.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (nodes.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur.Keyword("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = nodes.NewBinaryExpr(nodes.OpOr, left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (nodes.Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.cur.Keyword("and") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = nodes.NewBinaryExpr(nodes.OpAnd, left, right)
	}
	return left, nil
}

func (p *Parser) parseNot() (nodes.Expr, error) {
	if p.cur.Keyword("not") {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &nodes.UnaryExpr{Op: nodes.OpNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[TokenKind]nodes.BinaryOp{
	TokenEq:    nodes.OpEq,
	TokenNotEq: nodes.OpNe,
	TokenLt:    nodes.OpLt,
	TokenLtEq:  nodes.OpLe,
	TokenGt:    nodes.OpGt,
	TokenGtEq:  nodes.OpGe,
}

func (p *Parser) parseComparison() (nodes.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	op, ok := comparisonOps[p.cur.Kind]
	if !ok {
		return left, nil
	}
	p.next()
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return nodes.NewBinaryExpr(op, left, right), nil
}

func (p *Parser) parseAdditive() (nodes.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op nodes.BinaryOp
		switch p.cur.Kind {
		case TokenPlus:
			op = nodes.OpAdd
		case TokenMinus:
			op = nodes.OpSub
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = nodes.NewBinaryExpr(op, left, right)
	}
}

func (p *Parser) parseMultiplicative() (nodes.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op nodes.BinaryOp
		switch p.cur.Kind {
		case TokenStar:
			op = nodes.OpMul
		case TokenSlash:
			op = nodes.OpDiv
		case TokenPercent:
			op = nodes.OpMod
		default:
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = nodes.NewBinaryExpr(op, left, right)
	}
}

func (p *Parser) parseUnary() (nodes.Expr, error) {
	switch p.cur.Kind {
	case TokenMinus:
		p.next()
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &nodes.UnaryExpr{Op: nodes.OpNeg, Operand: operand}, nil
	case TokenPlus:
		p.next()
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &nodes.UnaryExpr{Op: nodes.OpPos, Operand: operand}, nil
	default:
		return p.parsePrimary()
	}
}

var setFuncs = map[string]nodes.SetFunc{
	"count": nodes.SetCount,
	"sum":   nodes.SetSum,
	"avg":   nodes.SetAvg,
	"min":   nodes.SetMin,
	"max":   nodes.SetMax,
}

func (p *Parser) parsePrimary() (nodes.Expr, error) {
	switch p.cur.Kind {
	case TokenInt:
		text := p.cur.Text
		p.next()
		return &nodes.Integer{Text: text}, nil

	case TokenFloat:
		text := p.cur.Text
		p.next()
		return &nodes.Float{Text: text}, nil

	case TokenString:
		text := p.cur.Text
		p.next()
		return &nodes.String{Text: text}, nil

	case TokenLParen:
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return expr, nil

	case TokenQuotedIdent:
		return p.parseColumnReference()

	case TokenIdent:
		switch {
		case p.cur.Keyword("true"):
			p.next()
			return &nodes.Bool{Value: true}, nil
		case p.cur.Keyword("false"):
			p.next()
			return &nodes.Bool{Value: false}, nil
		case p.cur.Keyword("null"):
			p.next()
			return &nodes.Null{}, nil
		case p.cur.Keyword("case"):
			return p.parseCase()
		case p.cur.Keyword("cast") && p.peek.Kind == TokenLParen:
			return p.parseCast()
		}

		if isReserved(p.cur.Text) {
			return nil, p.errExpected("expression")
		}
		if fn, ok := setFuncs[strings.ToLower(p.cur.Text)]; ok && p.peek.Kind == TokenLParen {
			return p.parseSetFunction(fn)
		}
		if p.peek.Kind == TokenLParen {
			return p.parseFunctionCall()
		}
		return p.parseColumnReference()

	default:
		return nil, p.errExpected("expression")
	}
}

func (p *Parser) parseColumnReference() (nodes.Expr, error) {
	first, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	parts := []string{first}
	for p.cur.Kind == TokenDot {
		if len(parts) == 3 {
			return nil, p.errExpected("identifier path of at most three parts")
		}
		p.next()
		part, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return &nodes.ColumnReference{Parts: parts}, nil
}

func (p *Parser) parseSetFunction(fn nodes.SetFunc) (nodes.Expr, error) {
	p.next() // function name
	p.next() // (

	if p.cur.Kind == TokenStar {
		if fn != nodes.SetCount {
			return nil, p.errExpected("expression")
		}
		p.next()
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return &nodes.SetFunction{Func: fn, Arg: nodes.Star()}, nil
	}

	arg, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return &nodes.SetFunction{Func: fn, Arg: arg}, nil
}

func (p *Parser) parseFunctionCall() (nodes.Expr, error) {
	name := p.cur.Text
	p.next() // function name
	p.next() // (

	call := &nodes.FunctionCall{Name: name}
	if p.cur.Kind != TokenRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if p.cur.Kind != TokenComma {
				break
			}
			p.next()
		}
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseCase() (nodes.Expr, error) {
	p.next() // CASE

	expr := nodes.NewCase()
	if !p.cur.Keyword("when") {
		return nil, p.errExpected("WHEN")
	}
	for p.cur.Keyword("when") {
		p.next()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("then"); err != nil {
			return nil, err
		}
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr.When(cond, result)
	}
	if p.cur.Keyword("else") {
		p.next()
		elseVal, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr.Else(elseVal)
	}
	if err := p.expectKeyword("end"); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseCast() (nodes.Expr, error) {
	p.next() // CAST
	p.next() // (

	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("as"); err != nil {
		return nil, err
	}
	typeName, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return &nodes.Cast{Value: value, TypeName: typeName}, nil
}

// --- Non-core statements ---

func (p *Parser) parseCreateTableAs() (nodes.Statement, error) {
	p.next() // CREATE
	if err := p.expectKeyword("table"); err != nil {
		return nil, err
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("as"); err != nil {
		return nil, err
	}
	query, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	return &nodes.CreateTableAs{Name: name, Query: query}, nil
}

func (p *Parser) parseDropTable() (nodes.Statement, error) {
	p.next() // DROP
	if err := p.expectKeyword("table"); err != nil {
		return nil, err
	}
	drop := &nodes.DropTable{}
	for {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		drop.Names = append(drop.Names, name)
		if p.cur.Kind != TokenComma {
			break
		}
		p.next()
	}
	return drop, nil
}

func (p *Parser) parseCopy() (nodes.Statement, error) {
	p.next() // COPY
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	var toFile bool
	switch {
	case p.cur.Keyword("from"):
	case p.cur.Keyword("to"):
		toFile = true
	default:
		return nil, p.errExpected("FROM or TO")
	}
	p.next()

	fileTok, err := p.expect(TokenString)
	if err != nil {
		return nil, err
	}
	filename := (&nodes.String{Text: fileTok.Text}).Value()

	options, err := p.parseCopyOptions()
	if err != nil {
		return nil, err
	}

	if toFile {
		return &nodes.CopyTo{Name: name, Filename: filename, Options: options}, nil
	}
	return &nodes.CopyFrom{Name: name, Filename: filename, Options: options}, nil
}

// parseCopyOptions handles an optional `WITH ( key value, ... )` tail.
func (p *Parser) parseCopyOptions() ([]nodes.CopyOption, error) {
	if !p.cur.Keyword("with") {
		return nil, nil
	}
	p.next()
	if _, err := p.expect(TokenLParen); err != nil {
		return nil, err
	}

	var options []nodes.CopyOption
	for {
		key, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		value, err := p.parseOptionValue()
		if err != nil {
			return nil, err
		}
		options = append(options, nodes.CopyOption{Key: strings.ToUpper(key), Value: value})
		if p.cur.Kind != TokenComma {
			break
		}
		p.next()
	}
	if _, err := p.expect(TokenRParen); err != nil {
		return nil, err
	}
	return options, nil
}

func (p *Parser) parseOptionValue() (string, error) {
	switch p.cur.Kind {
	case TokenIdent, TokenQuotedIdent, TokenInt, TokenFloat:
		text := p.cur.Text
		p.next()
		return text, nil
	case TokenString:
		text := (&nodes.String{Text: p.cur.Text}).Value()
		p.next()
		return text, nil
	default:
		return "", p.errExpected("option value")
	}
}

func (p *Parser) parseShow() (nodes.Statement, error) {
	p.next() // SHOW
	show := &nodes.Show{}
	for {
		switch p.cur.Kind {
		case TokenIdent, TokenQuotedIdent:
			show.Args = append(show.Args, p.cur.Text)
			p.next()
		case TokenString:
			show.Args = append(show.Args, (&nodes.String{Text: p.cur.Text}).Value())
			p.next()
		default:
			return nil, p.errExpected("identifier")
		}
		if p.cur.Kind != TokenComma {
			break
		}
		p.next()
	}
	return show, nil
}
