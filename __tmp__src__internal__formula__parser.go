package formula

import (
	"fmt"
	"strings"

	"github.com/sheetcore/engine/internal/ref"
)

// Parser is a recursive-descent parser over a pre-lexed token stream.
// It is a pure function of its input: ParseFormula never mutates
// shared state and always returns either a tree or an error.
type Parser struct {
	toks []Token
	pos  int
}

// ParseFormula parses formula text (without the leading "="). A
// lexical or grammatical failure is reported as an error; the caller
// is responsible for turning that into a PARSE_ERROR value.
func ParseFormula(src string) (Node, error) {
	lex := NewLexer(src)
	toks, errs := lex.Tokenize()
	if len(errs) > 0 {
		return nil, fmt.Errorf("formula: %s", strings.Join(errs, "; "))
	}
	p := &Parser{toks: toks}
	expr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenEOF {
		return nil, fmt.Errorf("formula: unexpected trailing token %q", p.current().Text)
	}
	return expr, nil
}

func (p *Parser) current() Token { return p.toks[p.pos] }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if p.current().Type != tt {
		return Token{}, fmt.Errorf("formula: expected %s, got %q", what, p.current().Text)
	}
	return p.advance(), nil
}

var comparisonOps = map[TokenType]string{
	TokenEq: "=", TokenNotEq: "<>", TokenLt: "<", TokenGt: ">",
	TokenLtEq: "<=", TokenGtEq: ">=",
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOps[p.current().Type]
		if !ok {
			return left, nil
		}
		// preserve the source spelling ("==" vs "=", "!=" vs "<>")
		op = p.current().Text
		p.advance()
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseConcat() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenAmpersand {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Op: "&", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		op := p.advance().Text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenStar || p.current().Type == TokenSlash {
		op := p.advance().Text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOpNode{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		op := p.advance().Text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOpNode{Op: op, Operand: operand}, nil
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() (Node, error) {
	tok := p.current()
	switch tok.Type {
	case TokenLParen:
		p.advance()
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen, ")"); err != nil {
			return nil, err
		}
		return &ParenNode{Inner: inner}, nil
	case TokenNumber:
		p.advance()
		return NumberNode{Text: tok.Text}, nil
	case TokenString:
		p.advance()
		return StringNode{Value: tok.Text}, nil
	case TokenBoolean:
		p.advance()
		return BooleanNode{Value: strings.EqualFold(tok.Text, "true")}, nil
	case TokenError:
		p.advance()
		return ErrorLiteralNode{Text: tok.Text}, nil
	case TokenIdent:
		return p.parseIdentOrCall()
	case TokenCellRef:
		return p.parseCellRefOrRange()
	}
	return nil, fmt.Errorf("formula: unexpected token %q", tok.Text)
}

func (p *Parser) parseIdentOrCall() (Node, error) {
	name := p.advance().Text

	if p.current().Type == TokenBang {
		// "SheetName!ref" where the sheet name was lexed as a bare
		// identifier (unquoted), and ref follows as a TokenCellRef.
		p.advance()
		cellTok, err := p.expect(TokenCellRef, "cell reference")
		if err != nil {
			return nil, err
		}
		return p.finishCellRefOrRange(name, cellTok.Text)
	}

	if p.current().Type != TokenLParen {
		return nil, fmt.Errorf("formula: unrecognized identifier %q", name)
	}
	p.advance()

	var args []Node
	if p.current().Type != TokenRParen {
		for {
			arg, err := p.parseComparison()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.current().Type == TokenComma {
				p.advance()
				continue
			}
			break
		}
	}
	if _, err := p.expect(TokenRParen, ")"); err != nil {
		return nil, err
	}
	return &FunctionCallNode{Name: name, Args: args}, nil
}

func (p *Parser) parseCellRefOrRange() (Node, error) {
	tok := p.advance()
	node, err := p.finishCellRefOrRange("", tok.Text)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// finishCellRefOrRange builds a CellRefNode (or RangeNode, if a colon
// follows) from raw reference text, optionally prefixed with an
// explicit sheet name already consumed as a bare identifier.
func (p *Parser) finishCellRefOrRange(explicitSheet, refText string) (Node, error) {
	startRef, startText, malformed := parseCellToken(explicitSheet, refText)

	if p.current().Type != TokenColon {
		return &CellRefNode{Reference: startRef, SheetGiven: explicitSheet != "" || startRef.SheetName != "", RefText: startText, Malformed: malformed}, nil
	}
	p.advance()

	endTok, err := p.expect(TokenCellRef, "range end reference")
	if err != nil {
		return nil, err
	}
	endRef, endText, endMalformed := parseCellToken("", endTok.Text)

	start := CellRefNode{Reference: startRef, SheetGiven: explicitSheet != "" || startRef.SheetName != "", RefText: startText, Malformed: malformed}
	end := CellRefNode{Reference: endRef, SheetGiven: endRef.SheetName != "", RefText: endText, Malformed: endMalformed}
	return &RangeNode{Start: start, End: end}, nil
}

// parseCellToken parses a TokenCellRef's raw text (which may already
// embed a quoted "'Sheet'!" prefix, or receive an explicit bare sheet
// name from the caller) into a ref.Reference. On failure it returns
// malformed=true and the literal text, so the evaluator can surface
// BAD_REFERENCE instead of the parser failing the whole formula.
func parseCellToken(explicitSheet, text string) (ref.Reference, string, bool) {
	full := text
	if explicitSheet != "" {
		full = explicitSheet + "!" + text
	}
	r, err := ref.ParseReference(full, ref.ParseOptions{AllowAbsolute: true})
	if err != nil {
		return ref.Reference{}, full, true
	}
	return r, full, false
}


