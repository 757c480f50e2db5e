package gates

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// ParseResult is the outcome of parsing a raw gate spec. AST is never nil:
// when nothing usable was parsed it is the True sentinel. ParseComplete is
// false iff at least one element failed to parse; the failures are recorded
// in Errors and the surviving elements still contribute to the AST.
type ParseResult struct {
	AST           *Node    `json:"ast"`
	ParseComplete bool     `json:"parseComplete"`
	Errors        []string `json:"errors,omitempty"`
}

// Parse parses a raw gate spec into an AST. It accepts a predicate string, a
// slice of strings/objects (implicitly AND-ed), or a JSON-Logic-like object.
func Parse(input shared.GateSpec) ParseResult {
	result := ParseResult{ParseComplete: true}

	switch spec := input.(type) {
	case nil:
		result.AST = True()
	case *Node:
		result.AST = spec
	case string:
		ast, err := parseString(spec)
		if err != nil {
			result.ParseComplete = false
			result.Errors = append(result.Errors, err.Error())
			result.AST = True()
			return result
		}
		result.AST = ast
	case []string:
		elems := make([]interface{}, len(spec))
		for i, s := range spec {
			elems[i] = s
		}
		return parseSlice(elems)
	case []interface{}:
		return parseSlice(spec)
	case map[string]interface{}:
		ast, err := parseLogicObject(spec)
		if err != nil {
			result.ParseComplete = false
			result.Errors = append(result.Errors, err.Error())
			result.AST = True()
			return result
		}
		result.AST = ast
	default:
		result.ParseComplete = false
		result.Errors = append(result.Errors, fmt.Sprintf("unsupported gate spec type %T", input))
		result.AST = True()
	}

	return result
}

func parseSlice(elems []interface{}) ParseResult {
	result := ParseResult{ParseComplete: true}
	children := make([]*Node, 0, len(elems))

	for i, elem := range elems {
		var ast *Node
		var err error

		switch e := elem.(type) {
		case string:
			ast, err = parseString(e)
		case map[string]interface{}:
			ast, err = parseLogicObject(e)
		case *Node:
			ast = e
		default:
			err = fmt.Errorf("unsupported gate element type %T", elem)
		}

		if err != nil {
			result.ParseComplete = false
			result.Errors = append(result.Errors, fmt.Sprintf("element %d: %v", i, err))
			continue
		}
		if !ast.IsTrue() {
			children = append(children, ast)
		}
	}

	switch len(children) {
	case 0:
		result.AST = True()
	case 1:
		result.AST = children[0]
	default:
		result.AST = And(children...)
	}
	return result
}

// ============================================================================
// Predicate String Parsing
// ============================================================================

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenOperator
	tokenNumber
	tokenAnd
	tokenOr
	tokenEOF
)

type token struct {
	kind tokenKind
	text string
}

// parseString parses "axis OP threshold [AND|OR axis OP threshold]*" with
// case-insensitive connectives. OR binds looser than AND.
func parseString(input string) (*Node, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 1 { // only EOF: blank gate means no constraint
		return True(), nil
	}

	p := &stringParser{tokens: tokens}
	ast, err := p.parseDisjunction()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenEOF {
		return nil, fmt.Errorf("unexpected trailing input %q in gate %q", p.peek().text, input)
	}
	return ast, nil
}

type stringParser struct {
	tokens []token
	pos    int
}

func (p *stringParser) peek() token { return p.tokens[p.pos] }

func (p *stringParser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *stringParser) parseDisjunction() (*Node, error) {
	first, err := p.parseConjunction()
	if err != nil {
		return nil, err
	}
	children := []*Node{first}
	for p.peek().kind == tokenOr {
		p.next()
		child, err := p.parseConjunction()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return Or(children...), nil
}

func (p *stringParser) parseConjunction() (*Node, error) {
	first, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	children := []*Node{first}
	for p.peek().kind == tokenAnd {
		p.next()
		child, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return And(children...), nil
}

func (p *stringParser) parseComparison() (*Node, error) {
	ident := p.next()
	if ident.kind != tokenIdent {
		return nil, fmt.Errorf("expected axis name, got %q", ident.text)
	}
	op := p.next()
	if op.kind != tokenOperator {
		return nil, fmt.Errorf("expected comparison operator after %q, got %q", ident.text, op.text)
	}
	num := p.next()
	if num.kind != tokenNumber {
		return nil, fmt.Errorf("expected threshold after %q %s, got %q", ident.text, op.text, num.text)
	}
	threshold, err := strconv.ParseFloat(num.text, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid threshold %q: %v", num.text, err)
	}
	return Comparison(ident.text, Operator(op.text), threshold), nil
}

func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isIdentStart(c):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			word := input[start:i]
			switch strings.ToUpper(word) {
			case "AND":
				tokens = append(tokens, token{tokenAnd, word})
			case "OR":
				tokens = append(tokens, token{tokenOr, word})
			default:
				tokens = append(tokens, token{tokenIdent, word})
			}
		case c == '>' || c == '<' || c == '=' || c == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{tokenOperator, input[i : i+2]})
				i += 2
			} else if c == '>' || c == '<' {
				tokens = append(tokens, token{tokenOperator, input[i : i+1]})
				i++
			} else {
				return nil, fmt.Errorf("invalid operator at position %d in %q", i, input)
			}
		case isNumberStart(c):
			start := i
			i++
			for i < len(input) && isNumberPart(input[i]) {
				i++
			}
			tokens = append(tokens, token{tokenNumber, input[start:i]})
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d in %q", c, i, input)
		}
	}
	tokens = append(tokens, token{kind: tokenEOF})
	return tokens, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '.' || (c >= '0' && c <= '9')
}

func isNumberStart(c byte) bool {
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func isNumberPart(c byte) bool {
	return c == '.' || c == 'e' || c == 'E' || c == '-' || c == '+' || (c >= '0' && c <= '9')
}

// ============================================================================
// JSON-Logic Object Parsing
// ============================================================================

// parseLogicObject parses a JSON-Logic-like tree: {"and": [...]},
// {"or": [...]}, {"!": ...} and {"OP": [operandA, operandB]} where one
// operand is {"var": axis}. When the variable is the second operand the
// operator is mirrored so the threshold keeps "axis OP threshold" semantics.
func parseLogicObject(obj map[string]interface{}) (*Node, error) {
	if len(obj) != 1 {
		return nil, fmt.Errorf("gate object must have exactly one key, got %d", len(obj))
	}

	var key string
	var value interface{}
	for k, v := range obj {
		key, value = k, v
	}

	switch strings.ToLower(key) {
	case "and", "or":
		elems, ok := value.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%q operands must be an array, got %T", key, value)
		}
		children := make([]*Node, 0, len(elems))
		for i, elem := range elems {
			childObj, ok := elem.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%q operand %d must be an object, got %T", key, i, elem)
			}
			child, err := parseLogicObject(childObj)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if strings.ToLower(key) == "and" {
			return And(children...), nil
		}
		return Or(children...), nil
	case "!", "not":
		childObj, ok := value.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("negation operand must be an object, got %T", value)
		}
		child, err := parseLogicObject(childObj)
		if err != nil {
			return nil, err
		}
		return Not(child), nil
	}

	op := Operator(key)
	if !op.Valid() {
		return nil, fmt.Errorf("unknown gate operator %q", key)
	}
	operands, ok := value.([]interface{})
	if !ok || len(operands) != 2 {
		return nil, fmt.Errorf("comparison %q requires exactly two operands", key)
	}

	if axis, ok := varReference(operands[0]); ok {
		threshold, err := numericOperand(operands[1])
		if err != nil {
			return nil, fmt.Errorf("comparison %q on %q: %v", key, axis, err)
		}
		return Comparison(axis, op, threshold), nil
	}
	if axis, ok := varReference(operands[1]); ok {
		threshold, err := numericOperand(operands[0])
		if err != nil {
			return nil, fmt.Errorf("comparison %q on %q: %v", key, axis, err)
		}
		return Comparison(axis, op.Mirror(), threshold), nil
	}
	return nil, fmt.Errorf("comparison %q has no variable operand", key)
}

func varReference(operand interface{}) (string, bool) {
	obj, ok := operand.(map[string]interface{})
	if !ok {
		return "", false
	}
	ref, ok := obj["var"]
	if !ok {
		return "", false
	}
	axis, ok := ref.(string)
	return axis, ok && axis != ""
}

func numericOperand(operand interface{}) (float64, error) {
	switch v := operand.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	default:
		return 0, fmt.Errorf("threshold must be numeric, got %T", operand)
	}
}
