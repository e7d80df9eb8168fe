package hayaml

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/hassops/ha-guard/pkg/logger"
)

var parseLog = logger.New("hayaml:parse")

// Parse converts UTF-8 YAML text into a Value tree. Only the first document
// of a multi-document stream is used. An empty input parses to a null value.
func Parse(src []byte) (*Value, error) {
	file, err := parser.ParseBytes(src, 0)
	if err != nil {
		parseLog.Printf("YAML parse failed: %v", err)
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if len(file.Docs) == 0 || file.Docs[0].Body == nil {
		parseLog.Print("Parsed empty document")
		return Null(), nil
	}
	v, err := fromNode(file.Docs[0].Body)
	if err != nil {
		return nil, err
	}
	parseLog.Printf("Parsed document: kind=%s", v.Kind)
	return v, nil
}

// fromNode converts one goccy AST node. Anchors and tags are unwrapped,
// aliases resolve to null (the validators treat unresolved aliases as
// opaque), merge keys are skipped by the mapping case.
func fromNode(node ast.Node) (*Value, error) {
	line, column := nodePosition(node)

	switch n := node.(type) {
	case *ast.NullNode:
		return &Value{Kind: KindNull, Line: line, Column: column}, nil
	case *ast.BoolNode:
		return &Value{Kind: KindBool, Bool: n.Value, Line: line, Column: column}, nil
	case *ast.IntegerNode:
		f, err := integerValue(n.Value)
		if err != nil {
			return nil, err
		}
		return &Value{Kind: KindNumber, Number: f, Line: line, Column: column}, nil
	case *ast.FloatNode:
		return &Value{Kind: KindNumber, Number: n.Value, Line: line, Column: column}, nil
	case *ast.InfinityNode:
		return &Value{Kind: KindNumber, Number: n.Value, Line: line, Column: column}, nil
	case *ast.NanNode:
		return &Value{Kind: KindNumber, Number: math.NaN(), Line: line, Column: column}, nil
	case *ast.StringNode:
		return &Value{Kind: KindString, Str: n.Value, Line: line, Column: column}, nil
	case *ast.LiteralNode:
		return &Value{Kind: KindString, Str: n.Value.Value, Line: line, Column: column}, nil
	case *ast.SequenceNode:
		out := &Value{Kind: KindSequence, Items: make([]*Value, 0, len(n.Values)), Line: line, Column: column}
		for _, item := range n.Values {
			v, err := fromNode(item)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, v)
		}
		return out, nil
	case *ast.MappingNode:
		out := &Value{Kind: KindMapping, Entries: make([]Entry, 0, len(n.Values)), Line: line, Column: column}
		for _, kv := range n.Values {
			if err := appendPair(out, kv); err != nil {
				return nil, err
			}
		}
		return out, nil
	case *ast.MappingValueNode:
		// A single-pair mapping parses as a bare MappingValueNode.
		out := &Value{Kind: KindMapping, Line: line, Column: column}
		if err := appendPair(out, n); err != nil {
			return nil, err
		}
		return out, nil
	case *ast.AnchorNode:
		return fromNode(n.Value)
	case *ast.TagNode:
		return fromNode(n.Value)
	case *ast.AliasNode:
		return &Value{Kind: KindNull, Line: line, Column: column}, nil
	default:
		return nil, fmt.Errorf("unsupported YAML node %T at line %d", node, line)
	}
}

func appendPair(out *Value, kv *ast.MappingValueNode) error {
	if _, isMerge := kv.Key.(*ast.MergeKeyNode); isMerge {
		return nil
	}
	key, err := keyString(kv.Key)
	if err != nil {
		return err
	}
	v, err := fromNode(kv.Value)
	if err != nil {
		return err
	}
	out.Entries = append(out.Entries, Entry{Key: key, Value: v})
	return nil
}

func keyString(node ast.Node) (string, error) {
	switch n := node.(type) {
	case *ast.StringNode:
		return n.Value, nil
	case *ast.IntegerNode, *ast.FloatNode, *ast.BoolNode, *ast.NullNode:
		if tok := node.GetToken(); tok != nil {
			return tok.Value, nil
		}
	}
	line, _ := nodePosition(node)
	return "", fmt.Errorf("unsupported mapping key %T at line %d", node, line)
}

func integerValue(raw any) (float64, error) {
	switch n := raw.(type) {
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer literal %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported integer representation %T", raw)
	}
}

func nodePosition(node ast.Node) (int, int) {
	tok := node.GetToken()
	if tok == nil || tok.Position == nil {
		return 0, 0
	}
	return tok.Position.Line, tok.Position.Column
}
