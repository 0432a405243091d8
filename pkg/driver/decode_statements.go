package driver

import (
	"fmt"
	"math"

	"moopl/interpreter-go/pkg/ast"
)

func decodeStatementNode(node map[string]any) (ast.Node, bool, error) {
	typ, _ := node["type"].(string)
	switch ast.NodeType(typ) {
	case ast.NodeStmBlock:
		body, err := decodeStatementList(node["body"])
		if err != nil {
			return nil, true, err
		}
		return ast.NewStmBlock(body), true, nil
	case ast.NodeStmVarDecl:
		name, _ := node["name"].(string)
		typ, err := decodeTypeField(node, "varType")
		if err != nil {
			return nil, true, err
		}
		return ast.NewStmVarDecl(typ, name), true, nil
	case ast.NodeStmIf:
		cond, err := decodeExpressionField(node, "cond")
		if err != nil {
			return nil, true, err
		}
		then, err := decodeBlockField(node, "then")
		if err != nil {
			return nil, true, err
		}
		els, err := decodeBlockField(node, "else")
		if err != nil {
			return nil, true, err
		}
		return ast.NewStmIf(cond, then, els), true, nil
	case ast.NodeStmWhile:
		cond, err := decodeExpressionField(node, "cond")
		if err != nil {
			return nil, true, err
		}
		body, err := decodeBlockField(node, "body")
		if err != nil {
			return nil, true, err
		}
		return ast.NewStmWhile(cond, body), true, nil
	case ast.NodeStmOutput:
		expr, err := decodeExpressionField(node, "expr")
		if err != nil {
			return nil, true, err
		}
		return ast.NewStmOutput(expr), true, nil
	case ast.NodeStmAssign:
		v, err := decodeVarField(node, "var")
		if err != nil {
			return nil, true, err
		}
		value, err := decodeExpressionField(node, "value")
		if err != nil {
			return nil, true, err
		}
		return ast.NewStmAssign(v, value), true, nil
	case ast.NodeStmArrayAssign:
		array, err := decodeExpressionField(node, "array")
		if err != nil {
			return nil, true, err
		}
		index, err := decodeExpressionField(node, "index")
		if err != nil {
			return nil, true, err
		}
		value, err := decodeExpressionField(node, "value")
		if err != nil {
			return nil, true, err
		}
		return ast.NewStmArrayAssign(array, index, value), true, nil
	case ast.NodeStmCall:
		receiver, err := decodeOptionalExpression(node, "receiver")
		if err != nil {
			return nil, true, err
		}
		name, _ := node["name"].(string)
		args, err := decodeExpressionList(node["args"])
		if err != nil {
			return nil, true, err
		}
		return ast.NewStmCall(receiver, name, args), true, nil
	}
	return nil, false, nil
}

func decodeExpressionNode(node map[string]any) (ast.Node, bool, error) {
	typ, _ := node["type"].(string)
	switch ast.NodeType(typ) {
	case ast.NodeExpInteger:
		n, err := toInt(node["value"])
		if err != nil {
			return nil, true, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, true, fmt.Errorf("integer literal %d out of range", n)
		}
		return ast.NewExpInteger(int32(n)), true, nil
	case ast.NodeExpTrue:
		return ast.NewExpTrue(), true, nil
	case ast.NodeExpFalse:
		return ast.NewExpFalse(), true, nil
	case ast.NodeExpVar:
		v, err := decodeVarField(node, "var")
		if err != nil {
			return nil, true, err
		}
		return ast.NewExpVar(v), true, nil
	case ast.NodeExpSelf:
		return ast.NewExpSelf(), true, nil
	case ast.NodeExpNot:
		operand, err := decodeExpressionField(node, "operand")
		if err != nil {
			return nil, true, err
		}
		return ast.NewExpNot(operand), true, nil
	case ast.NodeExpIsnull:
		operand, err := decodeExpressionField(node, "operand")
		if err != nil {
			return nil, true, err
		}
		return ast.NewExpIsnull(operand), true, nil
	case ast.NodeExpOp:
		op, _ := node["op"].(string)
		if op == "" {
			return nil, true, fmt.Errorf("operator expression missing op")
		}
		left, err := decodeExpressionField(node, "left")
		if err != nil {
			return nil, true, err
		}
		right, err := decodeExpressionField(node, "right")
		if err != nil {
			return nil, true, err
		}
		return ast.NewExpOp(ast.Operator(op), left, right), true, nil
	case ast.NodeExpArrayLookup:
		array, err := decodeExpressionField(node, "array")
		if err != nil {
			return nil, true, err
		}
		index, err := decodeExpressionField(node, "index")
		if err != nil {
			return nil, true, err
		}
		return ast.NewExpArrayLookup(array, index), true, nil
	case ast.NodeExpArrayLength:
		array, err := decodeExpressionField(node, "array")
		if err != nil {
			return nil, true, err
		}
		return ast.NewExpArrayLength(array), true, nil
	case ast.NodeExpNewArray:
		elem, err := decodeTypeField(node, "elemType")
		if err != nil {
			return nil, true, err
		}
		length, err := decodeExpressionField(node, "length")
		if err != nil {
			return nil, true, err
		}
		return ast.NewExpNewArray(elem, length), true, nil
	case ast.NodeExpNewObject:
		class, _ := node["class"].(string)
		args, err := decodeExpressionList(node["args"])
		if err != nil {
			return nil, true, err
		}
		return ast.NewExpNewObject(class, args), true, nil
	case ast.NodeExpCall:
		receiver, err := decodeOptionalExpression(node, "receiver")
		if err != nil {
			return nil, true, err
		}
		name, _ := node["name"].(string)
		args, err := decodeExpressionList(node["args"])
		if err != nil {
			return nil, true, err
		}
		return ast.NewExpCall(receiver, name, args), true, nil
	}
	return nil, false, nil
}

func decodeStatementList(value any) ([]ast.Statement, error) {
	list, _ := value.([]any)
	out := make([]ast.Statement, 0, len(list))
	for _, raw := range list {
		child, err := decodeChild(raw)
		if err != nil {
			return nil, err
		}
		stmt, ok := child.(ast.Statement)
		if !ok {
			return nil, fmt.Errorf("invalid statement %T", child)
		}
		out = append(out, stmt)
	}
	return out, nil
}

func decodeExpressionList(value any) ([]ast.Expression, error) {
	list, _ := value.([]any)
	out := make([]ast.Expression, 0, len(list))
	for _, raw := range list {
		child, err := decodeChild(raw)
		if err != nil {
			return nil, err
		}
		expr, ok := child.(ast.Expression)
		if !ok {
			return nil, fmt.Errorf("invalid expression %T", child)
		}
		out = append(out, expr)
	}
	return out, nil
}

func decodeExpressionField(node map[string]any, key string) (ast.Expression, error) {
	expr, err := decodeOptionalExpression(node, key)
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, fmt.Errorf("missing %s", key)
	}
	return expr, nil
}

func decodeOptionalExpression(node map[string]any, key string) (ast.Expression, error) {
	raw, ok := node[key]
	if !ok || raw == nil {
		return nil, nil
	}
	child, err := decodeChild(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	expr, ok := child.(ast.Expression)
	if !ok {
		return nil, fmt.Errorf("%s: invalid expression %T", key, child)
	}
	return expr, nil
}

// decodeBlockField accepts a StmBlock node or a bare statement list.
func decodeBlockField(node map[string]any, key string) (*ast.StmBlock, error) {
	switch raw := node[key].(type) {
	case nil:
		return ast.NewStmBlock(nil), nil
	case []any:
		body, err := decodeStatementList(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return ast.NewStmBlock(body), nil
	default:
		child, err := decodeChild(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		block, ok := child.(*ast.StmBlock)
		if !ok {
			return nil, fmt.Errorf("%s: expected block, found %T", key, child)
		}
		return block, nil
	}
}

// decodeVarField accepts a Var node or a bare name.
func decodeVarField(node map[string]any, key string) (*ast.Var, error) {
	switch raw := node[key].(type) {
	case string:
		if raw == "" {
			return nil, fmt.Errorf("%s: empty variable name", key)
		}
		return ast.NewVar(raw), nil
	case map[string]any:
		child, err := decodeNode(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		v, ok := child.(*ast.Var)
		if !ok {
			return nil, fmt.Errorf("%s: expected variable, found %T", key, child)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("missing %s", key)
	}
}
