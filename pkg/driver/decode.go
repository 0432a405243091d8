package driver

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"moopl/interpreter-go/pkg/ast"
)

// ReadProgram loads a serialized program from a .json, .yml or .yaml file.
func ReadProgram(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("program: read %s: %w", path, err)
	}
	raw, err := unmarshalNodeMap(path, data)
	if err != nil {
		return nil, err
	}
	program, err := DecodeProgram(raw)
	if err != nil {
		return nil, fmt.Errorf("program: decode %s: %w", path, err)
	}
	return program, nil
}

func unmarshalNodeMap(path string, data []byte) (map[string]any, error) {
	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("program: parse %s: %w", path, err)
		}
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("program: parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("program: unsupported file type %q", filepath.Ext(path))
	}
	if raw == nil {
		return nil, fmt.Errorf("program: %s is empty", path)
	}
	return raw, nil
}

// DecodeProgram builds a program from its generic map form, as produced by
// encoding/json or yaml.v3.
func DecodeProgram(raw map[string]any) (*ast.Program, error) {
	node, err := decodeNode(raw)
	if err != nil {
		return nil, err
	}
	program, ok := node.(*ast.Program)
	if !ok {
		return nil, fmt.Errorf("decoded node is not a program: %T", node)
	}
	return program, nil
}

func decodeNode(node map[string]any) (ast.Node, error) {
	decoded, err := decodeNodeKind(node)
	if err != nil {
		return nil, err
	}
	if span, ok := decodeSpan(node["span"]); ok {
		attachSpan(decoded, span)
	}
	return decoded, nil
}

func decodeNodeKind(node map[string]any) (ast.Node, error) {
	typ, _ := node["type"].(string)
	switch ast.NodeType(typ) {
	case ast.NodeProgram:
		routines, err := decodeRoutines(node["routines"])
		if err != nil {
			return nil, err
		}
		classesVal, _ := node["classes"].([]any)
		classes := make([]*ast.ClassDecl, 0, len(classesVal))
		for _, raw := range classesVal {
			child, err := decodeChild(raw)
			if err != nil {
				return nil, err
			}
			class, ok := child.(*ast.ClassDecl)
			if !ok {
				return nil, fmt.Errorf("invalid class entry %T", child)
			}
			classes = append(classes, class)
		}
		commandsVal, _ := node["commands"].([]any)
		commands := make([]ast.Command, 0, len(commandsVal))
		for _, raw := range commandsVal {
			child, err := decodeChild(raw)
			if err != nil {
				return nil, err
			}
			cmd, ok := child.(ast.Command)
			if !ok {
				return nil, fmt.Errorf("invalid command entry %T", child)
			}
			commands = append(commands, cmd)
		}
		return ast.NewProgram(routines, classes, commands), nil
	case ast.NodeClassDecl:
		name, _ := node["name"].(string)
		parent, _ := node["parent"].(string)
		fieldsVal, _ := node["fields"].([]any)
		fields := make([]*ast.FieldDecl, 0, len(fieldsVal))
		for _, raw := range fieldsVal {
			child, err := decodeChild(raw)
			if err != nil {
				return nil, err
			}
			field, ok := child.(*ast.FieldDecl)
			if !ok {
				return nil, fmt.Errorf("class %s: invalid field %T", name, child)
			}
			fields = append(fields, field)
		}
		methods, err := decodeRoutines(node["methods"])
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", name, err)
		}
		return ast.NewClassDecl(name, parent, fields, methods), nil
	case ast.NodeFieldDecl:
		name, _ := node["name"].(string)
		typ, err := decodeTypeField(node, "fieldType")
		if err != nil {
			return nil, err
		}
		return ast.NewFieldDecl(typ, name), nil
	case ast.NodeFormal:
		name, _ := node["name"].(string)
		typ, err := decodeTypeField(node, "paramType")
		if err != nil {
			return nil, err
		}
		return ast.NewFormal(typ, name), nil
	case ast.NodeProcDecl, ast.NodeFunDecl:
		return decodeRoutine(node)
	case ast.NodeTypeInt:
		return ast.NewTypeInt(), nil
	case ast.NodeTypeBoolean:
		return ast.NewTypeBoolean(), nil
	case ast.NodeTypeClass:
		name, _ := node["name"].(string)
		return ast.NewTypeClass(name), nil
	case ast.NodeTypeArray:
		elem, err := decodeTypeField(node, "elem")
		if err != nil {
			return nil, err
		}
		return ast.NewTypeArray(elem), nil
	case ast.NodeICall:
		name, _ := node["name"].(string)
		args, err := decodeExpressionList(node["args"])
		if err != nil {
			return nil, err
		}
		return ast.NewICall(name, args), nil
	case ast.NodeIEval:
		expr, err := decodeExpressionField(node, "expr")
		if err != nil {
			return nil, err
		}
		return ast.NewIEval(expr), nil
	case ast.NodeVar:
		name, _ := node["name"].(string)
		return ast.NewVar(name), nil
	}
	if decoded, ok, err := decodeStatementNode(node); ok || err != nil {
		return decoded, err
	}
	if decoded, ok, err := decodeExpressionNode(node); ok || err != nil {
		return decoded, err
	}
	if typ == "" {
		return nil, fmt.Errorf("node missing type")
	}
	return nil, fmt.Errorf("unsupported node type %q", typ)
}

func decodeRoutine(node map[string]any) (ast.Node, error) {
	name, _ := node["name"].(string)
	paramsVal, _ := node["params"].([]any)
	params := make([]*ast.Formal, 0, len(paramsVal))
	for _, raw := range paramsVal {
		child, err := decodeChild(raw)
		if err != nil {
			return nil, err
		}
		formal, ok := child.(*ast.Formal)
		if !ok {
			return nil, fmt.Errorf("routine %s: invalid parameter %T", name, child)
		}
		params = append(params, formal)
	}
	body, err := decodeStatementList(node["body"])
	if err != nil {
		return nil, fmt.Errorf("routine %s: %w", name, err)
	}
	if node["type"] == string(ast.NodeProcDecl) {
		return ast.NewProcDecl(name, params, body), nil
	}
	ret, err := decodeTypeField(node, "returnType")
	if err != nil {
		return nil, fmt.Errorf("routine %s: %w", name, err)
	}
	result, err := decodeExpressionField(node, "result")
	if err != nil {
		return nil, fmt.Errorf("routine %s: %w", name, err)
	}
	return ast.NewFunDecl(ret, name, params, body, result), nil
}

func decodeRoutines(value any) ([]ast.Routine, error) {
	list, _ := value.([]any)
	out := make([]ast.Routine, 0, len(list))
	for _, raw := range list {
		child, err := decodeChild(raw)
		if err != nil {
			return nil, err
		}
		routine, ok := child.(ast.Routine)
		if !ok {
			return nil, fmt.Errorf("invalid routine %T", child)
		}
		out = append(out, routine)
	}
	return out, nil
}

func decodeChild(raw any) (ast.Node, error) {
	child, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected node object, found %T", raw)
	}
	return decodeNode(child)
}

func decodeTypeField(node map[string]any, key string) (ast.TypeExpression, error) {
	raw, ok := node[key]
	if !ok || raw == nil {
		return nil, fmt.Errorf("missing %s", key)
	}
	// Shorthand: "int", "boolean", "int[]", "Point".
	if s, ok := raw.(string); ok {
		return parseTypeName(s)
	}
	child, err := decodeChild(raw)
	if err != nil {
		return nil, err
	}
	typ, ok := child.(ast.TypeExpression)
	if !ok {
		return nil, fmt.Errorf("%s: invalid type %T", key, child)
	}
	return typ, nil
}

func parseTypeName(s string) (ast.TypeExpression, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty type name")
	case strings.HasSuffix(s, "[]"):
		elem, err := parseTypeName(strings.TrimSuffix(s, "[]"))
		if err != nil {
			return nil, err
		}
		return ast.NewTypeArray(elem), nil
	case s == "int":
		return ast.NewTypeInt(), nil
	case s == "boolean":
		return ast.NewTypeBoolean(), nil
	default:
		return ast.NewTypeClass(s), nil
	}
}

func decodeSpan(raw any) (ast.Span, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return ast.Span{}, false
	}
	line, lerr := toInt(m["line"])
	col, cerr := toInt(m["column"])
	if lerr != nil || cerr != nil {
		return ast.Span{}, false
	}
	return ast.Span{Line: int(line), Column: int(col)}, true
}

type spanSetter interface {
	ast.Node
	SetSpan(ast.Span)
}

func attachSpan(node ast.Node, span ast.Span) {
	if s, ok := node.(spanSetter); ok {
		s.SetSpan(span)
	}
}

// toInt accepts the numeric representations produced by encoding/json
// (float64) and yaml.v3 (int).
func toInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, found %v", v)
		}
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		return json.Number(strings.TrimSpace(v)).Int64()
	default:
		return 0, fmt.Errorf("expected integer, found %T", raw)
	}
}
