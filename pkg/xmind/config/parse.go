package config

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/ohler55/ojg/oj"
	"github.com/zclconf/go-cty/cty"
)

// parseJSON flattens a JSON settings document into colon-separated keys.
//
//	{"output": {"base": "out"}}  →  output:base = out
func parseJSON(data []byte) (map[string]string, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("settings root must be an object, got %T", doc)
	}

	out := make(map[string]string)
	for k, v := range root {
		flattenJSON(k, v, out)
	}
	return out, nil
}

func flattenJSON(key string, v any, out map[string]string) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			flattenJSON(joinKey(key, k), child, out)
		}
	case []any:
		for i, child := range val {
			flattenJSON(joinKey(key, strconv.Itoa(i)), child, out)
		}
	case string:
		out[key] = val
	case bool:
		out[key] = strconv.FormatBool(val)
	case int64:
		out[key] = strconv.FormatInt(val, 10)
	case float64:
		out[key] = strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		out[key] = ""
	default:
		out[key] = fmt.Sprint(val)
	}
}

// parseHCL flattens an HCL settings file. Blocks and their labels become key
// segments, as do object attributes:
//
//	output {
//	  base  = "out"
//	  files = { content = "content.xml" }
//	}
func parseHCL(data []byte, filename string) (map[string]string, error) {
	file, diags := hclsyntax.ParseConfig(data, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected HCL body type %T", file.Body)
	}

	out := make(map[string]string)
	if diags := flattenHCLBody("", body, out); diags.HasErrors() {
		return nil, diags
	}
	return out, nil
}

func flattenHCLBody(prefix string, body *hclsyntax.Body, out map[string]string) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for name, attr := range body.Attributes {
		v, d := attr.Expr.Value(nil)
		diags = append(diags, d...)
		if d.HasErrors() {
			continue
		}
		flattenCty(joinKey(prefix, name), v, out)
	}
	for _, block := range body.Blocks {
		p := joinKey(prefix, block.Type)
		for _, label := range block.Labels {
			p = joinKey(p, label)
		}
		diags = append(diags, flattenHCLBody(p, block.Body, out)...)
	}
	return diags
}

func flattenCty(key string, v cty.Value, out map[string]string) {
	if v.IsNull() || !v.IsKnown() {
		out[key] = ""
		return
	}

	t := v.Type()
	switch {
	case t.IsObjectType() || t.IsMapType():
		for it := v.ElementIterator(); it.Next(); {
			k, child := it.Element()
			flattenCty(joinKey(key, k.AsString()), child, out)
		}
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		i := 0
		for it := v.ElementIterator(); it.Next(); {
			_, child := it.Element()
			flattenCty(joinKey(key, strconv.Itoa(i)), child, out)
			i++
		}
	case t.Equals(cty.String):
		out[key] = v.AsString()
	case t.Equals(cty.Number):
		out[key] = v.AsBigFloat().Text('f', -1)
	case t.Equals(cty.Bool):
		out[key] = strconv.FormatBool(v.True())
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + Separator + key
}
