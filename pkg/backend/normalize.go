package backend

import (
	"bytes"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var emptyList = jsoniter.RawMessage("[]")

// listKeys son las claves bajo las que el backend a veces envuelve los listados
var listKeys = []string{"data", "items", "rows", "results"}

// NormalizeList acepta las variantes de forma que devuelve el backend para un
// listado y siempre entrega un arreglo JSON:
//
//	[...]                      -> tal cual
//	null / vacío               -> []
//	{"<recurso>": [...]}       -> el arreglo
//	{"<recurso>": null}        -> []
//	{"data": {...}}            -> se desenvuelve recursivamente
//	{"otro": [...]}            -> el único campo que es arreglo
//	{...}                      -> [{...}]
func NormalizeList(raw jsoniter.RawMessage, resource string) (jsoniter.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return emptyList, nil
	}

	switch raw[0] {
	case '[':
		return raw, nil
	case '{':
		var fields map[string]jsoniter.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("data inválida: %w", err)
		}

		keys := append([]string{resource, camelCase(resource)}, listKeys...)
		for _, k := range keys {
			v, ok := fields[k]
			if !ok {
				continue
			}
			v = bytes.TrimSpace(v)
			if len(v) == 0 || bytes.Equal(v, []byte("null")) {
				return emptyList, nil
			}
			if v[0] == '[' || v[0] == '{' {
				return NormalizeList(v, resource)
			}
		}

		var only jsoniter.RawMessage
		arrays := 0
		for _, v := range fields {
			v = bytes.TrimSpace(v)
			if len(v) > 0 && v[0] == '[' {
				only = v
				arrays++
			}
		}
		if arrays == 1 {
			return only, nil
		}

		return jsoniter.RawMessage("[" + string(raw) + "]"), nil
	}

	return nil, fmt.Errorf("data con forma inesperada: %.40s", string(raw))
}

// NormalizeObject entrega un único objeto: desenvuelve {"data": {...}} y toma
// el primer elemento si el backend responde un arreglo.
func NormalizeObject(raw jsoniter.RawMessage) (jsoniter.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ErrNotFound
	}

	switch raw[0] {
	case '[':
		var items []jsoniter.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("data inválida: %w", err)
		}
		if len(items) == 0 {
			return nil, ErrNotFound
		}
		return NormalizeObject(items[0])
	case '{':
		var fields map[string]jsoniter.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("data inválida: %w", err)
		}
		if inner, ok := fields["data"]; ok && len(fields) == 1 {
			return NormalizeObject(inner)
		}
		return raw, nil
	}

	return nil, fmt.Errorf("data con forma inesperada: %.40s", string(raw))
}

// camelCase convierte "super-form" en "superForm"
func camelCase(s string) string {
	parts := strings.Split(s, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
