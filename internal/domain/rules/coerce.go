package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var errNotNumeric = errors.New("value is not numeric")

// CoerceRules normalises an externally supplied ruleset. It accepts decoded
// JSON objects, raw JSON documents and already typed rulesets. Anything that
// is not an object, or that holds a numeric field which cannot be coerced to
// a finite number, yields the empty ruleset.
func CoerceRules(raw any) Ruleset {
	switch v := raw.(type) {
	case nil:
		return Ruleset{}
	case Ruleset:
		return v
	case *Ruleset:
		if v == nil {
			return Ruleset{}
		}
		return *v
	case json.RawMessage:
		return coerceDocument(v)
	case []byte:
		return coerceDocument(v)
	case string:
		return coerceDocument([]byte(v))
	case map[string]any:
		rs, err := coerceObject(v)
		if err != nil {
			return Ruleset{}
		}
		return rs
	default:
		return Ruleset{}
	}
}

func coerceDocument(doc []byte) Ruleset {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Ruleset{}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return Ruleset{}
	}
	rs, err := coerceObject(obj)
	if err != nil {
		return Ruleset{}
	}
	return rs
}

func coerceObject(obj map[string]any) (Ruleset, error) {
	var rs Ruleset

	if raw, ok := obj["pointsByPlacement"]; ok && raw != nil {
		table, ok := raw.(map[string]any)
		if !ok {
			return Ruleset{}, fmt.Errorf("pointsByPlacement: expected object, got %T", raw)
		}
		rs.PointsByPlacement = make(map[string]float64, len(table))
		for key, value := range table {
			n, err := toNumber(value)
			if err != nil {
				return Ruleset{}, fmt.Errorf("pointsByPlacement[%s]: %w", key, err)
			}
			rs.PointsByPlacement[key] = n
		}
	}

	if raw, ok := obj["bonuses"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return Ruleset{}, fmt.Errorf("bonuses: expected array, got %T", raw)
		}
		rs.Bonuses = make([]BonusRule, 0, len(list))
		for i, item := range list {
			rule, err := coerceBonus(item)
			if err != nil {
				return Ruleset{}, fmt.Errorf("bonuses[%d]: %w", i, err)
			}
			rs.Bonuses = append(rs.Bonuses, rule)
		}
	}

	if raw, ok := obj["kFactor"]; ok && raw != nil {
		k, err := toNumber(raw)
		if err != nil {
			return Ruleset{}, fmt.Errorf("kFactor: %w", err)
		}
		rs.KFactor = &k
	}

	return rs, nil
}

func coerceBonus(item any) (BonusRule, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return BonusRule{}, fmt.Errorf("expected object, got %T", item)
	}

	var rule BonusRule
	switch name := obj["name"].(type) {
	case nil:
	case string:
		rule.Name = name
	default:
		rule.Name = fmt.Sprint(name)
	}

	points, ok := obj["addPoints"]
	if !ok {
		return BonusRule{}, fmt.Errorf("addPoints: %w", errNotNumeric)
	}
	n, err := toNumber(points)
	if err != nil {
		return BonusRule{}, fmt.Errorf("addPoints: %w", err)
	}
	rule.AddPoints = n

	if raw, ok := obj["if"]; ok && raw != nil {
		cond, ok := raw.(map[string]any)
		if !ok {
			return BonusRule{}, fmt.Errorf("if: expected object, got %T", raw)
		}
		if v, ok := cond["rawScoreAtLeast"]; ok && v != nil {
			threshold, err := toNumber(v)
			if err != nil {
				return BonusRule{}, fmt.Errorf("if.rawScoreAtLeast: %w", err)
			}
			rule.If.RawScoreAtLeast = &threshold
		}
		if v, ok := cond["placementEquals"]; ok && v != nil {
			p, err := toNumber(v)
			if err != nil {
				return BonusRule{}, fmt.Errorf("if.placementEquals: %w", err)
			}
			if p != math.Trunc(p) {
				return BonusRule{}, fmt.Errorf("if.placementEquals: %v is not an integer", p)
			}
			placement := int(p)
			rule.If.PlacementEquals = &placement
		}
	}

	return rule, nil
}

// toNumber mirrors loose numeric coercion: numbers pass through, numeric
// strings are parsed, empty strings and nulls are zero and booleans are one
// or zero. Non-finite results are rejected.
func toNumber(v any) (float64, error) {
	var n float64
	switch x := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case int32:
		n = float64(x)
	case uint64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errNotNumeric, x.String())
		}
		n = f
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", errNotNumeric, x)
		}
		n = f
	default:
		return 0, fmt.Errorf("%w: %T", errNotNumeric, v)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", errNotNumeric, n)
	}
	return n, nil
}
