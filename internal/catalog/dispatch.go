package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cardlore/cardlore/internal/types"
)

// Dispatcher invokes catalog operations by name with a loosely typed argument
// bag, as transports and the CLI receive them.
type Dispatcher struct {
	catalog Catalog
	limits  Limits
}

// NewDispatcher creates a Dispatcher over c. limits.Default is the page size
// applied when a request names no limit.
func NewDispatcher(c Catalog, limits Limits) *Dispatcher {
	return &Dispatcher{catalog: c, limits: limits}
}

// Dispatch runs operation op with args. Numbers may arrive as any Go numeric
// type, json.Number or a numeric string. The result is JSON serializable;
// get-card returns nil for an unknown uuid.
func (d *Dispatcher) Dispatch(ctx context.Context, op string, args map[string]any) (any, error) {
	a := arguments(args)

	switch Operation(op) {
	case OpGetSet:
		code, err := a.requiredString("code")
		if err != nil {
			return nil, err
		}
		return d.catalog.GetSet(ctx, code)

	case OpGetCard:
		uuid, err := a.requiredString("uuid")
		if err != nil {
			return nil, err
		}
		card, err := d.catalog.GetCard(ctx, uuid)
		if err != nil || card == nil {
			return nil, err
		}
		return card, nil

	case OpGetArtist:
		name, err := a.requiredString("name")
		if err != nil {
			return nil, err
		}
		return d.catalog.GetArtist(ctx, name)

	case OpGetColor:
		name, err := a.requiredString("name")
		if err != nil {
			return nil, err
		}
		page, err := a.page(d.limits)
		if err != nil {
			return nil, err
		}
		return d.catalog.GetColor(ctx, name, page)

	case OpGetRarity:
		name, err := a.requiredString("name")
		if err != nil {
			return nil, err
		}
		page, err := a.page(d.limits)
		if err != nil {
			return nil, err
		}
		return d.catalog.GetRarity(ctx, name, page)

	case OpGetManaValue:
		value, ok, err := a.number("value")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, missing("value")
		}
		page, err := a.page(d.limits)
		if err != nil {
			return nil, err
		}
		return d.catalog.GetManaValue(ctx, value, page)

	case OpListCards:
		filter, err := a.cardFilter(d.limits)
		if err != nil {
			return nil, err
		}
		return d.catalog.ListCards(ctx, filter)

	case OpSearch:
		term, ok, err := a.str("searchTerm")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, missing("searchTerm")
		}
		return d.catalog.Search(ctx, term)

	default:
		return nil, types.NewValidationError(types.OPERATION_UNKNOWN,
			fmt.Sprintf("unknown operation %q", op))
	}
}

type arguments map[string]any

func missing(name string) error {
	return types.NewValidationError(types.ARGUMENT_MISSING, fmt.Sprintf("%s is required", name))
}

func invalid(name, reason string) error {
	return types.NewValidationError(types.ARGUMENT_INVALID, fmt.Sprintf("%s %s", name, reason))
}

// str returns a string argument. Absent and null are reported as not ok.
func (a arguments) str(name string) (string, bool, error) {
	v, present := a[name]
	if !present || v == nil {
		return "", false, nil
	}
	switch s := v.(type) {
	case string:
		return s, true, nil
	case fmt.Stringer:
		return s.String(), true, nil
	default:
		return "", false, invalid(name, "must be a string")
	}
}

// requiredString returns a string argument that must be present and not
// blank.
func (a arguments) requiredString(name string) (string, error) {
	s, ok, err := a.str(name)
	if err != nil {
		return "", err
	}
	if !ok || strings.TrimSpace(s) == "" {
		return "", missing(name)
	}
	return s, nil
}

// optionalString returns nil for an absent, null or blank argument.
func (a arguments) optionalString(name string) (*string, error) {
	s, ok, err := a.str(name)
	if err != nil || !ok || strings.TrimSpace(s) == "" {
		return nil, err
	}
	return &s, nil
}

// number returns a numeric argument. Absent and null are reported as not ok.
func (a arguments) number(name string) (float64, bool, error) {
	v, present := a[name]
	if !present || v == nil {
		return 0, false, nil
	}

	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false, invalid(name, "must be a number")
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false, invalid(name, "must be a number")
		}
		f = parsed
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		parsed, ok := toFloat64(v)
		if !ok {
			return 0, false, invalid(name, "must be a number")
		}
		f = parsed
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, invalid(name, "must be a finite number")
	}
	return f, true, nil
}

// integer returns a whole-number argument or def when absent.
func (a arguments) integer(name string, def int64) (int64, error) {
	f, ok, err := a.number(name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	if f != math.Trunc(f) {
		return 0, invalid(name, "must be an integer")
	}
	if f < 0 {
		return 0, invalid(name, "must not be negative")
	}
	if f > math.MaxInt32 {
		return 0, invalid(name, "is too large")
	}
	return int64(f), nil
}

func (a arguments) page(limits Limits) (Page, error) {
	skip, err := a.integer("skip", 0)
	if err != nil {
		return Page{}, err
	}
	limit, err := a.integer("limit", limits.Default)
	if err != nil {
		return Page{}, err
	}
	if limits.Max > 0 && limit > limits.Max {
		return Page{}, invalid("limit", fmt.Sprintf("must not exceed %d", limits.Max))
	}
	return Page{Skip: skip, Limit: limit}, nil
}

func (a arguments) cardFilter(limits Limits) (CardFilter, error) {
	var filter CardFilter

	if value, ok, err := a.number("manaValue"); err != nil {
		return filter, err
	} else if ok {
		filter.ManaValue = &value
	}

	for name, dst := range map[string]**string{
		"rarity":    &filter.Rarity,
		"type":      &filter.Type,
		"colorName": &filter.ColorName,
	} {
		s, err := a.optionalString(name)
		if err != nil {
			return filter, err
		}
		*dst = s
	}

	page, err := a.page(limits)
	if err != nil {
		return filter, err
	}
	filter.Page = page
	return filter, nil
}
