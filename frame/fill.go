package frame

import (
	"fmt"
	"sort"
	"strings"
)

// FillDirection is the policy FillWithin uses to pick the nearest known value.
type FillDirection string

const (
	// FillBackward takes the next known value in group order.
	FillBackward FillDirection = "backward"
	// FillForward takes the previous known value in group order.
	FillForward FillDirection = "forward"
	// FillBackwardForward fills backward, then forward for trailing gaps.
	FillBackwardForward FillDirection = "backward_forward"
	// FillForwardBackward fills forward, then backward for leading gaps.
	FillForwardBackward FillDirection = "forward_backward"
	// FillNone leaves gaps untouched.
	FillNone FillDirection = "none"
)

// ParseFillDirection validates a configured direction name.
func ParseFillDirection(s string) (FillDirection, error) {
	d := FillDirection(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case FillBackward, FillForward, FillBackwardForward, FillForwardBackward, FillNone:
		return d, nil
	case "":
		return FillBackward, nil
	}
	return "", fmt.Errorf("frame: unknown fill direction %q", s)
}

// FillSpec describes a within-group gap fill.
type FillSpec struct {
	Column    string
	GroupBy   []string
	Direction FillDirection
	// OrderBy orders rows inside a group before filling. Empty keeps table
	// row order.
	OrderBy string
}

// FillWithin fills nulls in spec.Column using the nearest known value from the
// same group. Rows whose group key has a null are left alone. Row order of
// the output matches the input.
func FillWithin(t *Table, spec FillSpec) (*Table, error) {
	target, ok := t.index[spec.Column]
	if !ok {
		return nil, fmt.Errorf("fill: %w: %s", ErrMissingColumn, spec.Column)
	}
	groupPos, err := t.indexesOf(spec.GroupBy)
	if err != nil {
		return nil, fmt.Errorf("fill: %w", err)
	}
	orderPos := -1
	if spec.OrderBy != "" {
		p, ok := t.index[spec.OrderBy]
		if !ok {
			return nil, fmt.Errorf("fill order: %w: %s", ErrMissingColumn, spec.OrderBy)
		}
		orderPos = p
	}
	direction := spec.Direction
	if direction == "" {
		direction = FillBackward
	}

	out := MustNew(t.columns...)
	out.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		out.rows[i] = append([]Value(nil), row...)
	}
	if direction == FillNone {
		return out, nil
	}

	groups := make(map[string][]int)
	var order []string
	for i, row := range t.rows {
		k, ok := rowKey(row, groupPos)
		if !ok {
			continue
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		members := groups[k]
		if orderPos >= 0 {
			sort.SliceStable(members, func(a, b int) bool {
				return Compare(t.rows[members[a]][orderPos], t.rows[members[b]][orderPos]) < 0
			})
		}
		switch direction {
		case FillBackward:
			fillBackward(out.rows, members, target)
		case FillForward:
			fillForward(out.rows, members, target)
		case FillBackwardForward:
			fillBackward(out.rows, members, target)
			fillForward(out.rows, members, target)
		case FillForwardBackward:
			fillForward(out.rows, members, target)
			fillBackward(out.rows, members, target)
		default:
			return nil, fmt.Errorf("fill: unknown direction %q", direction)
		}
	}
	return out, nil
}

func fillBackward(rows [][]Value, members []int, col int) {
	next := Null()
	for i := len(members) - 1; i >= 0; i-- {
		cell := &rows[members[i]][col]
		if cell.IsNull() {
			*cell = next
		} else {
			next = *cell
		}
	}
}

func fillForward(rows [][]Value, members []int, col int) {
	prev := Null()
	for _, m := range members {
		cell := &rows[m][col]
		if cell.IsNull() {
			*cell = prev
		} else {
			prev = *cell
		}
	}
}
