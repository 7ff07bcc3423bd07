package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/fitout/internal/ports/primary"
)

// parseAmount parses a money or hours value given on the command line.
func parseAmount(flag, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid --%s %q: must be a number", flag, value)
	}
	return d, nil
}

// parseItem parses "NAME:QTY" or "NAME:QTY@COST". Without a cost the item is
// priced from the catalog.
func parseItem(spec string) (primary.MaterialLine, error) {
	name, rest, ok := strings.Cut(spec, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return primary.MaterialLine{}, fmt.Errorf("invalid item %q. Expected format: NAME:QTY[@COST]", spec)
	}

	qtyPart, costPart, hasCost := strings.Cut(rest, "@")
	qty, err := strconv.ParseInt(strings.TrimSpace(qtyPart), 10, 64)
	if err != nil {
		return primary.MaterialLine{}, fmt.Errorf("invalid item %q: quantity must be a whole number", spec)
	}

	line := primary.MaterialLine{Material: strings.TrimSpace(name), Quantity: qty}
	if hasCost {
		cost, err := parseAmount("item", costPart)
		if err != nil {
			return primary.MaterialLine{}, err
		}
		line.UnitCost = &cost
	}
	return line, nil
}

// parseWorker parses "NAME:HOURS", "NAME:HOURS:ROLE" or "NAME:HOURS:ROLE@RATE".
// Missing role and rate come from the laborer catalog.
func parseWorker(spec string) (primary.WorkerLine, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 || strings.TrimSpace(parts[0]) == "" {
		return primary.WorkerLine{}, fmt.Errorf("invalid worker %q. Expected format: NAME:HOURS[:ROLE[@RATE]]", spec)
	}

	hours, err := parseAmount("worker", parts[1])
	if err != nil {
		return primary.WorkerLine{}, err
	}
	line := primary.WorkerLine{Name: strings.TrimSpace(parts[0]), Hours: hours}
	if len(parts) == 3 {
		role, rate, err := parseRoleRate(parts[2])
		if err != nil {
			return primary.WorkerLine{}, fmt.Errorf("invalid worker %q: %w", spec, err)
		}
		line.Role, line.Rate = role, rate
	}
	return line, nil
}

// parseMember parses a crew member: "NAME", "NAME:ROLE" or "NAME:ROLE@RATE".
func parseMember(spec string) (primary.CrewMemberLine, error) {
	name, rest, hasRest := strings.Cut(spec, ":")
	if strings.TrimSpace(name) == "" {
		return primary.CrewMemberLine{}, fmt.Errorf("invalid member %q. Expected format: NAME[:ROLE[@RATE]]", spec)
	}
	line := primary.CrewMemberLine{Name: strings.TrimSpace(name)}
	if hasRest {
		role, rate, err := parseRoleRate(rest)
		if err != nil {
			return primary.CrewMemberLine{}, fmt.Errorf("invalid member %q: %w", spec, err)
		}
		line.Role, line.Rate = role, rate
	}
	return line, nil
}

func parseRoleRate(s string) (string, *decimal.Decimal, error) {
	role, ratePart, hasRate := strings.Cut(s, "@")
	if !hasRate {
		return strings.TrimSpace(role), nil, nil
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(ratePart))
	if err != nil {
		return "", nil, fmt.Errorf("rate must be a number")
	}
	return strings.TrimSpace(role), &rate, nil
}
