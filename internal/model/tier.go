package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownTier = errors.New("unknown tier")
	ErrUnknownTool = errors.New("unknown tool")
)

// Tier is a quality tier. Tiers are strictly ordered.
type Tier int

const (
	Common Tier = iota
	Epic
	Unique
	Legendary
)

var tierNames = [...]string{"Common", "Epic", "Unique", "Legendary"}

// Tiers lists every tier in ascending order.
var Tiers = []Tier{Common, Epic, Unique, Legendary}

func (t Tier) Valid() bool { return t >= Common && t <= Legendary }

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// ParseTier accepts tier names case-insensitively. "Rare" is kept as an
// alias of Common because older catalog exports use it.
func ParseTier(s string) (Tier, error) {
	name := strings.TrimSpace(s)
	for i, n := range tierNames {
		if strings.EqualFold(name, n) {
			return Tier(i), nil
		}
	}
	if strings.EqualFold(name, "rare") {
		return Common, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownTier, s)
}

// Tool is a consumable that attempts one quality tier advance.
type Tool int

const (
	Primary Tool = iota
	Secondary
	Auxiliary
)

var toolNames = [...]string{"primary", "secondary", "auxiliary"}

// Tools lists every tool.
var Tools = []Tool{Primary, Secondary, Auxiliary}

// MainTools are the two interchangeable tools of the main ladder.
var MainTools = []Tool{Primary, Secondary}

func (t Tool) Valid() bool { return t >= Primary && t <= Auxiliary }

func (t Tool) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// ParseTool accepts tool names plus the colour aliases used by the catalog
// (red, black, bonus).
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary", "red":
		return Primary, nil
	case "secondary", "black":
		return Secondary, nil
	case "auxiliary", "bonus":
		return Auxiliary, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownTool, s)
}
